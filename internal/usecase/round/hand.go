package usecase_round

import (
	"encoding/binary"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/quipstack/core/internal/model"
)

// DealHand samples size response cards without replacement, deterministically:
// the same (deck, room, round, player) always yields the same cards, in the
// same order. Decks shorter than the hand are dealt whole.
func DealHand(cards []model.Card, roomID, roundID uuid.UUID, playerID model.UserID, size int) []model.Card {
	if size <= 0 || len(cards) == 0 {
		return nil
	}

	// Catalog order is not guaranteed, so fix it before shuffling.
	dealt := make([]model.Card, len(cards))
	copy(dealt, cards)
	sort.Slice(dealt, func(i, j int) bool { return dealt[i].ID < dealt[j].ID })

	r := rand.New(rand.NewSource(handSeed(roomID, roundID, playerID)))
	r.Shuffle(len(dealt), func(i, j int) {
		dealt[i], dealt[j] = dealt[j], dealt[i]
	})

	if len(dealt) > size {
		dealt = dealt[:size]
	}
	return dealt
}

func handSeed(roomID, roundID uuid.UUID, playerID model.UserID) int64 {
	id := uuid.NewSHA1(uuid.NameSpaceOID,
		[]byte(roomID.String()+"|"+roundID.String()+"|"+string(playerID)))
	return int64(binary.BigEndian.Uint64(id[:8]))
}
