package usecase_round

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/quipstack/core/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func responseDeck(n int) []model.Card {
	cards := make([]model.Card, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, model.Card{
			ID:   fmt.Sprintf("card-%03d", i),
			Kind: model.CardResponse,
			Text: fmt.Sprintf("response %d", i),
		})
	}
	return cards
}

func TestDealHandDeterministic(t *testing.T) {
	deck := responseDeck(20)
	roomID, roundID := uuid.New(), uuid.New()
	playerID := model.UserID("player-1")

	first := DealHand(deck, roomID, roundID, playerID, HandSize)
	second := DealHand(deck, roomID, roundID, playerID, HandSize)

	assert.Equal(t, first, second, "same inputs must deal the same hand in the same order")
}

func TestDealHandIgnoresCatalogOrder(t *testing.T) {
	deck := responseDeck(20)
	shuffled := make([]model.Card, len(deck))
	copy(shuffled, deck)
	for i, j := 0, len(shuffled)-1; i < j; i, j = i+1, j-1 {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	roomID, roundID := uuid.New(), uuid.New()
	playerID := model.UserID("player-1")

	assert.Equal(t,
		DealHand(deck, roomID, roundID, playerID, HandSize),
		DealHand(shuffled, roomID, roundID, playerID, HandSize))
}

func TestDealHandNoReplacement(t *testing.T) {
	deck := responseDeck(20)
	hand := DealHand(deck, uuid.New(), uuid.New(), "player-1", HandSize)

	require.Len(t, hand, HandSize)
	seen := make(map[string]bool, len(hand))
	for _, c := range hand {
		assert.False(t, seen[c.ID], "card %s dealt twice", c.ID)
		seen[c.ID] = true
	}
}

func TestDealHandShortDeck(t *testing.T) {
	deck := responseDeck(2)
	hand := DealHand(deck, uuid.New(), uuid.New(), "player-1", HandSize)

	assert.Len(t, hand, 2, "a short deck is dealt whole")
}

func TestDealHandEmpty(t *testing.T) {
	assert.Nil(t, DealHand(nil, uuid.New(), uuid.New(), "player-1", HandSize))
	assert.Nil(t, DealHand(responseDeck(5), uuid.New(), uuid.New(), "player-1", 0))
}

func TestDealHandVariesAcrossRoundsAndPlayers(t *testing.T) {
	deck := responseDeck(50)
	roomID := uuid.New()
	roundA, roundB := uuid.New(), uuid.New()

	// With 50 cards, identical three-card deals across independent seeds
	// are vanishingly unlikely; a collision here means the seed ignores
	// one of its inputs.
	handA := DealHand(deck, roomID, roundA, "player-1", HandSize)
	handB := DealHand(deck, roomID, roundB, "player-1", HandSize)
	assert.NotEqual(t, handA, handB, "hands should change between rounds")

	handC := DealHand(deck, roomID, roundA, "player-2", HandSize)
	assert.NotEqual(t, handA, handC, "hands should differ between players")
}
