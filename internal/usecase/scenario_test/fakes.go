// Package scenariotest plays full games against in-memory storage. The
// fakes enforce the same constraints the SQL schema does, so the
// cross-usecase behavior under test matches what postgres would decide.
package scenariotest

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/quipstack/core/internal/model"
	usecase_room "github.com/quipstack/core/internal/usecase/room"
	usecase_round "github.com/quipstack/core/internal/usecase/round"
)

type memStore struct {
	mu sync.Mutex

	rooms       map[uuid.UUID]model.Room
	byCode      map[string]uuid.UUID
	members     map[uuid.UUID]map[model.UserID]model.Member
	rounds      map[uuid.UUID]model.Round
	roundOrder  map[uuid.UUID][]uuid.UUID
	submissions map[uuid.UUID]map[uuid.UUID]model.Submission
	cards       []model.Card
}

func newMemStore(cards []model.Card) *memStore {
	return &memStore{
		rooms:       make(map[uuid.UUID]model.Room),
		byCode:      make(map[string]uuid.UUID),
		members:     make(map[uuid.UUID]map[model.UserID]model.Member),
		rounds:      make(map[uuid.UUID]model.Round),
		roundOrder:  make(map[uuid.UUID][]uuid.UUID),
		submissions: make(map[uuid.UUID]map[uuid.UUID]model.Submission),
		cards:       cards,
	}
}

func (s *memStore) CreateWithHost(ctx context.Context, room model.Room, host model.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byCode[room.Code]; taken {
		return usecase_room.ErrCodeConflict
	}
	s.rooms[room.ID] = room
	s.byCode[room.Code] = room.ID
	s.members[room.ID] = map[model.UserID]model.Member{host.UserID: host}
	return nil
}

func (s *memStore) ByCode(ctx context.Context, code string) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byCode[code]
	if !ok {
		return model.Room{}, usecase_room.ErrNotFound
	}
	return s.rooms[id], nil
}

func (s *memStore) ByID(ctx context.Context, roomID uuid.UUID) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return model.Room{}, usecase_room.ErrNotFound
	}
	return room, nil
}

func (s *memStore) UpsertMember(ctx context.Context, m model.Member) (model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.members[m.RoomID]
	if !ok {
		return model.Member{}, usecase_room.ErrNotFound
	}
	if existing, ok := set[m.UserID]; ok {
		existing.Role = m.Role
		set[m.UserID] = existing
		return existing, nil
	}
	set[m.UserID] = m
	return m, nil
}

func (s *memStore) Members(ctx context.Context, roomID uuid.UUID) ([]model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Member, 0, len(s.members[roomID]))
	for _, m := range s.members[roomID] {
		out = append(out, m)
	}
	return out, nil
}

func (s *memStore) HasSubmittingRound(ctx context.Context, roomID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasSubmittingLocked(roomID), nil
}

func (s *memStore) hasSubmittingLocked(roomID uuid.UUID) bool {
	for _, id := range s.roundOrder[roomID] {
		if s.rounds[id].State == model.StateSubmitting {
			return true
		}
	}
	return false
}

func (s *memStore) SetDeck(ctx context.Context, roomID uuid.UUID, deckID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return usecase_room.ErrNotFound
	}
	room.DeckID = deckID
	s.rooms[roomID] = room
	return nil
}

func (s *memStore) SetStatus(ctx context.Context, roomID uuid.UUID, status model.RoomStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return usecase_room.ErrNotFound
	}
	room.Status = status
	s.rooms[roomID] = room
	return nil
}

func (s *memStore) InsertSubmitting(ctx context.Context, round model.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasSubmittingLocked(round.RoomID) {
		return usecase_round.ErrActiveRound
	}
	s.rounds[round.ID] = round
	s.roundOrder[round.RoomID] = append(s.roundOrder[round.RoomID], round.ID)
	s.submissions[round.ID] = make(map[uuid.UUID]model.Submission)

	if room, ok := s.rooms[round.RoomID]; ok && room.Status == model.StatusOpen {
		room.Status = model.StatusInProgress
		s.rooms[round.RoomID] = room
	}
	return nil
}

func (s *memStore) RoundByID(ctx context.Context, roundID uuid.UUID) (model.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, ok := s.rounds[roundID]
	if !ok {
		return model.Round{}, usecase_round.ErrNotFound
	}
	return round, nil
}

func (s *memStore) LatestByRoom(ctx context.Context, roomID uuid.UUID) (model.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := s.roundOrder[roomID]
	if len(order) == 0 {
		return model.Round{}, usecase_round.ErrNotFound
	}
	return s.rounds[order[len(order)-1]], nil
}

func (s *memStore) InsertSubmission(ctx context.Context, sub model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.submissions[sub.RoundID]
	if !ok {
		return usecase_round.ErrNotFound
	}
	for _, existing := range set {
		if existing.PlayerID == sub.PlayerID {
			return usecase_round.ErrAlreadyPlayed
		}
	}
	set[sub.ID] = sub
	return nil
}

func (s *memStore) Submissions(ctx context.Context, roundID uuid.UUID) ([]model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Submission, 0, len(s.submissions[roundID]))
	for _, sub := range s.submissions[roundID] {
		out = append(out, sub)
	}
	return out, nil
}

func (s *memStore) CompleteAndScore(ctx context.Context, roundID, submissionID uuid.UUID) (model.Submission, model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, ok := s.rounds[roundID]
	if !ok {
		return model.Submission{}, model.Member{}, usecase_round.ErrNotFound
	}

	winner, ok := s.submissions[roundID][submissionID]
	if !ok {
		for _, subs := range s.submissions {
			if sub, found := subs[submissionID]; found {
				winner = sub
				ok = true
				break
			}
		}
		if !ok {
			return model.Submission{}, model.Member{}, usecase_round.ErrNotFound
		}
	}
	if winner.RoundID != roundID {
		return model.Submission{}, model.Member{}, usecase_round.ErrWrongRound
	}

	if round.State != model.StateSubmitting {
		return model.Submission{}, model.Member{}, usecase_round.ErrRoundComplete
	}
	round.State = model.StateComplete
	round.WinningSubmissionID = &submissionID
	s.rounds[roundID] = round

	member, ok := s.members[round.RoomID][winner.PlayerID]
	if !ok {
		return model.Submission{}, model.Member{}, usecase_round.ErrNotFound
	}
	member.Score++
	s.members[round.RoomID][winner.PlayerID] = member

	return winner, member, nil
}

func (s *memStore) ListCards(ctx context.Context, deckID string, kind model.CardKind, limit int) ([]model.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Card, 0)
	for _, c := range s.cards {
		if c.DeckID == deckID && c.Kind == kind {
			out = append(out, c)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// LatestRound is the sweep-side read: nil when the room has no rounds yet.
func (s *memStore) LatestRound(ctx context.Context, roomID uuid.UUID) (*model.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := s.roundOrder[roomID]
	if len(order) == 0 {
		return nil, nil
	}
	round := s.rounds[order[len(order)-1]]
	return &round, nil
}

// roundRepo narrows memStore to the round repository contract; ByID means
// "round by id" there, while memStore.ByID resolves rooms.
type roundRepo struct {
	*memStore
}

func (r roundRepo) ByID(ctx context.Context, roundID uuid.UUID) (model.Round, error) {
	return r.RoundByID(ctx, roundID)
}

// memBus fans published events out to every subscriber of the room, the
// same contract the redis bus provides.
type memBus struct {
	mu   sync.Mutex
	subs map[uuid.UUID][]chan model.ChangeEvent
}

func newMemBus() *memBus {
	return &memBus{subs: make(map[uuid.UUID][]chan model.ChangeEvent)}
}

func (b *memBus) Publish(roomID uuid.UUID, ev model.ChangeEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[roomID] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (b *memBus) Subscribe(roomID uuid.UUID) (<-chan model.ChangeEvent, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan model.ChangeEvent, 64)
	b.subs[roomID] = append(b.subs[roomID], ch)
	return ch, func() {}, nil
}

func starterDeck() []model.Card {
	cards := []model.Card{
		{ID: "prompt-001", DeckID: "starter", Kind: model.CardPrompt, Text: "Why did the chicken cross the road?"},
	}
	for i := 0; i < 12; i++ {
		cards = append(cards, model.Card{
			ID:     fmt.Sprintf("response-%03d", i),
			DeckID: "starter",
			Kind:   model.CardResponse,
			Text:   fmt.Sprintf("Answer number %d", i),
		})
	}
	return cards
}
