package usecase_round

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"
	"github.com/quipstack/core/internal/model"
)

var (
	ErrNotFound         = errors.New("round not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrActiveRound      = errors.New("previous round is still submitting")
	ErrRoundComplete    = errors.New("round is not accepting this operation")
	ErrAlreadyPlayed    = errors.New("already played this round")
	ErrWrongRound       = errors.New("submission belongs to another round")
	ErrNoPromptCards    = errors.New("deck has no prompt cards")
	ErrInternal         = errors.New("internal error")
)

//go:generate mockery --name=RoundRepository --output=./mocks/repository --filename=repository.go
type RoundRepository interface {
	// InsertSubmitting creates the round iff the room has no round in the
	// submitting state; the guard is evaluated by the write itself.
	// Returns ErrActiveRound when one exists.
	InsertSubmitting(ctx context.Context, round model.Round) error
	ByID(ctx context.Context, roundID uuid.UUID) (model.Round, error)
	LatestByRoom(ctx context.Context, roomID uuid.UUID) (model.Round, error)
	// InsertSubmission returns ErrAlreadyPlayed on the (round, player)
	// uniqueness constraint.
	InsertSubmission(ctx context.Context, sub model.Submission) error
	Submissions(ctx context.Context, roundID uuid.UUID) ([]model.Submission, error)
	// CompleteAndScore transitions the round to complete and increments the
	// winner's score in one transaction. Returns ErrRoundComplete when the
	// round was already completed, ErrWrongRound when the submission is not
	// part of it. The returned member carries the post-increment score.
	CompleteAndScore(ctx context.Context, roundID, submissionID uuid.UUID) (model.Submission, model.Member, error)
}

//go:generate mockery --name=RoomReader --output=./mocks/roomreader --filename=roomreader.go
type RoomReader interface {
	ByID(ctx context.Context, roomID uuid.UUID) (model.Room, error)
}

// CardCatalog is the read-only deck store collaborator. limit <= 0 means
// all cards of that kind.
//
//go:generate mockery --name=CardCatalog --output=./mocks/catalog --filename=catalog.go
type CardCatalog interface {
	ListCards(ctx context.Context, deckID string, kind model.CardKind, limit int) ([]model.Card, error)
}

//go:generate mockery --name=EventBus --output=./mocks/bus --filename=bus.go
type EventBus interface {
	Publish(roomID uuid.UUID, ev model.ChangeEvent) error
}

// HandSize is how many response cards each player is offered per round.
const HandSize = 3

type Usecase struct {
	rounds  RoundRepository
	rooms   RoomReader
	catalog CardCatalog
	bus     EventBus
	logger  *slog.Logger
}

func New(rounds RoundRepository, rooms RoomReader, catalog CardCatalog, bus EventBus) *Usecase {
	return &Usecase{
		rounds:  rounds,
		rooms:   rooms,
		catalog: catalog,
		bus:     bus,
		logger:  slog.Default(),
	}
}

// Start opens a new round for the room, drawing a random prompt from the
// room's deck. Host-only. The round-insert event is the signal observers
// use to reset per-round state (hand, "my submission"); see usecase_sync.
func (u *Usecase) Start(ctx context.Context, roomID uuid.UUID, requester model.UserID) (model.Round, error) {
	room, err := u.rooms.ByID(ctx, roomID)
	if err != nil {
		return model.Round{}, err
	}
	if room.HostID != requester {
		return model.Round{}, ErrPermissionDenied
	}

	prompts, err := u.catalog.ListCards(ctx, room.DeckID, model.CardPrompt, 0)
	if err != nil {
		return model.Round{}, errors.Join(ErrInternal, err)
	}
	if len(prompts) == 0 {
		return model.Round{}, ErrNoPromptCards
	}
	prompt := prompts[rand.Intn(len(prompts))]

	round := model.Round{
		ID:           uuid.New(),
		RoomID:       roomID,
		PromptCardID: prompt.ID,
		PromptText:   prompt.Text,
		State:        model.StateSubmitting,
	}
	if err := u.rounds.InsertSubmitting(ctx, round); err != nil {
		if errors.Is(err, ErrActiveRound) {
			return model.Round{}, ErrActiveRound
		}
		return model.Round{}, errors.Join(ErrInternal, err)
	}

	u.publish(roomID, model.RoundChanged(model.ChangeInsert, round))
	return round, nil
}

// Submit records the player's single response for the round. Duplicate
// submits surface as ErrAlreadyPlayed, an expected and user-recoverable
// condition, enforced by the storage constraint rather than a
// check-then-write.
func (u *Usecase) Submit(ctx context.Context, roundID uuid.UUID, playerID model.UserID, text string) (model.Submission, error) {
	if playerID == model.EmptyUserID {
		return model.Submission{}, ErrPermissionDenied
	}

	round, err := u.rounds.ByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Submission{}, ErrNotFound
		}
		return model.Submission{}, errors.Join(ErrInternal, err)
	}
	if round.State != model.StateSubmitting {
		return model.Submission{}, ErrRoundComplete
	}

	sub := model.Submission{
		ID:       uuid.New(),
		RoundID:  roundID,
		PlayerID: playerID,
		Text:     text,
	}
	if err := u.rounds.InsertSubmission(ctx, sub); err != nil {
		if errors.Is(err, ErrAlreadyPlayed) {
			return model.Submission{}, ErrAlreadyPlayed
		}
		return model.Submission{}, errors.Join(ErrInternal, err)
	}

	u.publish(round.RoomID, model.SubmissionChanged(model.ChangeInsert, round.RoomID, sub))
	return sub, nil
}

// PickWinner completes the round and awards the point, atomically from the
// caller's point of view: of two racing calls, exactly one commits and the
// other gets ErrRoundComplete. Host-only.
func (u *Usecase) PickWinner(ctx context.Context, roundID uuid.UUID, requester model.UserID, submissionID uuid.UUID) (model.Round, error) {
	round, err := u.rounds.ByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Round{}, ErrNotFound
		}
		return model.Round{}, errors.Join(ErrInternal, err)
	}

	room, err := u.rooms.ByID(ctx, round.RoomID)
	if err != nil {
		return model.Round{}, errors.Join(ErrInternal, err)
	}
	if room.HostID != requester {
		return model.Round{}, ErrPermissionDenied
	}

	_, winner, err := u.rounds.CompleteAndScore(ctx, roundID, submissionID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRoundComplete), errors.Is(err, ErrWrongRound), errors.Is(err, ErrNotFound):
			return model.Round{}, err
		default:
			return model.Round{}, errors.Join(ErrInternal, err)
		}
	}

	round.State = model.StateComplete
	round.WinningSubmissionID = &submissionID
	u.publish(round.RoomID, model.RoundChanged(model.ChangeUpdate, round))
	u.publish(round.RoomID, model.MemberChanged(model.ChangeUpdate, winner))
	return round, nil
}

// Latest returns the room's newest round, submissions included when it is
// still collecting them.
func (u *Usecase) Latest(ctx context.Context, roomID uuid.UUID) (model.Round, []model.Submission, error) {
	round, err := u.rounds.LatestByRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Round{}, nil, ErrNotFound
		}
		return model.Round{}, nil, errors.Join(ErrInternal, err)
	}

	subs, err := u.rounds.Submissions(ctx, round.ID)
	if err != nil {
		return model.Round{}, nil, errors.Join(ErrInternal, err)
	}
	return round, subs, nil
}

// Hand deals the player's response cards for the room's latest round. The
// deal is a pure function of (deck, room, round, player), so a re-fetch
// after a reconnect or sweep never changes a hand mid-round.
func (u *Usecase) Hand(ctx context.Context, roomID uuid.UUID, playerID model.UserID) ([]model.Card, error) {
	if playerID == model.EmptyUserID {
		return nil, ErrPermissionDenied
	}

	room, err := u.rooms.ByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	round, err := u.rounds.LatestByRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrInternal, err)
	}

	responses, err := u.catalog.ListCards(ctx, room.DeckID, model.CardResponse, 0)
	if err != nil {
		return nil, errors.Join(ErrInternal, err)
	}

	return DealHand(responses, roomID, round.ID, playerID, HandSize), nil
}

func (u *Usecase) publish(roomID uuid.UUID, ev model.ChangeEvent) {
	if err := u.bus.Publish(roomID, ev); err != nil {
		u.logger.Error("failed to publish change event",
			slog.String("room_id", roomID.String()),
			slog.String("entity", ev.Entity),
			slog.String("error", err.Error()))
	}
}
