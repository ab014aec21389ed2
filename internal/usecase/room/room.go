package usecase_room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/quipstack/core/internal/model"
	"github.com/quipstack/core/internal/roomcode"
)

var (
	ErrNotFound           = errors.New("room not found")
	ErrCodeConflict       = errors.New("room code conflict")
	ErrCodeSpaceExhausted = errors.New("room code space exhausted")
	ErrActiveRound        = errors.New("a round is still submitting")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrRoomClosed         = errors.New("room is closed")
	ErrInternal           = errors.New("internal error")
)

//go:generate mockery --name=RoomRepository --output=./mocks/repository --filename=repository.go
type RoomRepository interface {
	// CreateWithHost inserts the room and its host member atomically.
	// Returns ErrCodeConflict when the code is already taken.
	CreateWithHost(ctx context.Context, room model.Room, host model.Member) error
	ByCode(ctx context.Context, code string) (model.Room, error)
	ByID(ctx context.Context, roomID uuid.UUID) (model.Room, error)
	// UpsertMember inserts the (room, user) pair or updates the role in
	// place; the returned member carries the surviving id and score.
	UpsertMember(ctx context.Context, m model.Member) (model.Member, error)
	Members(ctx context.Context, roomID uuid.UUID) ([]model.Member, error)
	HasSubmittingRound(ctx context.Context, roomID uuid.UUID) (bool, error)
	SetDeck(ctx context.Context, roomID uuid.UUID, deckID string) error
	SetStatus(ctx context.Context, roomID uuid.UUID, status model.RoomStatus) error
}

//go:generate mockery --name=EventBus --output=./mocks/bus --filename=bus.go
type EventBus interface {
	Publish(roomID uuid.UUID, ev model.ChangeEvent) error
}

const createAttempts = 3

type Usecase struct {
	rooms  RoomRepository
	bus    EventBus
	logger *slog.Logger
}

func New(rooms RoomRepository, bus EventBus) *Usecase {
	return &Usecase{
		rooms:  rooms,
		bus:    bus,
		logger: slog.Default(),
	}
}

// Create books a fresh room with the caller as host. Codes collide under
// load, so the insert is retried with new codes up to createAttempts times
// before giving up with ErrCodeSpaceExhausted.
func (u *Usecase) Create(ctx context.Context, hostID model.UserID, deckID string) (model.Room, error) {
	if hostID == model.EmptyUserID {
		return model.Room{}, ErrPermissionDenied
	}

	for range createAttempts {
		room := model.Room{
			ID:     uuid.New(),
			Code:   roomcode.Generate(),
			Status: model.StatusOpen,
			HostID: hostID,
			DeckID: deckID,
		}
		host := model.Member{
			ID:     uuid.New(),
			RoomID: room.ID,
			UserID: hostID,
			Role:   model.RoleHost,
		}

		err := u.rooms.CreateWithHost(ctx, room, host)
		if errors.Is(err, ErrCodeConflict) {
			continue
		}
		if err != nil {
			return model.Room{}, errors.Join(ErrInternal, err)
		}

		u.publish(room.ID, model.MemberChanged(model.ChangeInsert, host))
		return room, nil
	}

	return model.Room{}, ErrCodeSpaceExhausted
}

func (u *Usecase) ResolveByCode(ctx context.Context, code string) (model.Room, error) {
	room, err := u.rooms.ByCode(ctx, roomcode.Normalize(code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Room{}, ErrNotFound
		}
		return model.Room{}, errors.Join(ErrInternal, err)
	}
	return room, nil
}

func (u *Usecase) Room(ctx context.Context, roomID uuid.UUID) (model.Room, error) {
	room, err := u.rooms.ByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Room{}, ErrNotFound
		}
		return model.Room{}, errors.Join(ErrInternal, err)
	}
	return room, nil
}

// Join upserts the (room, user) membership. The room's host always keeps
// the host role no matter what the caller asked for, and nobody else may
// claim it; that invariant is re-checked here on every role change.
func (u *Usecase) Join(ctx context.Context, code string, userID model.UserID, role model.Role) (model.Member, error) {
	if userID == model.EmptyUserID {
		return model.Member{}, ErrPermissionDenied
	}

	room, err := u.ResolveByCode(ctx, code)
	if err != nil {
		return model.Member{}, err
	}
	if room.Status == model.StatusClosed {
		return model.Member{}, ErrRoomClosed
	}

	if role == "" {
		role = model.RolePlayer
	}
	if room.HostID == userID {
		role = model.RoleHost
	} else if role == model.RoleHost {
		return model.Member{}, ErrPermissionDenied
	}

	member, err := u.rooms.UpsertMember(ctx, model.Member{
		ID:     uuid.New(),
		RoomID: room.ID,
		UserID: userID,
		Role:   role,
	})
	if err != nil {
		return model.Member{}, errors.Join(ErrInternal, err)
	}

	u.publish(room.ID, model.MemberChanged(model.ChangeInsert, member))
	return member, nil
}

func (u *Usecase) Members(ctx context.Context, roomID uuid.UUID) ([]model.Member, error) {
	members, err := u.rooms.Members(ctx, roomID)
	if err != nil {
		return nil, errors.Join(ErrInternal, err)
	}
	return members, nil
}

// SetDeck swaps the room's deck. Only the host may do it, and only while
// no round is collecting submissions.
func (u *Usecase) SetDeck(ctx context.Context, code string, requester model.UserID, deckID string) error {
	room, err := u.ResolveByCode(ctx, code)
	if err != nil {
		return err
	}
	if room.HostID != requester {
		return ErrPermissionDenied
	}

	active, err := u.rooms.HasSubmittingRound(ctx, room.ID)
	if err != nil {
		return errors.Join(ErrInternal, err)
	}
	if active {
		return ErrActiveRound
	}

	if err := u.rooms.SetDeck(ctx, room.ID, deckID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Join(ErrInternal, err)
	}
	return nil
}

// Close ends the session. Rounds of a closed room are invalidated by the
// storage cascade; observers see the status change on their next sweep.
func (u *Usecase) Close(ctx context.Context, code string, requester model.UserID) error {
	room, err := u.ResolveByCode(ctx, code)
	if err != nil {
		return err
	}
	if room.HostID != requester {
		return ErrPermissionDenied
	}

	if err := u.rooms.SetStatus(ctx, room.ID, model.StatusClosed); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Join(ErrInternal, err)
	}
	return nil
}

// Push delivery is an optimization; the sweep repairs anything lost here,
// so publish failures are logged and swallowed.
func (u *Usecase) publish(roomID uuid.UUID, ev model.ChangeEvent) {
	if err := u.bus.Publish(roomID, ev); err != nil {
		u.logger.Error("failed to publish change event",
			slog.String("room_id", roomID.String()),
			slog.String("entity", ev.Entity),
			slog.String("error", err.Error()))
	}
}
