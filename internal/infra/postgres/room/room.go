package infra_postgres_room

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/quipstack/core/internal/model"
	usecase_room "github.com/quipstack/core/internal/usecase/room"
)

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type roomDTO struct {
	ID     uuid.UUID `db:"id"`
	Code   string    `db:"code"`
	Status string    `db:"status"`
	HostID string    `db:"host_id"`
	DeckID string    `db:"deck_id"`
}

type memberDTO struct {
	ID     uuid.UUID `db:"id"`
	RoomID uuid.UUID `db:"room_id"`
	UserID string    `db:"user_id"`
	Role   string    `db:"role"`
	Score  int       `db:"score"`
}

func (d *Driver) CreateWithHost(ctx context.Context, room model.Room, host model.Member) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	insertRoom := `
		INSERT INTO rooms (id, code, status, host_id, deck_id)
		VALUES (:id, :code, :status, :host_id, :deck_id)
	`
	_, err = tx.NamedExecContext(ctx, insertRoom, roomDTO{
		ID:     room.ID,
		Code:   room.Code,
		Status: room.Status,
		HostID: string(room.HostID),
		DeckID: room.DeckID,
	})
	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") ||
			strings.Contains(err.Error(), "duplicate key") {
			return usecase_room.ErrCodeConflict
		}
		return err
	}

	insertHost := `
		INSERT INTO room_members (id, room_id, user_id, role, score)
		VALUES (:id, :room_id, :user_id, :role, 0)
	`
	_, err = tx.NamedExecContext(ctx, insertHost, memberDTO{
		ID:     host.ID,
		RoomID: host.RoomID,
		UserID: string(host.UserID),
		Role:   host.Role,
	})
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (d *Driver) ByCode(ctx context.Context, code string) (model.Room, error) {
	var room roomDTO

	query := `
		SELECT id, code, status, host_id, deck_id
		FROM rooms
		WHERE code = $1
	`
	if err := d.db.GetContext(ctx, &room, query, code); err != nil {
		if err == sql.ErrNoRows {
			return model.Room{}, usecase_room.ErrNotFound
		}
		return model.Room{}, err
	}

	return room.toModel(), nil
}

func (d *Driver) ByID(ctx context.Context, roomID uuid.UUID) (model.Room, error) {
	var room roomDTO

	query := `
		SELECT id, code, status, host_id, deck_id
		FROM rooms
		WHERE id = $1
	`
	if err := d.db.GetContext(ctx, &room, query, roomID); err != nil {
		if err == sql.ErrNoRows {
			return model.Room{}, usecase_room.ErrNotFound
		}
		return model.Room{}, err
	}

	return room.toModel(), nil
}

// UpsertMember keeps exactly one row per (room, user): a re-join updates
// the role and leaves the accumulated score alone.
func (d *Driver) UpsertMember(ctx context.Context, m model.Member) (model.Member, error) {
	var out memberDTO

	query := `
		INSERT INTO room_members (id, room_id, user_id, role, score)
		VALUES ($1, $2, $3, $4, 0)
		ON CONFLICT (room_id, user_id)
		DO UPDATE SET role = EXCLUDED.role
		RETURNING id, room_id, user_id, role, score
	`
	err := d.db.GetContext(ctx, &out, query, m.ID, m.RoomID, string(m.UserID), m.Role)
	if err != nil {
		return model.Member{}, err
	}

	return out.toModel(), nil
}

func (d *Driver) Members(ctx context.Context, roomID uuid.UUID) ([]model.Member, error) {
	var rows []memberDTO

	query := `
		SELECT id, room_id, user_id, role, score
		FROM room_members
		WHERE room_id = $1
		ORDER BY user_id
	`
	if err := d.db.SelectContext(ctx, &rows, query, roomID); err != nil {
		return nil, err
	}

	members := make([]model.Member, 0, len(rows))
	for _, r := range rows {
		members = append(members, r.toModel())
	}
	return members, nil
}

func (d *Driver) HasSubmittingRound(ctx context.Context, roomID uuid.UUID) (bool, error) {
	var active bool

	query := `
		SELECT EXISTS (
			SELECT 1 FROM rounds WHERE room_id = $1 AND state = 'submitting'
		)
	`
	if err := d.db.GetContext(ctx, &active, query, roomID); err != nil {
		return false, err
	}
	return active, nil
}

func (d *Driver) SetDeck(ctx context.Context, roomID uuid.UUID, deckID string) error {
	query := `
		UPDATE rooms
		SET deck_id = $1
		WHERE id = $2
	`
	result, err := d.db.ExecContext(ctx, query, deckID, roomID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return usecase_room.ErrNotFound
	}
	return nil
}

func (d *Driver) SetStatus(ctx context.Context, roomID uuid.UUID, status model.RoomStatus) error {
	query := `
		UPDATE rooms
		SET status = $1
		WHERE id = $2
	`
	result, err := d.db.ExecContext(ctx, query, status, roomID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return usecase_room.ErrNotFound
	}
	return nil
}

func (r roomDTO) toModel() model.Room {
	return model.Room{
		ID:     r.ID,
		Code:   r.Code,
		Status: r.Status,
		HostID: model.UserID(r.HostID),
		DeckID: r.DeckID,
	}
}

func (m memberDTO) toModel() model.Member {
	return model.Member{
		ID:     m.ID,
		RoomID: m.RoomID,
		UserID: model.UserID(m.UserID),
		Role:   m.Role,
		Score:  m.Score,
	}
}
