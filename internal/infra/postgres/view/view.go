// Package infra_postgres_view serves the reconciliation sweep: whole-row,
// whole-set reads that replace an observer's local state wholesale.
package infra_postgres_view

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/quipstack/core/internal/model"
)

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

func (d *Driver) Members(ctx context.Context, roomID uuid.UUID) ([]model.Member, error) {
	var rows []struct {
		ID     uuid.UUID `db:"id"`
		RoomID uuid.UUID `db:"room_id"`
		UserID string    `db:"user_id"`
		Role   string    `db:"role"`
		Score  int       `db:"score"`
	}

	query := `
		SELECT id, room_id, user_id, role, score
		FROM room_members
		WHERE room_id = $1
	`
	if err := d.db.SelectContext(ctx, &rows, query, roomID); err != nil {
		return nil, err
	}

	members := make([]model.Member, 0, len(rows))
	for _, r := range rows {
		members = append(members, model.Member{
			ID:     r.ID,
			RoomID: r.RoomID,
			UserID: model.UserID(r.UserID),
			Role:   r.Role,
			Score:  r.Score,
		})
	}
	return members, nil
}

// LatestRound reads the round as one row so the sweep can never mix an old
// prompt with a new state. nil means the room has not played yet.
func (d *Driver) LatestRound(ctx context.Context, roomID uuid.UUID) (*model.Round, error) {
	var row struct {
		ID                  uuid.UUID  `db:"id"`
		RoomID              uuid.UUID  `db:"room_id"`
		PromptCardID        string     `db:"prompt_card_id"`
		PromptText          string     `db:"prompt_text"`
		State               string     `db:"state"`
		WinningSubmissionID *uuid.UUID `db:"winning_submission_id"`
	}

	query := `
		SELECT id, room_id, prompt_card_id, prompt_text, state, winning_submission_id
		FROM rounds
		WHERE room_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	if err := d.db.GetContext(ctx, &row, query, roomID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &model.Round{
		ID:                  row.ID,
		RoomID:              row.RoomID,
		PromptCardID:        row.PromptCardID,
		PromptText:          row.PromptText,
		State:               row.State,
		WinningSubmissionID: row.WinningSubmissionID,
	}, nil
}

func (d *Driver) Submissions(ctx context.Context, roundID uuid.UUID) ([]model.Submission, error) {
	var rows []struct {
		ID       uuid.UUID `db:"id"`
		RoundID  uuid.UUID `db:"round_id"`
		PlayerID string    `db:"player_id"`
		Text     string    `db:"text"`
	}

	query := `
		SELECT id, round_id, player_id, text
		FROM submissions
		WHERE round_id = $1
	`
	if err := d.db.SelectContext(ctx, &rows, query, roundID); err != nil {
		return nil, err
	}

	subs := make([]model.Submission, 0, len(rows))
	for _, r := range rows {
		subs = append(subs, model.Submission{
			ID:       r.ID,
			RoundID:  r.RoundID,
			PlayerID: model.UserID(r.PlayerID),
			Text:     r.Text,
		})
	}
	return subs, nil
}
