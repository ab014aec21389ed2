package infra_postgres_round

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/quipstack/core/internal/model"
	usecase_round "github.com/quipstack/core/internal/usecase/round"
)

const pgUniqueViolation = "23505"

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type roundDTO struct {
	ID                  uuid.UUID  `db:"id"`
	RoomID              uuid.UUID  `db:"room_id"`
	PromptCardID        string     `db:"prompt_card_id"`
	PromptText          string     `db:"prompt_text"`
	State               string     `db:"state"`
	WinningSubmissionID *uuid.UUID `db:"winning_submission_id"`
}

type submissionDTO struct {
	ID       uuid.UUID `db:"id"`
	RoundID  uuid.UUID `db:"round_id"`
	PlayerID string    `db:"player_id"`
	Text     string    `db:"text"`
}

// InsertSubmitting creates the round only when the room has no submitting
// round. The NOT EXISTS guard and the partial unique index both enforce it,
// so two racing starts cannot both commit.
func (d *Driver) InsertSubmitting(ctx context.Context, round model.Round) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	insert := `
		INSERT INTO rounds (id, room_id, prompt_card_id, prompt_text, state)
		SELECT $1, $2, $3, $4, 'submitting'
		WHERE NOT EXISTS (
			SELECT 1 FROM rounds WHERE room_id = $2 AND state = 'submitting'
		)
	`
	result, err := tx.ExecContext(ctx, insert,
		round.ID, round.RoomID, round.PromptCardID, round.PromptText)
	if err != nil {
		if isUniqueViolation(err) {
			return usecase_round.ErrActiveRound
		}
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return usecase_round.ErrActiveRound
	}

	markInProgress := `
		UPDATE rooms
		SET status = 'in_progress'
		WHERE id = $1 AND status = 'open'
	`
	if _, err := tx.ExecContext(ctx, markInProgress, round.RoomID); err != nil {
		return err
	}

	return tx.Commit()
}

func (d *Driver) ByID(ctx context.Context, roundID uuid.UUID) (model.Round, error) {
	var round roundDTO

	query := `
		SELECT id, room_id, prompt_card_id, prompt_text, state, winning_submission_id
		FROM rounds
		WHERE id = $1
	`
	if err := d.db.GetContext(ctx, &round, query, roundID); err != nil {
		if err == sql.ErrNoRows {
			return model.Round{}, usecase_round.ErrNotFound
		}
		return model.Round{}, err
	}

	return round.toModel(), nil
}

func (d *Driver) LatestByRoom(ctx context.Context, roomID uuid.UUID) (model.Round, error) {
	var round roundDTO

	query := `
		SELECT id, room_id, prompt_card_id, prompt_text, state, winning_submission_id
		FROM rounds
		WHERE room_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	if err := d.db.GetContext(ctx, &round, query, roomID); err != nil {
		if err == sql.ErrNoRows {
			return model.Round{}, usecase_round.ErrNotFound
		}
		return model.Round{}, err
	}

	return round.toModel(), nil
}

func (d *Driver) InsertSubmission(ctx context.Context, sub model.Submission) error {
	query := `
		INSERT INTO submissions (id, round_id, player_id, text)
		VALUES ($1, $2, $3, $4)
	`
	_, err := d.db.ExecContext(ctx, query,
		sub.ID, sub.RoundID, string(sub.PlayerID), sub.Text)
	if err != nil {
		if isUniqueViolation(err) {
			return usecase_round.ErrAlreadyPlayed
		}
		return err
	}
	return nil
}

func (d *Driver) Submissions(ctx context.Context, roundID uuid.UUID) ([]model.Submission, error) {
	var rows []submissionDTO

	query := `
		SELECT id, round_id, player_id, text
		FROM submissions
		WHERE round_id = $1
		ORDER BY created_at
	`
	if err := d.db.SelectContext(ctx, &rows, query, roundID); err != nil {
		return nil, err
	}

	subs := make([]model.Submission, 0, len(rows))
	for _, r := range rows {
		subs = append(subs, r.toModel())
	}
	return subs, nil
}

// CompleteAndScore is the single-completion choke point: the conditional
// UPDATE on state = 'submitting' decides the race, and the score increment
// rides the same transaction so a committed winner always means exactly one
// point.
func (d *Driver) CompleteAndScore(ctx context.Context, roundID, submissionID uuid.UUID) (model.Submission, model.Member, error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Submission{}, model.Member{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var winner submissionDTO
	getWinner := `
		SELECT id, round_id, player_id, text
		FROM submissions
		WHERE id = $1
	`
	if err := tx.GetContext(ctx, &winner, getWinner, submissionID); err != nil {
		if err == sql.ErrNoRows {
			return model.Submission{}, model.Member{}, usecase_round.ErrNotFound
		}
		return model.Submission{}, model.Member{}, err
	}
	if winner.RoundID != roundID {
		return model.Submission{}, model.Member{}, usecase_round.ErrWrongRound
	}

	complete := `
		UPDATE rounds
		SET state = 'complete', winning_submission_id = $1
		WHERE id = $2 AND state = 'submitting'
	`
	result, err := tx.ExecContext(ctx, complete, submissionID, roundID)
	if err != nil {
		return model.Submission{}, model.Member{}, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return model.Submission{}, model.Member{}, err
	}
	if rowsAffected == 0 {
		return model.Submission{}, model.Member{}, usecase_round.ErrRoundComplete
	}

	var member struct {
		ID     uuid.UUID `db:"id"`
		RoomID uuid.UUID `db:"room_id"`
		UserID string    `db:"user_id"`
		Role   string    `db:"role"`
		Score  int       `db:"score"`
	}
	award := `
		UPDATE room_members
		SET score = score + 1
		WHERE room_id = (SELECT room_id FROM rounds WHERE id = $1)
		  AND user_id = $2
		RETURNING id, room_id, user_id, role, score
	`
	if err := tx.GetContext(ctx, &member, award, roundID, winner.PlayerID); err != nil {
		if err == sql.ErrNoRows {
			return model.Submission{}, model.Member{}, usecase_round.ErrNotFound
		}
		return model.Submission{}, model.Member{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Submission{}, model.Member{}, err
	}

	return winner.toModel(), model.Member{
		ID:     member.ID,
		RoomID: member.RoomID,
		UserID: model.UserID(member.UserID),
		Role:   member.Role,
		Score:  member.Score,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation
}

func (r roundDTO) toModel() model.Round {
	return model.Round{
		ID:                  r.ID,
		RoomID:              r.RoomID,
		PromptCardID:        r.PromptCardID,
		PromptText:          r.PromptText,
		State:               r.State,
		WinningSubmissionID: r.WinningSubmissionID,
	}
}

func (s submissionDTO) toModel() model.Submission {
	return model.Submission{
		ID:       s.ID,
		RoundID:  s.RoundID,
		PlayerID: model.UserID(s.PlayerID),
		Text:     s.Text,
	}
}
