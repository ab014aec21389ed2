package model

import "github.com/google/uuid"

type RoundState = string

const (
	StateSubmitting RoundState = "submitting"
	StateComplete   RoundState = "complete"
)

// Round is one prompt-and-response cycle. A room has at most one round in
// the submitting state at a time; the storage layer enforces that.
type Round struct {
	ID                  uuid.UUID
	RoomID              uuid.UUID
	PromptCardID        string
	PromptText          string
	State               RoundState
	WinningSubmissionID *uuid.UUID
}

// Submission is a player's single response to the active round's prompt.
// At most one per (round, player), enforced by a storage constraint.
type Submission struct {
	ID       uuid.UUID
	RoundID  uuid.UUID
	PlayerID UserID
	Text     string
}
