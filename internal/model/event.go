package model

import "github.com/google/uuid"

type EntityKind = string

const (
	EntityMember     EntityKind = "member"
	EntityRound      EntityKind = "round"
	EntitySubmission EntityKind = "submission"
)

type ChangeKind = string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ChangeEvent mirrors one mutation to observers of a room. Delivery is
// best-effort: consumers must apply events idempotently and rely on the
// reconciliation sweep for anything the transport drops.
type ChangeEvent struct {
	Entity EntityKind `json:"entity"`
	Kind   ChangeKind `json:"kind"`
	RoomID uuid.UUID  `json:"room_id"`

	// Exactly one of these carries the new full row (nil for deletes of
	// entities whose id is enough; then only the ID fields below are set).
	Member     *Member     `json:"member,omitempty"`
	Round      *Round      `json:"round,omitempty"`
	Submission *Submission `json:"submission,omitempty"`
}

func MemberChanged(kind ChangeKind, m Member) ChangeEvent {
	return ChangeEvent{Entity: EntityMember, Kind: kind, RoomID: m.RoomID, Member: &m}
}

func RoundChanged(kind ChangeKind, r Round) ChangeEvent {
	return ChangeEvent{Entity: EntityRound, Kind: kind, RoomID: r.RoomID, Round: &r}
}

func SubmissionChanged(kind ChangeKind, roomID uuid.UUID, s Submission) ChangeEvent {
	return ChangeEvent{Entity: EntitySubmission, Kind: kind, RoomID: roomID, Submission: &s}
}
