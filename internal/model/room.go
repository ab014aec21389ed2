package model

import "github.com/google/uuid"

type RoomStatus = string

const (
	StatusOpen       RoomStatus = "open"
	StatusInProgress RoomStatus = "in_progress"
	StatusClosed     RoomStatus = "closed"
)

// Room is a joinable game session. The code is what humans type; it is
// immutable for the life of the room and unique among live rooms.
type Room struct {
	ID     uuid.UUID
	Code   string
	Status RoomStatus
	HostID UserID
	DeckID string
}

type Role = string

const (
	RoleHost      Role = "host"
	RolePlayer    Role = "player"
	RoleSpectator Role = "spectator"
)

// Member is the (room, user) pair. There is exactly one row per pair;
// re-joining updates the role in place. Score never decreases.
type Member struct {
	ID     uuid.UUID
	RoomID uuid.UUID
	UserID UserID
	Role   Role
	Score  int
}
