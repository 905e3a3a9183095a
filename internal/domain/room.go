package domain

import "errors"

const (
	MinRoomCodeLen = 4
	MaxRoomCodeLen = 16

	MinCapacity = 1
	MaxCapacity = 40
)

var ErrBadRoomCode = errors.New("malformed room code")

// RoomCode identifies a room's live channel. It is distinct from the
// persisted metadata record in the store.
type RoomCode string

func ParseRoomCode(raw string) (RoomCode, error) {
	if len(raw) < MinRoomCodeLen || len(raw) > MaxRoomCodeLen {
		return "", ErrBadRoomCode
	}
	return RoomCode(raw), nil
}

// MemberPresence is one entry of a room's presence set. At most one exists
// per (room, user); Online=false means the last connection dropped without
// an explicit leave.
type MemberPresence struct {
	UserID   UserID `json:"userId"`
	Username string `json:"username"`
	Online   bool   `json:"online"`
}
