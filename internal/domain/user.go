// Package domain contains entities without logic, just meta-data.
package domain

import "errors"

const (
	MaxUsernameLen = 36
	GuestUsername  = "Guest"
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

type UserID string

// Identity is what a connection is bound to after the handshake.
// For authenticated users UserID is stable across reconnects; for guests
// it falls back to the connection's own id, so a guest is a new identity
// on every reconnect.
type Identity struct {
	UserID   UserID `json:"userId"`
	Username string `json:"username"`
}

func NewIdentity(userID UserID, username string) (Identity, error) {
	if len(username) == 0 {
		return Identity{}, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return Identity{}, ErrUsernameTooLong
	}
	return Identity{UserID: userID, Username: username}, nil
}
