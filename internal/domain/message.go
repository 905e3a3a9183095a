package domain

import (
	"errors"
	"strings"
	"time"
)

const (
	MessageUser   = "user"
	MessageSystem = "system"

	MaxMessageLen = 2000
)

var (
	ErrMessageEmpty   = errors.New("message empty")
	ErrMessageTooLong = errors.New("message too long")

	SystemAuthor = "System"
)

// Message is immutable once written; the log deletes it only by retention
// trimming.
type Message struct {
	RoomCode  RoomCode  `json:"-"`
	Author    string    `json:"author"`
	UserID    UserID    `json:"userId"`
	Text      string    `json:"text"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Time is the display form kept for clients alongside Timestamp.
func (m Message) Time() string { return m.Timestamp.Format("3:04:05 PM") }

func NewUserMessage(room RoomCode, from Identity, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrMessageEmpty
	}
	if len(text) > MaxMessageLen {
		return Message{}, ErrMessageTooLong
	}
	return Message{
		RoomCode:  room,
		Author:    from.Username,
		UserID:    from.UserID,
		Text:      text,
		Type:      MessageUser,
		Timestamp: time.Now(),
	}, nil
}

// NewSystemMessage is synthesized by the orchestrator, never by a member.
func NewSystemMessage(room RoomCode, text string) Message {
	return Message{
		RoomCode:  room,
		Author:    SystemAuthor,
		Text:      text,
		Type:      MessageSystem,
		Timestamp: time.Now(),
	}
}
