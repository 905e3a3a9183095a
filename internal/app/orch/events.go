package orch

import (
	"encoding/json"

	"studyhall/internal/core"
	"studyhall/internal/domain"
)

// Wire events delivered to clients. Every frame carries a "type"
// discriminator.
const (
	EventReceiveMessage = "receive_message"
	EventRoomMembers    = "room_members"
	EventUserTyping     = "user_typing"
)

// wireMessage adds the display time alongside the raw timestamp.
type wireMessage struct {
	domain.Message
	Time string `json:"time"`
}

type messageEvent struct {
	Type     string          `json:"type"`
	RoomCode domain.RoomCode `json:"roomCode"`
	Message  wireMessage     `json:"message"`
}

type memberListEvent struct {
	Type     string                  `json:"type"`
	RoomCode domain.RoomCode         `json:"roomCode"`
	Members  []domain.MemberPresence `json:"members"`
}

type typingEvent struct {
	Type     string          `json:"type"`
	RoomCode domain.RoomCode `json:"roomCode"`
	Username string          `json:"username"`
	UserID   domain.UserID   `json:"userId"`
	IsTyping bool            `json:"isTyping"`
}

func newMessageEvent(m domain.Message) messageEvent {
	return messageEvent{
		Type:     EventReceiveMessage,
		RoomCode: m.RoomCode,
		Message:  wireMessage{Message: m, Time: m.Time()},
	}
}

func newMemberListEvent(room domain.RoomCode, members []domain.MemberPresence) memberListEvent {
	return memberListEvent{Type: EventRoomMembers, RoomCode: room, Members: members}
}

func encode(ev any) (core.Frame, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return core.Frame(b), nil
}
