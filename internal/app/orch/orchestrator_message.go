package orch

import (
	"context"

	"studyhall/internal/core"
	"studyhall/internal/domain"
)

// Send persists a user message and fans it out to everyone currently in
// the room, the sender included. Validation errors go back to the caller
// only; they are never broadcast.
func (o *Orchestrator) Send(ctx context.Context, sid core.SessionID, ms core.MemberSession, room domain.RoomCode, text string) error {
	msg, err := domain.NewUserMessage(room, ms.Identity(), text)
	if err != nil {
		return err
	}

	mu := o.roomLock(room)
	mu.Lock()
	defer mu.Unlock()

	o.persist(ctx, msg)

	if ch, ok := o.Channels.Get(room); ok {
		o.emit(ch, "", newMessageEvent(msg))
	}
	return nil
}

// Typing relays an ephemeral indicator to the room minus the typist.
// Nothing is persisted.
func (o *Orchestrator) Typing(sid core.SessionID, ms core.MemberSession, room domain.RoomCode, isTyping bool) {
	ch, ok := o.Channels.Get(room)
	if !ok {
		return
	}
	id := ms.Identity()
	o.emit(ch, sid, typingEvent{
		Type:     EventUserTyping,
		RoomCode: room,
		Username: id.Username,
		UserID:   id.UserID,
		IsTyping: isTyping,
	})
}
