package orch

import (
	"context"

	"github.com/rs/zerolog/log"

	"studyhall/internal/core"
	"studyhall/internal/domain"
)

// Join adds the connection to the room's fanout group and transitions the
// member online. Everyone in the room, the joiner included, receives the
// resulting member list; a "joined" notice goes to the others only when
// this is a first join, so reconnects stay quiet.
func (o *Orchestrator) Join(ctx context.Context, sid core.SessionID, ms core.MemberSession, room domain.RoomCode) []domain.MemberPresence {
	mu := o.roomLock(room)
	mu.Lock()
	defer mu.Unlock()

	ch := o.Channels.GetOrCreate(room)
	ch.Add(sid, ms)

	id := ms.Identity()
	first, members := o.Registry.Join(room, id, sid)

	o.emit(ch, "", newMemberListEvent(room, members))

	if first {
		sys := domain.NewSystemMessage(room, id.Username+" joined the room")
		o.persist(ctx, sys)
		o.emit(ch, sid, newMessageEvent(sys))
	}

	log.Info().Str("module", "app.orch").Str("room", string(room)).Str("user", string(id.UserID)).Bool("first", first).Msg("join handled")
	return members
}

// Leave is the explicit, user-initiated exit: the presence record is
// deleted outright, online or offline. Unknown members are a no-op.
func (o *Orchestrator) Leave(ctx context.Context, sid core.SessionID, ms core.MemberSession, room domain.RoomCode) {
	mu := o.roomLock(room)
	mu.Lock()
	defer mu.Unlock()

	ch, live := o.Channels.Get(room)
	if live {
		ch.Remove(sid)
	}

	username, removed, members := o.Registry.Leave(room, ms.Identity().UserID)
	if !removed {
		return
	}

	sys := domain.NewSystemMessage(room, username+" left the room")
	o.persist(ctx, sys)

	if live {
		o.emit(ch, "", newMessageEvent(sys))
		o.emit(ch, "", newMemberListEvent(room, members))
		if ch.Count() == 0 {
			o.Channels.Stop(room)
		}
	}
	if len(members) == 0 {
		o.forgetRoomLock(room)
	}
	log.Info().Str("module", "app.orch").Str("room", string(room)).Str("user", username).Msg("leave handled")
}

// Disconnect models an abrupt network loss: for every room bound to this
// connection the member goes offline but keeps its record, so the next
// join is a silent reconnect. A duplicate delivery finds no matching
// connection and does nothing.
func (o *Orchestrator) Disconnect(ctx context.Context, sid core.SessionID) {
	for _, room := range o.Registry.RoomsOf(sid) {
		mu := o.roomLock(room)
		mu.Lock()

		ch, live := o.Channels.Get(room)
		if live {
			ch.Remove(sid)
		}

		username, changed, members := o.Registry.Disconnect(room, sid)
		if changed {
			sys := domain.NewSystemMessage(room, username+" disconnected")
			o.persist(ctx, sys)
			if live {
				o.emit(ch, "", newMessageEvent(sys))
				o.emit(ch, "", newMemberListEvent(room, members))
			}
		}
		if live && ch.Count() == 0 {
			o.Channels.Stop(room)
		}

		mu.Unlock()
	}
}
