package core

import "studyhall/internal/domain"

// Frame is a raw outbound payload, already encoded for the wire.
type Frame []byte

// SessionID identifies one live connection. It is ephemeral: a reconnect
// gets a fresh id.
type SessionID string

// SignalConnection abstracts the messaging transport endpoint.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds an identity and its transport endpoint.
// This is what a channel stores and fans out to.
type MemberSession interface {
	Identity() domain.Identity
	Signal() SignalConnection
}

// PublishResult reports delivery stats and backpressure to the orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped []SessionID
}

// Channel is the live fan-out group for one room code: the set of
// connections that currently receive that room's events. Membership here is
// connection-level and transient; durable presence lives in app.Registry.
type Channel interface {
	Add(sid SessionID, ms MemberSession)
	Get(sid SessionID) (MemberSession, bool)
	Remove(sid SessionID)
	Count() int

	// Emit delivers a frame to every connection in the group, best-effort
	// per connection. EmitExcept skips one connection.
	Emit(f Frame) PublishResult
	EmitExcept(f Frame, except SessionID) PublishResult
}

type ChannelInfo struct {
	Room  domain.RoomCode `json:"room"`
	Count int             `json:"count"`
}

type ChannelManager interface {
	GetOrCreate(room domain.RoomCode) Channel
	Get(room domain.RoomCode) (Channel, bool)
	List() []ChannelInfo
	Stop(room domain.RoomCode)
}
