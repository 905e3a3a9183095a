package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"studyhall/internal/core"
	"studyhall/internal/domain"
)

// memberRecord is the registry's mutable presence entry for one
// (room, user) pair. ConnID is empty whenever Online is false.
type memberRecord struct {
	UserID   domain.UserID
	Username string
	Online   bool
	ConnID   core.SessionID
}

// RoomStats is the read-only per-room view exposed for operational
// visibility.
type RoomStats struct {
	TotalMembers  int                     `json:"totalMembers"`
	OnlineMembers int                     `json:"onlineMembers"`
	Members       []domain.MemberPresence `json:"members"`
}

// Registry owns in-process presence state: which members belong to each
// room and whether they currently hold a live connection. A disconnect
// keeps the record as offline so a flaky connection can recover; only an
// explicit leave removes it. Member order is insertion order.
//
// Only the orchestrator mutates the registry, through Join, Disconnect,
// Leave.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomCode][]*memberRecord
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.RoomCode][]*memberRecord)}
}

// Join transitions (room, user) to online, binding the given connection.
// It reports whether this was a first join (no record existed) as opposed
// to a reconnect; callers synthesize a "joined" notice only on first join.
// The returned slice is the full member list after the mutation.
func (r *Registry) Join(room domain.RoomCode, id domain.Identity, sid core.SessionID) (first bool, members []domain.MemberPresence) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.find(room, id.UserID)
	if rec == nil {
		r.rooms[room] = append(r.rooms[room], &memberRecord{
			UserID:   id.UserID,
			Username: id.Username,
			Online:   true,
			ConnID:   sid,
		})
		log.Info().Str("module", "app.registry").Str("room", string(room)).Str("user", string(id.UserID)).Msg("member joined")
		return true, r.snapshot(room)
	}

	// Reconnect (or a repeated join from the same connection): overwrite
	// the binding, no new record.
	rec.Online = true
	rec.ConnID = sid
	rec.Username = id.Username
	log.Info().Str("module", "app.registry").Str("room", string(room)).Str("user", string(id.UserID)).Msg("member reconnected")
	return false, r.snapshot(room)
}

// Disconnect marks the member bound to sid in this room as offline,
// keeping the record. It is a no-op when no record matches, which makes
// duplicate transport disconnects harmless.
func (r *Registry) Disconnect(room domain.RoomCode, sid core.SessionID) (username string, changed bool, members []domain.MemberPresence) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.rooms[room] {
		if rec.ConnID != sid {
			continue
		}
		rec.Online = false
		rec.ConnID = ""
		log.Info().Str("module", "app.registry").Str("room", string(room)).Str("user", string(rec.UserID)).Msg("member disconnected")
		return rec.Username, true, r.snapshot(room)
	}
	return "", false, nil
}

// RoomsOf lists the rooms holding a record bound to sid.
func (r *Registry) RoomsOf(sid core.SessionID) []domain.RoomCode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.RoomCode
	for room, recs := range r.rooms {
		for _, rec := range recs {
			if rec.ConnID == sid {
				out = append(out, room)
				break
			}
		}
	}
	return out
}

// Leave removes the member record outright, online or offline. The room
// entry is garbage-collected once its last record is gone, so ListMembers
// on an emptied room does not resurrect a stale entry.
func (r *Registry) Leave(room domain.RoomCode, userID domain.UserID) (username string, removed bool, members []domain.MemberPresence) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs := r.rooms[room]
	for i, rec := range recs {
		if rec.UserID != userID {
			continue
		}
		r.rooms[room] = append(recs[:i], recs[i+1:]...)
		if len(r.rooms[room]) == 0 {
			delete(r.rooms, room)
			log.Info().Str("module", "app.registry").Str("room", string(room)).Msg("empty room removed")
		}
		log.Info().Str("module", "app.registry").Str("room", string(room)).Str("user", string(userID)).Msg("member left")
		return rec.Username, true, r.snapshot(room)
	}
	return "", false, nil
}

// ListMembers returns the room's presence set in insertion order.
func (r *Registry) ListMembers(room domain.RoomCode) []domain.MemberPresence {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot(room)
}

// Stats snapshots every room for the debug endpoint.
func (r *Registry) Stats() map[domain.RoomCode]RoomStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[domain.RoomCode]RoomStats, len(r.rooms))
	for room, recs := range r.rooms {
		online := 0
		for _, rec := range recs {
			if rec.Online {
				online++
			}
		}
		out[room] = RoomStats{
			TotalMembers:  len(recs),
			OnlineMembers: online,
			Members:       r.snapshot(room),
		}
	}
	return out
}

// find and snapshot assume the caller holds r.mu.

func (r *Registry) find(room domain.RoomCode, userID domain.UserID) *memberRecord {
	for _, rec := range r.rooms[room] {
		if rec.UserID == userID {
			return rec
		}
	}
	return nil
}

func (r *Registry) snapshot(room domain.RoomCode) []domain.MemberPresence {
	recs := r.rooms[room]
	out := make([]domain.MemberPresence, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domain.MemberPresence{
			UserID:   rec.UserID,
			Username: rec.Username,
			Online:   rec.Online,
		})
	}
	return out
}
