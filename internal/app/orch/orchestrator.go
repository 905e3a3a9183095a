// Package orch sequences connection events: registry mutation, message
// persistence, then fanout, atomically per room.
package orch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"studyhall/internal/app"
	"studyhall/internal/core"
	"studyhall/internal/domain"
	"studyhall/internal/metrics"
)

const DefaultHistoryLimit = 1000

// MessageLog is the durable append/query/delete store consumed by the
// orchestrator. Appends are independent and retention enforcement is
// idempotent.
type MessageLog interface {
	Append(ctx context.Context, m domain.Message) error
	EnforceRetention(ctx context.Context, room domain.RoomCode, limit int) error
	FetchHistory(ctx context.Context, room domain.RoomCode, limit int, before *time.Time) ([]domain.Message, error)
}

type Orchestrator struct {
	Registry *app.Registry
	Channels core.ChannelManager
	Log      MessageLog
	Policy   app.Policy

	// HistoryLimit bounds the trailing message window per room.
	HistoryLimit int

	mu      sync.Mutex
	roomMus map[domain.RoomCode]*sync.Mutex
}

func New(reg *app.Registry, channels core.ChannelManager, logStore MessageLog, historyLimit int) *Orchestrator {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Orchestrator{
		Registry:     reg,
		Channels:     channels,
		Log:          logStore,
		Policy:       app.SimplePolicy{},
		HistoryLimit: historyLimit,
		roomMus:      make(map[domain.RoomCode]*sync.Mutex),
	}
}

// roomLock serializes registry mutation + fanout per room, so no event for
// the same room can observe a half-applied mutation. Events for other rooms
// proceed concurrently.
func (o *Orchestrator) roomLock(room domain.RoomCode) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	mu, ok := o.roomMus[room]
	if !ok {
		mu = &sync.Mutex{}
		o.roomMus[room] = mu
	}
	return mu
}

// forgetRoomLock drops the lock entry once its room is gone, so room-code
// churn does not grow the map forever. A waiter that raced the removal
// recreates the entry on its next event; ordering only matters while the
// room exists.
func (o *Orchestrator) forgetRoomLock(room domain.RoomCode) {
	o.mu.Lock()
	delete(o.roomMus, room)
	o.mu.Unlock()
}

// persist appends and trims best-effort. Persistence and broadcast are
// independent effects of one event: a failed append is logged and never
// blocks delivery.
func (o *Orchestrator) persist(ctx context.Context, m domain.Message) {
	if o.Log == nil {
		return
	}
	if err := o.Log.Append(ctx, m); err != nil {
		log.Error().Err(err).Str("module", "app.orch").Str("room", string(m.RoomCode)).Msg("message append failed")
		return
	}
	metrics.MessagesPersisted.Inc()
	if err := o.Log.EnforceRetention(ctx, m.RoomCode, o.HistoryLimit); err != nil {
		log.Error().Err(err).Str("module", "app.orch").Str("room", string(m.RoomCode)).Msg("retention trim failed")
	}
}

func (o *Orchestrator) emit(ch core.Channel, sid core.SessionID, ev any) {
	f, err := encode(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orch").Msg("event encode failed")
		return
	}
	var res core.PublishResult
	if sid == "" {
		res = ch.Emit(f)
	} else {
		res = ch.EmitExcept(f, sid)
	}
	metrics.EventsBroadcast.Add(float64(res.SentTo))
	o.handleDropped(ch, res.Dropped)
}

// handleDropped applies the backpressure policy to connections whose send
// buffers stayed full. Dropping also closes the transport, so the read loop
// surfaces a normal disconnect event and the registry bookkeeping runs.
func (o *Orchestrator) handleDropped(ch core.Channel, dropped []core.SessionID) {
	if o.Policy == nil {
		return
	}
	for _, sid := range dropped {
		metrics.EventsDropped.Inc()
		if o.Policy.OnBackPressure(ch, sid) != app.DropConnection {
			continue
		}
		ms, ok := ch.Get(sid)
		ch.Remove(sid)
		if ok {
			ms.Signal().Close()
		}
		log.Warn().Str("module", "app.orch").Str("sid", string(sid)).Msg("dropped saturated connection")
	}
}

// History reads the trailing message window, oldest-first.
func (o *Orchestrator) History(ctx context.Context, room domain.RoomCode, limit int, before *time.Time) ([]domain.Message, error) {
	if limit <= 0 || limit > o.HistoryLimit {
		limit = o.HistoryLimit
	}
	return o.Log.FetchHistory(ctx, room, limit, before)
}

// Stats exposes the registry's per-room presence snapshot read-only.
func (o *Orchestrator) Stats() map[domain.RoomCode]app.RoomStats {
	return o.Registry.Stats()
}
