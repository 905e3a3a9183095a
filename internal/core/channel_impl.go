package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"studyhall/internal/domain"
)

// channelImpl is a threadsafe in-memory fan-out group.
// It never closes adapter-owned resources.
type channelImpl struct {
	room  domain.RoomCode
	mu    sync.RWMutex
	bySID map[SessionID]MemberSession
}

func NewChannel(room domain.RoomCode) Channel {
	return &channelImpl{
		room:  room,
		bySID: make(map[SessionID]MemberSession),
	}
}

func (c *channelImpl) Add(sid SessionID, ms MemberSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bySID[sid] = ms
	log.Debug().Str("module", "core.channel").Str("room", string(c.room)).Str("sid", string(sid)).Msg("connection added")
}

func (c *channelImpl) Get(sid SessionID) (MemberSession, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ms, ok := c.bySID[sid]
	return ms, ok
}

func (c *channelImpl) Remove(sid SessionID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.bySID, sid)
	log.Debug().Str("module", "core.channel").Str("room", string(c.room)).Str("sid", string(sid)).Msg("connection removed")
}

func (c *channelImpl) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bySID)
}

func (c *channelImpl) Emit(f Frame) PublishResult {
	return c.emit(f, "")
}

func (c *channelImpl) EmitExcept(f Frame, except SessionID) PublishResult {
	return c.emit(f, except)
}

// emit is best-effort per connection: one full or dead peer must not block
// delivery to the others.
func (c *channelImpl) emit(f Frame, except SessionID) PublishResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res := PublishResult{}
	for sid, m := range c.bySID {
		if sid == except {
			continue
		}
		if err := m.Signal().TrySend(f); err != nil {
			res.Dropped = append(res.Dropped, sid)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.channel").Str("room", string(c.room)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("emit result")
	return res
}
