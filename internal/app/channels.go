package app

import (
	"sync"

	"studyhall/internal/core"
	"studyhall/internal/domain"
)

type ChannelManagerImpl struct {
	mu       sync.RWMutex
	channels map[domain.RoomCode]core.Channel
}

func NewChannelManager() core.ChannelManager {
	return &ChannelManagerImpl{channels: make(map[domain.RoomCode]core.Channel)}
}

func (m *ChannelManagerImpl) GetOrCreate(room domain.RoomCode) core.Channel {
	m.mu.RLock()
	ch, ok := m.channels[room]
	m.mu.RUnlock()
	if ok {
		return ch
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok = m.channels[room]; ok {
		return ch
	}
	ch = core.NewChannel(room)
	m.channels[room] = ch
	return ch
}

func (m *ChannelManagerImpl) Get(room domain.RoomCode) (core.Channel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[room]
	return ch, ok
}

func (m *ChannelManagerImpl) List() []core.ChannelInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.ChannelInfo, 0, len(m.channels))
	for room, ch := range m.channels {
		out = append(out, core.ChannelInfo{Room: room, Count: ch.Count()})
	}
	return out
}

func (m *ChannelManagerImpl) Stop(room domain.RoomCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.channels, room)
}
