package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/huddlechat/huddle/internal/core"
	"github.com/huddlechat/huddle/internal/domain"
	"github.com/huddlechat/huddle/internal/metrics"
)

// RoomManager groups connections into named broadcast rooms. Rooms are
// created implicitly on first join and destroyed implicitly when the last
// member leaves, so there are no standing room objects to leak.
type RoomManager struct {
	mu      sync.RWMutex
	rooms   map[domain.RoomName]core.RoomService
	members map[core.ConnID]map[domain.RoomName]struct{}
}

func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms:   make(map[domain.RoomName]core.RoomService),
		members: make(map[core.ConnID]map[domain.RoomName]struct{}),
	}
}

// Join adds the connection to the room, creating it if absent.
// Idempotent if already a member.
func (m *RoomManager) Join(id core.ConnID, cs core.ClientSession, name domain.RoomName) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[name]
	if !ok {
		room = core.NewRoomService(name)
		m.rooms[name] = room
	}
	set, ok := m.members[id]
	if !ok {
		set = make(map[domain.RoomName]struct{})
		m.members[id] = set
	}
	set[name] = struct{}{}

	// AddMember stays under mu: a concurrent empty-room drop must never
	// observe the room between the map insert and the first member.
	room.AddMember(id, cs)
}

// Leave removes the membership. Idempotent if not a member; the room is
// dropped once empty.
func (m *RoomManager) Leave(id core.ConnID, name domain.RoomName) {
	m.mu.Lock()
	room, ok := m.rooms[name]
	if set, has := m.members[id]; has {
		delete(set, name)
		if len(set) == 0 {
			delete(m.members, id)
		}
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	room.RemoveMember(id)
	m.dropIfEmpty(name, room)
}

// LeaveAll clears every membership of a disconnecting connection.
func (m *RoomManager) LeaveAll(id core.ConnID) {
	m.mu.Lock()
	set := m.members[id]
	delete(m.members, id)
	names := make([]domain.RoomName, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	m.mu.Unlock()

	for _, name := range names {
		m.mu.RLock()
		room, ok := m.rooms[name]
		m.mu.RUnlock()
		if !ok {
			continue
		}
		room.RemoveMember(id)
		m.dropIfEmpty(name, room)
	}
}

// Broadcast fans data out to every current member of the room except
// exclude. A missing or empty room is a no-op, not an error.
func (m *RoomManager) Broadcast(name domain.RoomName, data core.Frame, exclude core.ConnID) core.PublishResult {
	m.mu.RLock()
	room, ok := m.rooms[name]
	m.mu.RUnlock()
	if !ok {
		return core.PublishResult{}
	}
	res := room.Broadcast(exclude, data)
	metrics.BroadcastDelivered.Add(float64(res.Delivered))
	metrics.BroadcastDropped.Add(float64(len(res.Dropped)))
	return res
}

// Room exposes a live room for snapshots; ok is false when it does not
// currently exist.
func (m *RoomManager) Room(name domain.RoomName) (core.RoomService, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[name]
	return room, ok
}

func (m *RoomManager) dropIfEmpty(name domain.RoomName, room core.RoomService) {
	if room.MemberCount() > 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Re-check under the write lock; a concurrent Join may have revived it.
	if current, ok := m.rooms[name]; ok && current == room && room.MemberCount() == 0 {
		delete(m.rooms, name)
		log.Info().Str("module", "app.rooms").Str("room", string(name)).Msg("dropped empty room")
	}
}
