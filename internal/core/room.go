package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/huddlechat/huddle/internal/domain"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	name domain.RoomName

	mu     sync.RWMutex
	byConn map[ConnID]ClientSession
}

func NewRoomService(name domain.RoomName) RoomService {
	return &roomImpl{
		name:   name,
		byConn: make(map[ConnID]ClientSession),
	}
}

func (r *roomImpl) Name() domain.RoomName { return r.name }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}

func (r *roomImpl) AddMember(id ConnID, cs ClientSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byConn[id]; ok {
		return
	}
	r.byConn[id] = cs
	log.Info().Str("module", "core.room").Str("room", string(r.name)).Str("conn", string(id)).Msg("member added")
}

func (r *roomImpl) RemoveMember(id ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byConn[id]; !ok {
		return
	}
	delete(r.byConn, id)
	log.Info().Str("module", "core.room").Str("room", string(r.name)).Str("conn", string(id)).Msg("member removed")
}

func (r *roomImpl) Broadcast(exclude ConnID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for id, cs := range r.byConn {
		if id == exclude {
			continue
		}
		if err := cs.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, cs)
			continue
		}
		res.Delivered++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.name)).Int("delivered", res.Delivered).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberDTO, 0, len(r.byConn))
	for _, cs := range r.byConn {
		id := cs.Identity()
		if id == nil {
			continue
		}
		out = append(out, MemberDTO{UserID: id.UserID, Name: id.Name, Image: id.AvatarURL})
	}
	return out
}
