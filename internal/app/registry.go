package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/huddlechat/huddle/internal/core"
	"github.com/huddlechat/huddle/internal/domain"
)

type connEntry struct {
	Session core.ClientSession
	Cancel  context.CancelFunc
}

// Registry is the single source of truth for "is user X reachable, and how".
// byUser holds at most one current connection per user (last-authenticated
// wins); conns tracks every live connection regardless of identity.
type Registry struct {
	mu     sync.RWMutex
	conns  map[core.ConnID]*connEntry
	byUser map[domain.UserID]core.ConnID
	owner  map[core.ConnID]domain.UserID
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[core.ConnID]*connEntry),
		byUser: make(map[domain.UserID]core.ConnID),
		owner:  make(map[core.ConnID]domain.UserID),
	}
}

// Bind records a live connection before it has authenticated.
func (r *Registry) Bind(id core.ConnID, cs core.ClientSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connEntry{Session: cs, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("bound connection")
}

// Register maps uid to conn id, unconditionally overwriting any prior
// mapping for uid. Idempotent, no error conditions. A connection that
// re-authenticates as someone else releases its previous identity first.
func (r *Registry) Register(uid domain.UserID, id core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.owner[id]; ok && prev != uid {
		if current, ok := r.byUser[prev]; ok && current == id {
			delete(r.byUser, prev)
		}
	}
	r.byUser[uid] = id
	r.owner[id] = uid
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Str("conn", string(id)).Msg("registered identity")
}

// Resolve returns the current connection id for uid, for routing a
// directed payload.
func (r *Registry) Resolve(uid domain.UserID) (core.ConnID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUser[uid]
	return id, ok
}

// ResolveSession resolves uid straight to its live session.
func (r *Registry) ResolveSession(uid domain.UserID) (core.ClientSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUser[uid]
	if !ok {
		return nil, false
	}
	e, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return e.Session, true
}

// Unregister drops the identity mapping owned by id, but only while the
// stored connection id still equals id. A disconnecting stale connection
// must not evict a newer one that re-registered the same user.
func (r *Registry) Unregister(id core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	uid, ok := r.owner[id]
	if !ok {
		return
	}
	delete(r.owner, id)
	if current, ok := r.byUser[uid]; ok && current == id {
		delete(r.byUser, uid)
		log.Info().Str("module", "app.registry").Str("user", string(uid)).Str("conn", string(id)).Msg("unregistered identity")
	}
}

// Session returns the session bound to a connection id.
func (r *Registry) Session(id core.ConnID) (core.ClientSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return e.Session, true
}

// Unbind forgets a connection entirely. Callers run Unregister first.
func (r *Registry) Unbind(id core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbound connection")
}

// connOf finds the connection id a session is bound to. Linear scan; the
// map is small and this only runs on backpressure kicks.
func (r *Registry) connOf(cs core.ClientSession) (core.ConnID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, e := range r.conns {
		if e.Session == cs {
			return id, true
		}
	}
	return "", false
}

// Cancel aborts the connection's pumps via its bound cancel func.
func (r *Registry) Cancel(id core.ConnID) bool {
	r.mu.RLock()
	e, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("canceled connection")
	return true
}
