package core

import (
	"sync"

	"github.com/huddlechat/huddle/internal/domain"
)

// clientSession implements ClientSession by pairing identity + transport.
// Identity is written once by the authenticate handler and read by
// broadcast/relay paths, hence the lock.
type clientSession struct {
	mu       sync.RWMutex
	identity *domain.Identity
	conn     SignalConnection
}

func NewClientSession(conn SignalConnection) ClientSession {
	return &clientSession{conn: conn}
}

func (s *clientSession) Identity() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

func (s *clientSession) SetIdentity(id *domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = id
}

func (s *clientSession) Signal() SignalConnection { return s.conn }
