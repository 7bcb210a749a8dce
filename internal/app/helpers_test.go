package app

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/huddlechat/huddle/internal/core"
	"github.com/huddlechat/huddle/internal/domain"
)

// fakeConn records every frame it was handed; failing=true simulates a full
// send buffer.
type fakeConn struct {
	mu      sync.Mutex
	frames  []core.Frame
	failing bool
	closed  bool
}

func newFakeConn() *fakeConn { return &fakeConn{} }

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("backpressure")
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) sent() []core.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

// events decodes every recorded frame's type field.
func (c *fakeConn) events() []string {
	var out []string
	for _, f := range c.sent() {
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(f, &env); err == nil {
			out = append(out, env.Type)
		}
	}
	return out
}

func newFakeSession(uid domain.UserID, name string) (core.ClientSession, *fakeConn) {
	conn := newFakeConn()
	sess := core.NewClientSession(conn)
	sess.SetIdentity(&domain.Identity{UserID: uid, Name: name})
	return sess, conn
}
