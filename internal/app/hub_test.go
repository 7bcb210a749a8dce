package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/huddlechat/huddle/internal/core"
)

func newTestHub() *Hub {
	reg := NewRegistry()
	rooms := NewRoomManager()
	return NewHub(reg, rooms, NewTypingTracker(rooms, 0, 0), NewRelay(reg), SimplePolicy{})
}

func TestJoinChannelRequiresBoundConnection(t *testing.T) {
	h := newTestHub()
	h.JoinChannel("ghost", "general")
	_, ok := h.Rooms.Room("channel:general")
	assert.False(t, ok)
}

func TestDisconnectCleansUpEverything(t *testing.T) {
	h := newTestHub()
	sess, _ := newFakeSession("u1", "Ann")
	h.Registry.Bind("c1", sess, nil)
	h.Registry.Register("u1", "c1")
	h.JoinChannel("c1", "general")
	h.JoinChannel("c1", "random")

	h.OnDisconnect("c1")

	_, ok := h.Registry.Resolve("u1")
	assert.False(t, ok)
	_, ok = h.Rooms.Room("channel:general")
	assert.False(t, ok)
	_, ok = h.Registry.Session("c1")
	assert.False(t, ok)
}

func TestDisconnectOfSupersededConnectionKeepsNewer(t *testing.T) {
	h := newTestHub()
	oldSess, _ := newFakeSession("u1", "Ann")
	newSess, _ := newFakeSession("u1", "Ann")
	h.Registry.Bind("c1", oldSess, nil)
	h.Registry.Register("u1", "c1")
	h.Registry.Bind("c2", newSess, nil)
	h.Registry.Register("u1", "c2")

	h.OnDisconnect("c1")

	id, ok := h.Registry.Resolve("u1")
	assert.True(t, ok)
	assert.Equal(t, core.ConnID("c2"), id)
}

func TestBackpressureKicksSlowConsumer(t *testing.T) {
	h := newTestHub()
	sender, _ := newFakeSession("u1", "Ann")
	slow, slowConn := newFakeSession("u2", "Bob")
	slowConn.failing = true

	canceled := false
	_, cancel := context.WithCancel(context.Background())
	h.Registry.Bind("c1", sender, nil)
	h.Registry.Bind("c2", slow, func() { canceled = true; cancel() })
	h.JoinChannel("c1", "general")
	h.JoinChannel("c2", "general")

	h.BroadcastChannel("general", core.Frame(`{}`), "c1")
	assert.True(t, canceled, "slow consumer must be kicked")
}
