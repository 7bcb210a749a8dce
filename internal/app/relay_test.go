package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/huddlechat/huddle/internal/core"
)

func TestRelayDeliversToRegisteredConnection(t *testing.T) {
	reg := NewRegistry()
	relay := NewRelay(reg)

	sess, conn := newFakeSession("u2", "Bob")
	reg.Bind("c2", sess, nil)
	reg.Register("u2", "c2")

	ok := relay.Send("u2", core.Frame(`{"type":"callOffer"}`))
	assert.True(t, ok)
	assert.Len(t, conn.sent(), 1)
}

func TestRelayOfflineTargetIsSilentDrop(t *testing.T) {
	reg := NewRegistry()
	relay := NewRelay(reg)

	ok := relay.Send("offline-user", core.Frame(`{"type":"callOffer"}`))
	assert.False(t, ok)
}

func TestRelayRoutesToNewestConnection(t *testing.T) {
	reg := NewRegistry()
	relay := NewRelay(reg)

	oldSess, oldConn := newFakeSession("u1", "Ann")
	newSess, newConn := newFakeSession("u1", "Ann")
	reg.Bind("c1", oldSess, nil)
	reg.Register("u1", "c1")
	reg.Bind("c2", newSess, nil)
	reg.Register("u1", "c2")

	relay.Send("u1", core.Frame(`{}`))
	assert.Empty(t, oldConn.sent())
	assert.Len(t, newConn.sent(), 1)
}

func TestRelayBackpressureReportsFailure(t *testing.T) {
	reg := NewRegistry()
	relay := NewRelay(reg)

	sess, conn := newFakeSession("u1", "Ann")
	conn.failing = true
	reg.Bind("c1", sess, nil)
	reg.Register("u1", "c1")

	ok := relay.Send("u1", core.Frame(`{}`))
	assert.False(t, ok)
}
