package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTypingFixture(t *testing.T) (*TypingTracker, *fakeConn, *fakeConn) {
	t.Helper()
	rooms := NewRoomManager()
	typer, typerConn := newFakeSession("u1", "Ann")
	watcher, watcherConn := newFakeSession("u2", "Bob")
	rooms.Join("conn1", typer, "channel:c1")
	rooms.Join("conn2", watcher, "channel:c1")
	return NewTypingTracker(rooms, 5*time.Second, time.Second), typerConn, watcherConn
}

func TestMarkTypingBroadcastsToOthers(t *testing.T) {
	tr, typerConn, watcherConn := newTypingFixture(t)

	tr.MarkTyping("c1", "u1", "Ann", "conn1")

	assert.Empty(t, typerConn.events(), "typer must not see their own indicator")
	assert.Equal(t, []string{"typing"}, watcherConn.events())
}

func TestMarkStoppedBroadcastsStopTyping(t *testing.T) {
	tr, _, watcherConn := newTypingFixture(t)

	tr.MarkTyping("c1", "u1", "Ann", "conn1")
	tr.MarkStopped("c1", "u1", "conn1")

	assert.Equal(t, []string{"typing", "stopTyping"}, watcherConn.events())
}

func TestMarkStoppedWithoutEntryIsSilent(t *testing.T) {
	tr, _, watcherConn := newTypingFixture(t)

	tr.MarkStopped("c1", "u1", "conn1")
	assert.Empty(t, watcherConn.events())
}

func TestSweepExpiresStaleEntryExactlyOnce(t *testing.T) {
	tr, _, watcherConn := newTypingFixture(t)

	start := time.Now()
	tr.now = func() time.Time { return start }
	tr.MarkTyping("c1", "u1", "Ann", "conn1")

	// Not yet stale.
	tr.sweep(start.Add(4 * time.Second))
	// Stale now; one stopTyping.
	tr.sweep(start.Add(5 * time.Second))
	// Entry already gone; nothing more.
	tr.sweep(start.Add(6 * time.Second))

	assert.Equal(t, []string{"typing", "stopTyping"}, watcherConn.events())
}

func TestRefreshKeepsEntryAlive(t *testing.T) {
	tr, _, watcherConn := newTypingFixture(t)

	start := time.Now()
	now := start
	tr.now = func() time.Time { return now }

	tr.MarkTyping("c1", "u1", "Ann", "conn1")
	now = start.Add(3 * time.Second)
	tr.MarkTyping("c1", "u1", "Ann", "conn1")

	tr.sweep(start.Add(6 * time.Second))

	// Two typing re-broadcasts, no expiry yet.
	assert.Equal(t, []string{"typing", "typing"}, watcherConn.events())

	tr.sweep(start.Add(9 * time.Second))
	assert.Equal(t, []string{"typing", "typing", "stopTyping"}, watcherConn.events())
}
