package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/huddlechat/huddle/internal/core"
	"github.com/huddlechat/huddle/internal/domain"
)

func TestRegisterLastWins(t *testing.T) {
	r := NewRegistry()
	r.Register("u1", "c1")
	r.Register("u1", "c2")

	id, ok := r.Resolve("u1")
	assert.True(t, ok)
	assert.Equal(t, core.ConnID("c2"), id)
}

func TestStaleUnregisterDoesNotEvictNewer(t *testing.T) {
	r := NewRegistry()
	r.Register("u1", "c1")
	r.Register("u1", "c2")
	r.Unregister("c1")

	id, ok := r.Resolve("u1")
	assert.True(t, ok, "newer registration must survive a stale disconnect")
	assert.Equal(t, core.ConnID("c2"), id)
}

func TestUnregisterCurrentRemovesMapping(t *testing.T) {
	r := NewRegistry()
	r.Register("u1", "c1")
	r.Unregister("c1")

	_, ok := r.Resolve("u1")
	assert.False(t, ok)
}

func TestUnregisterUnknownConnIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Register("u1", "c1")
	r.Unregister("never-seen")

	id, ok := r.Resolve("u1")
	assert.True(t, ok)
	assert.Equal(t, core.ConnID("c1"), id)
}

func TestReauthenticateAsDifferentUserReleasesOldIdentity(t *testing.T) {
	r := NewRegistry()
	r.Register("u1", "c1")
	r.Register("u2", "c1")

	_, ok := r.Resolve("u1")
	assert.False(t, ok, "previous identity of the connection must be released")
	id, ok := r.Resolve("u2")
	assert.True(t, ok)
	assert.Equal(t, core.ConnID("c1"), id)

	// But a superseded connection must not release the newer owner.
	r.Register("u2", "c2")
	r.Register("u3", "c1")
	id, ok = r.Resolve("u2")
	assert.True(t, ok)
	assert.Equal(t, core.ConnID("c2"), id)
}

func TestResolveUnknownUser(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Resolve("ghost")
	assert.False(t, ok)
}

func TestResolveSession(t *testing.T) {
	r := NewRegistry()
	conn := newFakeConn()
	sess := core.NewClientSession(conn)
	sess.SetIdentity(&domain.Identity{UserID: "u1", Name: "Ann"})

	r.Bind("c1", sess, nil)
	r.Register("u1", "c1")

	got, ok := r.ResolveSession("u1")
	assert.True(t, ok)
	assert.Same(t, sess, got)

	r.Unbind("c1")
	_, ok = r.ResolveSession("u1")
	assert.False(t, ok, "resolving a user whose connection is gone must miss")
}
