package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/huddlechat/huddle/internal/core"
	"github.com/huddlechat/huddle/internal/domain"
	"github.com/huddlechat/huddle/internal/metrics"
	"github.com/huddlechat/huddle/internal/protocol"
)

type typingKey struct {
	Channel domain.ChannelID
	User    domain.UserID
}

type typingEntry struct {
	Name     string
	LastSeen time.Time
}

// TypingTracker derives ephemeral who-is-typing state per channel from a
// stream of start/stop events. Entries expire after ttl so a crashed client
// never leaves a stuck indicator; everything here is best-effort UI sugar.
type TypingTracker struct {
	rooms      *RoomManager
	ttl        time.Duration
	sweepEvery time.Duration

	mu      sync.Mutex
	entries map[typingKey]*typingEntry

	now func() time.Time
}

func NewTypingTracker(rooms *RoomManager, ttl, sweepEvery time.Duration) *TypingTracker {
	return &TypingTracker{
		rooms:      rooms,
		ttl:        ttl,
		sweepEvery: sweepEvery,
		entries:    make(map[typingKey]*typingEntry),
		now:        time.Now,
	}
}

// MarkTyping upserts the entry with a fresh timestamp and re-broadcasts the
// typing event to the channel room, excluding the typer. Re-broadcasting on
// every keystroke-driven call is fine; the indicator is idempotent at the UI
// layer.
func (t *TypingTracker) MarkTyping(ch domain.ChannelID, uid domain.UserID, name string, exclude core.ConnID) {
	t.mu.Lock()
	t.entries[typingKey{Channel: ch, User: uid}] = &typingEntry{Name: name, LastSeen: t.now()}
	t.mu.Unlock()

	t.broadcast(protocol.EventTyping, ch, uid, name, exclude)
}

// MarkStopped removes the entry and broadcasts stopTyping.
func (t *TypingTracker) MarkStopped(ch domain.ChannelID, uid domain.UserID, exclude core.ConnID) {
	t.mu.Lock()
	_, ok := t.entries[typingKey{Channel: ch, User: uid}]
	delete(t.entries, typingKey{Channel: ch, User: uid})
	t.mu.Unlock()
	if !ok {
		return
	}

	t.broadcast(protocol.EventStopTyping, ch, uid, "", exclude)
}

// Run sweeps expired entries until ctx is canceled.
func (t *TypingTracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.typing").Msg("sweeper stopped")
			return
		case <-ticker.C:
			t.sweep(t.now())
		}
	}
}

// sweep expires entries whose last activity is older than ttl and emits
// exactly one stopTyping per expired (channel, user) pair.
func (t *TypingTracker) sweep(now time.Time) {
	t.mu.Lock()
	expired := make([]typingKey, 0)
	for key, e := range t.entries {
		if now.Sub(e.LastSeen) >= t.ttl {
			expired = append(expired, key)
			delete(t.entries, key)
		}
	}
	t.mu.Unlock()

	for _, key := range expired {
		metrics.TypingExpired.Inc()
		log.Debug().Str("module", "app.typing").Str("channel", string(key.Channel)).Str("user", string(key.User)).Msg("typing entry expired")
		t.broadcast(protocol.EventStopTyping, key.Channel, key.User, "", "")
	}
}

func (t *TypingTracker) broadcast(event string, ch domain.ChannelID, uid domain.UserID, name string, exclude core.ConnID) {
	frame, err := protocol.Encode(protocol.TypingEvent{
		Type:      event,
		ChannelID: ch,
		UserID:    uid,
		Name:      name,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "app.typing").Msg("encode typing event")
		return
	}
	t.rooms.Broadcast(domain.ChannelRoom(ch), frame, exclude)
}
