package call

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/huddlechat/huddle/internal/core"
	"github.com/huddlechat/huddle/internal/domain"
)

// MessageKind enumerates the cross-tab coordination messages. They travel on
// a local per-identity bus, never over the network relay.
type MessageKind string

const (
	MsgIncomingCall MessageKind = "INCOMING_CALL"
	MsgCallAccepted MessageKind = "CALL_ACCEPTED"
	MsgCallRejected MessageKind = "CALL_REJECTED"
	MsgCallEnded    MessageKind = "CALL_ENDED"
)

type TabID string

// Message is one cross-tab broadcast, tagged with the call and channel so
// receivers can match it against their current session.
type Message struct {
	Kind      MessageKind
	UserID    domain.UserID
	CallID    string
	ChannelID domain.ChannelID
	CallType  Kind
	Caller    core.MemberDTO
	Origin    TabID
}

// Bus is the same-identity broadcast medium. Delivery is best-effort and
// local-only: a full subscriber buffer drops the message rather than block.
type Bus struct {
	mu   sync.RWMutex
	subs map[domain.UserID]map[TabID]chan Message
}

func NewBus() *Bus {
	return &Bus{subs: make(map[domain.UserID]map[TabID]chan Message)}
}

// Tab is one subscription; torn down with Close when the owning tab unloads.
type Tab struct {
	id   TabID
	user domain.UserID
	bus  *Bus
	c    chan Message

	closeOnce sync.Once
}

func (b *Bus) Subscribe(uid domain.UserID) *Tab {
	t := &Tab{
		id:   TabID(uuid.NewString()),
		user: uid,
		bus:  b,
		c:    make(chan Message, 8),
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	tabs, ok := b.subs[uid]
	if !ok {
		tabs = make(map[TabID]chan Message)
		b.subs[uid] = tabs
	}
	tabs[t.id] = t.c
	return t
}

func (t *Tab) ID() TabID { return t.id }

// C streams sibling-tab messages; closed by Close.
func (t *Tab) C() <-chan Message { return t.c }

func (t *Tab) Close() {
	t.closeOnce.Do(func() {
		t.bus.mu.Lock()
		if tabs, ok := t.bus.subs[t.user]; ok {
			delete(tabs, t.id)
			if len(tabs) == 0 {
				delete(t.bus.subs, t.user)
			}
		}
		t.bus.mu.Unlock()
		close(t.c)
	})
}

// Publish fans msg out to every tab of msg.UserID except the originator, so
// an acting tab never observes its own broadcast (avoids broadcast loops).
func (b *Bus) Publish(msg Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, c := range b.subs[msg.UserID] {
		if id == msg.Origin {
			continue
		}
		select {
		case c <- msg:
		default:
			log.Warn().Str("module", "call.bus").Str("tab", string(id)).Msg("tab bus buffer full, dropping")
		}
	}
}
