// Package call models the client-owned call lifecycle: an explicit
// tagged-phase state machine per tab plus a local bus that keeps sibling
// tabs of the same identity in agreement. The server never tracks any of
// this; it only routes directed payloads.
package call

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/huddlechat/huddle/internal/domain"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCalling
	PhaseRinging
	PhaseConnected
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCalling:
		return "calling"
	case PhaseRinging:
		return "ringing"
	case PhaseConnected:
		return "connected"
	case PhaseEnded:
		return "ended"
	}
	return "unknown"
}

type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// Session identifies the single active call slot of a machine. CallID is
// generated by whichever tab first learns of the call and shared with
// siblings over the bus, so all tabs of one identity agree on it.
type Session struct {
	CallID    string
	ChannelID domain.ChannelID
	Peer      domain.UserID
	Kind      Kind
	Inbound   bool
}

var ErrInvalidTransition = errors.New("invalid call transition")

// transitions lists the only legal phase edges. Reset bypasses this table:
// any phase may collapse to idle on a transport or media error, or when a
// sibling tab wins the call.
var transitions = map[Phase]map[Phase]bool{
	PhaseIdle:      {PhaseCalling: true, PhaseRinging: true},
	PhaseCalling:   {PhaseConnected: true, PhaseIdle: true},
	PhaseRinging:   {PhaseConnected: true, PhaseIdle: true},
	PhaseConnected: {PhaseEnded: true},
	PhaseEnded:     {PhaseIdle: true},
}

// OfferOutcome tells the caller of OfferReceived what to do on the wire.
type OfferOutcome int

const (
	// OutcomeRing means the machine entered ringing; present the call.
	OutcomeRing OfferOutcome = iota
	// OutcomeBusy means a call is already active; reply callRejected with
	// reason busy. Never silently drop, never replace the first call.
	OutcomeBusy
)

// Machine is one tab's call state machine. The ended phase lingers for a
// fixed short duration so end-of-call UI stays visible, then auto-resets.
type Machine struct {
	mu     sync.Mutex
	phase  Phase
	sess   Session
	linger time.Duration
	gen    uint64
}

func NewMachine(linger time.Duration) *Machine {
	return &Machine{linger: linger}
}

func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Current returns the active session; ok is false when idle.
func (m *Machine) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess, m.phase != PhaseIdle
}

// Dial starts an outbound call: idle -> calling. The caller has already
// acquired local media and is about to send callUser.
func (m *Machine) Dial(sess Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.advance(PhaseCalling); err != nil {
		return err
	}
	if sess.CallID == "" {
		sess.CallID = uuid.NewString()
	}
	sess.Inbound = false
	m.sess = sess
	return nil
}

// OfferReceived handles an inbound offer: idle -> ringing, or busy when a
// call is already in flight.
func (m *Machine) OfferReceived(sess Session) OfferOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseIdle {
		log.Debug().Str("module", "call").Str("phase", m.phase.String()).Msg("offer while busy")
		return OutcomeBusy
	}
	if sess.CallID == "" {
		sess.CallID = uuid.NewString()
	}
	sess.Inbound = true
	m.phase = PhaseRinging
	m.sess = sess
	return OutcomeRing
}

// Accept answers a ringing call locally: ringing -> connected.
func (m *Machine) Accept() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseRinging {
		return ErrInvalidTransition
	}
	return m.advance(PhaseConnected)
}

// AnswerReceived completes an outbound call: calling -> connected.
func (m *Machine) AnswerReceived() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseCalling {
		return ErrInvalidTransition
	}
	return m.advance(PhaseConnected)
}

// Decline ends a not-yet-connected call: ringing -> idle (local reject) or
// calling -> idle (local cancel or remote reject).
func (m *Machine) Decline() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseRinging && m.phase != PhaseCalling {
		return ErrInvalidTransition
	}
	if err := m.advance(PhaseIdle); err != nil {
		return err
	}
	m.sess = Session{}
	return nil
}

// End terminates a connected call: connected -> ended, then auto-resets to
// idle after the linger window.
func (m *Machine) End() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.advance(PhaseEnded); err != nil {
		return err
	}
	gen := m.gen
	time.AfterFunc(m.linger, func() { m.expireEnded(gen) })
	return nil
}

// Reset is the fail-safe collapse to idle from any phase: transport or
// media errors, or a sibling tab taking over the call. Never returns an
// error; the machine must not get stuck non-idle.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.phase = PhaseIdle
	m.sess = Session{}
}

func (m *Machine) expireEnded(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen || m.phase != PhaseEnded {
		return
	}
	m.phase = PhaseIdle
	m.sess = Session{}
}

// advance moves to next iff the transition table allows it. Callers hold mu.
func (m *Machine) advance(next Phase) error {
	if !transitions[m.phase][next] {
		return ErrInvalidTransition
	}
	m.gen++
	m.phase = next
	return nil
}
