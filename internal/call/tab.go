package call

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/huddlechat/huddle/internal/core"
	"github.com/huddlechat/huddle/internal/domain"
	"github.com/huddlechat/huddle/internal/protocol"
)

// TabSession drives one tab's call machine from two inputs: relayed
// signaling delivered to this tab's connection, and sibling-tab messages on
// the bus. Only the tab the server routed to publishes INCOMING_CALL; every
// tab of the identity then rings, and the first one to act wins.
type TabSession struct {
	user    domain.UserID
	machine *Machine
	tab     *Tab
	bus     *Bus
}

func NewTabSession(bus *Bus, uid domain.UserID, linger time.Duration) *TabSession {
	return &TabSession{
		user:    uid,
		machine: NewMachine(linger),
		tab:     bus.Subscribe(uid),
		bus:     bus,
	}
}

func (s *TabSession) Machine() *Machine { return s.machine }

// Close tears down the bus subscription when the tab unloads.
func (s *TabSession) Close() { s.tab.Close() }

// Dial starts an outbound call from this tab.
func (s *TabSession) Dial(sess Session) error {
	return s.machine.Dial(sess)
}

// RingFromOffer handles a callOffer relayed to this tab's connection. On
// ring it notifies sibling tabs; on busy the caller must send back a
// callRejected with reason busy.
func (s *TabSession) RingFromOffer(sess Session, caller core.MemberDTO) OfferOutcome {
	outcome := s.machine.OfferReceived(sess)
	if outcome != OutcomeRing {
		return outcome
	}
	current, _ := s.machine.Current()
	s.bus.Publish(Message{
		Kind:      MsgIncomingCall,
		UserID:    s.user,
		CallID:    current.CallID,
		ChannelID: current.ChannelID,
		CallType:  current.Kind,
		Caller:    caller,
		Origin:    s.tab.ID(),
	})
	return OutcomeRing
}

// BusyReply is the rejectCall a tab sends back when RingFromOffer reports
// busy, so the caller learns immediately instead of ringing out.
func BusyReply(to domain.UserID) protocol.RejectCallPayload {
	return protocol.RejectCallPayload{To: to, Reason: protocol.ReasonBusy}
}

// Accept answers the ringing call in this tab and tells siblings to stand
// down. The caller then acquires media and sends answerCall exactly once.
func (s *TabSession) Accept() error {
	sess, ok := s.machine.Current()
	if !ok {
		return ErrInvalidTransition
	}
	if err := s.machine.Accept(); err != nil {
		return err
	}
	s.publishOutcome(MsgCallAccepted, sess)
	return nil
}

// Reject declines the ringing call and tells siblings to stand down.
func (s *TabSession) Reject() error {
	sess, ok := s.machine.Current()
	if !ok {
		return ErrInvalidTransition
	}
	if err := s.machine.Decline(); err != nil {
		return err
	}
	s.publishOutcome(MsgCallRejected, sess)
	return nil
}

// End hangs up the connected call and tells siblings to stand down.
func (s *TabSession) End() error {
	sess, ok := s.machine.Current()
	if !ok {
		return ErrInvalidTransition
	}
	if err := s.machine.End(); err != nil {
		return err
	}
	s.publishOutcome(MsgCallEnded, sess)
	return nil
}

// RemoteAnswered completes an outbound call when the peer's answer arrives.
func (s *TabSession) RemoteAnswered() error {
	return s.machine.AnswerReceived()
}

// RemoteRejected settles an outbound call the peer declined and tells
// siblings the call is over.
func (s *TabSession) RemoteRejected() error {
	sess, ok := s.machine.Current()
	if !ok {
		return ErrInvalidTransition
	}
	if err := s.machine.Decline(); err != nil {
		return err
	}
	s.publishOutcome(MsgCallRejected, sess)
	return nil
}

// RemoteEnded settles a call the peer ended. A connected call goes through
// the ended linger; a cancel that arrives while still ringing or calling
// collapses straight to idle so the machine cannot stay stuck mid-setup.
func (s *TabSession) RemoteEnded() error {
	sess, ok := s.machine.Current()
	if !ok {
		return ErrInvalidTransition
	}
	var err error
	if s.machine.Phase() == PhaseConnected {
		err = s.machine.End()
	} else {
		err = s.machine.Decline()
	}
	if err != nil {
		return err
	}
	s.publishOutcome(MsgCallEnded, sess)
	return nil
}

// Fail is the local fail-safe (media acquisition denied, transport error):
// collapse to idle, never stuck in calling/ringing.
func (s *TabSession) Fail() { s.machine.Reset() }

// Apply processes one sibling-tab message. A tab that did not originate the
// action resets without re-broadcasting.
func (s *TabSession) Apply(msg Message) {
	switch msg.Kind {
	case MsgIncomingCall:
		s.machine.OfferReceived(Session{
			CallID:    msg.CallID,
			ChannelID: msg.ChannelID,
			Peer:      msg.Caller.UserID,
			Kind:      msg.CallType,
		})
	case MsgCallAccepted, MsgCallRejected, MsgCallEnded:
		current, ok := s.machine.Current()
		if !ok || current.CallID != msg.CallID {
			return
		}
		log.Debug().Str("module", "call.tab").Str("kind", string(msg.Kind)).Str("call", msg.CallID).Msg("sibling tab settled call")
		s.machine.Reset()
	}
}

// Run consumes the bus until the tab unloads or ctx is canceled.
func (s *TabSession) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.tab.C():
			if !ok {
				return
			}
			s.Apply(msg)
		}
	}
}

func (s *TabSession) publishOutcome(kind MessageKind, sess Session) {
	s.bus.Publish(Message{
		Kind:      kind,
		UserID:    s.user,
		CallID:    sess.CallID,
		ChannelID: sess.ChannelID,
		Origin:    s.tab.ID(),
	})
}
