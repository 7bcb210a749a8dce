package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/huddlechat/huddle/internal/domain"
	"github.com/huddlechat/huddle/internal/protocol"
)

// The call handlers are a stateless relay: resolve the target's current
// connection, forward the payload with the sender's identity attached, and
// silently drop when the target is offline. Call phase lives client-side;
// the sender's UI owns ring timeouts and "unreachable" handling.

func (ctl *Controller) handleCallUser(c *client, data []byte) {
	var p protocol.CallUserPayload
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad callUser payload")
		return
	}

	from := c.sess.Identity()
	if !ctl.Dials.Allow(from.UserID) {
		log.Warn().Str("module", "signal").Str("user", string(from.UserID)).Msg("dial rate limit exceeded, dropping")
		return
	}

	ctl.relay(c, p.To, protocol.CallOfferEvent{
		Type:      protocol.EventCallOffer,
		From:      memberDTO(from),
		ChannelID: p.ChannelID,
		Signal:    p.Signal,
		CallType:  p.CallType,
	})
}

func (ctl *Controller) handleAnswerCall(c *client, data []byte) {
	var p protocol.AnswerCallPayload
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad answerCall payload")
		return
	}
	ctl.relay(c, p.To, protocol.CallAnswerEvent{
		Type:   protocol.EventCallAnswer,
		From:   memberDTO(c.sess.Identity()),
		Signal: p.Signal,
	})
}

func (ctl *Controller) handleRejectCall(c *client, data []byte) {
	var p protocol.RejectCallPayload
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad rejectCall payload")
		return
	}
	ctl.relay(c, p.To, protocol.CallRejectedEvent{
		Type:   protocol.EventCallRejected,
		From:   memberDTO(c.sess.Identity()),
		Reason: p.Reason,
	})
}

func (ctl *Controller) handleEndCall(c *client, data []byte) {
	var p protocol.EndCallPayload
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad endCall payload")
		return
	}
	ctl.relay(c, p.To, protocol.CallEndedEvent{
		Type:   protocol.EventCallEnded,
		From:   memberDTO(c.sess.Identity()),
		Reason: p.Reason,
	})
}

// ICE candidates relay exactly like offer/answer; consumers tolerate
// out-of-order arrival.
func (ctl *Controller) handleIceCandidate(c *client, data []byte) {
	var p protocol.IceCandidatePayload
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad sendIceCandidate payload")
		return
	}
	ctl.relay(c, p.To, protocol.IceCandidateEvent{
		Type:      protocol.EventIceCandidate,
		From:      memberDTO(c.sess.Identity()),
		Candidate: p.Candidate,
	})
}

func (ctl *Controller) relay(c *client, to domain.UserID, v any) {
	frame, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("encode relay event")
		return
	}
	ctl.Hub.Relay.Send(to, frame)
}
