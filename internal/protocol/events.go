// Package protocol defines the wire shapes of the signaling protocol.
// SDP and ICE payloads are routed opaquely, but their shapes are pion's so
// clients and the relay agree on field names.
package protocol

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"

	"github.com/huddlechat/huddle/internal/core"
	"github.com/huddlechat/huddle/internal/domain"
)

// Client-to-server event types.
const (
	EventAuthenticate     = "authenticate"
	EventJoinChannel      = "joinChannel"
	EventLeaveChannel     = "leaveChannel"
	EventSendMessage      = "sendMessage"
	EventTyping           = "typing"
	EventStopTyping       = "stopTyping"
	EventCallUser         = "callUser"
	EventAnswerCall       = "answerCall"
	EventRejectCall       = "rejectCall"
	EventEndCall          = "endCall"
	EventSendIceCandidate = "sendIceCandidate"
	EventHeartbeat        = "heartbeat"
)

// Server-to-client event types. typing/stopTyping are reused verbatim.
const (
	EventAuthenticated  = "authenticated"
	EventUnauthorized   = "unauthorized"
	EventNewMessage     = "newMessage"
	EventChannelUpdated = "channelUpdated"
	EventCallOffer      = "callOffer"
	EventCallAnswer     = "callAnswer"
	EventCallRejected   = "callRejected"
	EventCallEnded      = "callEnded"
	EventIceCandidate   = "iceCandidate"
	EventHeartbeatAck   = "heartbeatAck"
)

// ReasonBusy rejects a second offer while a call is already active.
const ReasonBusy = "busy"

// Envelope carries just enough to dispatch an inbound event.
type Envelope struct {
	Type string `json:"type"`
}

// Client-to-server payloads.

type AuthenticatePayload struct {
	UserID domain.UserID `json:"userId"`
	Name   string        `json:"name"`
	Image  string        `json:"image,omitempty"`
}

type ChannelPayload struct {
	ChannelID domain.ChannelID `json:"channelId"`
}

type MessagePayload struct {
	ChannelID domain.ChannelID `json:"channelId"`
	Content   string           `json:"content"`
}

type CallUserPayload struct {
	To        domain.UserID             `json:"to"`
	ChannelID domain.ChannelID          `json:"channelId"`
	Signal    webrtc.SessionDescription `json:"signal"`
	CallType  string                    `json:"callType"`
}

type AnswerCallPayload struct {
	To     domain.UserID             `json:"to"`
	Signal webrtc.SessionDescription `json:"signal"`
}

type RejectCallPayload struct {
	To     domain.UserID `json:"to"`
	Reason string        `json:"reason,omitempty"`
}

type EndCallPayload struct {
	To     domain.UserID `json:"to"`
	Reason string        `json:"reason,omitempty"`
}

type IceCandidatePayload struct {
	To        domain.UserID           `json:"to"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

type HeartbeatPayload struct {
	Timestamp int64 `json:"timestamp"`
}

// Server-to-client events. Directed relay events always carry a from
// sender-identity field.

type AuthenticatedEvent struct {
	Type string         `json:"type"`
	User core.MemberDTO `json:"user"`
}

type UnauthorizedEvent struct {
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`
}

type NewMessageEvent struct {
	Type      string           `json:"type"`
	ChannelID domain.ChannelID `json:"channelId"`
	Content   string           `json:"content"`
	From      core.MemberDTO   `json:"from"`
}

type ChannelUpdatedEvent struct {
	Type      string           `json:"type"`
	ChannelID domain.ChannelID `json:"channelId"`
	Data      json.RawMessage  `json:"data,omitempty"`
}

type TypingEvent struct {
	Type      string           `json:"type"`
	ChannelID domain.ChannelID `json:"channelId"`
	UserID    domain.UserID    `json:"userId"`
	Name      string           `json:"name,omitempty"`
}

type CallOfferEvent struct {
	Type      string                    `json:"type"`
	From      core.MemberDTO            `json:"from"`
	ChannelID domain.ChannelID          `json:"channelId"`
	Signal    webrtc.SessionDescription `json:"signal"`
	CallType  string                    `json:"callType"`
}

type CallAnswerEvent struct {
	Type   string                    `json:"type"`
	From   core.MemberDTO            `json:"from"`
	Signal webrtc.SessionDescription `json:"signal"`
}

type CallRejectedEvent struct {
	Type   string         `json:"type"`
	From   core.MemberDTO `json:"from"`
	Reason string         `json:"reason,omitempty"`
}

type CallEndedEvent struct {
	Type   string         `json:"type"`
	From   core.MemberDTO `json:"from"`
	Reason string         `json:"reason,omitempty"`
}

type IceCandidateEvent struct {
	Type      string                  `json:"type"`
	From      core.MemberDTO          `json:"from"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

type HeartbeatAckEvent struct {
	Type       string `json:"type"`
	Timestamp  int64  `json:"timestamp,omitempty"`
	ServerTime int64  `json:"serverTime"`
}

// Encode marshals a server event into a wire frame.
func Encode(v any) (core.Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return core.Frame(b), nil
}
