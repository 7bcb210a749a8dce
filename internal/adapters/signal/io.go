package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/huddlechat/huddle/internal/metrics"
	"github.com/huddlechat/huddle/internal/protocol"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ping := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.Cfg.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Cfg.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cl *client, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(cl.id)).Msg("readPump closing")
		ctl.Hub.OnDisconnect(cl.id)
		c.Close()
		metrics.ActiveConnections.Dec()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(cl.id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("conn", string(cl.id)).Msg("readPump read error")
				return
			}
			ctl.handleEvent(cl, data)
		}
	}
}

// knownEvents bounds the metric label set; anything else counts as unknown.
var knownEvents = map[string]struct{}{
	protocol.EventAuthenticate:     {},
	protocol.EventJoinChannel:      {},
	protocol.EventLeaveChannel:     {},
	protocol.EventSendMessage:      {},
	protocol.EventTyping:           {},
	protocol.EventStopTyping:       {},
	protocol.EventCallUser:         {},
	protocol.EventAnswerCall:       {},
	protocol.EventRejectCall:       {},
	protocol.EventEndCall:          {},
	protocol.EventSendIceCandidate: {},
	protocol.EventHeartbeat:        {},
}

// handleEvent dispatches one inbound event. A malformed event is logged and
// ignored; nothing here escalates to a process-level error.
func (ctl *Controller) handleEvent(cl *client, data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}
	label := env.Type
	if _, ok := knownEvents[label]; !ok {
		label = "unknown"
	}
	metrics.EventsReceived.WithLabelValues(label).Inc()

	if env.Type == protocol.EventAuthenticate {
		ctl.handleAuthenticate(cl, data)
		return
	}

	// Any other event on an unauthenticated connection is dropped.
	if cl.sess.Identity() == nil {
		log.Warn().Str("module", "signal").Str("conn", string(cl.id)).Str("type", env.Type).Msg("event before authenticate, ignoring")
		return
	}

	switch env.Type {
	case protocol.EventJoinChannel:
		ctl.handleJoinChannel(cl, data)
	case protocol.EventLeaveChannel:
		ctl.handleLeaveChannel(cl, data)
	case protocol.EventSendMessage:
		ctl.handleSendMessage(cl, data)
	case protocol.EventTyping:
		ctl.handleTyping(cl, data)
	case protocol.EventStopTyping:
		ctl.handleStopTyping(cl, data)
	case protocol.EventCallUser:
		ctl.handleCallUser(cl, data)
	case protocol.EventAnswerCall:
		ctl.handleAnswerCall(cl, data)
	case protocol.EventRejectCall:
		ctl.handleRejectCall(cl, data)
	case protocol.EventEndCall:
		ctl.handleEndCall(cl, data)
	case protocol.EventSendIceCandidate:
		ctl.handleIceCandidate(cl, data)
	case protocol.EventHeartbeat:
		ctl.handleHeartbeat(cl, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
	}
}
