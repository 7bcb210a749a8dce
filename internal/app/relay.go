package app

import (
	"github.com/rs/zerolog/log"

	"github.com/huddlechat/huddle/internal/core"
	"github.com/huddlechat/huddle/internal/domain"
	"github.com/huddlechat/huddle/internal/metrics"
)

// Relay forwards a directed payload to the target user's current
// connection. It is stateless per call: resolve, forward, done. An offline
// target is a silent drop; the sender's client owns any "unreachable" UX by
// way of its own timeout.
type Relay struct {
	reg *Registry
}

func NewRelay(reg *Registry) *Relay {
	return &Relay{reg: reg}
}

// Send reports whether the frame reached a live connection. A false return
// is not an error condition; callers must not retry.
func (r *Relay) Send(to domain.UserID, frame core.Frame) bool {
	cs, ok := r.reg.ResolveSession(to)
	if !ok {
		metrics.RelayMisses.Inc()
		log.Debug().Str("module", "app.relay").Str("to", string(to)).Msg("target not registered, dropping")
		return false
	}
	if err := cs.Signal().TrySend(frame); err != nil {
		metrics.RelayMisses.Inc()
		log.Warn().Err(err).Str("module", "app.relay").Str("to", string(to)).Msg("relay send failed")
		return false
	}
	metrics.RelayDelivered.Inc()
	return true
}
