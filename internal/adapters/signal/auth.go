package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/huddlechat/huddle/internal/core"
	"github.com/huddlechat/huddle/internal/domain"
	"github.com/huddlechat/huddle/internal/protocol"
)

// handleAuthenticate stores the supplied identity on the connection and
// claims the user's registry slot. The identity is trusted as-is; token
// verification happened upstream when the HTTP session was issued.
func (ctl *Controller) handleAuthenticate(c *client, data []byte) {
	var p protocol.AuthenticatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad authenticate payload")
		ctl.unauthorized(c, "bad_payload")
		return
	}

	identity, err := domain.NewIdentity(p.UserID, p.Name, p.Image)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("authenticate rejected")
		ctl.unauthorized(c, err.Error())
		return
	}

	c.sess.SetIdentity(identity)
	ctl.Hub.Registry.Register(identity.UserID, c.id)
	log.Info().Str("module", "signal").Str("conn", string(c.id)).Str("user", string(identity.UserID)).Msg("authenticated")

	ctl.sendJSON(c, protocol.AuthenticatedEvent{
		Type: protocol.EventAuthenticated,
		User: memberDTO(identity),
	})
}

func (ctl *Controller) unauthorized(c *client, reason string) {
	ctl.sendJSON(c, protocol.UnauthorizedEvent{
		Type:  protocol.EventUnauthorized,
		Error: reason,
	})
}

func memberDTO(id *domain.Identity) core.MemberDTO {
	return core.MemberDTO{UserID: id.UserID, Name: id.Name, Image: id.AvatarURL}
}
