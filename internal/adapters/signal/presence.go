package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/huddlechat/huddle/internal/protocol"
)

func (ctl *Controller) handleTyping(c *client, data []byte) {
	var p protocol.ChannelPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ChannelID == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad typing payload")
		return
	}
	id := c.sess.Identity()
	ctl.Hub.Typing.MarkTyping(p.ChannelID, id.UserID, id.Name, c.id)
}

func (ctl *Controller) handleStopTyping(c *client, data []byte) {
	var p protocol.ChannelPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ChannelID == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad stopTyping payload")
		return
	}
	ctl.Hub.Typing.MarkStopped(p.ChannelID, c.sess.Identity().UserID, c.id)
}
