package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/huddlechat/huddle/internal/protocol"
)

func (ctl *Controller) handleJoinChannel(c *client, data []byte) {
	var p protocol.ChannelPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ChannelID == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad joinChannel payload")
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(c.id)).Str("channel", string(p.ChannelID)).Msg("joinChannel")
	ctl.Hub.JoinChannel(c.id, p.ChannelID)
}

func (ctl *Controller) handleLeaveChannel(c *client, data []byte) {
	var p protocol.ChannelPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ChannelID == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad leaveChannel payload")
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(c.id)).Str("channel", string(p.ChannelID)).Msg("leaveChannel")
	ctl.Hub.LeaveChannel(c.id, p.ChannelID)
}

// handleSendMessage fans the message out to every other member of the
// channel room. Persistence happened upstream; this path is delivery only.
func (ctl *Controller) handleSendMessage(c *client, data []byte) {
	var p protocol.MessagePayload
	if err := json.Unmarshal(data, &p); err != nil || p.ChannelID == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad sendMessage payload")
		return
	}

	frame, err := protocol.Encode(protocol.NewMessageEvent{
		Type:      protocol.EventNewMessage,
		ChannelID: p.ChannelID,
		Content:   p.Content,
		From:      memberDTO(c.sess.Identity()),
	})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("encode newMessage")
		return
	}
	ctl.Hub.BroadcastChannel(p.ChannelID, frame, c.id)
}
