package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/huddlechat/huddle/internal/app"
	"github.com/huddlechat/huddle/internal/domain"
	"github.com/huddlechat/huddle/internal/protocol"
)

// The delivery API is how the upstream CRUD app pushes events through the
// signaling core: fire-and-forget "deliver this to channel X" and "deliver
// this to user Y". The core gives no delivery guarantee beyond
// currently-connected sockets.

type deliverRequest struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type channelEvent struct {
	Type      string           `json:"type"`
	ChannelID domain.ChannelID `json:"channelId"`
	Data      json.RawMessage  `json:"data,omitempty"`
}

func deliverToChannel(hub *app.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req deliverRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Event == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid event"})
			return
		}
		ch := domain.ChannelID(c.Param("id"))

		frame, err := protocol.Encode(channelEvent{
			Type:      req.Event,
			ChannelID: ch,
			Data:      req.Data,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "encode failed"})
			return
		}
		res := hub.Rooms.Broadcast(domain.ChannelRoom(ch), frame, "")
		log.Info().Str("module", "adapters.http").Str("channel", string(ch)).Str("event", req.Event).Int("delivered", res.Delivered).Msg("channel delivery")
		c.JSON(http.StatusAccepted, gin.H{"delivered": res.Delivered})
	}
}

func deliverToUser(hub *app.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req deliverRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Event == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid event"})
			return
		}
		uid := domain.UserID(c.Param("id"))

		frame, err := protocol.Encode(struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data,omitempty"`
		}{req.Event, req.Data})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "encode failed"})
			return
		}
		delivered := hub.Relay.Send(uid, frame)
		c.JSON(http.StatusAccepted, gin.H{"delivered": delivered})
	}
}
