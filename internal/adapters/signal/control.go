package signal

import (
	"encoding/json"
	"time"

	"github.com/huddlechat/huddle/internal/protocol"
)

// handleHeartbeat is a liveness probe only; it echoes the client timestamp
// alongside server time.
func (ctl *Controller) handleHeartbeat(c *client, data []byte) {
	var p protocol.HeartbeatPayload
	_ = json.Unmarshal(data, &p)

	ctl.sendJSON(c, protocol.HeartbeatAckEvent{
		Type:       protocol.EventHeartbeatAck,
		Timestamp:  p.Timestamp,
		ServerTime: time.Now().UnixMilli(),
	})
}
