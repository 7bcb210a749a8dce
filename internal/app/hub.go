package app

import (
	"github.com/rs/zerolog/log"

	"github.com/huddlechat/huddle/internal/core"
	"github.com/huddlechat/huddle/internal/domain"
)

// Hub wires the registry, rooms, typing tracker and relay together and owns
// connection lifecycle orchestration. All state is process-local; a restart
// loses everything and clients re-authenticate on reconnect.
type Hub struct {
	Registry *Registry
	Rooms    *RoomManager
	Typing   *TypingTracker
	Relay    *Relay
	Policy   Policy
}

func NewHub(reg *Registry, rooms *RoomManager, typing *TypingTracker, relay *Relay, policy Policy) *Hub {
	return &Hub{
		Registry: reg,
		Rooms:    rooms,
		Typing:   typing,
		Relay:    relay,
		Policy:   policy,
	}
}

func (h *Hub) JoinChannel(id core.ConnID, ch domain.ChannelID) {
	cs, ok := h.Registry.Session(id)
	if !ok {
		return
	}
	h.Rooms.Join(id, cs, domain.ChannelRoom(ch))
}

func (h *Hub) LeaveChannel(id core.ConnID, ch domain.ChannelID) {
	h.Rooms.Leave(id, domain.ChannelRoom(ch))
}

// BroadcastChannel fans a frame out to the channel room and applies the
// backpressure policy to members that could not keep up.
func (h *Hub) BroadcastChannel(ch domain.ChannelID, frame core.Frame, exclude core.ConnID) {
	name := domain.ChannelRoom(ch)
	res := h.Rooms.Broadcast(name, frame, exclude)
	if h.Policy == nil || len(res.Dropped) == 0 {
		return
	}
	room, ok := h.Rooms.Room(name)
	if !ok {
		return
	}
	for _, slow := range res.Dropped {
		if h.Policy.OnBackPressure(room, slow) == KickMember {
			if id, ok := h.Registry.connOf(slow); ok {
				log.Warn().Str("module", "app.hub").Str("conn", string(id)).Msg("kicking slow consumer")
				h.Registry.Cancel(id)
			}
		}
	}
}

// OnDisconnect tears down everything a closed connection held: room
// memberships, the identity mapping (guarded against stale eviction) and the
// connection binding itself.
func (h *Hub) OnDisconnect(id core.ConnID) {
	h.Rooms.LeaveAll(id)
	h.Registry.Unregister(id)
	h.Registry.Unbind(id)
	log.Info().Str("module", "app.hub").Str("conn", string(id)).Msg("connection cleaned up")
}
