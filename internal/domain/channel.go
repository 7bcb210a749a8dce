package domain

type (
	ChannelID string
	RoomName  string
)

// ChannelRoom derives the broadcast room name for a channel. Room membership
// is never persisted; a connection re-joins on every new physical connection.
func ChannelRoom(id ChannelID) RoomName {
	return RoomName("channel:" + string(id))
}
