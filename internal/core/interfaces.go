package core

import "github.com/huddlechat/huddle/internal/domain"

// Frame is a raw encoded payload ready for the wire.
type Frame []byte

// ConnID is unique per physical connection, not per user.
type ConnID string

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// ClientSession binds a connection's identity and its transport endpoint.
// This is what rooms store and fan out to. Identity is nil until the
// connection authenticates.
type ClientSession interface {
	Identity() *domain.Identity
	SetIdentity(*domain.Identity)
	Signal() SignalConnection
}

// PublishResult reports delivery stats/backpressure to the hub.
type PublishResult struct {
	Delivered int
	Dropped   []ClientSession
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	UserID domain.UserID `json:"userId"`
	Name   string        `json:"name"`
	Image  string        `json:"image,omitempty"`
}

// RoomService is the core-facing API of a room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	Name() domain.RoomName
	MemberCount() int
	MembersSnapshot() []MemberDTO

	AddMember(id ConnID, cs ClientSession)
	RemoveMember(id ConnID)

	// Broadcast delivers data to every member except exclude. An empty
	// exclude matches nobody. Delivery order across members is unspecified.
	Broadcast(exclude ConnID, data Frame) PublishResult
}
