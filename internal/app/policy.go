package app

import "github.com/huddlechat/huddle/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what to do with a member whose send buffer is full.
type Policy interface {
	OnBackPressure(room core.RoomService, member core.ClientSession) BackpressureAction
}

// SimplePolicy kicks slow consumers; a stuck tab reconnects and re-joins.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(room core.RoomService, member core.ClientSession) BackpressureAction {
	return KickMember
}
