package app

import "studyhall/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropConnection
	DropFrame
)

// Policy decides what to do with a connection whose send buffer stayed
// full during a fanout.
type Policy interface {
	OnBackPressure(room core.Channel, sid core.SessionID) BackpressureAction
}

// SimplePolicy treats a saturated connection as dead: the transport will
// surface a real disconnect for it either way.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(room core.Channel, sid core.SessionID) BackpressureAction {
	return DropConnection
}
