package discord

import "sync/atomic"

// State is the lifecycle of the gateway connection.
type State int32

const (
	StateConnecting State = iota
	StateReady
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// readiness holds the current State. Transitions come only from gateway
// events and from Open failing.
type readiness struct {
	v atomic.Int32
}

func (r *readiness) set(s State) State {
	return State(r.v.Swap(int32(s)))
}

func (r *readiness) get() State {
	return State(r.v.Load())
}
