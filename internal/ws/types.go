package ws

// State is the connection lifecycle state.
type State uint8

const (
	// StateIdle means the manager has never connected.
	StateIdle State = iota
	// StateConnecting means a dial is in flight.
	StateConnecting
	// StateOpen means the transport is established and frames flow.
	StateOpen
	// StateClosed means the transport dropped; a reconnect may be pending.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

const (
	// pingFrame is the application-level keep-alive sent while open.
	pingFrame = "ping"
	// pongFrame is the server acknowledgment, swallowed before dispatch.
	pongFrame = "pong"
)
