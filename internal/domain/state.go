package domain

// ConnState is the lifecycle state of the robot connection.
type ConnState int

const (
	StateIdle ConnState = iota
	StateConnecting
	StateOpen
	StateClosed
	StateFailed
)

func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Active reports whether a transport is (or is about to be) held in this state.
func (s ConnState) Active() bool {
	return s == StateConnecting || s == StateOpen
}
