package domain

import (
	"fmt"
	"time"
)

type EventKind int

const (
	EventOpened EventKind = iota
	EventClosed
	EventError
	EventMessage
	EventConnecting
)

func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "opened"
	case EventClosed:
		return "closed"
	case EventError:
		return "error"
	case EventMessage:
		return "message"
	case EventConnecting:
		return "connecting"
	default:
		return "unknown"
	}
}

// Event is one entry of the connection event stream.
// Data is set only for EventMessage and holds the raw inbound frame.
type Event struct {
	Kind      EventKind `json:"kind"`
	State     ConnState `json:"state"`
	SessionID string    `json:"session_id,omitempty"`
	Message   string    `json:"message"`
	Data      []byte    `json:"data,omitempty"`
	At        time.Time `json:"at"`
}

// String is the display line for an append-only log view.
func (e Event) String() string {
	return fmt.Sprintf("%s [%s] %s", e.At.Format("15:04:05"), e.Kind, e.Message)
}
