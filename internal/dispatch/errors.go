package dispatch

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindNotReady Kind = iota + 1
	KindInvalidArgument
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindNotReady:
		return "not ready"
	case KindInvalidArgument:
		return "invalid argument"
	case KindTransport:
		return "transport error"
	default:
		return "unknown"
	}
}

var (
	ErrNotReady        = errors.New("connection not ready")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrTransport       = errors.New("transport error")
)

// Error is the failure value of a dispatch. errors.Is matches it against
// ErrNotReady, ErrInvalidArgument or ErrTransport by Kind.
type Error struct {
	Kind  Kind
	Field string
	Value string
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotReady:
		return "not ready: connect to the robot first"
	case KindInvalidArgument:
		if e.Field != "" {
			return fmt.Sprintf("invalid argument %s=%q: %v", e.Field, e.Value, e.Err)
		}
		return fmt.Sprintf("invalid argument: %v", e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotReady:
		return e.Kind == KindNotReady
	case ErrInvalidArgument:
		return e.Kind == KindInvalidArgument
	case ErrTransport:
		return e.Kind == KindTransport
	}
	return false
}

// KindOf extracts the dispatch kind from err, 0 if err is not a dispatch error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}
