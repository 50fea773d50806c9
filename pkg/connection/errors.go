package connection

import "fmt"

// ErrorKind tags the taxonomy of errors the connection manager surfaces, per
// spec.md §7.
type ErrorKind int

const (
	ErrHostUnknown ErrorKind = iota
	ErrNotConnected
	ErrTransportError
	ErrAuthError
	ErrKeyUnavailable
	ErrTimeout
	ErrRemoteExit
	ErrOverlongFrame
)

var errorKindNames = map[ErrorKind]string{
	ErrHostUnknown:    "HostUnknown",
	ErrNotConnected:   "NotConnected",
	ErrTransportError: "TransportError",
	ErrAuthError:      "AuthError",
	ErrKeyUnavailable: "KeyUnavailable",
	ErrTimeout:        "Timeout",
	ErrRemoteExit:     "RemoteExit",
	ErrOverlongFrame:  "OverlongFrame",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Error is the tagged-variant error surfaced by the connection manager.
// Detail carries the human-readable one-line description spec.md §7
// requires every error record to expose.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func newError(kind ErrorKind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}
