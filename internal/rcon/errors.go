package rcon

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned when Authenticate or Execute is called on
// a session whose Connect never succeeded.
var ErrNotConnected = errors.New("rcon: not connected")

// ErrNotAuthenticated is returned when Execute is called before a
// successful Authenticate.
var ErrNotAuthenticated = errors.New("rcon: not authenticated")

// ProtocolKind classifies protocol-level failures.
type ProtocolKind int

const (
	// KindAuthRejected means the server refused the credential (or, for
	// the web transport, closed the socket before acknowledging auth).
	KindAuthRejected ProtocolKind = iota

	// KindMalformed means the server sent data that does not parse as a
	// valid frame for the transport.
	KindMalformed

	// KindTimeout means the server accepted the connection but a
	// response did not arrive within the operation timeout.
	KindTimeout
)

func (k ProtocolKind) String() string {
	switch k {
	case KindAuthRejected:
		return "auth_rejected"
	case KindMalformed:
		return "malformed"
	case KindTimeout:
		return "timeout"
	}
	return "unknown"
}

// ProtocolError is a failure inside an established session: rejected
// credentials, unparsable frames, or a missing response. All variants
// are retryable by a fresh attempt, since sessions are never reused.
type ProtocolError struct {
	Kind ProtocolKind
	Err  error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rcon: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("rcon: %s", e.Kind)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// ConnError is a transport-establishment failure: refused, unreachable,
// DNS failure, or a dial that timed out.
type ConnError struct {
	Addr string
	Err  error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("rcon: connect %s: %v", e.Addr, e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

// ErrorKind returns a short stable label for an attempt error, suitable
// for logging and for the check history.
func ErrorKind(err error) string {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Kind.String()
	}
	var ce *ConnError
	if errors.As(err, &ce) {
		return "connection"
	}
	return "other"
}
