package session

import (
	"errors"
	"fmt"
)

var (
	ErrSessionStarted    = errors.New("session already started")
	ErrSessionTerminated = errors.New("session terminated")
	ErrTransportDown     = errors.New("transport connection lost")
	ErrServerRejected    = errors.New("server rejected the session")
	ErrMissingIdentity   = errors.New("missing local identity")
)

// SessionError annotates a failure with the operation that produced it.
type SessionError struct {
	Op      string
	Err     error
	Details string
}

func (e *SessionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Details)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

func NewError(op string, err error) *SessionError {
	return &SessionError{Op: op, Err: err}
}

func WrapError(op string, err error, details string) *SessionError {
	return &SessionError{Op: op, Err: err, Details: details}
}
