package types

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindInvalidRelayID   ErrorKind = "invalid_relay_id"
	KindInvalidAction    ErrorKind = "invalid_action"
	KindMissingParameter ErrorKind = "missing_parameter"
	KindUnknownCommand   ErrorKind = "unknown_command"
)

// Sentinels for errors.Is checks against *Error values.
var (
	ErrInvalidRelayID   = &Error{Kind: KindInvalidRelayID}
	ErrInvalidAction    = &Error{Kind: KindInvalidAction}
	ErrMissingParameter = &Error{Kind: KindMissingParameter}
	ErrUnknownCommand   = &Error{Kind: KindUnknownCommand}
)

// Error is a recoverable command error. It is always turned into a JSON
// error payload at the transport boundary.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds an error of the given kind with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// InvalidRelayID reports an id outside 1..count.
func InvalidRelayID(count int) *Error {
	return NewError(KindInvalidRelayID, "Invalid relay_id. Must be between 1 and %d", count)
}

// KindOf extracts the kind of err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
