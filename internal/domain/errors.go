package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the engine can surface. The HTTP layer
// maps kinds to status codes; the engine itself never deals in transport.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindInvalidState
	KindInvalidTransition
	KindUnauthorized
	KindAlreadySubmitted
	KindSelfChallenge
	KindClassification
	KindStorage
	KindPartialFailure
	KindBadInput
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindUnauthorized:
		return "unauthorized"
	case KindAlreadySubmitted:
		return "already_submitted"
	case KindSelfChallenge:
		return "self_challenge"
	case KindClassification:
		return "classification_failed"
	case KindStorage:
		return "storage_failure"
	case KindPartialFailure:
		return "partial_failure"
	case KindBadInput:
		return "bad_input"
	default:
		return "unknown"
	}
}

// Error is a kinded error. Msg is safe to show to callers; Err carries the
// underlying cause for logs.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a kinded error.
func E(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds a kinded error around an underlying cause.
func Wrap(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind from err, or 0 if err is not a kinded error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
