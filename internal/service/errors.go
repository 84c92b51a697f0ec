package service

import (
	"errors"
	"fmt"

	"todo-collab/internal/repository"
)

// Kind classifies a failure for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindInvalid
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInvalid:
		return "invalid"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error carries a short caller-facing message. Err holds the underlying
// cause and is never shown to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of err. Errors not produced by this package are
// internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of err, or fallback for
// internal failures.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return fallback
}

func unauthenticated(msg string) error { return &Error{Kind: KindUnauthenticated, Message: msg} }
func forbidden(msg string) error       { return &Error{Kind: KindForbidden, Message: msg} }
func notFound(msg string) error        { return &Error{Kind: KindNotFound, Message: msg} }
func invalid(msg string) error         { return &Error{Kind: KindInvalid, Message: msg} }
func conflict(msg string) error        { return &Error{Kind: KindConflict, Message: msg} }

func internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// lookupError turns a store lookup failure into NotFound or Internal.
func lookupError(err error, missing, failed string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(missing)
	}
	return internal(failed, err)
}
