// Package failure classifies flow errors and routes them to logs or user
// notifications from one place.
package failure

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies an error by how it should surface.
type Kind string

const (
	// KindValidation errors stay inline on the form.
	KindValidation Kind = "validation"
	// KindAuth errors abort the flow and close the modal with a notice.
	KindAuth Kind = "auth"
	// KindNetwork errors are announced where they occur; the form is kept.
	KindNetwork Kind = "network"
	// KindCanceled marks work abandoned because its context ended.
	KindCanceled Kind = "canceled"
	// KindUnhandled covers everything else. Logged, never shown.
	KindUnhandled Kind = "unhandled"
)

// Error is a classified failure from one step of a flow.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New wraps err with kind and op. A nil err yields nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validation wraps err as a validation failure.
func Validation(op string, err error) error { return New(KindValidation, op, err) }

// Auth wraps err as an authentication failure.
func Auth(op string, err error) error { return New(KindAuth, op, err) }

// Network wraps err as a transport or server failure. Context errors are
// classified as canceled instead.
func Network(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return New(KindCanceled, op, err)
	}
	return New(KindNetwork, op, err)
}

// Unhandled wraps err as an unexpected failure.
func Unhandled(op string, err error) error { return New(KindUnhandled, op, err) }

// Errorf builds a classified error from a format string.
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost *Error in err's chain. Bare
// context cancellation maps to KindCanceled; anything else unclassified is
// KindUnhandled. A nil err returns the empty kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) && fe.Kind != "" {
		return fe.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	return KindUnhandled
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
