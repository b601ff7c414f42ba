package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-donorform/pkg/validation"
)

var (
	// ErrPending is returned when Submit is called while a previous submit
	// callback has not returned yet.
	ErrPending = errors.New("form: submission pending")
	// ErrUnknownField is returned when a value targets an undeclared field.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrValueType is returned when a value does not match the field kind.
	ErrValueType = errors.New("form: value type mismatch")
)

// InvalidError is returned by Submit when validation blocks the submission.
type InvalidError struct {
	Errors validation.Errors
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("form: invalid fields: %s", strings.Join(e.Errors.Fields(), ", "))
}

// Unwrap exposes the underlying validation errors.
func (e *InvalidError) Unwrap() error {
	return e.Errors
}
