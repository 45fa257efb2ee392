// Package ledgererr holds the error taxonomy shared by the ledger workflows.
package ledgererr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrNotFound           = errors.New("not found")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrBusy               = errors.New("resource busy")
)

// Error carries a user-facing message next to its kind. errors.Is matches the kind.
type Error struct {
	Kind    error
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Field)
}

func (e *Error) Unwrap() error { return e.Kind }

func Validation(field, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func InsufficientFunds(format string, args ...any) error {
	return &Error{Kind: ErrInsufficientFunds, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransition(format string, args ...any) error {
	return &Error{Kind: ErrInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity, id string) error {
	return &Error{Kind: ErrNotFound, Field: entity, Message: entity + " " + id + " not found"}
}

func Invariant(format string, args ...any) error {
	return &Error{Kind: ErrInvariantViolation, Message: fmt.Sprintf(format, args...)}
}

func Busy(format string, args ...any) error {
	return &Error{Kind: ErrBusy, Message: fmt.Sprintf(format, args...)}
}

// Message returns the user-facing message of a ledger error, or err.Error() otherwise.
func Message(err error) string {
	var le *Error
	if errors.As(err, &le) {
		return le.Message
	}
	return err.Error()
}
