// Package apperr holds the error taxonomy shared by the board and account workflows.
// Services return *Error values; the HTTP layer maps their kind onto a response status.
package apperr

import (
	"errors"
	"fmt"
)

// Kinds. Match them with errors.Is.
var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrPermission      = errors.New("permission error")
	ErrNotFound        = errors.New("not found")
	ErrState           = errors.New("state error")
	ErrConflict        = errors.New("conflict")
	ErrTransient       = errors.New("transient error")
)

// ErrRecordNotFound is returned by repositories when a row does not exist.
// Services translate it into a NotFound error with a user-facing message.
var ErrRecordNotFound = errors.New("record not found")

type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.Kind }

func Validation(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

func Permission(msg string) error { return &Error{Kind: ErrPermission, Message: msg} }

func Unauthenticated(msg string) error { return &Error{Kind: ErrUnauthenticated, Message: msg} }

func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func State(msg string) error { return &Error{Kind: ErrState, Message: msg} }

func Conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

func Transient(msg string, err error) error {
	return &Error{Kind: ErrTransient, Message: msg, Err: err}
}

// Message returns the user-facing message of err, or fallback when err carries none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
