package models

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrInvariant     = errors.New("invariant violation")
	ErrConfiguration = errors.New("configuration error")
)

// Error carries a specific, user facing message for one of the error kinds.
type Error struct {
	Kind    error
	Message string
}

// Error returns the user-visible message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the error kind for errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}

// Validationf builds an ErrValidation error.
func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds an ErrNotFound error.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Invariantf builds an ErrInvariant error.
func Invariantf(format string, args ...any) error {
	return &Error{Kind: ErrInvariant, Message: fmt.Sprintf(format, args...)}
}

// Configurationf builds an ErrConfiguration error.
func Configurationf(format string, args ...any) error {
	return &Error{Kind: ErrConfiguration, Message: fmt.Sprintf(format, args...)}
}
