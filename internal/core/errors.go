package core

import (
	"errors"
	"fmt"
)

var (
	ErrTitleTooShort = errors.New("title must be at least 3 characters")
	ErrTitleTooLong  = errors.New("title too long (max 200 characters)")
	ErrInvalidAmount = errors.New("amount must be a positive number")
	ErrEmptyCategory = errors.New("category is required")
	ErrInvalidDate   = errors.New("invalid date")

	// ErrNotFound is returned when the target record is absent from the collection.
	ErrNotFound = errors.New("expense not found")
)

// ValidationError reports a form constraint failure. It is raised before any
// network call is made.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure talking to the remote collection.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTransport reports whether err carries a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
