// Package apperror is the client's error taxonomy. Every failure surfaced
// to a user is one of four kinds; callers match the kind with errors.Is
// and show Message.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation: rejected locally before any network call, never retried.
	ErrValidation = errors.New("validation error")
	// ErrAuth: bad credentials or an expired/invalid token.
	ErrAuth = errors.New("auth error")
	// ErrTransport: network failure or a response we could not understand.
	ErrTransport = errors.New("transport error")
	// ErrCapability: a local platform capability (geolocation) failed.
	ErrCapability = errors.New("capability error")
)

type AppError struct {
	Err     error  // kind sentinel
	Message string // human-readable message
	Field   string // optional: input field at fault
	Cause   error  // optional: underlying error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func Validation(field, message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message, Field: field}
}

func Auth(message string, cause error) *AppError {
	return &AppError{Err: ErrAuth, Message: message, Cause: cause}
}

func Transport(message string, cause error) *AppError {
	return &AppError{Err: ErrTransport, Message: message, Cause: cause}
}

func Capability(message string, cause error) *AppError {
	return &AppError{Err: ErrCapability, Message: message, Cause: cause}
}

// UserMessage returns the message to show for err. AppErrors carry their
// own; anything else falls back to fallback.
func UserMessage(err error, fallback string) string {
	var ae *AppError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return fallback
}

// Kind returns the taxonomy sentinel for err, or nil when err is not
// classified.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrAuth, ErrTransport, ErrCapability} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
