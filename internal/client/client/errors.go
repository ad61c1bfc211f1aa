package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable       = errors.New("directory unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrRejected          = errors.New("request rejected")
	ErrMalformedResponse = errors.New("malformed response")
)

// APIError is a non-2xx answer from the directory. Message is the
// server's "message" field when it sent one.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("directory: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("directory: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// ServerMessage returns the message the directory attached to err, if any.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

func statusError(status int) error {
	switch {
	case status == 401:
		return ErrUnauthorized
	case status >= 500:
		return ErrUnavailable
	default:
		return ErrRejected
	}
}
