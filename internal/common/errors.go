package common

import "errors"

var (
	// storage errors
	ErrorNotFound = errors.New("not found")

	// credential errors
	ErrInvalidToken = errors.New("invalid token")

	// session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrWrongRole        = errors.New("operation not permitted for this role")
)
