package services

import (
	"errors"

	"github.com/dmitrijs2005/lifelink/internal/apperror"
	"github.com/dmitrijs2005/lifelink/internal/client/client"
)

// classify maps a directory failure onto the error taxonomy. The server's
// own message wins over fallback when it sent one.
func classify(err error, fallback string) *apperror.AppError {
	var ae *apperror.AppError
	if errors.As(err, &ae) {
		return ae
	}

	msg := client.ServerMessage(err)
	if msg == "" {
		msg = fallback
	}

	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return apperror.Auth(msg, err)
	case errors.Is(err, client.ErrRejected):
		v := apperror.Validation("", msg)
		v.Cause = err
		return v
	default:
		return apperror.Transport(fallback, err)
	}
}

// classifyAuth is classify for login and register, where any rejection
// means the credentials or the form were refused.
func classifyAuth(err error, fallback string) *apperror.AppError {
	if errors.Is(err, client.ErrRejected) || errors.Is(err, client.ErrUnauthorized) {
		msg := client.ServerMessage(err)
		if msg == "" {
			msg = fallback
		}
		return apperror.Auth(msg, err)
	}
	return classify(err, fallback)
}
