package services

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/lifelink/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry reads the exp claim without verifying the signature; the
// client holds no key and only needs to know when to stop trusting the
// token. ok is false when the token carries no exp claim.
func tokenExpiry(token string) (exp time.Time, ok bool, err error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	nd, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if nd == nil {
		return time.Time{}, false, nil
	}
	return nd.Time, true, nil
}

// tokenExpired reports whether token has a readable exp claim in the past.
// Opaque tokens are never considered expired here; the directory decides.
func tokenExpired(token string, now time.Time) bool {
	exp, ok, err := tokenExpiry(token)
	if err != nil || !ok {
		return false
	}
	return !now.Before(exp)
}
