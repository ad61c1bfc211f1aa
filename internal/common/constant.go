// Package common contains shared constants and sentinel errors used across
// LifeLink client components.
package common

// Header names set on every outbound directory request.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerPrefix            = "Bearer "
)

// Durable storage keys. The token and the user record are written and
// removed together.
const (
	TokenStorageKey = "lifelink_token"
	UserStorageKey  = "lifelink_user"
)

// View paths.
const (
	PathLanding          = "/"
	PathLogin            = "/login"
	PathRegister         = "/register"
	PathDonorDashboard   = "/donor/dashboard"
	PathMedicalDashboard = "/medical/dashboard"
)
