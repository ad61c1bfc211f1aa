package client

import (
	"context"

	"github.com/dmitrijs2005/lifelink/internal/client/models"
)

// Client is the directory service contract the rest of the client depends on.
type Client interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.Credential, error)
	Login(ctx context.Context, email, password string) (*models.Credential, error)

	// GetProfile returns the account behind the held credential (GET /auth/me).
	GetProfile(ctx context.Context) (*models.UserRecord, error)
	// GetUserProfile returns the donor-facing profile (GET /user/profile).
	GetUserProfile(ctx context.Context) (*models.UserRecord, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.UserRecord, error)
	UpdateLocation(ctx context.Context, upd models.LocationUpdate) (*models.GeoPoint, error)
	ToggleAvailability(ctx context.Context) (bool, error)

	SearchDonors(ctx context.Context, q models.SearchQuery) ([]models.DonorResult, error)
	GetDonorStats(ctx context.Context) (*models.DonorStats, error)

	// Subscribe registers fn for transport events and returns a function
	// that removes it.
	Subscribe(fn func(Event)) (unsubscribe func())
}

// TokenSource supplies the bearer credential for outgoing requests. An
// empty token means the request is sent without an Authorization header.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }
