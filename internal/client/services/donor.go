package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/lifelink/internal/apperror"
	"github.com/dmitrijs2005/lifelink/internal/client/client"
	"github.com/dmitrijs2005/lifelink/internal/client/geolocation"
	"github.com/dmitrijs2005/lifelink/internal/client/models"
	"github.com/dmitrijs2005/lifelink/internal/common"
	"github.com/dmitrijs2005/lifelink/internal/geo"
	"github.com/dmitrijs2005/lifelink/internal/logging"
)

const (
	updateFailedMessage   = "Update failed"
	locationFailedMessage = "Location upload failed."
	toggleFailedMessage   = "Could not change availability."
)

// DonorService is the donor dashboard: profile edits, location sync and
// the availability switch. Every result is merged into the session only
// after the directory confirms it.
type DonorService struct {
	session *Session
	client  client.Client
	locator geolocation.Locator
	log     logging.Logger
}

func NewDonorService(session *Session, c client.Client, locator geolocation.Locator, log logging.Logger) *DonorService {
	return &DonorService{session: session, client: c, locator: locator, log: log}
}

func (d *DonorService) requireDonor() error {
	snap := d.session.Snapshot()
	if !snap.Authenticated() {
		return apperror.Auth("Please log in first.", common.ErrNotAuthenticated)
	}
	if snap.Role() != models.RoleDonor {
		return apperror.Auth("Only donors can do that.", common.ErrWrongRole)
	}
	return nil
}

// Refresh reloads the profile from the directory.
func (d *DonorService) Refresh(ctx context.Context) error {
	return d.session.RefreshProfile(ctx)
}

// UpdateProfile normalises and validates upd, sends it, and merges the
// user record the directory returns.
func (d *DonorService) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) error {
	upd.Name = strings.TrimSpace(upd.Name)
	upd.Email = strings.ToLower(strings.TrimSpace(upd.Email))
	upd.Phone = strings.TrimSpace(upd.Phone)
	upd.BloodGroup = strings.TrimSpace(upd.BloodGroup)

	if upd.BloodGroup != "" && !models.ValidBloodGroup(upd.BloodGroup) {
		return apperror.Validation("bloodGroup", "Unknown blood group.")
	}
	if upd == (models.ProfileUpdate{}) {
		return apperror.Validation("", "Nothing to update.")
	}

	return d.session.Mutate(ctx, updateFailedMessage, func(ctx context.Context) (models.UserPatch, error) {
		u, err := d.client.UpdateProfile(ctx, upd)
		if err != nil {
			return models.UserPatch{}, err
		}
		return models.PatchFromUser(*u), nil
	})
}

// SyncLocation reads the device position and uploads it rounded to six
// decimals. A capability failure leaves the stored location untouched.
func (d *DonorService) SyncLocation(ctx context.Context) (geo.Coordinate, error) {
	if err := d.requireDonor(); err != nil {
		return geo.Coordinate{}, err
	}

	pos, err := d.locator.CurrentPosition(ctx)
	if err != nil {
		d.log.Warn(ctx, "device position unavailable", "error", err)
		return geo.Coordinate{}, capabilityError(err)
	}
	pos = pos.Rounded()

	return pos, d.SetLocation(ctx, pos)
}

// SetLocation uploads a manually entered position.
func (d *DonorService) SetLocation(ctx context.Context, pos geo.Coordinate) error {
	if err := d.requireDonor(); err != nil {
		return err
	}
	if err := pos.Validate(); err != nil {
		return apperror.Validation("location", err.Error())
	}

	return d.session.Mutate(ctx, locationFailedMessage, func(ctx context.Context) (models.UserPatch, error) {
		loc, err := d.client.UpdateLocation(ctx, models.LocationUpdate{Longitude: pos.Longitude, Latitude: pos.Latitude})
		if err != nil {
			return models.UserPatch{}, err
		}
		return models.UserPatch{Location: loc}, nil
	})
}

// ToggleAvailability flips the availability flag and returns the value the
// directory settled on.
func (d *DonorService) ToggleAvailability(ctx context.Context) (bool, error) {
	if err := d.requireDonor(); err != nil {
		return false, err
	}

	var confirmed bool
	err := d.session.Mutate(ctx, toggleFailedMessage, func(ctx context.Context) (models.UserPatch, error) {
		v, err := d.client.ToggleAvailability(ctx)
		if err != nil {
			return models.UserPatch{}, err
		}
		confirmed = v
		return models.UserPatch{IsAvailable: &v}, nil
	})
	return confirmed, err
}

// capabilityError wraps a locator failure with the message shown next to
// the control that asked for a position.
func capabilityError(err error) *apperror.AppError {
	switch {
	case errors.Is(err, geolocation.ErrUnsupported):
		return apperror.Capability(geoUnsupportedMessage, err)
	default:
		return apperror.Capability(geoFailedMessage, err)
	}
}
