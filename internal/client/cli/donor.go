package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/lifelink/internal/apperror"
	"github.com/dmitrijs2005/lifelink/internal/client/models"
	"github.com/dmitrijs2005/lifelink/internal/client/widgets"
	"github.com/dmitrijs2005/lifelink/internal/common"
	"github.com/dmitrijs2005/lifelink/internal/geo"
)

// Profile reloads the donor record from the directory and prints it.
func (a *App) Profile(ctx context.Context, _ []string) error {
	if !a.enter(ctx, common.PathDonorDashboard) {
		return nil
	}
	if err := a.donor.Refresh(ctx); err != nil {
		return err
	}
	return widgets.RenderProfile(a.out, *a.session.Snapshot().User)
}

// Edit asks for new profile values. Empty answers keep the current value.
func (a *App) Edit(ctx context.Context, _ []string) error {
	if !a.enter(ctx, common.PathDonorDashboard) {
		return nil
	}
	u := a.session.Snapshot().User

	var upd models.ProfileUpdate
	var err error
	if upd.Name, err = a.ask(fmt.Sprintf("Name [%s]", u.Name)); err != nil {
		return err
	}
	if upd.Email, err = a.ask(fmt.Sprintf("Email [%s]", u.Email)); err != nil {
		return err
	}
	if upd.Phone, err = a.ask(fmt.Sprintf("Phone [%s]", u.Phone)); err != nil {
		return err
	}
	if upd.BloodGroup, err = a.ask(fmt.Sprintf("Blood group [%s]", u.BloodGroup)); err != nil {
		return err
	}
	upd.BloodGroup = strings.ToUpper(upd.BloodGroup)

	if err := a.donor.UpdateProfile(ctx, upd); err != nil {
		return err
	}
	a.println("Profile updated.")
	return nil
}

// Location uploads "location <lat> <lon>" as typed, or the device
// position when no arguments are given.
func (a *App) Location(ctx context.Context, args []string) error {
	if !a.enter(ctx, common.PathDonorDashboard) {
		return nil
	}

	switch len(args) {
	case 0:
		pos, err := a.donor.SyncLocation(ctx)
		if err != nil {
			return err
		}
		a.println("Location synced: " + pos.String())
	case 2:
		pos, err := geo.ParseCoordinate(args[0], args[1])
		if err != nil {
			return apperror.Validation("location", "Invalid coordinates.")
		}
		if err := a.donor.SetLocation(ctx, pos); err != nil {
			return err
		}
		a.println("Location saved: " + pos.String())
	default:
		a.println("Usage: location [<lat> <lon>]")
	}
	return nil
}

// Toggle flips the donor's availability.
func (a *App) Toggle(ctx context.Context, _ []string) error {
	if !a.enter(ctx, common.PathDonorDashboard) {
		return nil
	}
	available, err := a.donor.ToggleAvailability(ctx)
	if err != nil {
		return err
	}
	if available {
		a.println("You are now visible to facilities: Ready to Donate.")
	} else {
		a.println("You are hidden from searches: Currently Offline.")
	}
	return nil
}
