package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/lifelink/internal/client/models"
	"github.com/dmitrijs2005/lifelink/internal/client/routes"
	"github.com/dmitrijs2005/lifelink/internal/client/services"
	"github.com/dmitrijs2005/lifelink/internal/client/widgets"
	"github.com/dmitrijs2005/lifelink/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getYesNo      = GetYesNo
)

func (a *App) ask(prompt string) (string, error) {
	return getSimpleText(a.reader, prompt, a.out)
}

func (a *App) askSecret(prompt string) (string, error) {
	pw, err := getPassword(prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// Register walks through the registration form. Local checks run before
// anything is sent; on success the user lands on their dashboard.
func (a *App) Register(ctx context.Context, _ []string) error {
	if !a.enter(ctx, common.PathRegister) {
		return nil
	}

	form := services.NewRegistrationForm()
	var err error

	if form.Name, err = a.ask("Full name (or facility name)"); err != nil {
		return err
	}
	if form.Email, err = a.ask("Email"); err != nil {
		return err
	}
	if form.Password, err = a.askSecret("Password"); err != nil {
		return err
	}
	if form.ConfirmPassword, err = a.askSecret("Confirm password"); err != nil {
		return err
	}
	if form.Phone, err = a.ask("Phone (optional)"); err != nil {
		return err
	}

	role, err := a.ask("Role: donor or medical (default donor)")
	if err != nil {
		return err
	}
	if role = strings.ToLower(role); role != "" {
		form.Role = models.Role(role)
	}

	if form.Role == models.RoleDonor {
		if form.BloodGroup, err = a.ask("Blood group (" + strings.Join(models.BloodGroups, " ") + ")"); err != nil {
			return err
		}
		form.BloodGroup = strings.ToUpper(form.BloodGroup)
	}

	detect, err := getYesNo(a.reader, "Detect location from this device?", a.out)
	if err != nil {
		return err
	}
	if detect {
		_ = a.registration.DetectLocation(ctx, &form, a.println)
	}
	if form.Latitude == "" && form.Longitude == "" {
		if form.Latitude, err = a.ask("Latitude (optional)"); err != nil {
			return err
		}
		if form.Longitude, err = a.ask("Longitude (optional)"); err != nil {
			return err
		}
	}

	if err := a.registration.Submit(ctx, form); err != nil {
		return err
	}

	snap := a.session.Snapshot()
	a.println("Account created. Welcome, " + snap.User.Name + ".")
	a.observeSession(ctx)
	a.navigate(ctx, routes.DashboardFor(snap.Role()))
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context, _ []string) error {
	if !a.enter(ctx, common.PathLogin) {
		return nil
	}

	email, err := a.ask("Email")
	if err != nil {
		return err
	}
	password, err := a.askSecret("Password")
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, strings.ToLower(strings.TrimSpace(email)), password); err != nil {
		return err
	}

	snap := a.session.Snapshot()
	a.println("Signed in as " + snap.User.Name + ".")
	a.observeSession(ctx)
	a.navigate(ctx, routes.DashboardFor(snap.Role()))
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	a.session.Logout(ctx)
	a.observeSession(ctx)
	a.navigate(ctx, common.PathLanding)
	a.println("Signed out.")
	return nil
}

// Whoami prints the signed-in account.
func (a *App) Whoami(_ context.Context, _ []string) error {
	snap := a.session.Snapshot()
	if !snap.Authenticated() {
		a.println("Not signed in.")
		return nil
	}
	return widgets.RenderProfile(a.out, *snap.User)
}
