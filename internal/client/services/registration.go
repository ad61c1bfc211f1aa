package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/lifelink/internal/apperror"
	"github.com/dmitrijs2005/lifelink/internal/client/geolocation"
	"github.com/dmitrijs2005/lifelink/internal/client/models"
	"github.com/dmitrijs2005/lifelink/internal/geo"
	"github.com/dmitrijs2005/lifelink/internal/logging"
)

// Status lines shown next to the "detect location" control.
const (
	geoLocatingMessage    = "Locating..."
	geoVerifiedMessage    = "Position verified."
	geoFailedMessage      = "Failed. Enter manually."
	geoUnsupportedMessage = "GPS not supported."
)

const MinPasswordLength = 6

// RegistrationForm holds the registration fields as typed. Coordinates
// stay strings until submission; empty means "not supplied".
type RegistrationForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
	Role            models.Role
	BloodGroup      string
	Latitude        string
	Longitude       string
}

// NewRegistrationForm returns an empty form with the donor role selected.
func NewRegistrationForm() RegistrationForm {
	return RegistrationForm{Role: models.RoleDonor}
}

// Validate runs the local checks, in the order the form reports them.
func (f RegistrationForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return apperror.Validation("name", "Name is required.")
	}
	if strings.TrimSpace(f.Email) == "" {
		return apperror.Validation("email", "Email is required.")
	}
	if len(f.Password) < MinPasswordLength {
		return apperror.Validation("password", "Password too short.")
	}
	if f.Password != f.ConfirmPassword {
		return apperror.Validation("confirmPassword", "Passwords mismatch.")
	}
	if !f.Role.Valid() {
		return apperror.Validation("role", "Choose donor or medical.")
	}
	if f.Role == models.RoleDonor && f.BloodGroup == "" {
		return apperror.Validation("bloodGroup", "Select blood group.")
	}
	if f.BloodGroup != "" && !models.ValidBloodGroup(f.BloodGroup) {
		return apperror.Validation("bloodGroup", "Unknown blood group.")
	}
	if _, err := geo.ParseOptional(f.Latitude, f.Longitude); err != nil {
		return apperror.Validation("location", "Invalid coordinates.")
	}
	return nil
}

// Request validates the form and builds the wire request: the email is
// trimmed and lower-cased and missing coordinates travel as "0".
func (f RegistrationForm) Request() (models.RegisterRequest, error) {
	if err := f.Validate(); err != nil {
		return models.RegisterRequest{}, err
	}

	req := models.RegisterRequest{
		Name:      strings.TrimSpace(f.Name),
		Email:     strings.ToLower(strings.TrimSpace(f.Email)),
		Password:  f.Password,
		Phone:     strings.TrimSpace(f.Phone),
		Role:      f.Role,
		Longitude: orZero(f.Longitude),
		Latitude:  orZero(f.Latitude),
	}
	if f.Role == models.RoleDonor {
		req.BloodGroup = f.BloodGroup
	}
	return req, nil
}

func orZero(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "0"
	}
	return s
}

// RegistrationService drives the registration view.
type RegistrationService struct {
	session *Session
	locator geolocation.Locator
	log     logging.Logger
}

func NewRegistrationService(session *Session, locator geolocation.Locator, log logging.Logger) *RegistrationService {
	return &RegistrationService{session: session, locator: locator, log: log}
}

// DetectLocation fills the form's coordinates from the device. status
// receives each progress line. On failure the fields keep their previous
// values and a capability error is returned.
func (r *RegistrationService) DetectLocation(ctx context.Context, form *RegistrationForm, status func(string)) error {
	if status == nil {
		status = func(string) {}
	}
	if !geolocation.Supported(r.locator) {
		status(geoUnsupportedMessage)
		return apperror.Capability(geoUnsupportedMessage, geolocation.ErrUnsupported)
	}

	status(geoLocatingMessage)
	pos, err := r.locator.CurrentPosition(ctx)
	if err != nil {
		r.log.Warn(ctx, "registration geolocation failed", "error", err)
		status(geoFailedMessage)
		return capabilityError(err)
	}

	pos = pos.Rounded()
	form.Latitude = geo.FormatComponent(pos.Latitude)
	form.Longitude = geo.FormatComponent(pos.Longitude)
	status(geoVerifiedMessage)
	return nil
}

// Submit validates the form locally and, only if it passes, registers
// through the session.
func (r *RegistrationService) Submit(ctx context.Context, form RegistrationForm) error {
	req, err := form.Request()
	if err != nil {
		return err
	}
	return r.session.Register(ctx, req)
}
