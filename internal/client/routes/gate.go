// Package routes is the view authorisation gate. Authorize is a pure
// function of the session snapshot and the requested view.
package routes

import (
	"strings"

	"github.com/dmitrijs2005/lifelink/internal/client/models"
	"github.com/dmitrijs2005/lifelink/internal/common"
)

// Requirement is what a view asks of the session.
type Requirement int

const (
	// RequireNone admits everyone.
	RequireNone Requirement = iota
	// RequireGuest is for login/register: authenticated users are sent to
	// their dashboard instead.
	RequireGuest
	RequireDonor
	RequireMedical
)

type View struct {
	Path        string
	Title       string
	Requirement Requirement
}

var Views = []View{
	{Path: common.PathLanding, Title: "LifeLink", Requirement: RequireNone},
	{Path: common.PathLogin, Title: "Sign in", Requirement: RequireGuest},
	{Path: common.PathRegister, Title: "Create account", Requirement: RequireGuest},
	{Path: common.PathDonorDashboard, Title: "Donor dashboard", Requirement: RequireDonor},
	{Path: common.PathMedicalDashboard, Title: "Medical console", Requirement: RequireMedical},
}

// Lookup finds the view registered for path. Trailing slashes are ignored.
func Lookup(path string) (View, bool) {
	p := strings.TrimSpace(path)
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	for _, v := range Views {
		if v.Path == p {
			return v, true
		}
	}
	return View{}, false
}

// Outcome is the gate's verdict.
type Outcome int

const (
	// Wait means the session is still restoring; render a neutral screen.
	Wait Outcome = iota
	Admit
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Wait:
		return "wait"
	case Admit:
		return "admit"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

type Decision struct {
	Outcome Outcome
	// Target is the path to go to when Outcome is Redirect.
	Target string
}

// Access is the part of the session the gate looks at.
type Access struct {
	Loading       bool
	Authenticated bool
	Role          models.Role
}

// DashboardFor returns the home view of role.
func DashboardFor(role models.Role) string {
	if role == models.RoleMedical {
		return common.PathMedicalDashboard
	}
	return common.PathDonorDashboard
}

// Authorize applies the policy, in order: wait while loading; admit views
// without a requirement; send guests-only views' authenticated visitors to
// their dashboard; send anonymous visitors to login; send a role mismatch
// to the visitor's own dashboard.
func Authorize(a Access, req Requirement) Decision {
	if a.Loading {
		return Decision{Outcome: Wait}
	}

	switch req {
	case RequireNone:
		return Decision{Outcome: Admit}
	case RequireGuest:
		if a.Authenticated {
			return Decision{Outcome: Redirect, Target: DashboardFor(a.Role)}
		}
		return Decision{Outcome: Admit}
	}

	if !a.Authenticated {
		return Decision{Outcome: Redirect, Target: common.PathLogin}
	}

	want := models.RoleDonor
	if req == RequireMedical {
		want = models.RoleMedical
	}
	if a.Role != want {
		return Decision{Outcome: Redirect, Target: DashboardFor(a.Role)}
	}
	return Decision{Outcome: Admit}
}
