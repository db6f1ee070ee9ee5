// Package access is the single place that turns a session plus a route requirement
// into a navigation decision. Call sites consume the decision and never compare
// roles themselves.
package access

import (
	"github.com/pentopublic/pentopublic-client/internal/domain/auth"
)

// Decision is the outcome of a gate check.
type Decision int

const (
	// Allow renders the route.
	Allow Decision = iota
	// ShowLoading defers the decision until startup rehydration has finished.
	ShowLoading
	// RedirectLogin sends an unauthenticated caller to the login page.
	RedirectLogin
	// RedirectUnauthorized sends an authenticated caller lacking the role away.
	RedirectUnauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case ShowLoading:
		return "show_loading"
	case RedirectLogin:
		return "redirect_login"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	default:
		return "unknown"
	}
}

// Requirement is what a route demands of the session.
// When both Role and Roles are set the session must satisfy each.
type Requirement struct {
	RequiresAuth bool
	Role         auth.Role
	Roles        []auth.Role
}

// Public is the zero requirement.
var Public = Requirement{}

// Authenticated requires any signed-in user.
func Authenticated() Requirement { return Requirement{RequiresAuth: true} }

// RequireRole requires a signed-in user holding exactly r.
func RequireRole(r auth.Role) Requirement { return Requirement{RequiresAuth: true, Role: r} }

// RequireAnyRole requires a signed-in user whose role is in rs.
func RequireAnyRole(rs ...auth.Role) Requirement {
	return Requirement{RequiresAuth: true, Roles: append([]auth.Role(nil), rs...)}
}

// Decide evaluates req against s. Order matters: loading, then authentication, then role, then role set.
func Decide(s auth.State, req Requirement) Decision {
	if s.Loading {
		return ShowLoading
	}
	if req.RequiresAuth && !s.IsAuthenticated() {
		return RedirectLogin
	}
	if req.Role != "" && !s.HasRole(req.Role) {
		return RedirectUnauthorized
	}
	if len(req.Roles) > 0 && !s.HasAnyRole(req.Roles...) {
		return RedirectUnauthorized
	}
	return Allow
}
