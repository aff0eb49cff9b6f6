// Package gate decides route admission from session state. Decisions never
// error: a missing session or missing role always resolves to a redirect,
// and nothing is admitted while the session is still hydrating.
package gate

import (
	"strings"

	"github.com/ntumia/mediahub/internal/policy"
)

// SessionPhase is the lifecycle of a client session as the gate sees it.
type SessionPhase int

const (
	// PhaseHydrating means the session state is not yet determined; all
	// gating is deferred so no protected render or redirect happens early.
	PhaseHydrating SessionPhase = iota
	PhaseUnauthenticated
	PhaseAuthenticated
)

// Session is the gate's view of the caller.
type Session struct {
	Phase SessionPhase
	Role  policy.Role
}

// Outcome of a gating decision.
type Outcome int

const (
	// Defer: hold rendering, session still hydrating.
	Defer Outcome = iota
	// Render: admit the route.
	Render
	// Redirect: send the client to Decision.Location instead.
	Redirect
)

type Decision struct {
	Outcome  Outcome
	Location string
}

const (
	PublicLanding = "/"
	DashboardHome = "/dashboard"
	AdminHome     = "/admin"
)

// publicOnly routes are for signed-out visitors; authenticated users are
// bounced to their role-appropriate home.
var publicOnly = map[string]bool{
	"/":                true,
	"/login":           true,
	"/signup":          true,
	"/forgot-password": true,
}

// roleRequired maps route prefixes to the role they demand.
var roleRequired = map[string]policy.Role{
	"/admin": policy.RoleAdmin,
}

// Decide resolves admission for a route path given the session.
func Decide(s Session, path string) Decision {
	if s.Phase == PhaseHydrating {
		return Decision{Outcome: Defer}
	}

	if s.Phase == PhaseUnauthenticated {
		if publicOnly[path] {
			return Decision{Outcome: Render}
		}
		return Decision{Outcome: Redirect, Location: PublicLanding}
	}

	// Authenticated from here on.
	if publicOnly[path] {
		return Decision{Outcome: Redirect, Location: homeFor(s.Role)}
	}

	if required, ok := requiredRole(path); ok && s.Role != required {
		// Lacking the role is not an error: fall back to the dashboard.
		return Decision{Outcome: Redirect, Location: DashboardHome}
	}

	return Decision{Outcome: Render}
}

func homeFor(role policy.Role) string {
	if role == policy.RoleAdmin {
		return AdminHome
	}
	return DashboardHome
}

func requiredRole(path string) (policy.Role, bool) {
	for prefix, role := range roleRequired {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return role, true
		}
	}
	return "", false
}
