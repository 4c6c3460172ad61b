// Package guard decides whether a navigation target may render, given a
// session snapshot. Guards are pure functions: no I/O, no subscriptions,
// just a decision from the state handed to them.
package guard

import "notebridge/pkg/client/session"

// Kind is the outcome of a guard decision.
type Kind string

const (
	// ShowLoading means the session flags are not derived yet, or an
	// auth operation is resolving; render a spinner, not the target.
	ShowLoading Kind = "SHOW_LOADING"
	// Redirect means navigate to Decision.Target instead of rendering.
	Redirect Kind = "REDIRECT"
	// Allow means render the guarded target.
	Allow Kind = "ALLOW"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Decision is what a guard tells the navigation layer to do. Replace
// signals that the redirect should replace the current history entry so
// back-navigation does not loop through the guard.
type Decision struct {
	Kind    Kind
	Target  string
	Replace bool
}

// Options narrows a protected route to a role.
type Options struct {
	RequireAdmin   bool
	RequireTeacher bool
}

// Protected gates a route that needs an authenticated session, optionally
// with a role. Unauthenticated users go to the login page; authenticated
// users lacking the required role go to the dashboard, silently.
func Protected(state session.State, opts Options) Decision {
	if state.Status != session.StatusReady || state.Loading {
		return Decision{Kind: ShowLoading}
	}
	if !state.Authenticated {
		return Decision{Kind: Redirect, Target: LoginPath, Replace: true}
	}
	if opts.RequireAdmin && !state.Admin {
		return Decision{Kind: Redirect, Target: DashboardPath, Replace: true}
	}
	if opts.RequireTeacher && !state.Teacher {
		return Decision{Kind: Redirect, Target: DashboardPath, Replace: true}
	}
	return Decision{Kind: Allow}
}

// Authenticated is the inverse guard for the login and register pages: an
// already-authenticated user is sent to the dashboard instead.
func Authenticated(state session.State) Decision {
	if state.Status != session.StatusReady || state.Loading {
		return Decision{Kind: ShowLoading}
	}
	if state.Authenticated {
		return Decision{Kind: Redirect, Target: DashboardPath, Replace: true}
	}
	return Decision{Kind: Allow}
}
