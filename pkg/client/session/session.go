// Package session owns the client-side authentication state machine. One
// Manager is created at application start and injected wherever session
// state is needed; nothing reads the credential store ambiently.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"notebridge/pkg/client"
)

// Status tracks whether the derived session flags have been computed yet.
type Status string

const (
	StatusInitializing Status = "INITIALIZING"
	StatusReady        Status = "READY"
)

// ErrOperationInFlight is returned when Login or Register is called while
// a previous call is still resolving. Double submission is rejected rather
// than letting two flows interleave writes to the credential store.
var ErrOperationInFlight = errors.New("an authentication operation is already in flight")

// State is an immutable snapshot of the session, derived entirely from the
// credential store. Guards and pages decide from a snapshot, never from
// live storage reads.
type State struct {
	Status        Status
	Loading       bool
	Authenticated bool
	Admin         bool
	Teacher       bool
	Student       bool
	User          *client.User
}

// Manager drives the session lifecycle: initialize once, update on
// explicit auth actions, clear on logout.
type Manager struct {
	mu       sync.Mutex
	api      *client.Client
	state    State
	inFlight bool
}

func NewManager(api *client.Client) *Manager {
	return &Manager{
		api:   api,
		state: State{Status: StatusInitializing},
	}
}

// Initialize derives the session flags from whatever the credential store
// already holds. No network call is made; the persisted cache is trusted
// until an explicit auth action replaces it.
func (m *Manager) Initialize() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshLocked()
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Login authenticates and establishes a session: persist the tokens and
// role, fetch the authoritative profile, persist it, then re-derive the
// flags. On failure nothing beyond what was already written is mutated and
// the error carries a human-readable message.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	return m.doLogin(ctx, email, password)
}

// Register creates an account and then logs in with the same credentials,
// since registration does not itself yield a session.
func (m *Manager) Register(ctx context.Context, req client.RegisterRequest) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	resp, err := m.api.Register(ctx, req)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return fmt.Errorf("registration failed: %w", err)
	}
	if resp.User == nil {
		return &client.APIError{StatusCode: resp.StatusCode, Message: resp.Message}
	}

	return m.doLogin(ctx, req.Email, req.Password)
}

// Logout clears the credential store and resets every derived flag. It is
// synchronous, makes no network call, and is idempotent.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.api.Logout(); err != nil {
		return err
	}
	m.refreshLocked()
	return nil
}

// RefreshAuthState re-derives the flags and cached user from the
// credential store without network I/O. Call it after any out-of-band
// mutation, such as a profile edit.
func (m *Manager) RefreshAuthState() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshLocked()
}

func (m *Manager) doLogin(ctx context.Context, email, password string) error {
	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return fmt.Errorf("login failed: %w", err)
	}
	if resp.Token == "" {
		return &client.APIError{StatusCode: resp.StatusCode, Message: resp.Message}
	}

	if err := m.api.SetTokens(resp.Token, resp.RefreshToken, resp.Role); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	// The login payload carries profile fragments, but the cached user
	// always comes from the profile endpoint.
	profile, err := m.api.GetProfile(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch profile: %w", err)
	}
	if profile.User == nil {
		return &client.APIError{StatusCode: http.StatusInternalServerError, Message: "Profile response had no user"}
	}
	if err := m.api.SetCurrentUser(profile.User); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}

	m.mu.Lock()
	m.refreshLocked()
	m.mu.Unlock()
	return nil
}

// begin takes the in-flight guard and raises the loading flag.
func (m *Manager) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return ErrOperationInFlight
	}
	m.inFlight = true
	m.state.Loading = true
	return nil
}

// end releases the guard and lowers the loading flag. Deferred by the
// callers so it runs on every exit path.
func (m *Manager) end() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false
	m.state.Loading = false
}

// refreshLocked recomputes the derived flags from the credential store.
// Caller holds the mutex.
func (m *Manager) refreshLocked() {
	user, _ := m.api.CurrentUser()
	m.state = State{
		Status:        StatusReady,
		Loading:       m.state.Loading,
		Authenticated: m.api.IsAuthenticated(),
		Admin:         m.api.IsAdmin(),
		Teacher:       m.api.IsTeacher(),
		Student:       m.api.IsStudent(),
		User:          user,
	}
}
