package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"notebridge/pkg/client"
	"notebridge/pkg/client/credstore"
)

type fakeBackend struct {
	mu            sync.Mutex
	loginResponse client.AuthResponse
	profile       client.AuthResponse
	registered    map[string]string
	loginCalls    int
	loginDelay    time.Duration
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{registered: make(map[string]string)}
}

func (b *fakeBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		delay := b.loginDelay
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/login":
			if delay > 0 {
				time.Sleep(delay)
			}
			b.mu.Lock()
			b.loginCalls++
			resp := b.loginResponse
			b.mu.Unlock()
			json.NewEncoder(w).Encode(resp)
		case "/auth/register":
			var payload client.RegisterRequest
			json.NewDecoder(r.Body).Decode(&payload)
			b.mu.Lock()
			b.registered[payload.Email] = payload.Password
			b.mu.Unlock()
			json.NewEncoder(w).Encode(client.AuthResponse{
				StatusCode: 200,
				User:       &client.User{ID: 9, Email: payload.Email, Role: payload.Role},
				Message:    "User Saved Successfully",
			})
		case "/user/get-profile":
			b.mu.Lock()
			resp := b.profile
			b.mu.Unlock()
			json.NewEncoder(w).Encode(resp)
		default:
			json.NewEncoder(w).Encode(client.AuthResponse{StatusCode: 404, Message: "Not found"})
		}
	}
}

func newTestManager(t *testing.T, backend *fakeBackend) (*Manager, *credstore.Credentials) {
	t.Helper()

	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	creds := credstore.New(credstore.NewMemoryStore())
	api := client.New(server.URL, creds, nil)

	manager := NewManager(api)
	manager.Initialize()
	return manager, creds
}

func TestInitialize(t *testing.T) {
	t.Parallel()

	t.Run("empty store yields ready and unauthenticated", func(t *testing.T) {
		manager, _ := newTestManager(t, newFakeBackend())

		state := manager.State()
		require.Equal(t, StatusReady, state.Status)
		require.False(t, state.Loading)
		require.False(t, state.Authenticated)
		require.Nil(t, state.User)
	})

	t.Run("trusts a persisted session without network calls", func(t *testing.T) {
		backend := newFakeBackend()
		server := httptest.NewServer(backend.handler())
		t.Cleanup(server.Close)

		store := credstore.NewMemoryStore()
		creds := credstore.New(store)
		require.NoError(t, creds.Write(credstore.Fields{
			Token:        "persisted",
			RefreshToken: "persisted-refresh",
			Role:         "ADMIN",
			UserJSON:     `{"id":7,"email":"a@u.edu","role":"ADMIN"}`,
		}))

		manager := NewManager(client.New(server.URL, creds, nil))
		manager.Initialize()

		state := manager.State()
		require.True(t, state.Authenticated)
		require.True(t, state.Admin)
		require.NotNil(t, state.User)
		require.Equal(t, int64(7), state.User.ID)
		require.Zero(t, backend.loginCalls)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("success persists tokens, role and the fetched profile", func(t *testing.T) {
		backend := newFakeBackend()
		backend.loginResponse = client.AuthResponse{StatusCode: 200, Token: "T", RefreshToken: "R", Role: "TEACHER"}
		backend.profile = client.AuthResponse{StatusCode: 200, User: &client.User{ID: 1, Email: "a@u.edu", Role: "TEACHER"}}

		manager, creds := newTestManager(t, backend)
		require.NoError(t, manager.Login(context.Background(), "a@u.edu", "x"))

		state := manager.State()
		require.True(t, state.Authenticated)
		require.True(t, state.Teacher)
		require.False(t, state.Loading)
		require.NotNil(t, state.User)
		require.Equal(t, int64(1), state.User.ID)

		role, _ := creds.Role()
		require.Equal(t, "TEACHER", role)
		token, _ := creds.Token()
		require.Equal(t, "T", token)
	})

	t.Run("role casing in the payload does not change the outcome", func(t *testing.T) {
		backend := newFakeBackend()
		backend.loginResponse = client.AuthResponse{StatusCode: 200, Token: "T", RefreshToken: "R", Role: "teacher"}
		backend.profile = client.AuthResponse{StatusCode: 200, User: &client.User{ID: 1, Email: "a@u.edu", Role: "Teacher"}}

		manager, creds := newTestManager(t, backend)
		require.NoError(t, manager.Login(context.Background(), "a@u.edu", "x"))

		require.True(t, manager.State().Teacher)
		role, _ := creds.Role()
		require.Equal(t, "TEACHER", role)
	})

	t.Run("failure surfaces the server message and leaves the store untouched", func(t *testing.T) {
		backend := newFakeBackend()
		backend.loginResponse = client.AuthResponse{StatusCode: 401, Message: "Bad credentials"}

		manager, creds := newTestManager(t, backend)
		err := manager.Login(context.Background(), "a@u.edu", "wrong")
		require.Error(t, err)

		var apiErr *client.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, "Bad credentials", apiErr.Message)

		_, ok := creds.Token()
		require.False(t, ok)
		_, ok = creds.Role()
		require.False(t, ok)

		state := manager.State()
		require.False(t, state.Loading)
		require.False(t, state.Authenticated)
	})

	t.Run("loading clears even when the transport fails", func(t *testing.T) {
		creds := credstore.New(credstore.NewMemoryStore())
		manager := NewManager(client.New("http://127.0.0.1:1", creds, nil))
		manager.Initialize()

		err := manager.Login(context.Background(), "a@u.edu", "x")
		require.Error(t, err)

		var apiErr *client.APIError
		require.False(t, errors.As(err, &apiErr))
		require.False(t, manager.State().Loading)
	})

	t.Run("rejects a second call while one is in flight", func(t *testing.T) {
		backend := newFakeBackend()
		backend.loginResponse = client.AuthResponse{StatusCode: 200, Token: "T", RefreshToken: "R", Role: "STUDENT"}
		backend.profile = client.AuthResponse{StatusCode: 200, User: &client.User{ID: 2, Email: "a@u.edu", Role: "STUDENT"}}
		backend.loginDelay = 200 * time.Millisecond

		manager, _ := newTestManager(t, backend)

		firstDone := make(chan error, 1)
		go func() {
			firstDone <- manager.Login(context.Background(), "a@u.edu", "x")
		}()

		// Wait until the first call has taken the guard.
		require.Eventually(t, func() bool {
			return manager.State().Loading
		}, time.Second, 5*time.Millisecond)

		err := manager.Login(context.Background(), "a@u.edu", "x")
		require.ErrorIs(t, err, ErrOperationInFlight)

		require.NoError(t, <-firstDone)
		require.True(t, manager.State().Authenticated)
	})
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("chains into login and ends in the same state", func(t *testing.T) {
		backend := newFakeBackend()
		backend.loginResponse = client.AuthResponse{StatusCode: 200, Token: "T", RefreshToken: "R", Role: "STUDENT"}
		backend.profile = client.AuthResponse{StatusCode: 200, User: &client.User{ID: 9, Email: "new@u.edu", Role: "STUDENT"}}

		registered, _ := newTestManager(t, backend)
		require.NoError(t, registered.Register(context.Background(), client.RegisterRequest{
			Email:    "new@u.edu",
			Password: "x",
			Role:     "STUDENT",
		}))
		require.Equal(t, "x", backend.registered["new@u.edu"])

		loggedIn, _ := newTestManager(t, backend)
		require.NoError(t, loggedIn.Login(context.Background(), "new@u.edu", "x"))

		registeredState := registered.State()
		loggedInState := loggedIn.State()
		require.Equal(t, loggedInState.Authenticated, registeredState.Authenticated)
		require.Equal(t, loggedInState.Student, registeredState.Student)
		require.Equal(t, loggedInState.User.ID, registeredState.User.ID)
	})

	t.Run("failure propagates the server message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(client.AuthResponse{StatusCode: 409, Message: "User with this email already exist."})
		}))
		t.Cleanup(server.Close)

		creds := credstore.New(credstore.NewMemoryStore())
		manager := NewManager(client.New(server.URL, creds, nil))
		manager.Initialize()

		err := manager.Register(context.Background(), client.RegisterRequest{Email: "dup@u.edu", Password: "x", Role: "STUDENT"})
		require.Error(t, err)

		var apiErr *client.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, "User with this email already exist.", apiErr.Message)
		require.False(t, manager.State().Loading)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.loginResponse = client.AuthResponse{StatusCode: 200, Token: "T", RefreshToken: "R", Role: "ADMIN"}
	backend.profile = client.AuthResponse{StatusCode: 200, User: &client.User{ID: 3, Email: "a@u.edu", Role: "ADMIN"}}

	manager, creds := newTestManager(t, backend)
	require.NoError(t, manager.Login(context.Background(), "a@u.edu", "x"))
	require.True(t, manager.State().Authenticated)

	require.NoError(t, manager.Logout())

	state := manager.State()
	require.False(t, state.Authenticated)
	require.False(t, state.Admin)
	require.False(t, state.Teacher)
	require.False(t, state.Student)
	require.Nil(t, state.User)

	_, ok := creds.Token()
	require.False(t, ok)
	_, ok = creds.RefreshToken()
	require.False(t, ok)
	_, ok = creds.Role()
	require.False(t, ok)
	_, ok = creds.UserJSON()
	require.False(t, ok)

	// Logging out twice produces the same empty state.
	require.NoError(t, manager.Logout())
	require.False(t, manager.State().Authenticated)
}

func TestRefreshAuthState(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	manager, creds := newTestManager(t, backend)
	require.False(t, manager.State().Authenticated)

	// Out-of-band mutation, then an explicit refresh.
	require.NoError(t, creds.Write(credstore.Fields{
		Token:    "T",
		Role:     "STUDENT",
		UserJSON: `{"id":5,"email":"s@u.edu","role":"STUDENT"}`,
	}))
	manager.RefreshAuthState()

	state := manager.State()
	require.True(t, state.Authenticated)
	require.True(t, state.Student)
	require.Equal(t, int64(5), state.User.ID)
	require.Zero(t, backend.loginCalls)
}
