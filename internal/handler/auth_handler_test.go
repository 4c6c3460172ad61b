package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"notebridge/internal/model"
	"notebridge/internal/service"
)

type memoryUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[int64]model.User)}
}

func (s *memoryUserStore) FindByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *memoryUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memoryUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(ctx, email)
	return err == nil, nil
}

func (s *memoryUserStore) Create(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u.ID = s.nextID
	s.users[u.ID] = u
	return u, nil
}

func (s *memoryUserStore) Update(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *memoryUserStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

func (s *memoryUserStore) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]int64
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: make(map[string]int64)}
}

func (s *memoryTokenStore) Store(_ context.Context, token string, userID int64, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
	return nil
}

func (s *memoryTokenStore) Validate(_ context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return 0, model.ErrTokenNotFound
	}
	return userID, nil
}

func (s *memoryTokenStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

func (s *memoryTokenStore) RevokeAllForUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, owner := range s.tokens {
		if owner == userID {
			delete(s.tokens, token)
		}
	}
	return nil
}

func (s *memoryTokenStore) CleanExpired(_ context.Context) (int64, error) {
	return 0, nil
}

func newAuthHandlerFixture(t *testing.T) (*AuthHandler, *memoryUserStore) {
	t.Helper()

	users := newMemoryUserStore()
	svc := service.NewAuthService("test-secret", time.Hour, 24*time.Hour, users, newMemoryTokenStore())
	return NewAuthHandler(svc), users
}

func seedHandlerUser(t *testing.T, users *memoryUserStore, email, password string, role model.Role) model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user, err := users.Create(context.Background(), model.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	})
	require.NoError(t, err)
	return user
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, payload any) (*httptest.ResponseRecorder, model.AuthEnvelope) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)

	var envelope model.AuthEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestAuthHandlerLogin(t *testing.T) {
	t.Parallel()

	t.Run("success carries tokens and role in the envelope", func(t *testing.T) {
		handler, users := newAuthHandlerFixture(t)
		seedHandlerUser(t, users, "t@u.edu", "secret", model.RoleTeacher)

		rec, envelope := postJSON(t, handler.Login, "/auth/login", model.LoginRequest{Email: "t@u.edu", Password: "secret"})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, http.StatusOK, envelope.StatusCode)
		require.NotEmpty(t, envelope.Token)
		require.NotEmpty(t, envelope.RefreshToken)
		require.Equal(t, "TEACHER", envelope.Role)
		require.Equal(t, "Successfully logged in", envelope.Message)
	})

	t.Run("failure keeps transport 200 and reports in the body", func(t *testing.T) {
		handler, users := newAuthHandlerFixture(t)
		seedHandlerUser(t, users, "t@u.edu", "secret", model.RoleTeacher)

		rec, envelope := postJSON(t, handler.Login, "/auth/login", model.LoginRequest{Email: "t@u.edu", Password: "wrong"})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, http.StatusUnauthorized, envelope.StatusCode)
		require.Empty(t, envelope.Token)
		require.NotEmpty(t, envelope.Message)
	})
}

func TestAuthHandlerRegister(t *testing.T) {
	t.Parallel()

	t.Run("returns the user without a session", func(t *testing.T) {
		handler, _ := newAuthHandlerFixture(t)

		rec, envelope := postJSON(t, handler.Register, "/auth/register", model.RegisterRequest{
			Email:    "new@u.edu",
			Password: "secret",
			Role:     "STUDENT",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, http.StatusOK, envelope.StatusCode)
		require.Equal(t, "User Saved Successfully", envelope.Message)
		require.NotNil(t, envelope.User)
		require.Empty(t, envelope.Token)
		require.Empty(t, envelope.RefreshToken)
	})

	t.Run("duplicate email reports a conflict in the body", func(t *testing.T) {
		handler, users := newAuthHandlerFixture(t)
		seedHandlerUser(t, users, "taken@u.edu", "secret", model.RoleStudent)

		rec, envelope := postJSON(t, handler.Register, "/auth/register", model.RegisterRequest{
			Email:    "taken@u.edu",
			Password: "secret",
			Role:     "STUDENT",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, http.StatusConflict, envelope.StatusCode)
		require.Equal(t, "User with this email already exist.", envelope.Message)
	})
}

func TestAuthHandlerRefresh(t *testing.T) {
	t.Parallel()

	handler, users := newAuthHandlerFixture(t)
	seedHandlerUser(t, users, "t@u.edu", "secret", model.RoleTeacher)

	_, login := postJSON(t, handler.Login, "/auth/login", model.LoginRequest{Email: "t@u.edu", Password: "secret"})
	require.Equal(t, http.StatusOK, login.StatusCode)

	rec, refreshed := postJSON(t, handler.Refresh, "/auth/refresh", model.RefreshRequest{RefreshToken: login.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, http.StatusOK, refreshed.StatusCode)
	require.NotEmpty(t, refreshed.Token)
	require.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	require.Equal(t, "Successfully refreshed the token", refreshed.Message)

	// The original refresh token was rotated out.
	_, replay := postJSON(t, handler.Refresh, "/auth/refresh", model.RefreshRequest{RefreshToken: login.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, replay.StatusCode)

	// Missing token is rejected before hitting the service.
	_, missing := postJSON(t, handler.Refresh, "/auth/refresh", model.RefreshRequest{})
	require.Equal(t, http.StatusBadRequest, missing.StatusCode)
}
