// Package client is the Go SDK for the NoteBridge backend. It pairs a
// stateless HTTP façade with a credential store, so callers get both the
// network operations and instant, no-I/O session predicates.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"notebridge/pkg/client/credstore"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      *credstore.Credentials
}

// New builds a client against baseURL. Pass a nil httpClient to use a
// default with a 30 second timeout.
func New(baseURL string, creds *credstore.Credentials, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		creds:      creds,
	}
}

// Login exchanges credentials for tokens. It does not touch the credential
// store; persisting the result is the session manager's job.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	payload := map[string]string{"email": email, "password": password}
	return c.postAuth(ctx, "/auth/login", payload, "")
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return c.postAuth(ctx, "/auth/register", req, "")
}

// RefreshToken exchanges a refresh token for a new token pair. It is only
// invoked on demand; nothing in the SDK schedules it.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	payload := map[string]string{"refreshToken": refreshToken}
	return c.postAuth(ctx, "/auth/refresh", payload, "")
}

// GetProfile fetches the authoritative user record for the stored token.
func (c *Client) GetProfile(ctx context.Context) (*AuthResponse, error) {
	return c.getAuth(ctx, "/user/get-profile")
}

func (c *Client) UpdateUser(ctx context.Context, userID int64, req UpdateUserRequest) (*AuthResponse, error) {
	token, _ := c.creds.Token()
	return c.doAuth(ctx, http.MethodPut, "/user/update/"+strconv.FormatInt(userID, 10), req, token)
}

func (c *Client) DeleteUser(ctx context.Context, userID int64) (*AuthResponse, error) {
	token, _ := c.creds.Token()
	return c.doAuth(ctx, http.MethodDelete, "/user/deleteUser/"+strconv.FormatInt(userID, 10), nil, token)
}

func (c *Client) GetAllUsers(ctx context.Context) (*AuthResponse, error) {
	return c.getAuth(ctx, "/admin/get-all-users")
}

func (c *Client) GetUserByID(ctx context.Context, userID int64) (*AuthResponse, error) {
	return c.getAuth(ctx, "/admin/get-user/"+strconv.FormatInt(userID, 10))
}

// UploadProfilePic sends a multipart image upload for the user's profile
// picture and returns the served file URL.
func (c *Client) UploadProfilePic(ctx context.Context, userID int64, filename string, file io.Reader) (*FileResponse, error) {
	return c.upload(ctx, "/file/upload/profile_pic/"+strconv.FormatInt(userID, 10), filename, file)
}

func (c *Client) UploadLessonPic(ctx context.Context, lessonID int64, filename string, file io.Reader) (*FileResponse, error) {
	return c.upload(ctx, "/file/upload/lesson_pic/"+strconv.FormatInt(lessonID, 10), filename, file)
}

// SetTokens persists the token, refresh token and role. The role is
// validated against the closed role set before anything is written.
func (c *Client) SetTokens(token, refreshToken, role string) error {
	parsed, err := ParseRole(role)
	if err != nil {
		return err
	}
	return c.creds.Write(credstore.Fields{
		Token:        token,
		RefreshToken: refreshToken,
		Role:         string(parsed),
	})
}

// SetCurrentUser caches the profile snapshot. The stored role is rewritten
// from the user's role so the two never disagree.
func (c *Client) SetCurrentUser(user *User) error {
	parsed, err := ParseRole(user.Role)
	if err != nil {
		return err
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.creds.Write(credstore.Fields{
		Role:     string(parsed),
		UserJSON: string(data),
	})
}

// Logout clears every stored session field. Clearing an already-empty
// store is a no-op, so calling it twice is safe.
func (c *Client) Logout() error {
	return c.creds.Clear()
}

// IsAuthenticated reports whether an access token is stored. No expiry
// check happens client-side.
func (c *Client) IsAuthenticated() bool {
	token, ok := c.creds.Token()
	return ok && token != ""
}

func (c *Client) IsAdmin() bool   { return c.hasRole(RoleAdmin) }
func (c *Client) IsTeacher() bool { return c.hasRole(RoleTeacher) }
func (c *Client) IsStudent() bool { return c.hasRole(RoleStudent) }

// CurrentUser returns the cached profile snapshot, if any. The cache is
// not authoritative; GetProfile is.
func (c *Client) CurrentUser() (*User, bool) {
	raw, ok := c.creds.UserJSON()
	if !ok || raw == "" {
		return nil, false
	}
	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, false
	}
	return &user, true
}

func (c *Client) hasRole(role Role) bool {
	if !c.IsAuthenticated() {
		return false
	}
	raw, ok := c.creds.Role()
	if !ok {
		return false
	}
	return Role(raw).Is(role)
}

func (c *Client) postAuth(ctx context.Context, path string, payload interface{}, token string) (*AuthResponse, error) {
	return c.doAuth(ctx, http.MethodPost, path, payload, token)
}

func (c *Client) getAuth(ctx context.Context, path string) (*AuthResponse, error) {
	token, _ := c.creds.Token()
	return c.doAuth(ctx, http.MethodGet, path, nil, token)
}

func (c *Client) doAuth(ctx context.Context, method, path string, payload interface{}, token string) (*AuthResponse, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	var envelope AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if envelope.StatusCode != http.StatusOK {
		return &envelope, apiError(envelope.StatusCode, envelope.Message, envelope.Error)
	}
	return &envelope, nil
}

func (c *Client) upload(ctx context.Context, path, filename string, file io.Reader) (*FileResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token, ok := c.creds.Token(); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	var envelope FileResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if envelope.StatusCode != http.StatusOK {
		return &envelope, apiError(envelope.StatusCode, envelope.Message, envelope.Error)
	}
	return &envelope, nil
}
