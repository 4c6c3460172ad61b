package client

import (
	"fmt"
	"strings"
)

// Role is the authorization tier assigned to an account. The set is
// closed: unknown values are rejected at the storage boundary instead of
// being treated as "no role".
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole validates a role string case-insensitively.
func ParseRole(raw string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(RoleStudent):
		return RoleStudent, nil
	case string(RoleTeacher):
		return RoleTeacher, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

func (r Role) Is(other Role) bool {
	return strings.EqualFold(string(r), string(other))
}

// User is the profile snapshot returned by the backend.
type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Bio         string `json:"bio,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	ProfileURL  string `json:"profileUrl,omitempty"`
}

// AuthResponse is the backend's auth and user envelope. The transport
// status is 200 even on failure; StatusCode inside the body carries the
// real outcome.
type AuthResponse struct {
	StatusCode     int    `json:"statusCode"`
	Error          string `json:"error,omitempty"`
	Message        string `json:"message,omitempty"`
	Token          string `json:"token,omitempty"`
	RefreshToken   string `json:"refreshToken,omitempty"`
	ExpirationTime string `json:"expirationTime,omitempty"`
	Role           string `json:"role,omitempty"`
	User           *User  `json:"user,omitempty"`
	UsersList      []User `json:"usersList,omitempty"`
}

// FileResponse is the envelope returned by the file upload endpoints.
type FileResponse struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error,omitempty"`
	Message    string `json:"message,omitempty"`
	FileURL    string `json:"fileUrl,omitempty"`
}

// RegisterRequest carries the fields for account creation.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Bio         string `json:"bio,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// UpdateUserRequest carries a partial profile update. Nil fields are left
// unchanged server-side.
type UpdateUserRequest struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	ProfileURL  *string `json:"profileUrl,omitempty"`
}

const defaultFailureMessage = "Something went wrong, please try again"

// APIError is an application-level failure: the server responded, but the
// envelope's StatusCode reports a non-success outcome. Transport failures
// are returned as plain wrapped errors, so the two are distinguishable
// with errors.As.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return defaultFailureMessage
}

func apiError(statusCode int, message, errText string) *APIError {
	msg := message
	if msg == "" {
		msg = errText
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}
