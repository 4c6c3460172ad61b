package model

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	PhoneNumber  string    `json:"phoneNumber,omitempty"`
	ProfileURL   string    `json:"profileUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AuthClaims are the JWT claims carried by access and refresh tokens.
type AuthClaims struct {
	UserID  int64  `json:"sub"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	Type    string `json:"typ"`
	TokenID string `json:"jti"`
}
