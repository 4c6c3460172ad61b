package model

import "strings"

// Role is the authorization tier of an account. It is a closed set; unknown
// values are rejected at every boundary rather than treated as "no role".
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole normalizes a raw role string case-insensitively.
func ParseRole(raw string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(RoleStudent):
		return RoleStudent, nil
	case string(RoleTeacher):
		return RoleTeacher, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

func (r Role) String() string {
	return string(r)
}

// Is compares roles case-insensitively. Payload casing differs between
// clients, so predicates must not depend on it.
func (r Role) Is(other Role) bool {
	return strings.EqualFold(string(r), string(other))
}
