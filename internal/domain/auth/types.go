package auth

// Package auth contains domain-level types for the browser session: roles,
// token claims, and the two-state session lifecycle.
// It is pure and free of framework/adapter concerns.

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRole is returned when a role outside the closed set is parsed.
var ErrInvalidRole = errors.New("invalid role")

// Role represents a platform role carried in the token claims.
// Keep string form for easy persistence and cookies.
type Role string

const (
	RoleStudent Role = "student"
	RoleHR      Role = "hr"
	RoleAdmin   Role = "admin"
)

// Roles lists every valid role.
func Roles() []Role { return []Role{RoleStudent, RoleHR, RoleAdmin} }

// ParseRole converts user input into a Role, ignoring case and surrounding
// space. Anything outside the enum is rejected.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleHR, RoleAdmin:
		return true
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Label is the human readable role name.
func (r Role) Label() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleHR:
		return "HR"
	case RoleAdmin:
		return "Admin"
	}
	return string(r)
}

// SelfServiceRoles are the roles a visitor may pick at sign-up.
func SelfServiceRoles() []Role { return []Role{RoleStudent, RoleHR} }

// Claims is the identity derived from a bearer token (or from the user object
// returned at sign-in).
type Claims struct {
	Subject   string    `json:"sub"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
}

// ExpiredAt reports whether the claims are no longer valid at now.
// A zero ExpiresAt means the expiry is unknown and is never treated as expired.
func (c Claims) ExpiredAt(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

// DisplayName prefers the name, then the email, then the subject.
func (c Claims) DisplayName() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.Email != "":
		return c.Email
	}
	return c.Subject
}

// Profile is the user object the backend returns alongside an access token.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Claims converts the profile into session claims. The subject falls back to
// the email when the backend does not return an id.
func (p Profile) Claims() Claims {
	sub := p.ID
	if sub == "" {
		sub = p.Email
	}
	return Claims{Subject: sub, Role: p.Role, Name: p.Name, Email: p.Email}
}

// Session is a bearer token together with the identity it represents.
type Session struct {
	Token  string `json:"-"`
	Claims Claims `json:"claims"`
}

// State is the session lifecycle state.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
)

func (s State) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "anonymous"
}
