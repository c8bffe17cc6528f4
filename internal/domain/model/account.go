//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/target/interview-ui/internal/domain/auth"
)

const (
	minPasswordLen = 6
	maxNameLen     = 120
)

// SignInRequest is the credential pair posted to the backend.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims whitespace from the email.
func (r *SignInRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// Validate validates SignInRequest.
func (r *SignInRequest) Validate() error {
	r.Normalize()
	if r.Email == "" {
		return errors.New("email is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// SignInResponse is the backend's answer to a successful sign-in.
type SignInResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type,omitempty"`
	User        auth.Profile `json:"user"`
}

// SignUpRequest creates a new student or HR account.
type SignUpRequest struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role"`
}

// FieldErrors maps a form field name to a validation message.
type FieldErrors map[string]string

// Validate validates SignUpRequest and returns per-field messages.
// Admin accounts cannot be self-registered.
func (r *SignUpRequest) Validate() FieldErrors {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	errs := FieldErrors{}
	switch {
	case r.Name == "":
		errs["name"] = "name is required"
	case utf8.RuneCountInString(r.Name) > maxNameLen:
		errs["name"] = "name cannot exceed 120 characters"
	}
	if _, err := mail.ParseAddress(r.Email); err != nil || r.Email == "" {
		errs["email"] = "a valid email is required"
	}
	if utf8.RuneCountInString(r.Password) < minPasswordLen {
		errs["password"] = "password must be at least 6 characters"
	}
	if r.Role != auth.RoleStudent && r.Role != auth.RoleHR {
		errs["role"] = "role must be student or hr"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
