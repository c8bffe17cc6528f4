package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainauth "github.com/target/interview-ui/internal/domain/auth"
	"github.com/target/interview-ui/internal/domain/model"
	apperrors "github.com/target/interview-ui/internal/errors"
)

// AccountAPI is the subset of the backend used for account flows.
type AccountAPI interface {
	SignIn(ctx context.Context, req model.SignInRequest) (model.SignInResponse, error)
	SignUp(ctx context.Context, req model.SignUpRequest) error
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	API    AccountAPI
	Logger *slog.Logger
}

// AuthService exchanges credentials with the backend and drives the session
// manager through its login and logout transitions.
type AuthService struct {
	api    AccountAPI
	logger *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{api: opts.API, logger: logger}
}

// SignIn authenticates against the backend and logs the session in with the
// returned token and profile.
func (s *AuthService) SignIn(ctx context.Context, sessions *SessionManager, req model.SignInRequest) (domainauth.Profile, error) {
	if sessions == nil {
		return domainauth.Profile{}, errors.New("session manager is required")
	}
	if err := req.Validate(); err != nil {
		return domainauth.Profile{}, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid sign-in")
	}

	resp, err := s.api.SignIn(ctx, req)
	if err != nil {
		return domainauth.Profile{}, fmt.Errorf("sign in: %w", err)
	}
	if err := sessions.Login(ctx, resp.AccessToken, resp.User); err != nil {
		return domainauth.Profile{}, fmt.Errorf("start session: %w", err)
	}
	s.logger.InfoContext(ctx, "user signed in", "role", resp.User.Role)
	return resp.User, nil
}

// SignUp validates and registers a new account. Field problems found locally
// come back as a validation error carrying the field messages; the backend is
// not contacted.
func (s *AuthService) SignUp(ctx context.Context, req model.SignUpRequest) error {
	if fields := req.Validate(); fields != nil {
		return apperrors.ValidationFields("invalid sign-up", fields)
	}
	if err := s.api.SignUp(ctx, req); err != nil {
		return fmt.Errorf("sign up: %w", err)
	}
	s.logger.InfoContext(ctx, "account registered", "role", req.Role)
	return nil
}

// SignOut ends the session. Storage failures are logged; the session is
// ANONYMOUS afterwards regardless.
func (s *AuthService) SignOut(ctx context.Context, sessions *SessionManager) {
	if sessions == nil {
		return
	}
	if err := sessions.Logout(ctx); err != nil {
		s.logger.WarnContext(ctx, "sign out: token store error", "error", err)
	}
}
