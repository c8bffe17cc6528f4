package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/target/interview-ui/internal/clock"
	domainauth "github.com/target/interview-ui/internal/domain/auth"
	"github.com/target/interview-ui/internal/observability/metrics"
	"github.com/target/interview-ui/internal/observability/statsd"
	"github.com/target/interview-ui/internal/ports"
)

// ErrEmptyToken is returned by Login when no token is supplied.
var ErrEmptyToken = errors.New("token is required")

// SessionManagerOptions groups dependencies for SessionManager.
type SessionManagerOptions struct {
	Store   ports.TokenStore
	Decoder ports.TokenDecoder
	Clock   ports.TimeProvider
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// SessionManager owns the current bearer token and the identity derived from it.
//
// It is a two-state machine: ANONYMOUS and AUTHENTICATED. Login and Logout are
// the only transitions besides Restore, which re-reads the persisted token and
// drops it when it cannot be decoded or has expired. Expiry is judged only at
// Restore; a session that expires while held stays AUTHENTICATED until the
// next restore. All methods are safe for concurrent use.
type SessionManager struct {
	store   ports.TokenStore
	decoder ports.TokenDecoder
	clock   ports.TimeProvider
	logger  *slog.Logger
	metrics statsd.Sink

	mu      sync.RWMutex
	current *domainauth.Session
}

// NewSessionManager constructs an ANONYMOUS SessionManager.
func NewSessionManager(opts SessionManagerOptions) *SessionManager {
	m := &SessionManager{
		store:   opts.Store,
		decoder: opts.Decoder,
		clock:   opts.Clock,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if m.clock == nil {
		m.clock = clock.Real{}
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.metrics == nil {
		m.metrics = statsd.Nop{}
	}
	return m
}

// Restore rebuilds the session from the persisted token.
//
//   - no stored token: ANONYMOUS, storage untouched
//   - token fails to decode: ANONYMOUS, stored value erased
//   - token expired (exp <= now): ANONYMOUS, stored value erased
//   - otherwise: AUTHENTICATED with the decoded claims
//
// A storage read failure is logged and treated as no token.
func (m *SessionManager) Restore(ctx context.Context) domainauth.State {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil

	token, err := m.store.Load(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "session restore: token store unavailable", "reason", metrics.RestoreStoreError, "error", err)
		metrics.EmitRestore(m.metrics, metrics.RestoreStoreError)
		return domainauth.StateAnonymous
	}
	if token == "" {
		metrics.EmitRestore(m.metrics, metrics.RestoreNoToken)
		return domainauth.StateAnonymous
	}

	claims, err := m.decoder.Decode(ctx, token)
	if err != nil {
		m.discard(ctx, metrics.RestoreMalformed, err)
		return domainauth.StateAnonymous
	}
	if claims.ExpiredAt(m.clock.Now()) {
		m.discard(ctx, metrics.RestoreExpired, nil)
		return domainauth.StateAnonymous
	}

	m.current = &domainauth.Session{Token: token, Claims: claims}
	metrics.EmitRestore(m.metrics, metrics.RestoreOK)
	return domainauth.StateAuthenticated
}

// discard erases an unusable persisted token. Caller holds m.mu.
func (m *SessionManager) discard(ctx context.Context, reason string, cause error) {
	attrs := []any{"reason", reason}
	if cause != nil {
		attrs = append(attrs, "error", cause)
	}
	m.logger.InfoContext(ctx, "session restore: discarding stored token", attrs...)
	metrics.EmitRestore(m.metrics, reason)

	if err := m.store.Clear(ctx); err != nil {
		m.logger.WarnContext(ctx, "session restore: failed to erase stored token", "reason", reason, "error", err)
	}
}

// Login persists token and becomes AUTHENTICATED with the claims of profile.
// The token is not decoded or validated here. If persisting fails the
// in-memory state is left unchanged so the two never diverge.
func (m *SessionManager) Login(ctx context.Context, token string, profile domainauth.Profile) error {
	if token == "" {
		return ErrEmptyToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(ctx, token); err != nil {
		metrics.EmitTransition(m.metrics, "login", err)
		return fmt.Errorf("persist token: %w", err)
	}
	m.current = &domainauth.Session{Token: token, Claims: profile.Claims()}
	metrics.EmitTransition(m.metrics, "login", nil)
	return nil
}

// Logout clears the persisted token and becomes ANONYMOUS. The in-memory
// session is always dropped; a storage error is returned for logging only.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	err := m.store.Clear(ctx)
	metrics.EmitTransition(m.metrics, "logout", err)
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// State reports ANONYMOUS or AUTHENTICATED.
func (m *SessionManager) State() domainauth.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return domainauth.StateAnonymous
	}
	return domainauth.StateAuthenticated
}

// Current returns a copy of the active session.
func (m *SessionManager) Current() (domainauth.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return domainauth.Session{}, false
	}
	return *m.current, true
}

// Token returns the active bearer token, or "" when ANONYMOUS.
func (m *SessionManager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}
