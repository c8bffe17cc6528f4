package httpx

import (
	"context"

	domainauth "github.com/target/interview-ui/internal/domain/auth"
	"github.com/target/interview-ui/internal/service"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type sessionKey struct{}

// WithSessionManager returns a child context that carries the request's session manager.
// If m is nil, the original ctx is returned unchanged.
func WithSessionManager(ctx context.Context, m *service.SessionManager) context.Context {
	if m == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, m)
}

// SessionManagerFromContext returns the request's session manager and whether one is present.
func SessionManagerFromContext(ctx context.Context) (*service.SessionManager, bool) {
	m, ok := ctx.Value(sessionKey{}).(*service.SessionManager)
	return m, ok && m != nil
}

// CurrentSession returns the active session, if the request is AUTHENTICATED.
func CurrentSession(ctx context.Context) (domainauth.Session, bool) {
	m, ok := SessionManagerFromContext(ctx)
	if !ok {
		return domainauth.Session{}, false
	}
	return m.Current()
}

// SessionState reports ANONYMOUS when no manager is attached.
func SessionState(ctx context.Context) domainauth.State {
	if m, ok := SessionManagerFromContext(ctx); ok {
		return m.State()
	}
	return domainauth.StateAnonymous
}
