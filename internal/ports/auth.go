package ports

// Package ports defines interfaces (hexagonal ports) for session-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/target/interview-ui/internal/domain/auth"
)

// TokenStore is the single persisted cell holding a bearer token under a
// well-known key. Load returns an empty string and a nil error when no
// token is stored.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// TokenDecoder turns a bearer token into validated claims. Implementations fail
// closed: any schema violation (unknown role, missing or non-numeric exp, empty
// subject) is an error. Expiry is not judged here.
type TokenDecoder interface {
	Decode(ctx context.Context, token string) (domainauth.Claims, error)
}

// TimeProvider supplies the current time so expiry checks can be driven by tests.
type TimeProvider interface {
	Now() time.Time
}
