// Package auth contains simple hand-written test doubles for session ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/target/interview-ui/internal/domain/auth"
	"github.com/target/interview-ui/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.TokenStore   = (*MemoryTokenStore)(nil)
	_ ports.TokenDecoder = (*StaticDecoder)(nil)
)

// ErrMalformed is returned by StaticDecoder for tokens it does not know.
var ErrMalformed = errors.New("malformed token")

// MemoryTokenStore is an in-memory single-cell token store with optional error injection.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string

	LoadErr  error
	SaveErr  error
	ClearErr error

	Saves  int
	Clears int
}

// NewMemoryTokenStore creates a store pre-populated with token (may be empty).
func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (s *MemoryTokenStore) Load(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return "", s.LoadErr
	}
	return s.token, nil
}

func (s *MemoryTokenStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Saves++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Clears++
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.token = ""
	return nil
}

// Token returns the stored value without going through Load.
func (s *MemoryTokenStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// StaticDecoder maps known tokens to claims; unknown tokens are malformed.
type StaticDecoder struct {
	DecodeFunc func(ctx context.Context, token string) (domainauth.Claims, error)
	Tokens     map[string]domainauth.Claims
}

// NewStaticDecoder creates a decoder with the given token table.
func NewStaticDecoder(tokens map[string]domainauth.Claims) *StaticDecoder {
	return &StaticDecoder{Tokens: tokens}
}

func (d *StaticDecoder) Decode(ctx context.Context, token string) (domainauth.Claims, error) {
	if d.DecodeFunc != nil {
		return d.DecodeFunc(ctx, token)
	}
	c, ok := d.Tokens[token]
	if !ok {
		return domainauth.Claims{}, ErrMalformed
	}
	return c, nil
}
