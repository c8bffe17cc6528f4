package redis

// Package redis provides Redis-based adapters for persisting browser tokens.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/interview-ui/internal/adapters/jwtclaims"
)

// DefaultKeyPrefix namespaces token cells.
const DefaultKeyPrefix = "token:"

// TokenStore is a Redis-backed single token cell for one browser.
// TTL follows the token's exp claim when readable, else the fallback TTL.
type TokenStore struct {
	client      redis.UniversalClient
	key         string
	fallbackTTL time.Duration
	now         func() time.Time
}

// TokenStoreOptions groups construction parameters for TokenStore.
type TokenStoreOptions struct {
	Prefix      string
	BrowserID   string
	FallbackTTL time.Duration
}

// NewTokenStore creates a token cell keyed by prefix+browserID.
func NewTokenStore(client redis.UniversalClient, opts TokenStoreOptions) (*TokenStore, error) {
	if opts.BrowserID == "" {
		return nil, errors.New("browser id cannot be empty")
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultKeyPrefix
	}
	if opts.FallbackTTL <= 0 {
		opts.FallbackTTL = 24 * time.Hour
	}
	return &TokenStore{
		client:      client,
		key:         opts.Prefix + opts.BrowserID,
		fallbackTTL: opts.FallbackTTL,
		now:         time.Now,
	}, nil
}

func (s *TokenStore) Load(ctx context.Context) (string, error) {
	tok, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return tok, nil
}

func (s *TokenStore) Save(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}
	ttl := s.fallbackTTL
	if exp, ok := jwtclaims.ExpiresAt(token); ok {
		// An already-expired token is still stored; restore detects expiry and erases it.
		if until := exp.Sub(s.now()); until > time.Second {
			ttl = until
		} else {
			ttl = time.Second
		}
	}
	if err := s.client.Set(ctx, s.key, token, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
