package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/target/interview-ui/config"
	"github.com/target/interview-ui/internal/adapters/cookiestore"
	"github.com/target/interview-ui/internal/adapters/jwtclaims"
	"github.com/target/interview-ui/internal/adapters/postgres"
	redisadapter "github.com/target/interview-ui/internal/adapters/redis"
	httpx "github.com/target/interview-ui/internal/http"
	"github.com/target/interview-ui/internal/ports"
)

// BuildDecoder returns the token decoder for the configured verify mode.
// ctx bounds background JWKS refreshes and should live as long as the process.
//
//nolint:ireturn // the decoder is consumed through its port.
func BuildDecoder(ctx context.Context, cfg config.AuthConfig) (ports.TokenDecoder, error) {
	switch cfg.Verify {
	case config.VerifyHMAC:
		d, err := jwtclaims.NewHMAC([]byte(cfg.HMACSecret))
		if err != nil {
			return nil, fmt.Errorf("hmac decoder: %w", err)
		}
		return d, nil
	case config.VerifyJWKS:
		d, err := jwtclaims.NewRemoteJWKS(ctx, cfg.JWKSURL)
		if err != nil {
			return nil, fmt.Errorf("jwks decoder: %w", err)
		}
		return d, nil
	case config.VerifyNone, "":
		return jwtclaims.NewUnverified(), nil
	default:
		return nil, fmt.Errorf("unknown token verify mode %q", cfg.Verify)
	}
}

// TokenStoreConfig contains what BuildTokenStores needs for each store kind.
type TokenStoreConfig struct {
	Auth         config.AuthConfig
	CookieDomain string
	DB           *sql.DB
	Redis        redis.UniversalClient
	Logger       *slog.Logger
}

// BuildTokenStores returns the per-request token store factory for cfg.Auth.Store.
// The redis and postgres stores key their cell by a browser id cookie.
func BuildTokenStores(cfg TokenStoreConfig) (httpx.TokenStoreFactory, error) {
	tokenCookie := cookiestore.Options{Name: cfg.Auth.CookieName, Domain: cfg.CookieDomain, TTL: cfg.Auth.StoreTTL}
	browserCookie := cookiestore.Options{Name: cfg.Auth.BrowserCookieName, Domain: cfg.CookieDomain}

	switch cfg.Auth.Store {
	case config.TokenStoreCookie, "":
		return func(w http.ResponseWriter, r *http.Request) (ports.TokenStore, error) {
			return cookiestore.New(w, r, tokenCookie), nil
		}, nil

	case config.TokenStoreRedis:
		if cfg.Redis == nil {
			return nil, errors.New("redis token store selected but redis is not connected")
		}
		return func(w http.ResponseWriter, r *http.Request) (ports.TokenStore, error) {
			return redisadapter.NewTokenStore(cfg.Redis, redisadapter.TokenStoreOptions{
				Prefix:      cfg.Auth.RedisKeyPrefix,
				BrowserID:   cookiestore.BrowserID(w, r, browserCookie),
				FallbackTTL: cfg.Auth.StoreTTL,
			})
		}, nil

	case config.TokenStorePostgres:
		if cfg.DB == nil {
			return nil, errors.New("postgres token store selected but the database is not connected")
		}
		return func(w http.ResponseWriter, r *http.Request) (ports.TokenStore, error) {
			return postgres.NewTokenStore(cfg.DB, cookiestore.BrowserID(w, r, browserCookie))
		}, nil
	}
	return nil, fmt.Errorf("unknown token store %q", cfg.Auth.Store)
}
