package config

import (
	"fmt"
	"strings"
	"time"
)

// TokenStoreKind selects where the browser's bearer token is persisted between requests.
type TokenStoreKind string

const (
	// TokenStoreCookie keeps the token in an HttpOnly cookie on the browser.
	TokenStoreCookie TokenStoreKind = "cookie"
	// TokenStoreRedis keeps the token in Redis keyed by a browser id cookie.
	TokenStoreRedis TokenStoreKind = "redis"
	// TokenStorePostgres keeps the token in Postgres keyed by a browser id cookie.
	TokenStorePostgres TokenStoreKind = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for TokenStoreKind.
func (k *TokenStoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "cookie", "redis", "postgres":
		*k = TokenStoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid TokenStoreKind: %q (valid options: cookie, redis, postgres)", v)
	}
}

// VerifyMode controls how much the UI trusts a stored bearer token before using its claims.
type VerifyMode string

const (
	// VerifyNone decodes claims without checking the signature. The backend remains the
	// authority and rejects forged tokens with 401.
	VerifyNone VerifyMode = "none"
	// VerifyHMAC checks an HS256/384/512 signature against a shared secret.
	VerifyHMAC VerifyMode = "hmac"
	// VerifyJWKS checks the signature against a remote JSON Web Key Set.
	VerifyJWKS VerifyMode = "jwks"
)

// UnmarshalText implements encoding.TextUnmarshaler for VerifyMode.
func (m *VerifyMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "none", "hmac", "jwks":
		*m = VerifyMode(v)
		return nil
	default:
		return fmt.Errorf("invalid VerifyMode: %q (valid options: none, hmac, jwks)", v)
	}
}

// AuthConfig groups session and token configuration.
type AuthConfig struct {
	// Store determines where the bearer token is persisted.
	Store TokenStoreKind `env:"AUTH_TOKEN_STORE" envDefault:"cookie"`

	// CookieName is the well-known key the token (or browser id) lives under.
	CookieName string `env:"AUTH_TOKEN_COOKIE" envDefault:"token"`

	// BrowserCookieName holds the browser id for the redis and postgres stores.
	BrowserCookieName string `env:"AUTH_BROWSER_COOKIE" envDefault:"browser_id"`

	// RedisKeyPrefix namespaces tokens in Redis.
	RedisKeyPrefix string `env:"AUTH_REDIS_KEY_PREFIX" envDefault:"token:"`

	// StoreTTL bounds how long a persisted token survives when its expiry cannot be read.
	StoreTTL time.Duration `env:"AUTH_TOKEN_STORE_TTL" envDefault:"24h"`

	// PurgeInterval is how often expired postgres cells are deleted; 0 disables the sweep.
	PurgeInterval time.Duration `env:"AUTH_TOKEN_PURGE_INTERVAL" envDefault:"1h"`

	// Verify selects signature verification for stored tokens.
	Verify VerifyMode `env:"AUTH_TOKEN_VERIFY" envDefault:"none"`

	// HMACSecret is the shared secret used when Verify=hmac.
	HMACSecret string `env:"AUTH_TOKEN_HMAC_SECRET"`

	// JWKSURL is the key set endpoint used when Verify=jwks.
	JWKSURL string `env:"AUTH_TOKEN_JWKS_URL"`

	// SignInPath is where the route guard sends anonymous visitors.
	SignInPath string `env:"AUTH_SIGN_IN_PATH" envDefault:"/login"`

	// RedirectParam carries the originally requested location to the sign-in page.
	RedirectParam string `env:"AUTH_REDIRECT_PARAM" envDefault:"redirect_uri"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.Store == "" {
		a.Store = TokenStoreCookie
	}
	if a.Verify == "" {
		a.Verify = VerifyNone
	}
	a.CookieName = strings.TrimSpace(a.CookieName)
	if a.CookieName == "" {
		a.CookieName = "token"
	}
	a.BrowserCookieName = strings.TrimSpace(a.BrowserCookieName)
	if a.BrowserCookieName == "" {
		a.BrowserCookieName = "browser_id"
	}
	if a.StoreTTL <= 0 {
		a.StoreTTL = 24 * time.Hour
	}
	if a.SignInPath == "" || !strings.HasPrefix(a.SignInPath, "/") {
		a.SignInPath = "/login"
	}
	if a.RedirectParam == "" {
		a.RedirectParam = "redirect_uri"
	}
}

// Validate reports configuration that cannot be repaired by Sanitize.
func (a *AuthConfig) Validate() error {
	switch a.Verify {
	case VerifyHMAC:
		if a.HMACSecret == "" {
			return fmt.Errorf("AUTH_TOKEN_HMAC_SECRET is required when AUTH_TOKEN_VERIFY=%s", a.Verify)
		}
	case VerifyJWKS:
		if a.JWKSURL == "" {
			return fmt.Errorf("AUTH_TOKEN_JWKS_URL is required when AUTH_TOKEN_VERIFY=%s", a.Verify)
		}
	case VerifyNone:
	}
	return nil
}
