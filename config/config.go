package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// AppConfig is the UI server's configuration, parsed from the environment
// with github.com/caarlos0/env. Each concern lives in its own file:
//   - auth.go: token store, verification and sign-in routing
//   - backend.go: interview API client
//   - database.go: Postgres and Redis for the server-side token stores
//   - http.go: listener, cookies, uploads and timeouts
//   - observability.go: logging and metrics
type AppConfig struct {
	// IsDev reloads templates from disk and relaxes caching. NODE_ENV=development
	// also enables it.
	IsDev bool `env:"DEV" envDefault:"false"`

	Auth    AuthConfig
	Backend BackendConfig `envPrefix:"BACKEND_"`

	// Only the database matching Auth.Store is connected.
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	HTTP          HTTPConfig
	Observability ObservabilityConfig
}

// Sanitize clamps and normalises values after parsing.
func (c *AppConfig) Sanitize() {
	c.Auth.Sanitize()
	c.Backend.Sanitize()
	c.HTTP.Sanitize()
	c.Observability.Sanitize()
	if !c.IsDev {
		switch strings.ToLower(os.Getenv("NODE_ENV")) {
		case "development", "dev":
			c.IsDev = true
		}
	}
}

// Validate reports settings Sanitize cannot repair. It is called after Sanitize.
func (c *AppConfig) Validate() error {
	var errs []error
	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}
	if c.UsesPostgres() && c.Postgres.Host == "" {
		errs = append(errs, errors.New("postgres token store requires DB_HOST"))
	}
	if c.UsesRedis() && len(c.Redis.Addrs()) == 0 {
		errs = append(errs, errors.New("redis token store requires an address in REDIS_URI, REDIS_SENTINEL_NODES or REDIS_CLUSTER_NODES"))
	}
	if err := c.HTTP.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("http: %w", err))
	}
	return errors.Join(errs...)
}

// UsesPostgres reports whether the configured token store needs a database connection.
func (c *AppConfig) UsesPostgres() bool {
	return c.Auth.Store == TokenStorePostgres
}

// UsesRedis reports whether the configured token store needs a Redis connection.
func (c *AppConfig) UsesRedis() bool {
	return c.Auth.Store == TokenStoreRedis
}
