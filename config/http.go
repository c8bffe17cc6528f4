package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// HTTPConfig configures the UI listener.
type HTTPConfig struct {
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the public origin of the UI, used to build shareable
	// assessment links.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain scopes the token and CSRF cookies. Empty means the request host.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`
	CompressionLevel   int  `env:"HTTP_COMPRESSION_LEVEL"   envDefault:"6"`

	// MaxUploadMB caps multipart uploads (resumes and job descriptions).
	MaxUploadMB int64 `env:"HTTP_MAX_UPLOAD_MB" envDefault:"20"`

	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"10s"`
	ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT"        envDefault:"60s"`
	// WriteTimeout has to outlast the slowest analysis call to the backend.
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"150s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

const defaultMaxUploadMB = 20

// Sanitize clamps the gzip level to 1-9 and replaces non-positive limits.
func (h *HTTPConfig) Sanitize() {
	h.CompressionLevel = min(max(h.CompressionLevel, 1), 9)
	if h.MaxUploadMB <= 0 {
		h.MaxUploadMB = defaultMaxUploadMB
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
}

// Validate checks that BaseURL is an absolute http(s) URL.
func (h *HTTPConfig) Validate() error {
	u, err := url.Parse(h.BaseURL)
	if err != nil {
		return fmt.Errorf("APP_BASE_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("APP_BASE_URL must be an absolute http(s) URL")
	}
	return nil
}

// MaxUploadBytes returns the multipart limit in bytes.
func (h *HTTPConfig) MaxUploadBytes() int64 {
	return h.MaxUploadMB << 20
}
