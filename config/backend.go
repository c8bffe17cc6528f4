package config

import (
	"strings"
	"time"
)

// BackendConfig contains configuration for the interview API client.
type BackendConfig struct {
	// BaseURL is the root of the backend API, including the /api prefix.
	BaseURL string `env:"BASE_URL" envDefault:"http://127.0.0.1:8000/api"`

	// Timeout bounds a single backend call. Interview evaluation runs LLM work
	// on the backend, so the default is generous.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"120s"`

	// UserAgent is sent on every backend request.
	UserAgent string `env:"USER_AGENT" envDefault:"interview-ui"`
}

// Sanitize applies guardrails to backend configuration values.
func (b *BackendConfig) Sanitize() {
	b.BaseURL = strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
	if b.BaseURL == "" {
		b.BaseURL = "http://127.0.0.1:8000/api"
	}
	if b.Timeout <= 0 {
		b.Timeout = 120 * time.Second
	}
}
