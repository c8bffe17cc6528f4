package config

import (
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_TOKEN_STORE", "redis")
	t.Setenv("AUTH_TOKEN_COOKIE", "token")
	t.Setenv("AUTH_BROWSER_COOKIE", "bid")
	t.Setenv("AUTH_REDIS_KEY_PREFIX", "ui:token:")
	t.Setenv("AUTH_TOKEN_STORE_TTL", "2h")
	t.Setenv("AUTH_TOKEN_VERIFY", "HMAC")
	t.Setenv("AUTH_TOKEN_HMAC_SECRET", "s3cret")
	t.Setenv("AUTH_SIGN_IN_PATH", "/login")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	expected := AuthConfig{
		Store:             TokenStoreRedis,
		CookieName:        "token",
		BrowserCookieName: "bid",
		RedisKeyPrefix:    "ui:token:",
		StoreTTL:          2 * time.Hour,
		PurgeInterval:     time.Hour,
		Verify:            VerifyHMAC,
		HMACSecret:        "s3cret",
		SignInPath:        "/login",
		RedirectParam:     "redirect_uri",
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
	if !cfg.UsesRedis() || cfg.UsesPostgres() {
		t.Fatalf("expected redis-only store selection")
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Auth.Store != TokenStoreCookie {
		t.Errorf("expected cookie store by default, got %q", cfg.Auth.Store)
	}
	if cfg.Auth.Verify != VerifyNone {
		t.Errorf("expected verify=none by default, got %q", cfg.Auth.Verify)
	}
	if cfg.Backend.BaseURL != "http://127.0.0.1:8000/api" {
		t.Errorf("unexpected backend base url %q", cfg.Backend.BaseURL)
	}
	if cfg.HTTP.MaxUploadBytes() != 20<<20 {
		t.Errorf("unexpected upload limit %d", cfg.HTTP.MaxUploadBytes())
	}
}

func TestTokenStoreKind_UnmarshalText(t *testing.T) {
	var k TokenStoreKind
	if err := k.UnmarshalText([]byte(" Postgres ")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k != TokenStorePostgres {
		t.Fatalf("expected postgres, got %q", k)
	}
	if err := k.UnmarshalText([]byte("localstorage")); err == nil {
		t.Fatalf("expected error for unknown store")
	}
}

func TestAuthConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AuthConfig
		wantErr bool
	}{
		{name: "none needs nothing", cfg: AuthConfig{Verify: VerifyNone}},
		{name: "hmac without secret", cfg: AuthConfig{Verify: VerifyHMAC}, wantErr: true},
		{name: "hmac with secret", cfg: AuthConfig{Verify: VerifyHMAC, HMACSecret: "x"}},
		{name: "jwks without url", cfg: AuthConfig{Verify: VerifyJWKS}, wantErr: true},
		{name: "jwks with url", cfg: AuthConfig{Verify: VerifyJWKS, JWKSURL: "https://idp/jwks"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthConfig_SanitizeRejectsRelativeSignIn(t *testing.T) {
	cfg := AuthConfig{SignInPath: "https://evil.example/login"}
	cfg.Sanitize()
	if cfg.SignInPath != "/login" {
		t.Fatalf("expected sign-in path to reset, got %q", cfg.SignInPath)
	}
}

func TestBackendConfig_Sanitize(t *testing.T) {
	cfg := BackendConfig{BaseURL: " http://api.internal/api/ ", Timeout: -1}
	cfg.Sanitize()
	if cfg.BaseURL != "http://api.internal/api" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.BaseURL)
	}
	if cfg.Timeout != 120*time.Second {
		t.Fatalf("expected default timeout, got %v", cfg.Timeout)
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " ",
	}

	cfg.Sanitize()

	if cfg.Enabled {
		t.Fatalf("expected enabled to be false when address is empty")
	}

	cfg = ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " statsd:1234 ",
		Prefix:        ".interview_ui.",
	}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to remain enabled")
	}
	if cfg.StatsdAddress != "statsd:1234" {
		t.Fatalf("expected address to be trimmed, got %q", cfg.StatsdAddress)
	}
	if cfg.Prefix != "interview_ui" {
		t.Fatalf("expected prefix dots trimmed, got %q", cfg.Prefix)
	}
}

func TestDBConfig_DSN(t *testing.T) {
	cfg := DBConfig{Host: "db", Port: 5433, User: "ui", Password: "p@ss/word", Name: "tokens", SSLMode: "require"}
	if got, want := cfg.DSN(), "postgres://ui:p%40ss%2Fword@db:5433/tokens?sslmode=require"; got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}

	cfg.Schema = "ui"
	if got := cfg.DSN(); !strings.Contains(got, "search_path=ui%2Cpublic") {
		t.Fatalf("expected search_path in %q", got)
	}
}

func TestRedisConfig_Topology(t *testing.T) {
	cfg := RedisConfig{URI: " cache:6379 ", SentinelNodes: []string{"s1:26379", ""}}
	if cfg.Topology() != RedisDirect || !reflect.DeepEqual(cfg.Addrs(), []string{"cache:6379"}) {
		t.Fatalf("unexpected direct selection: %s %v", cfg.Topology(), cfg.Addrs())
	}

	cfg.UseSentinel = true
	if cfg.Topology() != RedisSentinel || !reflect.DeepEqual(cfg.Addrs(), []string{"s1:26379"}) {
		t.Fatalf("unexpected sentinel selection: %s %v", cfg.Topology(), cfg.Addrs())
	}

	cfg.UseCluster = true
	if cfg.Topology() != RedisCluster || len(cfg.Addrs()) != 0 {
		t.Fatalf("cluster wins and has no nodes: %s %v", cfg.Topology(), cfg.Addrs())
	}
}

func TestLogConfig_Parse(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", " Text ")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Observability.Log.Level != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.Observability.Log.Level)
	}
	if cfg.Observability.Log.Format != LogFormatText {
		t.Fatalf("expected text format, got %q", cfg.Observability.Log.Format)
	}

	cfg.Observability.Log.Format = "xml"
	cfg.Observability.Log.Sanitize()
	if cfg.Observability.Log.Format != LogFormatJSON {
		t.Fatalf("unknown formats fall back to json, got %q", cfg.Observability.Log.Format)
	}
}

func TestAppConfig_Validate(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.Auth.Store = TokenStoreRedis
	cfg.Redis.URI = " "
	cfg.Auth.Verify = VerifyHMAC
	cfg.HTTP.BaseURL = "/relative"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"auth:", "redis token store", "APP_BASE_URL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
}

func TestHTTPConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTP.WriteTimeout != 150*time.Second || cfg.HTTP.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected timeouts: write=%v shutdown=%v", cfg.HTTP.WriteTimeout, cfg.HTTP.ShutdownTimeout)
	}

	h := HTTPConfig{CompressionLevel: 12}
	h.Sanitize()
	if h.CompressionLevel != 9 || h.MaxUploadMB != 20 {
		t.Fatalf("unexpected sanitize result: %+v", h)
	}
}
