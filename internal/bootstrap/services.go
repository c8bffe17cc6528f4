package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/target/interview-ui/config"
	"github.com/target/interview-ui/internal/adapters/postgres"
	"github.com/target/interview-ui/internal/backend"
	httpx "github.com/target/interview-ui/internal/http"
	"github.com/target/interview-ui/internal/observability/statsd"
	"github.com/target/interview-ui/internal/ports"
	"github.com/target/interview-ui/internal/service"
)

// ServiceContainer holds the wired application services.
type ServiceContainer struct {
	Backend    *backend.Client
	Auth       *service.AuthService
	Dashboards *service.DashboardService
	Guard      service.RouteGuard
	Decoder    ports.TokenDecoder
	Stores     httpx.TokenStoreFactory
	Metrics    statsd.Sink

	statsd *statsd.Client
}

// Close releases resources owned by the container.
func (c ServiceContainer) Close() error {
	if c.statsd == nil {
		return nil
	}
	return c.statsd.Close()
}

// ServiceDeps contains the infrastructure services are built from.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices wires the backend client, session plumbing, and services.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps require a config")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metricsClient := buildMetrics(logger, cfg.Observability)
	var sink statsd.Sink = statsd.Nop{}
	if metricsClient != nil {
		sink = metricsClient
	}

	client, err := backend.NewClient(backend.Options{
		BaseURL:   cfg.Backend.BaseURL,
		UserAgent: cfg.Backend.UserAgent,
		Timeout:   cfg.Backend.Timeout,
		Logger:    logger,
		Metrics:   sink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("backend client: %w", err)
	}

	decoder, err := BuildDecoder(ctx, cfg.Auth)
	if err != nil {
		return ServiceContainer{}, err
	}

	stores, err := BuildTokenStores(TokenStoreConfig{
		Auth:         cfg.Auth,
		CookieDomain: cfg.HTTP.CookieDomain,
		DB:           deps.DB,
		Redis:        deps.RedisClient,
		Logger:       logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	return ServiceContainer{
		Backend:    client,
		Auth:       service.NewAuthService(service.AuthServiceOptions{API: client.Public(), Logger: logger}),
		Dashboards: service.NewDashboardService(logger),
		Guard:      service.NewRouteGuard(cfg.Auth.SignInPath, cfg.Auth.RedirectParam),
		Decoder:    decoder,
		Stores:     stores,
		Metrics:    sink,
		statsd:     metricsClient,
	}, nil
}

// buildMetrics returns a StatsD client, or nil when metrics are disabled or unreachable.
func buildMetrics(logger *slog.Logger, cfg config.ObservabilityConfig) *statsd.Client {
	if !cfg.Metrics.IsEnabled() {
		return nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}

// ServiceOrchestrationConfig contains what Run starts.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	DB       *sql.DB
	Logger   *slog.Logger
}

// Run serves HTTP and, for the postgres store, sweeps expired token cells
// until SIGINT/SIGTERM, ctx ends or either task fails.
func Run(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handler, err := buildHTTPHandler(cfg.Config, cfg.Services, logger)
	if err != nil {
		return err
	}
	srv := newHTTPServer(cfg.Config.HTTP, handler)
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return serveHTTP(gctx, srv, ln, cfg.Config.HTTP.ShutdownTimeout, logger)
	})
	if cfg.DB != nil && cfg.Config.UsesPostgres() && cfg.Config.Auth.PurgeInterval > 0 {
		g.Go(func() error {
			runTokenPurge(gctx, tokenPurgeConfig{
				Purge:    func(ctx context.Context, now time.Time) (int64, error) { return postgres.PurgeExpired(ctx, cfg.DB, now) },
				Interval: cfg.Config.Auth.PurgeInterval,
				Logger:   logger,
			})
			return nil
		})
	}
	return g.Wait()
}

type tokenPurgeConfig struct {
	Purge    func(ctx context.Context, now time.Time) (int64, error)
	Interval time.Duration
	Clock    ports.TimeProvider
	Logger   *slog.Logger
}

// runTokenPurge calls Purge every Interval until ctx ends. Failures are
// logged and retried on the next tick.
func runTokenPurge(ctx context.Context, cfg tokenPurgeConfig) {
	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock.Now
	}
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	cfg.Logger.InfoContext(ctx, "token purge started", "interval", cfg.Interval)
	for {
		select {
		case <-ctx.Done():
			cfg.Logger.Info("token purge stopped")
			return
		case <-ticker.C:
			n, err := cfg.Purge(ctx, now())
			switch {
			case err != nil && ctx.Err() == nil:
				cfg.Logger.WarnContext(ctx, "token purge failed", "error", err)
			case n > 0:
				cfg.Logger.InfoContext(ctx, "purged expired tokens", "count", n)
			}
		}
	}
}
