package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/target/interview-ui/config"
	httpx "github.com/target/interview-ui/internal/http"
)

func buildHTTPHandler(appCfg *config.AppConfig, svc ServiceContainer, logger *slog.Logger) (http.Handler, error) {
	services := httpx.RouterServices{
		Auth:           svc.Auth,
		Dashboards:     svc.Dashboards,
		Backend:        svc.Backend,
		Guard:          svc.Guard,
		Stores:         svc.Stores,
		Decoder:        svc.Decoder,
		Metrics:        svc.Metrics,
		CookieDomain:   appCfg.HTTP.CookieDomain,
		BaseURL:        appCfg.HTTP.BaseURL,
		MaxUploadBytes: appCfg.HTTP.MaxUploadBytes(),
		IsDev:          appCfg.IsDev,
		Logger:         logger,
	}
	if appCfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", appCfg.HTTP.CompressionLevel)
		services.Compression = &httpx.CompressionConfig{Level: appCfg.HTTP.CompressionLevel}
	}

	handler, err := httpx.NewRouter(services)
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}
	return handler, nil
}

func newHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// serveHTTP serves on ln until ctx is done, then drains in-flight requests
// for up to shutdownTimeout. A listener failure is returned as is.
func serveHTTP(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration, logger *slog.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "starting HTTP server", "addr", ln.Addr().String())
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	// ctx is already done; the drain gets its own deadline.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}
