package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"

	interviewui "github.com/target/interview-ui"
	"github.com/target/interview-ui/internal/backend"
	domainauth "github.com/target/interview-ui/internal/domain/auth"
	"github.com/target/interview-ui/internal/observability/statsd"
	"github.com/target/interview-ui/internal/ports"
	"github.com/target/interview-ui/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth       *service.AuthService
	Dashboards *service.DashboardService
	Backend    *backend.Client
	Guard      service.RouteGuard

	// Stores opens the token store bound to one request.
	Stores  TokenStoreFactory
	Decoder ports.TokenDecoder
	Clock   ports.TimeProvider
	Metrics statsd.Sink

	CookieDomain   string
	BaseURL        string
	MaxUploadBytes int64
	// Compression enables gzip when non-nil.
	Compression *CompressionConfig

	// TemplateFS and StaticFS override the embedded/disk filesystems (tests).
	TemplateFS fs.FS
	StaticFS   fs.FS

	IsDev  bool
	Logger *slog.Logger
}

// NewRouter creates the UI router wrapped in its middleware chain:
// Recover, AccessLog, Compression, BodyLimit, CSRF, SessionLoader, BrowserDetection.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Backend == nil || services.Stores == nil || services.Decoder == nil {
		return nil, errors.New("router: backend, token stores and decoder are required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ui, err := setupUIHandlers(services, logger)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", http.HandlerFunc(Health))
	mux.Handle("HEAD /healthz", http.HandlerFunc(Health))
	mux.Handle("GET /static/", staticWithFallback(services))
	registerAuthRoutes(mux, ui)
	registerUIRoutes(mux, ui, services)

	var handler http.Handler = &notFoundHandler{mux: mux, uiHandlers: ui}
	handler = BrowserDetection()(handler)
	handler = SessionLoader(SessionLoaderOptions{
		Stores:  services.Stores,
		Decoder: services.Decoder,
		Clock:   services.Clock,
		Logger:  logger,
		Metrics: services.Metrics,
	})(handler)
	handler = CSRFProtection(CSRFConfig{
		CookieDomain: services.CookieDomain,
		TooLarge:     ui.uploadTooLarge,
	})(handler)
	handler = BodyLimit(services.MaxUploadBytes)(handler)
	if services.Compression != nil {
		cfg := *services.Compression
		if cfg.Logger == nil {
			cfg.Logger = logger
		}
		handler = Compression(cfg)(handler)
	}
	handler = AccessLog(logger, services.Metrics)(handler)
	return Recover(logger)(handler), nil
}

func setupUIHandlers(services RouterServices, logger *slog.Logger) (*UIHandlers, error) {
	templateFS := services.TemplateFS
	reload := false
	if templateFS == nil {
		if services.IsDev {
			templateFS = os.DirFS(TemplatePathFromRoot)
			reload = true
		} else {
			sub, err := fs.Sub(interviewui.TemplateFS, TemplatePathFromRoot)
			if err != nil {
				return nil, fmt.Errorf("template filesystem: %w", err)
			}
			templateFS = sub
		}
	}

	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS,
		Reload:     reload,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create template renderer: %w", err)
	}

	dashboards := services.Dashboards
	if dashboards == nil {
		dashboards = service.NewDashboardService(logger)
	}
	return &UIHandlers{
		T:          tr,
		Auth:       services.Auth,
		Dashboards: dashboards,
		Backend:    services.Backend,
		Guard:      services.Guard,
		Clock:      services.Clock,
		Metrics:    services.Metrics,
		BaseURL:    services.BaseURL,
		IsDev:      services.IsDev,
		Logger:     logger,
	}, nil
}

// staticWithFallback serves /static/* assets from disk in dev mode and from
// the embedded FS otherwise.
func staticWithFallback(services RouterServices) http.Handler {
	if services.StaticFS != nil {
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(services.StaticFS))))
	}
	if services.IsDev {
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))))
	}
	staticSub, err := fs.Sub(interviewui.StaticFS, "frontend/static")
	if err != nil {
		log.Printf("failed to create sub-filesystem for static assets: %v", err)
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))))
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))
}

var hashedFilePattern = regexp.MustCompile(`\.[a-f0-9]{8}\.(?:js|css)(?:\.map)?$`)

// staticWithCacheHeaders wraps a static file handler to add appropriate cache headers.
func staticWithCacheHeaders(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hashedFilePattern.MatchString(r.URL.Path) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		handler.ServeHTTP(w, r)
	})
}

func registerAuthRoutes(mux *http.ServeMux, h *UIHandlers) {
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /signup", h.SignupPage)
	mux.HandleFunc("POST /signup", h.Signup)
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.AuthStatus)

	// Shared assessment links are opened by candidates without an account.
	mux.HandleFunc("GET /assessment/{token}", h.Assessment)
	mux.HandleFunc("POST /assessment/{token}", h.SubmitAssessment)
}

// registerUIRoutes wires the guarded pages. Every route here passes the
// route guard; some further restrict the role.
func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, services RouterServices) {
	guard := RequireAuthBrowser(services.Guard, services.Metrics)
	only := func(roles ...domainauth.Role) func(http.Handler) http.Handler {
		return RequireRoleBrowser(services.Guard, services.Metrics, roles...)
	}
	student, hr, admin := only(domainauth.RoleStudent), only(domainauth.RoleHR), only(domainauth.RoleAdmin)

	mux.Handle("GET /{$}", guard(http.HandlerFunc(h.Dashboard)))
	mux.Handle("GET /dashboard", guard(http.HandlerFunc(h.Dashboard)))
	mux.Handle("GET /dashboard/hr-details", hr(http.HandlerFunc(h.CandidateDetails)))
	mux.Handle("GET /report/{analysis_id}", guard(http.HandlerFunc(h.Report)))

	mux.Handle("GET /analyze", only(domainauth.RoleStudent, domainauth.RoleHR)(http.HandlerFunc(h.AnalyzePage)))
	mux.Handle("POST /analyze/interview", student(http.HandlerFunc(h.StartInterview)))
	mux.Handle("POST /analyze/answers", student(http.HandlerFunc(h.SubmitAnswers)))
	mux.Handle("POST /analyze/assessment", hr(http.HandlerFunc(h.CreateAssessment)))

	mux.Handle("GET /batch-assessment", hr(http.HandlerFunc(h.BatchPage)))
	mux.Handle("POST /batch-assessment", hr(http.HandlerFunc(h.CreateBatch)))
	mux.Handle("POST /batch-assessment/export", hr(http.HandlerFunc(h.ExportBatch)))

	mux.Handle("GET /admin/logs", admin(http.HandlerFunc(h.AdminLogs)))
	mux.Handle("GET /admin/logs/export", admin(http.HandlerFunc(h.ExportAdminLogs)))
}

// NotFound renders the 404 page.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) {
		writeAPIError(w, http.StatusNotFound, "not_found", "not found")
		return
	}
	h.renderErrorPage(w, r, http.StatusNotFound, "The page you were looking for does not exist.")
}

// notFoundHandler wraps a ServeMux and provides custom 404 handling.
type notFoundHandler struct {
	mux        *http.ServeMux
	uiHandlers *UIHandlers
}

// ServeHTTP implements http.Handler and provides custom 404 handling.
func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, pattern := h.mux.Handler(r); pattern != "" || strings.HasPrefix(r.URL.Path, "/static/") {
		h.mux.ServeHTTP(w, r)
		return
	}
	cw := newCaptureWriter()
	h.mux.ServeHTTP(cw, r)
	if cw.status == http.StatusNotFound {
		h.uiHandlers.NotFound(w, r)
		return
	}
	// 405 and redirects from the mux pass through.
	cw.flushTo(w)
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	if _, err := w.Write(c.buf.Bytes()); err != nil {
		log.Printf("failed to write captured response: %v", err)
	}
}
