package httpx

import (
	"html"
	"log/slog"
	"net/http"

	"github.com/target/interview-ui/internal/backend"
	"github.com/target/interview-ui/internal/observability/statsd"
	"github.com/target/interview-ui/internal/ports"
	"github.com/target/interview-ui/internal/service"
)

// multipartMemory is how much of a multipart body is held in memory before spilling to disk.
const multipartMemory = 8 << 20

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T          *TemplateRenderer
	Auth       *service.AuthService
	Dashboards *service.DashboardService
	Backend    *backend.Client
	Guard      service.RouteGuard
	Clock      ports.TimeProvider
	Metrics    statsd.Sink
	// BaseURL is the externally visible origin used to build shareable assessment links.
	BaseURL string
	IsDev   bool // Development mode flag for enhanced error reporting
	Logger  *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// api returns a backend API bound to the request's session, so the bearer
// token travels with every call made while the session is active.
func (h *UIHandlers) api(r *http.Request) *backend.API {
	if m, ok := SessionManagerFromContext(r.Context()); ok {
		return h.Backend.For(m)
	}
	return h.Backend.Public()
}

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// renderPage renders a page with proper HTMX partial support.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	if status != 0 && status != http.StatusOK {
		w = &statusWriter{ResponseWriter: w, status: status}
	}

	if !WantsPartial(r) {
		if err := h.T.Page(w, data); err != nil {
			h.logAndRenderTemplateError(w, r, err, "full page render")
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	trigger(w, eventNavActivate, map[string]string{"path": r.URL.Path})

	title, _ := data["Title"].(string)
	pageTitle, _ := data["PageTitle"].(string)
	page, _ := data["CurrentPage"].(string)

	// Include a <title> element so htmx updates document.title on partial swaps.
	if _, err := w.Write([]byte(`<title>` + html.EscapeString(title) + `</title>` +
		`<h1 id="header-title" class="header-title" hx-swap-oob="outerHTML">` + html.EscapeString(pageTitle) + `</h1>`)); err != nil {
		h.logger().Error("failed to write partial header", "error", err)
		return
	}
	if err := h.T.Content(w, page, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "partial content render")
	}
}

// statusWriter delays WriteHeader(status) until the body is written, so the
// renderer can still set Content-Type.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusWriter) WriteHeader(code int) {
	if s.wroteHeader {
		return
	}
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusWriter) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteHeader(s.status)
	}
	return s.ResponseWriter.Write(b)
}

func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template render failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
	)
	if h.IsDev {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		if _, writeErr := w.Write([]byte("template rendering error (" + context + "): " + err.Error())); writeErr != nil {
			h.logger().Error("failed to write template error response", "error", writeErr)
		}
		return
	}
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
