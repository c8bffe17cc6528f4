package httpx

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	domainauth "github.com/target/interview-ui/internal/domain/auth"
	"github.com/target/interview-ui/internal/observability/metrics"
	"github.com/target/interview-ui/internal/observability/statsd"
	"github.com/target/interview-ui/internal/ports"
	"github.com/target/interview-ui/internal/service"
)

// TokenStoreFactory returns the token store bound to one request.
type TokenStoreFactory func(w http.ResponseWriter, r *http.Request) (ports.TokenStore, error)

// SessionLoaderOptions groups dependencies for SessionLoader.
type SessionLoaderOptions struct {
	Stores  TokenStoreFactory
	Decoder ports.TokenDecoder
	Clock   ports.TimeProvider
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// SessionLoader restores the session for every request and attaches the
// resulting manager to the request context. A request whose token store
// cannot be opened continues ANONYMOUS.
func SessionLoader(opts SessionLoaderOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipsSession(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			store, err := opts.Stores(w, r)
			if err != nil {
				logger.WarnContext(r.Context(), "token store unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			m := service.NewSessionManager(service.SessionManagerOptions{
				Store:   store,
				Decoder: opts.Decoder,
				Clock:   opts.Clock,
				Logger:  logger,
				Metrics: opts.Metrics,
			})
			m.Restore(r.Context())
			next.ServeHTTP(w, r.WithContext(WithSessionManager(r.Context(), m)))
		})
	}
}

func skipsSession(path string) bool {
	return strings.HasPrefix(path, "/static/") || path == "/healthz"
}

// RequireAuthBrowser gates next behind the route guard. Browsers are sent to
// sign-in with the original location; API callers get a 401 JSON body.
func RequireAuthBrowser(guard service.RouteGuard, sink statsd.Sink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := guard.Decide(SessionState(r.Context()), requestTarget(r))
			if decision.Allow {
				next.ServeHTTP(w, r)
				return
			}
			metrics.EmitGuardRedirect(sink, r.URL.Path)
			if IsBrowserRequest(r) {
				// A fragment swap of the sign-in page would nest layouts, so
				// htmx callers navigate instead.
				Redirect(w, r, decision.RedirectTo)
				return
			}
			writeAPIError(w, http.StatusUnauthorized, "authentication_required", "authentication required")
		})
	}
}

// RequireRoleBrowser restricts next to the given roles. Anonymous requests
// are handled as in RequireAuthBrowser.
func RequireRoleBrowser(guard service.RouteGuard, sink statsd.Sink, roles ...domainauth.Role) func(http.Handler) http.Handler {
	auth := RequireAuthBrowser(guard, sink)
	return func(next http.Handler) http.Handler {
		return auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := CurrentSession(r.Context())
			for _, role := range roles {
				if sess.Claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			if IsBrowserRequest(r) {
				if IsHTMX(r) {
					triggerToast(w, "You do not have access to that page.", "error")
				}
				http.Error(w, "Access Denied: You don't have permission to access this resource", http.StatusForbidden)
				return
			}
			writeAPIError(w, http.StatusForbidden, "insufficient_permissions", "insufficient permissions")
		}))
	}
}

// requestTarget is the location to come back to after sign-in. For htmx
// requests this is the page the fragment was requested from, not the fragment.
func requestTarget(r *http.Request) *url.URL {
	if !IsHTMX(r) {
		return r.URL
	}
	for _, raw := range []string{r.Header.Get("Hx-Current-Url"), r.Header.Get("Referer")} {
		if p := safeRedirectFromURL(r, raw); p != "" {
			if u, err := url.Parse(p); err == nil {
				return u
			}
		}
	}
	return r.URL
}

// safeRedirectFromURL returns the path/query portion of raw when it points at
// this site. Absolute URLs must share the request host's registrable domain.
func safeRedirectFromURL(r *http.Request, raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	switch {
	case u.IsAbs():
		if !sameSite(u.Hostname(), hostOnly(r.Host)) {
			return ""
		}
		return service.SafeRedirectPath(u.RequestURI())
	case u.Host != "":
		// scheme-relative
		return ""
	default:
		return service.SafeRedirectPath(raw)
	}
}

func sameSite(a, b string) bool {
	if strings.EqualFold(a, b) {
		return true
	}
	ea, errA := publicsuffix.EffectiveTLDPlusOne(a)
	eb, errB := publicsuffix.EffectiveTLDPlusOne(b)
	if errA != nil || errB != nil {
		return false
	}
	return strings.EqualFold(ea, eb)
}

func hostOnly(hostport string) string {
	if u, err := url.Parse("//" + hostport); err == nil {
		return u.Hostname()
	}
	return hostport
}
