package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/target/interview-ui/internal/adapters/cookiestore"
	"github.com/target/interview-ui/internal/backend"
	"github.com/target/interview-ui/internal/clock"
	domainauth "github.com/target/interview-ui/internal/domain/auth"
	mockauth "github.com/target/interview-ui/internal/mocks/auth"
	"github.com/target/interview-ui/internal/ports"
	"github.com/target/interview-ui/internal/service"
)

const testCSRF = "test-csrf-token"

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// Tokens understood by the test decoder.
const (
	tokStudent = "tok-student"
	tokHR      = "tok-hr"
	tokAdmin   = "tok-admin"
	tokExpired = "tok-expired"
)

func testClaims() map[string]domainauth.Claims {
	future := testNow.Add(time.Hour)
	return map[string]domainauth.Claims{
		tokStudent: {Subject: "s1", Role: domainauth.RoleStudent, Name: "Sam", ExpiresAt: future},
		tokHR:      {Subject: "h1", Role: domainauth.RoleHR, Name: "Hana", ExpiresAt: future},
		tokAdmin:   {Subject: "a1", Role: domainauth.RoleAdmin, Name: "Ada", ExpiresAt: future},
		tokExpired: {Subject: "s2", Role: domainauth.RoleStudent, ExpiresAt: testNow.Add(-time.Minute)},
	}
}

// backendCall is one request seen by the fake backend.
type backendCall struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	Body          string
}

// fakeBackend records calls and answers from per-path handlers.
type fakeBackend struct {
	mu     sync.Mutex
	calls  []backendCall
	routes map[string]http.HandlerFunc
	srv    *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{routes: map[string]http.HandlerFunc{}}
	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fb.mu.Lock()
		fb.calls = append(fb.calls, backendCall{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
			Body:          string(body),
		})
		h, ok := fb.routes[r.Method+" "+r.URL.Path]
		fb.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"no route"}`))
			return
		}
		h(w, r)
	}))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) on(methodPath string, status int, body any) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[methodPath] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func (fb *fakeBackend) callsTo(path string) []backendCall {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	var out []backendCall
	for _, c := range fb.calls {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

type testApp struct {
	handler http.Handler
	backend *fakeBackend
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	fb := newFakeBackend(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := backend.NewClient(backend.Options{BaseURL: fb.srv.URL + "/api", Timeout: 5 * time.Second, Logger: logger})
	require.NoError(t, err)

	handler, err := NewRouter(RouterServices{
		Auth:    service.NewAuthService(service.AuthServiceOptions{API: client.Public(), Logger: logger}),
		Backend: client,
		Guard:   service.NewRouteGuard("/login", "redirect_uri"),
		Stores: func(w http.ResponseWriter, r *http.Request) (ports.TokenStore, error) {
			return cookiestore.New(w, r, cookiestore.Options{Name: "token"}), nil
		},
		Decoder:        mockauth.NewStaticDecoder(testClaims()),
		Clock:          clock.NewFixed(testNow),
		BaseURL:        "https://prep.example.com",
		MaxUploadBytes: 1 << 20,
		TemplateFS:     os.DirFS(TemplatePathFromTest),
		Logger:         logger,
	})
	require.NoError(t, err)
	return &testApp{handler: handler, backend: fb}
}

// reqOpts describes one browser request to the app.
type reqOpts struct {
	Method string
	Path   string
	Token  string
	Form   url.Values
	HTMX   bool
	Accept string
	// NoCSRF omits the CSRF cookie and header.
	NoCSRF bool
}

func (a *testApp) do(t *testing.T, o reqOpts) *httptest.ResponseRecorder {
	t.Helper()
	if o.Method == "" {
		o.Method = http.MethodGet
	}
	var body io.Reader
	if o.Form != nil {
		body = strings.NewReader(o.Form.Encode())
	}
	req := httptest.NewRequest(o.Method, o.Path, body)
	if o.Form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if o.Accept == "" {
		o.Accept = "text/html"
	}
	req.Header.Set("Accept", o.Accept)
	if o.HTMX {
		req.Header.Set("Hx-Request", "true")
	}
	if o.Token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: o.Token})
	}
	if !o.NoCSRF {
		req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRF})
		req.Header.Set(DefaultCSRFHeaderName, testCSRF)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// cookieNamed returns the Set-Cookie for name, if any.
func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
