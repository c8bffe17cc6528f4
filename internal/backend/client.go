// Package backend is the HTTP client for the interview platform API.
//
// Every request made through an API value carries the caller's bearer token
// while a session is active. Failed responses surface as *APIError; a 401 is
// reported like any other failure and never ends the session by itself.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	apperrors "github.com/target/interview-ui/internal/errors"
	"github.com/target/interview-ui/internal/observability/metrics"
	"github.com/target/interview-ui/internal/observability/statsd"
)

const maxResponseBytes = 16 << 20

// TokenSource yields the current bearer token, or "" when there is no session.
// *service.SessionManager satisfies it.
type TokenSource interface {
	Token() string
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client // Optional; its Transport is reused for every API.
	Logger     *slog.Logger
	Metrics    statsd.Sink
}

// Client holds the shared connection settings. Use For to obtain a
// session-bound API.
type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	transport http.RoundTripper
	logger    *slog.Logger
	metrics   statsd.Sink
}

// NewClient validates opts and returns a Client.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse backend base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend base URL: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("backend base URL: missing host")
	}

	c := &Client{
		baseURL:   base,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		transport: http.DefaultTransport,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
	if opts.HTTPClient != nil {
		if opts.HTTPClient.Transport != nil {
			c.transport = opts.HTTPClient.Transport
		}
		if c.timeout == 0 {
			c.timeout = opts.HTTPClient.Timeout
		}
	}
	if c.timeout == 0 {
		c.timeout = 120 * time.Second
	}
	if c.userAgent == "" {
		c.userAgent = "interview-ui"
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.metrics == nil {
		c.metrics = statsd.Nop{}
	}
	return c, nil
}

// For returns an API that authenticates as src while src holds a token. A nil
// src yields an anonymous API.
func (c *Client) For(src TokenSource) *API {
	return &API{
		c: c,
		http: &http.Client{
			Timeout:   c.timeout,
			Transport: &bearerTransport{src: src, base: c.transport},
		},
	}
}

// Public returns an API that never sends credentials. Sign-in and sign-up
// use it.
func (c *Client) Public() *API { return c.For(nil) }

// bearerTransport consults the token source on every round trip so that a
// login or logout earlier in the same request is honoured.
type bearerTransport struct {
	src  TokenSource
	base http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := ""
	if t.src != nil {
		token = t.src.Token()
	}
	if token == "" {
		return t.base.RoundTrip(req)
	}
	ot := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   t.base,
	}
	return ot.RoundTrip(req)
}

// API issues backend calls on behalf of one session.
type API struct {
	c    *Client
	http *http.Client
}

// call describes one backend request.
type call struct {
	endpoint    string // low-cardinality metric/log label
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
}

func jsonCall(endpoint, method, path string, payload any) (call, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return call{}, fmt.Errorf("encode %s request: %w", endpoint, err)
	}
	return call{endpoint: endpoint, method: method, path: path, body: body, contentType: "application/json"}, nil
}

// do performs cl and decodes a 2xx JSON body into out when out is non-nil.
func (a *API) do(ctx context.Context, cl call, out any) error {
	raw, err := a.send(ctx, cl)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeUpstream, "decode %s response", cl.endpoint)
	}
	return nil
}

// send performs cl and returns the raw 2xx body.
func (a *API) send(ctx context.Context, cl call) ([]byte, error) {
	target := a.c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		body = bytes.NewReader(cl.body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", cl.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", a.c.userAgent)
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}

	start := time.Now()
	raw, status, err := a.roundTrip(req, cl.endpoint)
	rec := metrics.BackendCall{Endpoint: cl.endpoint, Status: status, Duration: time.Since(start), Err: err}
	metrics.EmitBackendCall(a.c.metrics, rec)
	a.log(ctx, cl, rec)
	return raw, err
}

func (a *API) roundTrip(req *http.Request, endpoint string) ([]byte, int, error) {
	resp, err := a.http.Do(req)
	if err != nil {
		code := apperrors.ErrCodeUpstream
		if errors.Is(err, context.DeadlineExceeded) {
			code = apperrors.ErrCodeTimeout
		}
		return nil, 0, apperrors.Wrapf(err, code, "%s request failed", endpoint)
	}

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if closeErr := resp.Body.Close(); closeErr != nil && readErr == nil {
		readErr = closeErr
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, decodeAPIError(endpoint, resp.StatusCode, raw)
	}
	if readErr != nil {
		return nil, resp.StatusCode, apperrors.Wrapf(readErr, apperrors.ErrCodeUpstream, "read %s response", endpoint)
	}
	return raw, resp.StatusCode, nil
}

func (a *API) log(ctx context.Context, cl call, rec metrics.BackendCall) {
	attrs := []any{
		"endpoint", cl.endpoint,
		"method", cl.method,
		"status", rec.Status,
		"duration_ms", rec.Duration.Milliseconds(),
	}
	switch {
	case rec.Err == nil:
		a.c.logger.DebugContext(ctx, "backend call", attrs...)
	case rec.Status > 0 && rec.Status < http.StatusInternalServerError:
		a.c.logger.InfoContext(ctx, "backend call rejected", append(attrs, "error", rec.Err)...)
	default:
		a.c.logger.WarnContext(ctx, "backend call failed", append(attrs, "error", rec.Err)...)
	}
}

// escape path-escapes each id segment.
func escape(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
