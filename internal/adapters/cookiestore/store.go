// Package cookiestore persists the bearer token in an HttpOnly browser cookie.
// A Store is bound to one request/response pair.
package cookiestore

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/target/interview-ui/internal/adapters/jwtclaims"
)

// Options configures the cookies written by this package.
type Options struct {
	// Name is the well-known cookie name, e.g. "token" or "browser_id".
	Name string
	// Domain is the cookie domain; empty uses the request host.
	Domain string
	// TTL is used when the token expiry cannot be read.
	TTL time.Duration
}

// Store implements ports.TokenStore on top of a request cookie.
type Store struct {
	w    http.ResponseWriter
	r    *http.Request
	opts Options

	// written tracks values set during this request so a Load after Save or
	// Clear sees the new value rather than the stale request cookie.
	written *string
}

// New returns a Store for the given request.
func New(w http.ResponseWriter, r *http.Request, opts Options) *Store {
	if opts.Name == "" {
		opts.Name = "token"
	}
	return &Store{w: w, r: r, opts: opts}
}

func (s *Store) Load(_ context.Context) (string, error) {
	if s.written != nil {
		return *s.written, nil
	}
	c, err := s.r.Cookie(s.opts.Name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", nil
		}
		return "", err
	}
	return c.Value, nil
}

func (s *Store) Save(_ context.Context, token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}
	maxAge := int(s.opts.TTL.Seconds())
	if exp, ok := jwtclaims.ExpiresAt(token); ok {
		if until := int(time.Until(exp).Seconds()); until > 0 {
			maxAge = until
		}
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     s.opts.Name,
		Value:    token,
		Path:     "/",
		Domain:   s.opts.Domain,
		HttpOnly: true,
		Secure:   IsSecure(s.r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
	s.written = &token
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	Expire(s.w, s.r, s.opts.Name, s.opts.Domain)
	empty := ""
	s.written = &empty
	return nil
}

// IsSecure reports whether the request arrived over TLS, directly or via a proxy.
func IsSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// Expire clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting cookies
// to maximize compatibility across browsers during deletion.
func Expire(w http.ResponseWriter, r *http.Request, name, domain string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		Secure:   IsSecure(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// BrowserID returns the opaque browser id stored in the opts.Name cookie,
// minting and setting a new UUID when it is absent or not a valid UUID.
// Server-side token stores key their single cell by this id.
func BrowserID(w http.ResponseWriter, r *http.Request, opts Options) string {
	if c, err := r.Cookie(opts.Name); err == nil {
		if id, parseErr := uuid.Parse(c.Value); parseErr == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 365 * 24 * time.Hour
	}
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    id,
		Path:     "/",
		Domain:   opts.Domain,
		HttpOnly: true,
		Secure:   IsSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
	// Make the id visible to later readers of the same request.
	cookies := r.Cookies()
	r.Header.Del("Cookie")
	for _, c := range cookies {
		if c.Name != opts.Name {
			r.AddCookie(c)
		}
	}
	r.AddCookie(&http.Cookie{Name: opts.Name, Value: id})
	return id
}
