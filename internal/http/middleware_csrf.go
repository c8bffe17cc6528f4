package httpx

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/target/interview-ui/internal/adapters/cookiestore"
)

const (
	DefaultCSRFCookieName = "csrf_token"
	// DefaultCSRFHeaderName is the canonical form of the header htmx sends.
	DefaultCSRFHeaderName  = "X-Csrf-Token"
	DefaultCSRFTokenLength = 32
	csrfCookieMaxAge       = 12 * 3600
)

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	CookieName    string
	HeaderName    string
	FormFieldName string
	CookieDomain  string
	TokenLength   int
	// TooLarge answers an unsafe request whose form body exceeded the upload
	// limit before its token could be read.
	TooLarge func(w http.ResponseWriter, r *http.Request, limit int64)
}

func (c CSRFConfig) withDefaults() CSRFConfig {
	if c.CookieName == "" {
		c.CookieName = DefaultCSRFCookieName
	}
	if c.HeaderName == "" {
		c.HeaderName = DefaultCSRFHeaderName
	}
	if c.FormFieldName == "" {
		c.FormFieldName = DefaultCSRFCookieName
	}
	if c.TokenLength <= 0 {
		c.TokenLength = DefaultCSRFTokenLength
	}
	if c.TooLarge == nil {
		c.TooLarge = func(w http.ResponseWriter, _ *http.Request, limit int64) {
			http.Error(w, uploadLimitMessage(limit), http.StatusRequestEntityTooLarge)
		}
	}
	return c
}

type csrfState struct {
	cfg   CSRFConfig
	token string
}

type csrfKey struct{}

// CSRFProtection applies the double-submit cookie pattern to every unsafe
// method. The token may arrive in the X-Csrf-Token header, which the layout
// configures htmx to send, or in the csrf_token form field.
func CSRFProtection(cfg CSRFConfig) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := &csrfState{cfg: cfg}
			if c, err := r.Cookie(cfg.CookieName); err == nil {
				st.token = c.Value
			}

			if isUnsafeMethod(r.Method) {
				ok, err := st.matches(r)
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					cfg.TooLarge(w, r, tooLarge.Limit)
					return
				}
				if !ok {
					http.Error(w, "CSRF token validation failed", http.StatusForbidden)
					return
				}
			}
			if st.token == "" {
				if err := st.issue(w, r); err != nil {
					http.Error(w, "unable to generate CSRF token", http.StatusInternalServerError)
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfKey{}, st)))
		})
	}
}

// RotateCSRFToken replaces the request's CSRF token. Login and logout call it
// so a token minted for one session state is not accepted in the next.
func RotateCSRFToken(w http.ResponseWriter, r *http.Request) error {
	st, ok := r.Context().Value(csrfKey{}).(*csrfState)
	if !ok {
		return nil
	}
	return st.issue(w, r)
}

// GetCSRFToken returns the token templates embed in forms.
func GetCSRFToken(r *http.Request) string {
	if st, ok := r.Context().Value(csrfKey{}).(*csrfState); ok {
		return st.token
	}
	return ""
}

func (st *csrfState) issue(w http.ResponseWriter, r *http.Request) error {
	b := make([]byte, st.cfg.TokenLength)
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("generate csrf token: %w", err)
	}
	st.token = base64.URLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     st.cfg.CookieName,
		Value:    st.token,
		Path:     "/",
		Domain:   st.cfg.CookieDomain,
		HttpOnly: false, // read by htmx
		Secure:   cookiestore.IsSecure(r),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   csrfCookieMaxAge,
	})
	return nil
}

// matches compares the submitted token with the cookie in constant time. The
// error reports a form body that could not be parsed.
func (st *csrfState) matches(r *http.Request) (bool, error) {
	if st.token == "" {
		return false, nil
	}
	submitted := r.Header.Get(st.cfg.HeaderName)
	if submitted == "" {
		var err error
		if submitted, err = formToken(r, st.cfg.FormFieldName); err != nil {
			return false, err
		}
	}
	return submitted != "" && subtle.ConstantTimeCompare([]byte(submitted), []byte(st.token)) == 1, nil
}

// formToken reads the field from url-encoded or multipart bodies; other
// content types must use the header.
func formToken(r *http.Request, field string) (string, error) {
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			return "", err
		}
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return "", err
		}
	default:
		return "", nil
	}
	return r.PostFormValue(field), nil
}

func isUnsafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}
