package service

import (
	"net/url"
	"strings"

	domainauth "github.com/target/interview-ui/internal/domain/auth"
)

// GuardDecision is the outcome of gating a protected target.
type GuardDecision struct {
	// Allow means the target renders unmodified.
	Allow bool
	// RedirectTo is the sign-in location carrying the original target; set when Allow is false.
	RedirectTo string
}

// RouteGuard decides whether a protected target renders or redirects to sign-in.
// It checks authentication only; role checks belong to the views.
type RouteGuard struct {
	signInPath string
	param      string
}

// NewRouteGuard returns a guard that redirects to signInPath, carrying the
// original location in the param query parameter.
func NewRouteGuard(signInPath, param string) RouteGuard {
	if signInPath == "" {
		signInPath = "/login"
	}
	if param == "" {
		param = "redirect_uri"
	}
	return RouteGuard{signInPath: signInPath, param: param}
}

// Decide gates target for the given session state.
func (g RouteGuard) Decide(state domainauth.State, target *url.URL) GuardDecision {
	if state == domainauth.StateAuthenticated {
		return GuardDecision{Allow: true}
	}
	from := "/"
	if target != nil {
		from = target.RequestURI()
	}
	return GuardDecision{RedirectTo: g.SignInURL(from)}
}

// SignInURL builds the sign-in location for an original target.
func (g RouteGuard) SignInURL(from string) string {
	from = SafeRedirectPath(from)
	u := url.URL{Path: g.signInPath}
	if from != "/" {
		q := url.Values{}
		q.Set(g.param, from)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Param is the query parameter that carries the original location.
func (g RouteGuard) Param() string { return g.param }

// SignInPath is the sign-in route.
func (g RouteGuard) SignInPath() string { return g.signInPath }

// SafeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute or protocol-relative URL. Returns "/" when invalid.
func SafeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	if strings.HasPrefix(candidate, "//") || strings.HasPrefix(candidate, `/\`) {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
