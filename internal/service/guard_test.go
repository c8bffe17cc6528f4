package service

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/interview-ui/internal/domain/auth"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestRouteGuard_AnonymousRedirectsWithOrigin(t *testing.T) {
	g := NewRouteGuard("/login", "redirect_uri")

	for _, target := range []string{"/", "/analyze", "/report/abc-123", "/dashboard/hr-details?jd_text=Go+Dev"} {
		d := g.Decide(domainauth.StateAnonymous, mustURL(t, target))
		assert.False(t, d.Allow, target)

		redirect := mustURL(t, d.RedirectTo)
		assert.Equal(t, "/login", redirect.Path, target)
		if target == "/" {
			assert.Empty(t, redirect.RawQuery)
			continue
		}
		assert.Equal(t, target, redirect.Query().Get("redirect_uri"), target)
	}
}

func TestRouteGuard_AuthenticatedRendersUnmodified(t *testing.T) {
	g := NewRouteGuard("", "")
	d := g.Decide(domainauth.StateAuthenticated, mustURL(t, "/report/1"))
	assert.True(t, d.Allow)
	assert.Empty(t, d.RedirectTo)
}

func TestRouteGuard_Defaults(t *testing.T) {
	g := NewRouteGuard("", "")
	assert.Equal(t, "/login", g.SignInPath())
	assert.Equal(t, "redirect_uri", g.Param())
	assert.Equal(t, "/login", g.Decide(domainauth.StateAnonymous, nil).RedirectTo)
}

func TestSafeRedirectPath(t *testing.T) {
	cases := map[string]string{
		"":                     "/",
		"/analyze":             "/analyze",
		"/report/1?x=y":        "/report/1?x=y",
		"https://evil.example": "/",
		"//evil.example/path":  "/",
		`/\evil.example`:       "/",
		"relative/path":        "/",
		"javascript:alert(1)":  "/",
	}
	for in, want := range cases {
		assert.Equal(t, want, SafeRedirectPath(in), in)
	}
}
