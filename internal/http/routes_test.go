package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func studentDashboard() map[string]any {
	return map[string]any{
		"role":       "student",
		"chart_data": []map[string]any{{"analysis_id": "an-1", "jd_title": "Backend Engineer", "overall_score": 84}},
	}
}

func TestGuard_AnonymousBrowserRedirectsWithOrigin(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, reqOpts{Path: "/report/an-1?tab=gaps"})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, "/report/an-1?tab=gaps", loc.Query().Get("redirect_uri"))
	assert.Empty(t, app.backend.callsTo("/api/analysis/an-1"), "protected content must not be fetched")
}

func TestGuard_AnonymousRootRedirectsWithoutOrigin(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, reqOpts{Path: "/"})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestGuard_AnonymousHTMXGetsHXRedirect(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, reqOpts{Path: "/report/an-1", HTMX: true})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/login?redirect_uri=%2Freport%2Fan-1", rec.Header().Get("Hx-Redirect"))
}

func TestGuard_AnonymousAPIClientGets401JSON(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, reqOpts{Path: "/report/an-1", Accept: "application/json"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "authentication_required", body["error"])
}

func TestGuard_ExpiredTokenIsErasedAndRedirected(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, reqOpts{Path: "/", Token: tokExpired})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	c := cookieNamed(rec, "token")
	require.NotNil(t, c, "expired token cookie should be cleared")
	assert.Equal(t, "", c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestGuard_MalformedTokenIsErased(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, reqOpts{Path: "/", Token: "garbage"})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	c := cookieNamed(rec, "token")
	require.NotNil(t, c)
	assert.Less(t, c.MaxAge, 0)
}

func TestDashboard_AuthenticatedRendersAndForwardsBearer(t *testing.T) {
	app := newTestApp(t)
	app.backend.on("GET /api/dashboard", http.StatusOK, studentDashboard())

	rec := app.do(t, reqOpts{Path: "/", Token: tokStudent})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Backend Engineer")
	assert.Contains(t, body, "/report/an-1")
	assert.Contains(t, body, "score-excellent")

	calls := app.backend.callsTo("/api/dashboard")
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer "+tokStudent, calls[0].Authorization)
	assert.Nil(t, cookieNamed(rec, "token"), "a valid session is left as is")
}

func TestDashboard_HTMXReturnsFragment(t *testing.T) {
	app := newTestApp(t)
	app.backend.on("GET /api/dashboard", http.StatusOK, studentDashboard())

	rec := app.do(t, reqOpts{Path: "/", Token: tokStudent, HTMX: true})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "<!doctype html>")
	assert.Contains(t, body, `hx-swap-oob="outerHTML"`)
	assert.Contains(t, body, "Backend Engineer")
}

func TestDashboard_HRVariant(t *testing.T) {
	app := newTestApp(t)
	app.backend.on("GET /api/dashboard", http.StatusOK, map[string]any{"role": "hr", "job_descriptions": []string{"Data Engineer\nRemote"}})

	rec := app.do(t, reqOpts{Path: "/", Token: tokHR})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Data Engineer")
	assert.Contains(t, rec.Body.String(), "/dashboard/hr-details?jd_text=")
}

func TestDashboard_AdminVariant(t *testing.T) {
	app := newTestApp(t)
	app.backend.on("GET /api/admin/logs/metrics", http.StatusOK, map[string]any{"total_calls": 12345, "avg_response_time_ms": 250})
	app.backend.on("GET /api/admin/logs", http.StatusOK, map[string]any{
		"logs":        []map[string]any{{"agent_name": "gap_fixer", "input_tokens": 10, "output_tokens": 20, "response_time_ms": 300, "timestamp": "2025-05-30T10:00:00"}},
		"page":        1,
		"total_pages": 3,
	})

	rec := app.do(t, reqOpts{Path: "/", Token: tokAdmin})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "12,345")
	assert.Contains(t, body, "gap_fixer")
	assert.Contains(t, body, "page=2")
	assert.Empty(t, app.backend.callsTo("/api/dashboard"), "admin dashboard is built from the log endpoints")
}

func TestDashboard_Backend401IsAFailedRequestNotALogout(t *testing.T) {
	app := newTestApp(t)
	app.backend.on("GET /api/dashboard", http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})

	rec := app.do(t, reqOpts{Path: "/", Token: tokStudent})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "did not accept your session")
	assert.Nil(t, cookieNamed(rec, "token"), "token must not be cleared on a backend 401")
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestLogin_PageRedirectsWhenAuthenticated(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, reqOpts{Path: "/login?redirect_uri=%2Fanalyze", Token: tokStudent})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/analyze", rec.Header().Get("Location"))
}

func TestLogin_SuccessSetsTokenAndFollowsRedirect(t *testing.T) {
	app := newTestApp(t)
	app.backend.on("POST /api/auth/signin", http.StatusOK, map[string]any{
		"access_token": "new-token",
		"token_type":   "bearer",
		"user":         map[string]any{"id": "u1", "name": "Sam", "email": "sam@example.com", "role": "student"},
	})

	rec := app.do(t, reqOpts{
		Method: http.MethodPost,
		Path:   "/login",
		Form:   url.Values{"email": {"sam@example.com"}, "password": {"pw"}, "redirect_uri": {"/report/an-1"}},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/report/an-1", rec.Header().Get("Location"))
	c := cookieNamed(rec, "token")
	require.NotNil(t, c)
	assert.Equal(t, "new-token", c.Value)
	assert.True(t, c.HttpOnly)
	csrf := cookieNamed(rec, DefaultCSRFCookieName)
	require.NotNil(t, csrf, "csrf token rotates on sign-in")
	assert.NotEqual(t, testCSRF, csrf.Value)

	calls := app.backend.callsTo("/api/auth/signin")
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Authorization)
}

func TestLogin_RejectsOffsiteRedirect(t *testing.T) {
	app := newTestApp(t)
	app.backend.on("POST /api/auth/signin", http.StatusOK, map[string]any{
		"access_token": "new-token",
		"user":         map[string]any{"email": "sam@example.com", "role": "student"},
	})

	rec := app.do(t, reqOpts{
		Method: http.MethodPost,
		Path:   "/login",
		Form:   url.Values{"email": {"sam@example.com"}, "password": {"pw"}, "redirect_uri": {"//evil.example"}},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLogin_BadCredentialsRerendersForm(t *testing.T) {
	app := newTestApp(t)
	app.backend.on("POST /api/auth/signin", http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})

	rec := app.do(t, reqOpts{
		Method: http.MethodPost,
		Path:   "/login",
		Form:   url.Values{"email": {"sam@example.com"}, "password": {"nope"}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Incorrect email or password")
	assert.Contains(t, rec.Body.String(), `value="sam@example.com"`)
	assert.Nil(t, cookieNamed(rec, "token"))
}

func TestLogin_MissingCSRFIsForbidden(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, reqOpts{
		Method: http.MethodPost,
		Path:   "/login",
		Form:   url.Values{"email": {"sam@example.com"}, "password": {"pw"}},
		NoCSRF: true,
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, app.backend.callsTo("/api/auth/signin"))
}

func TestLogout_ClearsTokenAndRedirects(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, reqOpts{Method: http.MethodPost, Path: "/logout", Token: tokStudent, Form: url.Values{}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	c := cookieNamed(rec, "token")
	require.NotNil(t, c)
	assert.Less(t, c.MaxAge, 0)
}

func TestLogout_WhenAnonymousStillSucceeds(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, reqOpts{Method: http.MethodPost, Path: "/logout", Accept: "application/json", Form: url.Values{}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"signed_out"}`, rec.Body.String())
}

func TestSignup_LocalValidationSkipsBackend(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, reqOpts{
		Method: http.MethodPost,
		Path:   "/signup",
		Form:   url.Values{"name": {""}, "email": {"bad"}, "password": {"123"}, "role": {"admin"}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "name is required")
	assert.Contains(t, body, "password must be at least 6 characters")
	assert.Contains(t, body, "role must be student or hr")
	assert.Empty(t, app.backend.callsTo("/api/auth/signup"))
}

func TestSignup_SuccessRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)
	app.backend.on("POST /api/auth/signup", http.StatusCreated, map[string]string{"message": "ok"})

	rec := app.do(t, reqOpts{
		Method: http.MethodPost,
		Path:   "/signup",
		Form:   url.Values{"name": {"Hana"}, "email": {"hana@example.com"}, "password": {"secret1"}, "role": {"hr"}},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?registered=1", rec.Header().Get("Location"))
}

func TestRoleRestrictedPage_WrongRoleIsForbidden(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, reqOpts{Path: "/batch-assessment", Token: tokStudent})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoleRestrictedPage_RightRoleRenders(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, reqOpts{Path: "/batch-assessment", Token: tokHR})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="resumes"`)
}

func TestReport_NotFoundKeepsSession(t *testing.T) {
	app := newTestApp(t)
	app.backend.on("GET /api/analysis/missing", http.StatusNotFound, map[string]string{"detail": "Analysis not found"})

	rec := app.do(t, reqOpts{Path: "/report/missing", Token: tokStudent})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Analysis not found")
}

func TestReport_RendersEvaluation(t *testing.T) {
	app := newTestApp(t)
	app.backend.on("GET /api/analysis/an-1", http.StatusOK, map[string]any{
		"resume_filename":      "cv.pdf",
		"job_description_text": "Backend Engineer\nGo, Postgres",
		"full_result": map[string]any{
			"resume_analysis":    map[string]any{"success": true, "data": map[string]any{"technical_skills": 72, "strengths": []string{"Go"}}},
			"mock_response":      map[string]any{"success": false, "data": map[string]any{}},
			"success_prediction": map[string]any{"success": true, "data": map[string]any{"score": 55, "justification": "solid basics"}},
			"gap_fixer":          map[string]any{"success": true, "data": map[string]any{"summary": "practice", "improvements": []string{"system design"}}},
		},
	})

	rec := app.do(t, reqOpts{Path: "/report/an-1", Token: tokHR})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "cv.pdf")
	assert.Contains(t, body, "Technical skills")
	assert.Contains(t, body, "score-fair")
	assert.Contains(t, body, "system design")
	assert.Equal(t, "Bearer "+tokHR, app.backend.callsTo("/api/analysis/an-1")[0].Authorization)
}

func TestPublicAssessment_BearerFollowsSession(t *testing.T) {
	app := newTestApp(t)
	app.backend.on("GET /api/assessment/public/share-1", http.StatusOK, map[string]any{
		"job_description": "Data Analyst",
		"questions":       []string{"Why data?", "Describe a project."},
	})
	app.backend.on("POST /api/assessment/public/share-1", http.StatusOK, map[string]string{"message": "saved"})

	rec := app.do(t, reqOpts{Path: "/assessment/share-1", Token: tokHR})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Describe a project.")

	rec = app.do(t, reqOpts{Path: "/assessment/share-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, reqOpts{
		Method: http.MethodPost,
		Path:   "/assessment/share-1",
		Form:   url.Values{"question": {"Why data?", "Describe a project."}, "answer": {"curious", "built a pipeline"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "submitted")

	calls := app.backend.callsTo("/api/assessment/public/share-1")
	require.Len(t, calls, 3)
	assert.Equal(t, "Bearer "+tokHR, calls[0].Authorization)
	assert.Empty(t, calls[1].Authorization)
	assert.Empty(t, calls[2].Authorization)
	var answers []map[string]string
	require.NoError(t, json.Unmarshal([]byte(calls[2].Body), &answers))
	assert.Equal(t, "built a pipeline", answers[1]["answer"])
}

func TestOversizedUploadRendersLimit(t *testing.T) {
	app := newTestApp(t)

	body, ct := oversizedUpload(t)
	req := httptest.NewRequest(http.MethodPost, "/analyze/interview", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Accept", "text/html")
	req.AddCookie(&http.Cookie{Name: "token", Value: tokStudent})
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "tok"})
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "upload exceeds 1 MB")
	assert.Empty(t, app.backend.callsTo("/api/interview/run-interview-evaluation/"))
}

func TestAuthStatus(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, reqOpts{Path: "/auth/status", Accept: "application/json"})
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())

	rec = app.do(t, reqOpts{Path: "/auth/status", Token: tokAdmin, Accept: "application/json"})
	var st struct {
		Authenticated bool `json:"authenticated"`
		User          struct {
			Role string `json:"role"`
			Sub  string `json:"sub"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.True(t, st.Authenticated)
	assert.Equal(t, "admin", st.User.Role)
	assert.Equal(t, "a1", st.User.Sub)
}

func TestHealthAndNotFound(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, reqOpts{Path: "/healthz", Accept: "application/json"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = app.do(t, reqOpts{Path: "/no/such/page", Token: tokStudent})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "does not exist"))
}
