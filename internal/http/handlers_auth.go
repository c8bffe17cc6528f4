package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/target/interview-ui/internal/backend"
	domainauth "github.com/target/interview-ui/internal/domain/auth"
	"github.com/target/interview-ui/internal/domain/model"
	apperrors "github.com/target/interview-ui/internal/errors"
	"github.com/target/interview-ui/internal/service"
)

var errNoSession = errors.New("session unavailable")

func loginMeta() PageMeta {
	return PageMeta{Title: "Sign in", PageTitle: "Sign in", CurrentPage: PageLogin}
}

func signupMeta() PageMeta {
	return PageMeta{Title: "Create account", PageTitle: "Create account", CurrentPage: PageSignup}
}

// LoginPage serves GET /login. A signed-in visitor is sent on to the
// redirect target straight away.
func (h *UIHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	redirect := service.SafeRedirectPath(r.URL.Query().Get(h.Guard.Param()))
	if SessionState(r.Context()) == domainauth.StateAuthenticated {
		Redirect(w, r, redirect)
		return
	}
	data := NewTemplateData(r, loginMeta()).
		With("RedirectURI", redirect).
		With("Registered", r.URL.Query().Get("registered") == "1").
		Build()
	h.renderPage(w, r, http.StatusOK, data)
}

// Login serves POST /login.
func (h *UIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirect := service.SafeRedirectPath(r.PostFormValue(h.Guard.Param()))
	req := model.SignInRequest{Email: r.PostFormValue("email"), Password: r.PostFormValue("password")}
	formData := map[string]any{"RedirectURI": redirect, "Email": strings.TrimSpace(req.Email)}

	sessions, ok := SessionManagerFromContext(r.Context())
	if !ok {
		h.RenderError(ErrorOpts{W: w, R: r, Err: errNoSession, PageMeta: loginMeta(), Data: formData})
		return
	}

	if _, err := h.Auth.SignIn(r.Context(), sessions, req); err != nil {
		if apperrors.IsUnauthorized(err) {
			// Wrong credentials are a form error, not a session problem.
			err = apperrors.Validation(backend.Detail(err, "Invalid email or password."))
		}
		h.RenderError(ErrorOpts{W: w, R: r, Err: err, PageMeta: loginMeta(), Data: formData})
		return
	}
	h.rotateCSRF(w, r)
	Redirect(w, r, redirect)
}

// SignupPage serves GET /signup.
func (h *UIHandlers) SignupPage(w http.ResponseWriter, r *http.Request) {
	data := NewTemplateData(r, signupMeta()).
		With("Roles", domainauth.SelfServiceRoles()).
		With("Role", string(domainauth.RoleStudent)).
		Build()
	h.renderPage(w, r, http.StatusOK, data)
}

// Signup serves POST /signup.
func (h *UIHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	req := model.SignUpRequest{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	if role, err := domainauth.ParseRole(r.PostFormValue("role")); err == nil {
		req.Role = role
	}

	if err := h.Auth.SignUp(r.Context(), req); err != nil {
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: err, PageMeta: signupMeta(),
			Data: map[string]any{
				"Roles": domainauth.SelfServiceRoles(),
				"Name":  strings.TrimSpace(req.Name),
				"Email": strings.TrimSpace(req.Email),
				"Role":  string(req.Role),
			},
		})
		return
	}
	Redirect(w, r, h.Guard.SignInPath()+"?registered=1")
}

// Logout serves POST /logout. The session is ANONYMOUS afterwards whatever the store reports.
func (h *UIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sessions, ok := SessionManagerFromContext(r.Context()); ok {
		h.Auth.SignOut(r.Context(), sessions)
	}
	h.rotateCSRF(w, r)
	if !IsBrowserRequest(r) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
		return
	}
	Redirect(w, r, h.Guard.SignInPath())
}

func (h *UIHandlers) rotateCSRF(w http.ResponseWriter, r *http.Request) {
	if err := RotateCSRFToken(w, r); err != nil {
		h.logger().WarnContext(r.Context(), "csrf token rotation failed", "error", err)
	}
}

type authStatus struct {
	Authenticated bool               `json:"authenticated"`
	User          *domainauth.Claims `json:"user,omitempty"`
}

// AuthStatus serves GET /auth/status.
func (h *UIHandlers) AuthStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := CurrentSession(r.Context())
	if !ok {
		WriteJSON(w, http.StatusOK, authStatus{})
		return
	}
	WriteJSON(w, http.StatusOK, authStatus{Authenticated: true, User: &sess.Claims})
}

// Health serves GET /healthz.
func Health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
