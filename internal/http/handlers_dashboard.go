package httpx

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	domainauth "github.com/target/interview-ui/internal/domain/auth"
	"github.com/target/interview-ui/internal/domain/model"
	"github.com/target/interview-ui/internal/service"
)

func dashboardMeta(role domainauth.Role) PageMeta {
	title := "Dashboard"
	if role.Valid() {
		title = role.Label() + " dashboard"
	}
	return PageMeta{Title: title, PageTitle: title, CurrentPage: PageDashboard}
}

// Dashboard serves GET /. The view is chosen by the dashboard variant, which
// follows the signed-in role.
func (h *UIHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := CurrentSession(r.Context())
	q := service.DashboardQuery{
		JobDescription: strings.TrimSpace(r.URL.Query().Get("jd_text")),
		Page:           pageParam(r),
	}

	dash, err := h.Dashboards.Load(r.Context(), h.api(r), sess.Claims, q)
	data := dashboardData(dash)
	meta := dashboardMeta(sess.Claims.Role)
	if err != nil {
		h.RenderError(ErrorOpts{W: w, R: r, Err: err, PageMeta: meta, Data: data, StatusCode: http.StatusOK, ShowToast: true})
		return
	}

	b := NewTemplateData(r, meta)
	for k, v := range data {
		b.With(k, v)
	}
	if admin, ok := dash.(model.AdminDashboard); ok {
		b.WithPager("/", admin.Logs.Page, admin.Logs.TotalPages)
	}
	h.renderPage(w, r, http.StatusOK, b.Build())
}

// dashboardData exposes exactly one variant key to the template.
func dashboardData(dash model.Dashboard) map[string]any {
	data := map[string]any{}
	switch d := dash.(type) {
	case model.StudentDashboard:
		data["Student"] = d
	case model.HRDashboard:
		data["HR"] = d
	case model.AdminDashboard:
		data["Admin"] = d
	}
	return data
}

// CandidateDetails serves GET /dashboard/hr-details, the candidate list for
// one job description. htmx gets the fragment; a plain visit gets the full dashboard.
func (h *UIHandlers) CandidateDetails(w http.ResponseWriter, r *http.Request) {
	jd := strings.TrimSpace(r.URL.Query().Get("jd_text"))
	if !IsHTMX(r) {
		http.Redirect(w, r, "/?jd_text="+url.QueryEscape(jd), http.StatusSeeOther)
		return
	}

	candidates, err := h.Dashboards.Candidates(r.Context(), h.api(r), jd)
	if err != nil {
		triggerToast(w, userMessage(err, map[string]string{}), "error")
	}
	data := model.HRDashboard{Selected: jd, Candidates: candidates}
	if err := h.T.Fragment(w, "hr-candidates", data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "candidate list render")
	}
}

// pageParam parses the page query parameter, defaulting to 1.
func pageParam(r *http.Request) int {
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && n > 0 {
		return n
	}
	return 1
}
