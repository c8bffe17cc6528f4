package httpx

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/target/interview-ui/internal/domain/model"
	"github.com/target/interview-ui/internal/export"
	"github.com/target/interview-ui/internal/service"
)

func adminLogsMeta() PageMeta {
	return PageMeta{Title: "Agent logs", PageTitle: "LLM agent logs", CurrentPage: PageAdminLogs}
}

// AdminLogs serves GET /admin/logs?page=N.
func (h *UIHandlers) AdminLogs(w http.ResponseWriter, r *http.Request) {
	admin, err := h.adminDashboard(r)
	if err != nil {
		h.RenderError(ErrorOpts{W: w, R: r, Err: err, PageMeta: adminLogsMeta(), Data: map[string]any{"Admin": admin}})
		return
	}
	data := NewTemplateData(r, adminLogsMeta()).
		With("Admin", admin).
		WithPager("/admin/logs", admin.Logs.Page, admin.Logs.TotalPages).
		Build()
	h.renderPage(w, r, http.StatusOK, data)
}

// ExportAdminLogs serves GET /admin/logs/export?page=N as a spreadsheet.
func (h *UIHandlers) ExportAdminLogs(w http.ResponseWriter, r *http.Request) {
	admin, err := h.adminDashboard(r)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.AdminLogs(&buf, admin.Metrics, admin.Logs); err != nil {
		h.logger().ErrorContext(r.Context(), "admin log export failed", "error", err)
		http.Error(w, "unable to build spreadsheet", http.StatusInternalServerError)
		return
	}
	writeAttachment(w, "agent-logs-page-"+strconv.Itoa(admin.Logs.Page)+".xlsx", &buf)
}

func (h *UIHandlers) adminDashboard(r *http.Request) (model.AdminDashboard, error) {
	sess, _ := CurrentSession(r.Context())
	dash, err := h.Dashboards.Load(r.Context(), h.api(r), sess.Claims, service.DashboardQuery{Page: pageParam(r)})
	admin, _ := dash.(model.AdminDashboard)
	return admin, err
}
