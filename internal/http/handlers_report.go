package httpx

import (
	"net/http"
)

func reportMeta() PageMeta {
	return PageMeta{Title: "Report", PageTitle: "Analysis report", CurrentPage: PageReport}
}

// Report serves GET /report/{analysis_id}.
func (h *UIHandlers) Report(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("analysis_id")
	report, err := h.api(r).Report(r.Context(), id)
	if err != nil {
		h.RenderError(ErrorOpts{W: w, R: r, Err: err, PageMeta: reportMeta(), Data: map[string]any{"AnalysisID": id}})
		return
	}
	data := NewTemplateData(r, reportMeta()).
		With("AnalysisID", id).
		With("Report", report).
		With("Evaluation", report.Result).
		Build()
	h.renderPage(w, r, http.StatusOK, data)
}
