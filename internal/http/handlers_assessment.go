package httpx

import (
	"net/http"

	"github.com/target/interview-ui/internal/domain/model"
)

func assessmentMeta() PageMeta {
	return PageMeta{Title: "Assessment", PageTitle: "Candidate assessment", CurrentPage: PageAssessment}
}

// Assessment serves GET /assessment/{token}. Candidates open it from a shared
// link without an account; a signed-in visitor still sends their bearer.
func (h *UIHandlers) Assessment(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	a, err := h.api(r).PublicAssessment(r.Context(), token)
	if err != nil {
		h.RenderError(ErrorOpts{W: w, R: r, Err: err, PageMeta: assessmentMeta(), Data: map[string]any{"Token": token}})
		return
	}
	data := NewTemplateData(r, assessmentMeta()).
		With("Token", token).
		With("Assessment", a).
		Build()
	h.renderPage(w, r, http.StatusOK, data)
}

// SubmitAssessment serves POST /assessment/{token}.
func (h *UIHandlers) SubmitAssessment(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if err := r.ParseForm(); err != nil {
		h.RenderError(ErrorOpts{W: w, R: r, Err: err, PageMeta: assessmentMeta(), Data: map[string]any{"Token": token}})
		return
	}
	questions := r.PostForm["question"]
	answers := model.PairAnswers(questions, r.PostForm["answer"])

	if err := h.api(r).SubmitPublicAssessment(r.Context(), token, answers); err != nil {
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: err, PageMeta: assessmentMeta(),
			Data: map[string]any{
				"Token":      token,
				"Assessment": model.PublicAssessment{JobDescription: r.PostForm.Get("job_description"), Questions: questions},
				"Answers":    answers,
			},
		})
		return
	}
	data := NewTemplateData(r, PageMeta{Title: "Submitted", PageTitle: "Assessment submitted", CurrentPage: PageAssessmentDone}).Build()
	h.renderPage(w, r, http.StatusOK, data)
}
