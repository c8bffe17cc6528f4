package httpx

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/target/interview-ui/internal/domain/model"
)

func analyzeMeta() PageMeta {
	return PageMeta{Title: "Analyze", PageTitle: "Analyze a resume", CurrentPage: PageAnalyze}
}

// AnalyzePage serves GET /analyze. Students start a mock interview; HR users
// create a shareable assessment.
func (h *UIHandlers) AnalyzePage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, NewTemplateData(r, analyzeMeta()).Build())
}

// StartInterview serves POST /analyze/interview.
func (h *UIHandlers) StartInterview(w http.ResponseWriter, r *http.Request) {
	req, err := interviewRequest(r)
	if err == nil {
		var qs model.InterviewQuestions
		qs, err = h.api(r).StartInterview(r.Context(), req)
		if err == nil {
			data := NewTemplateData(r, PageMeta{Title: "Mock interview", PageTitle: "Mock interview", CurrentPage: PageInterview}).
				With("AnalysisID", qs.AnalysisID).
				With("Questions", qs.Questions).
				Build()
			h.renderPage(w, r, http.StatusOK, data)
			return
		}
	}
	h.RenderError(ErrorOpts{W: w, R: r, Err: err, PageMeta: analyzeMeta(), Data: map[string]any{"JobDescription": req.JobDescription}})
}

// SubmitAnswers serves POST /analyze/answers. Questions travel back in hidden
// fields so answers pair with the question they were given for.
func (h *UIHandlers) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.RenderError(ErrorOpts{W: w, R: r, Err: err, PageMeta: analyzeMeta()})
		return
	}
	analysisID := strings.TrimSpace(r.PostForm.Get("analysis_id"))
	questions := r.PostForm["question"]
	answers := model.PairAnswers(questions, r.PostForm["answer"])

	eval, err := h.api(r).SubmitAnswers(r.Context(), analysisID, answers)
	if err != nil {
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: err,
			PageMeta: PageMeta{Title: "Mock interview", PageTitle: "Mock interview", CurrentPage: PageInterview},
			Data:     map[string]any{"AnalysisID": analysisID, "Questions": questions, "Answers": answers},
		})
		return
	}
	data := NewTemplateData(r, PageMeta{Title: "Results", PageTitle: "Interview results", CurrentPage: PageEvaluation}).
		With("AnalysisID", analysisID).
		With("Evaluation", eval).
		Build()
	h.renderPage(w, r, http.StatusOK, data)
}

// CreateAssessment serves POST /analyze/assessment and shows the shareable link.
func (h *UIHandlers) CreateAssessment(w http.ResponseWriter, r *http.Request) {
	req, err := interviewRequest(r)
	if err == nil {
		var created model.CreatedAssessment
		created, err = h.api(r).CreateAssessment(r.Context(), req)
		if err == nil {
			data := NewTemplateData(r, analyzeMeta()).
				With("AssessmentLink", h.assessmentLink(created.Token)).
				With("ResumeFilename", req.Resume.Filename).
				Build()
			triggerToast(w, "Assessment link created.", "success")
			h.renderPage(w, r, http.StatusOK, data)
			return
		}
	}
	h.RenderError(ErrorOpts{W: w, R: r, Err: err, PageMeta: analyzeMeta(), Data: map[string]any{"JobDescription": req.JobDescription}})
}

func interviewRequest(r *http.Request) (model.InterviewRequest, error) {
	if err := parseUploadForm(r); err != nil {
		return model.InterviewRequest{}, err
	}
	req := model.InterviewRequest{JobDescription: r.PostFormValue("job_description")}
	resume, err := formFile(r, "resume")
	if err != nil {
		return req, err
	}
	req.Resume = resume
	return req, nil
}

// assessmentLink is the absolute URL a candidate opens to take an assessment.
func (h *UIHandlers) assessmentLink(token string) string {
	return strings.TrimRight(h.BaseURL, "/") + "/assessment/" + url.PathEscape(token)
}
