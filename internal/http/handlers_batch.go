package httpx

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/target/interview-ui/internal/clock"
	"github.com/target/interview-ui/internal/domain/model"
	"github.com/target/interview-ui/internal/export"
)

func batchMeta() PageMeta {
	return PageMeta{Title: "Batch assessment", PageTitle: "Batch assessment", CurrentPage: PageBatch}
}

// BatchLink is one created assessment shown in the links table.
type BatchLink struct {
	Filename string
	Token    string
	URL      string
}

// BatchPage serves GET /batch-assessment.
func (h *UIHandlers) BatchPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, NewTemplateData(r, batchMeta()).Build())
}

// CreateBatch serves POST /batch-assessment: one assessment per uploaded resume.
func (h *UIHandlers) CreateBatch(w http.ResponseWriter, r *http.Request) {
	req, err := batchRequest(r)
	if err == nil {
		var res model.BatchResult
		res, err = h.api(r).CreateBatch(r.Context(), req)
		if err == nil {
			links := make([]BatchLink, 0, len(res.Assessments))
			for _, a := range res.Assessments {
				links = append(links, BatchLink{Filename: a.Filename, Token: a.Token, URL: h.assessmentLink(a.Token)})
			}
			data := NewTemplateData(r, batchMeta()).
				With("JobDescription", req.JobDescription).
				With("Links", links).
				Build()
			triggerToast(w, "Created assessment links.", "success")
			h.renderPage(w, r, http.StatusOK, data)
			return
		}
	}
	h.RenderError(ErrorOpts{W: w, R: r, Err: err, PageMeta: batchMeta(), Data: map[string]any{"JobDescription": req.JobDescription}})
}

func batchRequest(r *http.Request) (model.BatchRequest, error) {
	if err := parseUploadForm(r); err != nil {
		return model.BatchRequest{}, err
	}
	req := model.BatchRequest{JobDescription: r.PostFormValue("job_description")}
	resumes, err := formFiles(r, "resumes")
	if err != nil {
		return req, err
	}
	req.Resumes = resumes
	return req, nil
}

// ExportBatch serves POST /batch-assessment/export. The links table posts its
// rows back as parallel filename/token fields.
func (h *UIHandlers) ExportBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	filenames, tokens := r.PostForm["filename"], r.PostForm["token"]
	links := make([]model.AssessmentLink, 0, len(tokens))
	for i, tok := range tokens {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		link := model.AssessmentLink{Token: tok}
		if i < len(filenames) {
			link.Filename = filenames[i]
		}
		links = append(links, link)
	}

	now := clock.Real{}.Now()
	if h.Clock != nil {
		now = h.Clock.Now()
	}
	var buf bytes.Buffer
	if err := export.BatchLinks(&buf, r.PostForm.Get("job_description"), links, h.assessmentLink, now); err != nil {
		h.logger().ErrorContext(r.Context(), "batch export failed", "error", err)
		http.Error(w, "unable to build spreadsheet", http.StatusInternalServerError)
		return
	}
	writeAttachment(w, "assessment-links-"+now.UTC().Format("20060102-150405")+".xlsx", &buf)
}

func writeAttachment(w http.ResponseWriter, filename string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
