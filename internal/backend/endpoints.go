package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/target/interview-ui/internal/domain/model"
	apperrors "github.com/target/interview-ui/internal/errors"
)

// Endpoint labels used for logs and metrics.
const (
	EndpointSignIn           = "auth.signin"
	EndpointSignUp           = "auth.signup"
	EndpointDashboard        = "dashboard"
	EndpointCandidateDetails = "dashboard.hr_details"
	EndpointReport           = "analysis.get"
	EndpointCreateAssessment = "assessment.create"
	EndpointPublicAssessment = "assessment.public.get"
	EndpointSubmitAssessment = "assessment.public.submit"
	EndpointCreateBatch      = "batch.create"
	EndpointStartInterview   = "interview.start"
	EndpointSubmitAnswers    = "interview.submit"
	EndpointAdminLogs        = "admin.logs"
	EndpointAdminMetrics     = "admin.metrics"
)

// SignIn exchanges credentials for an access token and the user's profile.
func (a *API) SignIn(ctx context.Context, req model.SignInRequest) (model.SignInResponse, error) {
	var out model.SignInResponse
	cl, err := jsonCall(EndpointSignIn, http.MethodPost, "/auth/signin", req)
	if err != nil {
		return out, err
	}
	if err := a.do(ctx, cl, &out); err != nil {
		return out, err
	}
	if out.AccessToken == "" {
		return out, apperrors.New(apperrors.ErrCodeUpstream, "sign-in response carried no access token")
	}
	return out, nil
}

// SignUp registers a new account. It does not sign in.
func (a *API) SignUp(ctx context.Context, req model.SignUpRequest) error {
	cl, err := jsonCall(EndpointSignUp, http.MethodPost, "/auth/signup", req)
	if err != nil {
		return err
	}
	return a.do(ctx, cl, nil)
}

// Dashboard fetches the role-specific dashboard of the caller.
func (a *API) Dashboard(ctx context.Context) (model.Dashboard, error) {
	raw, err := a.send(ctx, call{endpoint: EndpointDashboard, method: http.MethodGet, path: "/dashboard"})
	if err != nil {
		return nil, err
	}
	d, err := model.DecodeDashboard(raw)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUpstream, "unexpected dashboard payload")
	}
	return d, nil
}

// CandidateDetails lists the candidates assessed against a job description.
func (a *API) CandidateDetails(ctx context.Context, jobDescription string) (model.CandidateDetails, error) {
	var out model.CandidateDetails
	err := a.do(ctx, call{
		endpoint: EndpointCandidateDetails,
		method:   http.MethodGet,
		path:     "/dashboard/hr-details",
		query:    url.Values{"jd_text": {jobDescription}},
	}, &out)
	return out, err
}

// Report fetches a stored analysis.
func (a *API) Report(ctx context.Context, analysisID string) (model.Report, error) {
	var out model.Report
	if analysisID == "" {
		return out, apperrors.ValidationField("analysis_id", "analysis id is required")
	}
	err := a.do(ctx, call{endpoint: EndpointReport, method: http.MethodGet, path: escape("analysis", analysisID)}, &out)
	return out, err
}

// CreateAssessment creates a shareable assessment for one resume.
func (a *API) CreateAssessment(ctx context.Context, req model.InterviewRequest) (model.CreatedAssessment, error) {
	var out model.CreatedAssessment
	if err := req.Validate(); err != nil {
		return out, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid assessment")
	}
	cl, err := multipartCall(EndpointCreateAssessment, "/assessment/create", func(w *multipart.Writer) error {
		if err := w.WriteField("job_description", req.JobDescription); err != nil {
			return err
		}
		return writeFile(w, "resume", req.Resume)
	})
	if err != nil {
		return out, err
	}
	if err := a.do(ctx, cl, &out); err != nil {
		return out, err
	}
	if out.Token == "" {
		return out, apperrors.New(apperrors.ErrCodeUpstream, "assessment response carried no token")
	}
	return out, nil
}

// PublicAssessment loads a shared assessment by its link token.
func (a *API) PublicAssessment(ctx context.Context, token string) (model.PublicAssessment, error) {
	var out model.PublicAssessment
	if token == "" {
		return out, apperrors.NotFound("assessment link is invalid")
	}
	err := a.do(ctx, call{
		endpoint: EndpointPublicAssessment,
		method:   http.MethodGet,
		path:     escape("assessment", "public", token),
	}, &out)
	return out, err
}

// SubmitPublicAssessment posts a candidate's answers for a shared assessment.
func (a *API) SubmitPublicAssessment(ctx context.Context, token string, answers []model.Answer) error {
	if token == "" {
		return apperrors.NotFound("assessment link is invalid")
	}
	if answers == nil {
		answers = []model.Answer{}
	}
	cl, err := jsonCall(EndpointSubmitAssessment, http.MethodPost, escape("assessment", "public", token), answers)
	if err != nil {
		return err
	}
	return a.do(ctx, cl, nil)
}

// CreateBatch creates one assessment per resume.
func (a *API) CreateBatch(ctx context.Context, req model.BatchRequest) (model.BatchResult, error) {
	var out model.BatchResult
	if err := req.Validate(); err != nil {
		return out, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid batch")
	}
	cl, err := multipartCall(EndpointCreateBatch, "/batch-assessment/create-batch", func(w *multipart.Writer) error {
		if err := w.WriteField("job_description", req.JobDescription); err != nil {
			return err
		}
		for _, r := range req.Resumes {
			if err := writeFile(w, "resumes", r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return out, err
	}
	err = a.do(ctx, cl, &out)
	return out, err
}

// StartInterview analyses a resume and returns the mock interview questions.
func (a *API) StartInterview(ctx context.Context, req model.InterviewRequest) (model.InterviewQuestions, error) {
	var out model.InterviewQuestions
	if err := req.Validate(); err != nil {
		return out, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid interview")
	}
	cl, err := multipartCall(EndpointStartInterview, "/interview/run-interview-evaluation/", func(w *multipart.Writer) error {
		if err := w.WriteField("job_description", req.JobDescription); err != nil {
			return err
		}
		return writeFile(w, "resume", req.Resume)
	})
	if err != nil {
		return out, err
	}
	if err := a.do(ctx, cl, &out); err != nil {
		return out, err
	}
	if out.AnalysisID == "" {
		return out, apperrors.New(apperrors.ErrCodeUpstream, "interview response carried no analysis id")
	}
	return out, nil
}

// SubmitAnswers submits mock interview answers and returns the evaluation.
func (a *API) SubmitAnswers(ctx context.Context, analysisID string, answers []model.Answer) (model.Evaluation, error) {
	var out struct {
		Data model.Evaluation `json:"data"`
	}
	if analysisID == "" {
		return out.Data, apperrors.ValidationField("analysis_id", "analysis id is required")
	}
	encoded, err := json.Marshal(answers)
	if err != nil {
		return out.Data, fmt.Errorf("encode answers: %w", err)
	}
	cl, err := multipartCall(EndpointSubmitAnswers, "/interview/submit-mock-answers/", func(w *multipart.Writer) error {
		if err := w.WriteField("analysis_id", analysisID); err != nil {
			return err
		}
		return w.WriteField("answers", string(encoded))
	})
	if err != nil {
		return out.Data, err
	}
	err = a.do(ctx, cl, &out)
	return out.Data, err
}

// AdminLogs fetches one page of agent call logs. Admin only.
func (a *API) AdminLogs(ctx context.Context, page, limit int) (model.LogPage, error) {
	var out model.LogPage
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = model.DefaultLogPageSize
	}
	err := a.do(ctx, call{
		endpoint: EndpointAdminLogs,
		method:   http.MethodGet,
		path:     "/admin/logs",
		query:    url.Values{"page": {strconv.Itoa(page)}, "limit": {strconv.Itoa(limit)}},
	}, &out)
	return out, err
}

// AdminMetrics fetches aggregate agent call metrics. Admin only.
func (a *API) AdminMetrics(ctx context.Context) (model.LogMetrics, error) {
	var out model.LogMetrics
	err := a.do(ctx, call{endpoint: EndpointAdminMetrics, method: http.MethodGet, path: "/admin/logs/metrics"}, &out)
	return out, err
}

func multipartCall(endpoint, path string, fill func(*multipart.Writer) error) (call, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := fill(w); err != nil {
		return call{}, fmt.Errorf("encode %s form: %w", endpoint, err)
	}
	if err := w.Close(); err != nil {
		return call{}, fmt.Errorf("encode %s form: %w", endpoint, err)
	}
	return call{
		endpoint:    endpoint,
		method:      http.MethodPost,
		path:        path,
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	}, nil
}

func writeFile(w *multipart.Writer, field string, up model.Upload) error {
	if len(up.Content) == 0 {
		return errors.New(field + ": empty file")
	}
	name := up.Filename
	if name == "" {
		name = field
	}
	part, err := w.CreateFormFile(field, name)
	if err != nil {
		return err
	}
	_, err = part.Write(up.Content)
	return err
}
