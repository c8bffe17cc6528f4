//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
)

// Answer pairs a question with the candidate's answer.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// PairAnswers zips questions with answers; missing answers are empty.
func PairAnswers(questions, answers []string) []Answer {
	out := make([]Answer, len(questions))
	for i, q := range questions {
		out[i].Question = q
		if i < len(answers) {
			out[i].Answer = strings.TrimSpace(answers[i])
		}
	}
	return out
}

// PublicAssessment is what a candidate sees when opening a shared link.
type PublicAssessment struct {
	JobDescription string   `json:"job_description"`
	Questions      []string `json:"questions"`
}

// AssessmentLink is a shareable token created for one resume.
type AssessmentLink struct {
	Filename string `json:"filename"`
	Token    string `json:"token"`
}

// BatchResult lists the links created by a batch upload.
type BatchResult struct {
	Assessments []AssessmentLink `json:"assessments"`
}

// Upload is one file forwarded to the backend.
type Upload struct {
	Filename string
	Content  []byte
}

// ErrNoUploads is returned when a batch contains no files.
var ErrNoUploads = errors.New("at least one resume is required")

// InterviewRequest starts a mock interview or a single assessment.
type InterviewRequest struct {
	JobDescription string
	Resume         Upload
}

// Validate validates InterviewRequest.
func (r *InterviewRequest) Validate() error {
	r.JobDescription = strings.TrimSpace(r.JobDescription)
	if r.JobDescription == "" {
		return errors.New("job description is required")
	}
	if len(r.Resume.Content) == 0 {
		return errors.New("resume is required")
	}
	return nil
}

// BatchRequest creates one assessment per resume against a job description.
type BatchRequest struct {
	JobDescription string
	Resumes        []Upload
}

// Validate validates BatchRequest.
func (r *BatchRequest) Validate() error {
	r.JobDescription = strings.TrimSpace(r.JobDescription)
	if r.JobDescription == "" {
		return errors.New("job description is required")
	}
	if len(r.Resumes) == 0 {
		return ErrNoUploads
	}
	return nil
}

// InterviewQuestions is the backend's answer to starting a mock interview.
type InterviewQuestions struct {
	AnalysisID string   `json:"analysis_id"`
	Questions  []string `json:"data"`
}

// CreatedAssessment is the shareable token minted for a single resume.
type CreatedAssessment struct {
	Token string `json:"assessment_token"`
}
