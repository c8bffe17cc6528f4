//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"fmt"

	"github.com/target/interview-ui/internal/domain/auth"
)

// Dashboard is the role-conditional landing view. Exactly one concrete variant
// exists per role; the variant decides what it shows.
type Dashboard interface {
	Role() auth.Role
}

// AnalysisSummary is one past mock interview on the student dashboard.
type AnalysisSummary struct {
	AnalysisID   string  `json:"analysis_id"`
	JDTitle      string  `json:"jd_title"`
	OverallScore float64 `json:"overall_score"`
}

// Band returns the score band for the overall score.
func (a AnalysisSummary) Band() ScoreBand { return BandFor(a.OverallScore) }

// StudentDashboard lists the student's past analyses.
type StudentDashboard struct {
	Analyses []AnalysisSummary `json:"chart_data"`
}

// Role implements Dashboard.
func (StudentDashboard) Role() auth.Role { return auth.RoleStudent }

// CandidateSummary is one candidate evaluated against a job description.
type CandidateSummary struct {
	AnalysisID     string  `json:"analysis_id"`
	ResumeFilename string  `json:"resume_filename"`
	OverallScore   float64 `json:"overall_score"`
}

// Band returns the score band for the overall score.
func (c CandidateSummary) Band() ScoreBand { return BandFor(c.OverallScore) }

// CandidateDetails is the backend's hr-details payload.
type CandidateDetails struct {
	Candidates []CandidateSummary `json:"candidate_data"`
}

// HRDashboard lists the job descriptions an HR user has assessed against,
// and optionally the candidates of a selected one.
type HRDashboard struct {
	JobDescriptions []string           `json:"job_descriptions"`
	Selected        string             `json:"selected_jd,omitempty"`
	Candidates      []CandidateSummary `json:"candidates,omitempty"`
}

// Role implements Dashboard.
func (HRDashboard) Role() auth.Role { return auth.RoleHR }

// AdminDashboard shows LLM usage metrics and the most recent call logs.
type AdminDashboard struct {
	Metrics LogMetrics `json:"metrics"`
	Logs    LogPage    `json:"logs"`
}

// Role implements Dashboard.
func (AdminDashboard) Role() auth.Role { return auth.RoleAdmin }

// DecodeDashboard decodes the backend /dashboard payload using its role
// discriminator. Admin dashboards are assembled from the admin log endpoints
// and are never decoded from this payload.
func DecodeDashboard(data []byte) (Dashboard, error) {
	var head struct {
		Role auth.Role `json:"role"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode dashboard: %w", err)
	}
	switch head.Role {
	case auth.RoleStudent:
		var d StudentDashboard
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("decode student dashboard: %w", err)
		}
		return d, nil
	case auth.RoleHR:
		var d HRDashboard
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("decode hr dashboard: %w", err)
		}
		return d, nil
	case auth.RoleAdmin:
	}
	return nil, fmt.Errorf("decode dashboard: unsupported role %q", head.Role)
}
