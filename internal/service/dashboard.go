package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/target/interview-ui/internal/domain/auth"
	"github.com/target/interview-ui/internal/domain/model"
)

// DashboardAPI is the subset of the backend used to assemble dashboards.
type DashboardAPI interface {
	Dashboard(ctx context.Context) (model.Dashboard, error)
	CandidateDetails(ctx context.Context, jobDescription string) (model.CandidateDetails, error)
	AdminLogs(ctx context.Context, page, limit int) (model.LogPage, error)
	AdminMetrics(ctx context.Context) (model.LogMetrics, error)
}

// DashboardQuery carries optional view parameters.
type DashboardQuery struct {
	// JobDescription selects an HR job description whose candidates are listed.
	JobDescription string
	// Page is the admin log page (1-based).
	Page int
}

// DashboardService assembles the role-conditional dashboard.
type DashboardService struct {
	logger *slog.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{logger: logger}
}

// Load builds the dashboard variant for the signed-in role.
//
// Admins get metrics and a page of logs. Students and HR users get the
// backend's /dashboard payload, whose own role tag decides the variant. When
// that call fails an empty variant for the caller's role is returned with the
// error so the view can still render.
func (s *DashboardService) Load(ctx context.Context, api DashboardAPI, claims domainauth.Claims, q DashboardQuery) (model.Dashboard, error) {
	if claims.Role == domainauth.RoleAdmin {
		return s.loadAdmin(ctx, api, q.Page)
	}

	var (
		dash       model.Dashboard
		candidates []model.CandidateSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := api.Dashboard(gctx)
		if err != nil {
			return fmt.Errorf("load dashboard: %w", err)
		}
		dash = d
		return nil
	})
	if claims.Role == domainauth.RoleHR && q.JobDescription != "" {
		g.Go(func() error {
			candidates = s.candidates(gctx, api, q.JobDescription)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return emptyDashboard(claims.Role, q.JobDescription), err
	}

	if hr, ok := dash.(model.HRDashboard); ok && q.JobDescription != "" {
		hr.Selected = q.JobDescription
		hr.Candidates = candidates
		return hr, nil
	}
	return dash, nil
}

// Candidates lists candidates assessed against a job description.
func (s *DashboardService) Candidates(ctx context.Context, api DashboardAPI, jobDescription string) ([]model.CandidateSummary, error) {
	details, err := api.CandidateDetails(ctx, jobDescription)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	return details.Candidates, nil
}

func (s *DashboardService) candidates(ctx context.Context, api DashboardAPI, jobDescription string) []model.CandidateSummary {
	out, err := s.Candidates(ctx, api, jobDescription)
	if err != nil {
		s.logger.WarnContext(ctx, "dashboard: candidate details unavailable", "error", err)
	}
	return out
}

// loadAdmin fetches metrics and logs concurrently. Missing metrics are not fatal.
func (s *DashboardService) loadAdmin(ctx context.Context, api DashboardAPI, page int) (model.Dashboard, error) {
	if page < 1 {
		page = 1
	}
	var d model.AdminDashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := api.AdminMetrics(gctx)
		if err != nil {
			s.logger.WarnContext(gctx, "dashboard: admin metrics unavailable", "error", err)
			return nil
		}
		d.Metrics = m
		return nil
	})
	g.Go(func() error {
		logs, err := api.AdminLogs(gctx, page, model.DefaultLogPageSize)
		if err != nil {
			return fmt.Errorf("load admin logs: %w", err)
		}
		d.Logs = logs
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.AdminDashboard{Logs: model.LogPage{Page: page}}, err
	}
	return d, nil
}

func emptyDashboard(role domainauth.Role, jobDescription string) model.Dashboard {
	if role == domainauth.RoleHR {
		return model.HRDashboard{Selected: jobDescription}
	}
	return model.StudentDashboard{}
}
