package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/interview-ui/internal/backend"
	domainauth "github.com/target/interview-ui/internal/domain/auth"
	"github.com/target/interview-ui/internal/domain/model"
	apperrors "github.com/target/interview-ui/internal/errors"
	mockauth "github.com/target/interview-ui/internal/mocks/auth"
)

type fakeDashboardAPI struct {
	dash       model.Dashboard
	dashErr    error
	details    model.CandidateDetails
	detailsErr error
	logs       model.LogPage
	logsErr    error
	metrics    model.LogMetrics
	metricsErr error

	dashCalls  atomic.Int32
	adminCalls atomic.Int32
	gotPage    atomic.Int32
}

func (f *fakeDashboardAPI) Dashboard(context.Context) (model.Dashboard, error) {
	f.dashCalls.Add(1)
	return f.dash, f.dashErr
}

func (f *fakeDashboardAPI) CandidateDetails(_ context.Context, jd string) (model.CandidateDetails, error) {
	return f.details, f.detailsErr
}

func (f *fakeDashboardAPI) AdminLogs(_ context.Context, page, _ int) (model.LogPage, error) {
	f.adminCalls.Add(1)
	f.gotPage.Store(int32(page))
	return f.logs, f.logsErr
}

func (f *fakeDashboardAPI) AdminMetrics(context.Context) (model.LogMetrics, error) {
	f.adminCalls.Add(1)
	return f.metrics, f.metricsErr
}

func claimsFor(role domainauth.Role) domainauth.Claims {
	return domainauth.Claims{Subject: "u", Role: role}
}

func TestDashboardService_StudentVariant(t *testing.T) {
	api := &fakeDashboardAPI{dash: model.StudentDashboard{Analyses: []model.AnalysisSummary{{AnalysisID: "a1", OverallScore: 90}}}}

	d, err := NewDashboardService(nil).Load(context.Background(), api, claimsFor(domainauth.RoleStudent), DashboardQuery{})

	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleStudent, d.Role())
	assert.Len(t, d.(model.StudentDashboard).Analyses, 1)
	assert.Zero(t, api.adminCalls.Load())
}

func TestDashboardService_HRVariantWithSelection(t *testing.T) {
	api := &fakeDashboardAPI{
		dash:    model.HRDashboard{JobDescriptions: []string{"Go Dev"}},
		details: model.CandidateDetails{Candidates: []model.CandidateSummary{{AnalysisID: "c1", OverallScore: 55}}},
	}

	d, err := NewDashboardService(nil).Load(context.Background(), api, claimsFor(domainauth.RoleHR), DashboardQuery{JobDescription: "Go Dev"})

	require.NoError(t, err)
	hr, ok := d.(model.HRDashboard)
	require.True(t, ok)
	assert.Equal(t, "Go Dev", hr.Selected)
	require.Len(t, hr.Candidates, 1)
	assert.Equal(t, model.BandFair, hr.Candidates[0].Band())
}

func TestDashboardService_HRCandidateFailureIsNotFatal(t *testing.T) {
	api := &fakeDashboardAPI{
		dash:       model.HRDashboard{JobDescriptions: []string{"Go Dev"}},
		detailsErr: errors.New("boom"),
	}

	d, err := NewDashboardService(nil).Load(context.Background(), api, claimsFor(domainauth.RoleHR), DashboardQuery{JobDescription: "Go Dev"})

	require.NoError(t, err)
	assert.Empty(t, d.(model.HRDashboard).Candidates)
}

func TestDashboardService_FailureFallsBackToEmptyVariant(t *testing.T) {
	boom := errors.New("backend down")
	for _, role := range []domainauth.Role{domainauth.RoleStudent, domainauth.RoleHR} {
		api := &fakeDashboardAPI{dashErr: boom}
		d, err := NewDashboardService(nil).Load(context.Background(), api, claimsFor(role), DashboardQuery{})
		assert.ErrorIs(t, err, boom)
		require.NotNil(t, d)
		assert.Equal(t, role, d.Role())
	}
}

func TestDashboardService_AdminVariant(t *testing.T) {
	api := &fakeDashboardAPI{
		logs:    model.LogPage{Page: 2, TotalPages: 3, Logs: []model.LogEntry{{AgentName: "resume_analyzer"}}},
		metrics: model.LogMetrics{TotalCalls: 42},
	}

	d, err := NewDashboardService(nil).Load(context.Background(), api, claimsFor(domainauth.RoleAdmin), DashboardQuery{Page: 2})

	require.NoError(t, err)
	admin, ok := d.(model.AdminDashboard)
	require.True(t, ok)
	assert.EqualValues(t, 42, admin.Metrics.TotalCalls)
	assert.Len(t, admin.Logs.Logs, 1)
	assert.EqualValues(t, 2, api.gotPage.Load())
	assert.Zero(t, api.dashCalls.Load())
}

func TestDashboardService_AdminMetricsOptionalLogsRequired(t *testing.T) {
	api := &fakeDashboardAPI{metricsErr: errors.New("nope"), logs: model.LogPage{Page: 1}}
	d, err := NewDashboardService(nil).Load(context.Background(), api, claimsFor(domainauth.RoleAdmin), DashboardQuery{})
	require.NoError(t, err)
	assert.Zero(t, d.(model.AdminDashboard).Metrics.TotalCalls)
	assert.EqualValues(t, 1, api.gotPage.Load())

	api = &fakeDashboardAPI{logsErr: errors.New("forbidden")}
	d, err = NewDashboardService(nil).Load(context.Background(), api, claimsFor(domainauth.RoleAdmin), DashboardQuery{Page: 4})
	require.Error(t, err)
	assert.Equal(t, 4, d.(model.AdminDashboard).Logs.Page)
}

// A backend 401 surfaces as a failed load; the session is not ended.
func TestDashboardService_UnauthorizedDoesNotLogOut(t *testing.T) {
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Token has expired"})
	}))
	defer srv.Close()

	client, err := backend.NewClient(backend.Options{BaseURL: srv.URL})
	require.NoError(t, err)

	store := mockauth.NewMemoryTokenStore("")
	mgr := newManager(store)
	require.NoError(t, mgr.Login(context.Background(), "tok-1", domainauth.Profile{ID: "s", Role: domainauth.RoleStudent}))

	sess, _ := mgr.Current()
	d, err := NewDashboardService(nil).Load(context.Background(), client.For(mgr), sess.Claims, DashboardQuery{})

	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, domainauth.RoleStudent, d.Role())
	assert.Equal(t, "Bearer tok-1", auth.Load())
	assert.Equal(t, domainauth.StateAuthenticated, mgr.State())
	assert.Equal(t, "tok-1", store.Token())
	assert.Zero(t, store.Clears)
}
