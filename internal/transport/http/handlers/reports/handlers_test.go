package reportshandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tokens "hrdesk/internal/auth"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/reports"
	"hrdesk/internal/transport/http/middleware"
)

const secret = "reports-handler-secret"

type stubService struct {
	dashboardFor string
	jobFilter    reports.JobRunFilter
}

func (s *stubService) EmployeeDashboard(_ context.Context, employeeID string) (reports.EmployeeDashboard, error) {
	s.dashboardFor = employeeID
	if employeeID == "ghost" {
		return reports.EmployeeDashboard{}, reports.ErrEmployeeNotFound
	}
	return reports.EmployeeDashboard{Name: "Aisyah", Leave: reports.LeaveBalance{Entitlement: 14, Remaining: 14}}, nil
}

func (s *stubService) Overview(context.Context) (reports.Overview, error) {
	return reports.Overview{TotalEmployees: 12, PresentToday: 9}, nil
}

func (s *stubService) JobRuns(_ context.Context, filter reports.JobRunFilter) (reports.JobRunList, error) {
	s.jobFilter = filter
	return reports.JobRunList{Items: []reports.JobRun{}}, nil
}

func setup() (http.Handler, *stubService) {
	svc := &stubService{}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Auth(secret))
	NewHandler(svc, auth.StaticPermissions{}).RegisterRoutes(r)
	return r, svc
}

func get(t *testing.T, h http.Handler, path, role, employeeID string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := tokens.GenerateToken(secret, tokens.Claims{UserID: "u1", EmployeeID: employeeID, RoleName: role}, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestEmployeeDashboard(t *testing.T) {
	router, svc := setup()

	rec := get(t, router, "/reports/dashboard/me", auth.RoleEmployee, "e1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "e1", svc.dashboardFor)
	assert.Contains(t, rec.Body.String(), `"remaining":14`)

	assert.Equal(t, http.StatusForbidden, get(t, router, "/reports/dashboard/me", auth.RoleAdministrator, "").Code)
	assert.Equal(t, http.StatusNotFound, get(t, router, "/reports/dashboard/me", auth.RoleEmployee, "ghost").Code)
}

func TestOverviewAndJobs(t *testing.T) {
	router, svc := setup()

	assert.Equal(t, http.StatusForbidden, get(t, router, "/reports/dashboard/overview", auth.RoleEmployee, "e1").Code)
	rec := get(t, router, "/reports/dashboard/overview", auth.RoleHRManager, "h1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"presentToday":9`)

	assert.Equal(t, http.StatusForbidden, get(t, router, "/reports/jobs", auth.RoleHRManager, "h1").Code)
	rec = get(t, router, "/reports/jobs?jobType=payslip_render&limit=500", auth.RoleAdministrator, "a1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reports.JobRunFilter{JobType: "payslip_render", Limit: 200}, svc.jobFilter)
}
