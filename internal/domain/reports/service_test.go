package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	usedDays   int
	usedYear   int
	day        time.Time
	payslip    *PayslipSummary
	pending    []PendingLeave
	limit      int
	profileErr error
}

func (f *fakeStore) EmployeeProfile(context.Context, string) (EmployeeDashboard, error) {
	if f.profileErr != nil {
		return EmployeeDashboard{}, f.profileErr
	}
	return EmployeeDashboard{Name: "Aisyah", Department: "Finance", Position: "Analyst"}, nil
}

func (f *fakeStore) ApprovedLeaveDays(_ context.Context, _ string, year int) (int, error) {
	f.usedYear = year
	return f.usedDays, nil
}

func (f *fakeStore) CoworkersOnLeave(_ context.Context, _ string, day time.Time) ([]Coworker, error) {
	f.day = day
	return []Coworker{{Name: "Kumar", Position: "Clerk"}}, nil
}

func (f *fakeStore) LatestPayslip(context.Context, string) (*PayslipSummary, error) {
	return f.payslip, nil
}

func (f *fakeStore) TotalEmployees(context.Context) (int, error) { return 12, nil }

func (f *fakeStore) PresentOn(_ context.Context, day time.Time) (int, error) {
	f.day = day
	return 9, nil
}

func (f *fakeStore) OnLeaveOn(context.Context, time.Time) (int, error) { return 2, nil }
func (f *fakeStore) PendingLeaves(context.Context) (int, error)        { return 7, nil }

func (f *fakeStore) RecentPendingLeaves(_ context.Context, limit int) ([]PendingLeave, error) {
	f.limit = limit
	return f.pending, nil
}

func (f *fakeStore) ListJobRuns(context.Context, JobRunFilter) (JobRunList, error) {
	return JobRunList{Items: []JobRun{}}, nil
}

func newTestService(store StoreAPI) *Service {
	kl := time.FixedZone("MYT", 8*3600)
	svc := NewService(store, kl)
	// 2024-12-31 20:00 UTC is already 2025-01-01 in Kuala Lumpur.
	svc.now = func() time.Time { return time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC) }
	return svc
}

func TestRemainingLeave(t *testing.T) {
	assert.Equal(t, 14, RemainingLeave(0))
	assert.Equal(t, 4, RemainingLeave(10))
	assert.Equal(t, 0, RemainingLeave(20))
}

func TestEmployeeDashboard(t *testing.T) {
	store := &fakeStore{usedDays: 3, payslip: &PayslipSummary{PayrollID: "p1", NetSalary: decimal.RequireFromString("3050")}}
	d, err := newTestService(store).EmployeeDashboard(context.Background(), "e1")
	require.NoError(t, err)

	assert.Equal(t, 2025, store.usedYear)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), store.day)
	assert.Equal(t, LeaveBalance{Entitlement: 14, Used: 3, Remaining: 11}, d.Leave)
	assert.Equal(t, "Aisyah", d.Name)
	assert.Len(t, d.CoworkersOnLeave, 1)
	require.NotNil(t, d.LatestPayslip)
	assert.Equal(t, "p1", d.LatestPayslip.PayrollID)
}

func TestEmployeeDashboardMissingEmployee(t *testing.T) {
	_, err := newTestService(&fakeStore{profileErr: ErrEmployeeNotFound}).EmployeeDashboard(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrEmployeeNotFound))
}

func TestOverview(t *testing.T) {
	store := &fakeStore{pending: []PendingLeave{{ID: "l1"}}}
	o, err := newTestService(store).Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, o.TotalEmployees)
	assert.Equal(t, 9, o.PresentToday)
	assert.Equal(t, 2, o.OnLeaveToday)
	assert.Equal(t, 7, o.PendingLeaves)
	assert.Equal(t, 5, store.limit)
	assert.Len(t, o.RecentPending, 1)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), o.Date)
}

func TestJobRunsWhere(t *testing.T) {
	where, args := jobRunsWhere(JobRunFilter{})
	assert.Equal(t, " WHERE 1=1", where)
	assert.Empty(t, args)

	where, args = jobRunsWhere(JobRunFilter{JobType: "payslip_render", Status: " failed "})
	assert.Equal(t, " WHERE 1=1 AND job_type = $1 AND status = $2", where)
	assert.Equal(t, []any{"payslip_render", "failed"}, args)
}
