package reports

import (
	"context"
	"time"
)

type StoreAPI interface {
	EmployeeProfile(ctx context.Context, employeeID string) (EmployeeDashboard, error)
	ApprovedLeaveDays(ctx context.Context, employeeID string, year int) (int, error)
	CoworkersOnLeave(ctx context.Context, employeeID string, day time.Time) ([]Coworker, error)
	LatestPayslip(ctx context.Context, employeeID string) (*PayslipSummary, error)

	TotalEmployees(ctx context.Context) (int, error)
	PresentOn(ctx context.Context, day time.Time) (int, error)
	OnLeaveOn(ctx context.Context, day time.Time) (int, error)
	PendingLeaves(ctx context.Context) (int, error)
	RecentPendingLeaves(ctx context.Context, limit int) ([]PendingLeave, error)

	ListJobRuns(ctx context.Context, filter JobRunFilter) (JobRunList, error)
}
