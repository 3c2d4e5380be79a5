package reports

import (
	"context"
	"time"
)

type Service struct {
	Store    StoreAPI
	Location *time.Location
	now      func() time.Time
}

func NewService(store StoreAPI, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{Store: store, Location: loc, now: time.Now}
}

// today is the current calendar day in the service location, as a UTC date.
func (s *Service) today() time.Time {
	y, m, d := s.now().In(s.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RemainingLeave never goes below zero.
func RemainingLeave(used int) int {
	return max(0, AnnualLeaveEntitlement-used)
}

// EmployeeDashboard gathers the self-service landing view for one employee.
func (s *Service) EmployeeDashboard(ctx context.Context, employeeID string) (EmployeeDashboard, error) {
	today := s.today()
	d, err := s.Store.EmployeeProfile(ctx, employeeID)
	if err != nil {
		return EmployeeDashboard{}, err
	}
	used, err := s.Store.ApprovedLeaveDays(ctx, employeeID, today.Year())
	if err != nil {
		return EmployeeDashboard{}, err
	}
	d.Leave = LeaveBalance{Entitlement: AnnualLeaveEntitlement, Used: used, Remaining: RemainingLeave(used)}

	if d.CoworkersOnLeave, err = s.Store.CoworkersOnLeave(ctx, employeeID, today); err != nil {
		return EmployeeDashboard{}, err
	}
	if d.LatestPayslip, err = s.Store.LatestPayslip(ctx, employeeID); err != nil {
		return EmployeeDashboard{}, err
	}
	return d, nil
}

// Overview is the HR landing view: today's headcount and the leave queue.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	today := s.today()
	out := Overview{Date: today}
	var err error
	if out.TotalEmployees, err = s.Store.TotalEmployees(ctx); err != nil {
		return Overview{}, err
	}
	if out.PresentToday, err = s.Store.PresentOn(ctx, today); err != nil {
		return Overview{}, err
	}
	if out.OnLeaveToday, err = s.Store.OnLeaveOn(ctx, today); err != nil {
		return Overview{}, err
	}
	if out.PendingLeaves, err = s.Store.PendingLeaves(ctx); err != nil {
		return Overview{}, err
	}
	if out.RecentPending, err = s.Store.RecentPendingLeaves(ctx, recentPendingLimit); err != nil {
		return Overview{}, err
	}
	return out, nil
}

func (s *Service) JobRuns(ctx context.Context, filter JobRunFilter) (JobRunList, error) {
	return s.Store.ListJobRuns(ctx, filter)
}
