package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrEmployeeNotFound = errors.New("employee not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

func (s *Store) count(ctx context.Context, name, query string, args ...any) (int, error) {
	var n int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func (s *Store) EmployeeProfile(ctx context.Context, employeeID string) (EmployeeDashboard, error) {
	var d EmployeeDashboard
	err := s.DB.QueryRow(ctx, `
    SELECT u.name, e.department, e.position, e.join_date
    FROM employees e
    JOIN users u ON u.id = e.user_id
    WHERE e.id = $1
  `, employeeID).Scan(&d.Name, &d.Department, &d.Position, &d.JoinDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return EmployeeDashboard{}, ErrEmployeeNotFound
	}
	return d, err
}

func (s *Store) ApprovedLeaveDays(ctx context.Context, employeeID string, year int) (int, error) {
	return s.count(ctx, "approved leave days", `
    SELECT COALESCE(SUM(end_date - start_date + 1), 0)::int
    FROM leave_requests
    WHERE employee_id = $1 AND status = 'Approved' AND EXTRACT(YEAR FROM start_date) = $2
  `, employeeID, year)
}

func (s *Store) CoworkersOnLeave(ctx context.Context, employeeID string, day time.Time) ([]Coworker, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT u.name, e.position
    FROM leave_requests l
    JOIN employees e ON e.id = l.employee_id
    JOIN users u ON u.id = e.user_id
    WHERE l.status = 'Approved' AND l.start_date <= $2 AND l.end_date >= $2 AND l.employee_id <> $1
    ORDER BY u.name
  `, employeeID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Coworker{}
	for rows.Next() {
		var c Coworker
		if err := rows.Scan(&c.Name, &c.Position); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) LatestPayslip(ctx context.Context, employeeID string) (*PayslipSummary, error) {
	var p PayslipSummary
	err := s.DB.QueryRow(ctx, `
    SELECT id, pay_period_start, net_salary, payment_reference
    FROM payrolls
    WHERE employee_id = $1
    ORDER BY pay_period_end DESC
    LIMIT 1
  `, employeeID).Scan(&p.PayrollID, &p.PeriodStart, &p.NetSalary, &p.PaymentReference)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) TotalEmployees(ctx context.Context) (int, error) {
	return s.count(ctx, "total employees", "SELECT COUNT(1) FROM employees")
}

func (s *Store) PresentOn(ctx context.Context, day time.Time) (int, error) {
	return s.count(ctx, "present today", "SELECT COUNT(1) FROM attendance_records WHERE work_date = $1 AND status IN ('Present', 'Late')", day)
}

func (s *Store) OnLeaveOn(ctx context.Context, day time.Time) (int, error) {
	return s.count(ctx, "on leave today", "SELECT COUNT(1) FROM leave_requests WHERE status = 'Approved' AND start_date <= $1 AND end_date >= $1", day)
}

func (s *Store) PendingLeaves(ctx context.Context) (int, error) {
	return s.count(ctx, "pending leaves", "SELECT COUNT(1) FROM leave_requests WHERE status = 'Pending'")
}

func (s *Store) RecentPendingLeaves(ctx context.Context, limit int) ([]PendingLeave, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT l.id, u.name, l.leave_type, l.start_date, l.end_date, l.created_at
    FROM leave_requests l
    JOIN employees e ON e.id = l.employee_id
    JOIN users u ON u.id = e.user_id
    WHERE l.status = 'Pending'
    ORDER BY l.created_at DESC
    LIMIT $1
  `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PendingLeave{}
	for rows.Next() {
		var p PendingLeave
		if err := rows.Scan(&p.ID, &p.EmployeeName, &p.LeaveType, &p.StartDate, &p.EndDate, &p.RequestDate); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ListJobRuns(ctx context.Context, filter JobRunFilter) (JobRunList, error) {
	where, args := jobRunsWhere(filter)
	total, err := s.count(ctx, "count job runs", "SELECT COUNT(1) FROM job_runs"+where, args...)
	if err != nil {
		return JobRunList{}, err
	}

	query := `
    SELECT id, job_type, status, details_json, started_at, completed_at
    FROM job_runs` + where + fmt.Sprintf(" ORDER BY started_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := s.DB.Query(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return JobRunList{}, err
	}
	defer rows.Close()

	out := JobRunList{Items: []JobRun{}, Total: total}
	for rows.Next() {
		var run JobRun
		if err := rows.Scan(&run.ID, &run.JobType, &run.Status, &run.Details, &run.StartedAt, &run.CompletedAt); err != nil {
			return JobRunList{}, err
		}
		out.Items = append(out.Items, run)
	}
	return out, rows.Err()
}

func jobRunsWhere(filter JobRunFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	if value := strings.TrimSpace(filter.JobType); value != "" {
		args = append(args, value)
		where += fmt.Sprintf(" AND job_type = $%d", len(args))
	}
	if value := strings.TrimSpace(filter.Status); value != "" {
		args = append(args, value)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	return where, args
}
