package leave

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

const requestColumns = `
    l.id, l.employee_id, u.name, l.leave_type, l.start_date, l.end_date, l.reason, l.status,
    l.created_at, COALESCE(l.approved_by::text, ''), COALESCE(a.name, ''), l.approved_date`

const requestFrom = `
    FROM leave_requests l
    JOIN employees e ON e.id = l.employee_id
    JOIN users u ON u.id = e.user_id
    LEFT JOIN users a ON a.id = l.approved_by`

func scanRequest(row pgx.Row) (Request, error) {
	var req Request
	var status string
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.EmployeeName, &req.Type, &req.StartDate, &req.EndDate, &req.Reason, &status,
		&req.RequestDate, &req.ApprovedBy, &req.ApprovedByName, &req.ApprovedDate,
	)
	if err != nil {
		return Request{}, err
	}
	req.Status = Status(status)
	req.Days, _ = CalculateDays(req.StartDate, req.EndDate)
	return req, nil
}

func (s *Store) Create(ctx context.Context, req NewRequest) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (employee_id, leave_type, start_date, end_date, reason, status)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, req.EmployeeID, req.Type, req.StartDate, req.EndDate, req.Reason, StatusPending).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create leave request: %w", err)
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (Request, error) {
	req, err := scanRequest(s.DB.QueryRow(ctx, "SELECT "+requestColumns+requestFrom+" WHERE l.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrRequestNotFound
	}
	if err != nil {
		return Request{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return req, nil
}

func (s *Store) List(ctx context.Context, filter Filter) (ListResult, error) {
	where := " WHERE 1=1"
	var args []any
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += fmt.Sprintf(" AND l.employee_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND l.status = $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+requestFrom+where, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("failed to count leave requests: %w", err)
	}

	query := "SELECT " + requestColumns + requestFrom + where + " ORDER BY l.created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	out := ListResult{Items: []Request{}, Total: total}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return ListResult{}, err
		}
		out.Items = append(out.Items, req)
	}
	return out, rows.Err()
}

func (s *Store) Decide(ctx context.Context, id string, status Status, approverID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET status = $1, approved_by = $2, approved_date = now()
    WHERE id = $3 AND status = $4
  `, status, approverID, id, StatusPending)
	if err != nil {
		return fmt.Errorf("failed to update leave request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.missingOrDecided(ctx, id)
	}
	return nil
}

func (s *Store) DeletePending(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM leave_requests WHERE id = $1 AND status = $2", id, StatusPending)
	if err != nil {
		return fmt.Errorf("failed to delete leave request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.missingOrDecided(ctx, id)
	}
	return nil
}

func (s *Store) missingOrDecided(ctx context.Context, id string) error {
	var exists bool
	if err := s.DB.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM leave_requests WHERE id = $1)", id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrRequestNotFound
	}
	return ErrNotPending
}
