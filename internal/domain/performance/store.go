package performance

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

const reviewColumns = `
    p.id, p.employee_id, u.name, p.review_date,
    p.productivity_score, p.quality_score, p.initiative_score, p.teamwork_score, p.communication_score,
    p.overall_score, p.achievements, p.areas_of_improvement, p.reviewer_comments, p.employee_comments,
    COALESCE(p.reviewed_by::text, ''), COALESCE(r.name, ''), p.status, p.created_at, p.updated_at`

const reviewFrom = `
    FROM performance_reviews p
    JOIN employees e ON e.id = p.employee_id
    JOIN users u ON u.id = e.user_id
    LEFT JOIN users r ON r.id = p.reviewed_by`

func scanReview(row pgx.Row) (Review, error) {
	var rv Review
	var status string
	err := row.Scan(
		&rv.ID, &rv.EmployeeID, &rv.EmployeeName, &rv.ReviewDate,
		&rv.Scores.Productivity, &rv.Scores.Quality, &rv.Scores.Initiative, &rv.Scores.Teamwork, &rv.Scores.Communication,
		&rv.Overall, &rv.Achievements, &rv.AreasOfImprovement, &rv.ReviewerComments, &rv.EmployeeComments,
		&rv.ReviewedBy, &rv.ReviewedByName, &status, &rv.CreatedAt, &rv.UpdatedAt,
	)
	if err != nil {
		return Review{}, err
	}
	rv.Status = Status(status)
	return rv, nil
}

func (s *Store) Create(ctx context.Context, in ReviewInput, overall decimal.Decimal, reviewerID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO performance_reviews (
      employee_id, review_date, productivity_score, quality_score, initiative_score, teamwork_score,
      communication_score, overall_score, achievements, areas_of_improvement, reviewer_comments, reviewed_by, status
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NULLIF($12,'')::uuid,$13)
    RETURNING id
  `, in.EmployeeID, in.ReviewDate, in.Scores.Productivity, in.Scores.Quality, in.Scores.Initiative, in.Scores.Teamwork,
		in.Scores.Communication, overall, in.Achievements, in.AreasOfImprovement, in.ReviewerComments, reviewerID, StatusDraft).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create performance review: %w", err)
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (Review, error) {
	rv, err := scanReview(s.DB.QueryRow(ctx, "SELECT "+reviewColumns+reviewFrom+" WHERE p.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Review{}, ErrReviewNotFound
	}
	if err != nil {
		return Review{}, fmt.Errorf("failed to get performance review: %w", err)
	}
	return rv, nil
}

func (s *Store) List(ctx context.Context, filter Filter) (ListResult, error) {
	where := " WHERE 1=1"
	var args []any
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += fmt.Sprintf(" AND p.employee_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND p.status = $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+reviewFrom+where, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("failed to count performance reviews: %w", err)
	}

	query := "SELECT " + reviewColumns + reviewFrom + where + " ORDER BY p.review_date DESC, p.created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to list performance reviews: %w", err)
	}
	defer rows.Close()

	out := ListResult{Items: []Review{}, Total: total}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return ListResult{}, err
		}
		out.Items = append(out.Items, rv)
	}
	return out, rows.Err()
}

func (s *Store) UpdateDraft(ctx context.Context, id string, in ReviewInput, overall decimal.Decimal, reviewerID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE performance_reviews
    SET review_date = $1, productivity_score = $2, quality_score = $3, initiative_score = $4,
        teamwork_score = $5, communication_score = $6, overall_score = $7, achievements = $8,
        areas_of_improvement = $9, reviewer_comments = $10, reviewed_by = NULLIF($11,'')::uuid, updated_at = now()
    WHERE id = $12 AND status = $13
  `, in.ReviewDate, in.Scores.Productivity, in.Scores.Quality, in.Scores.Initiative, in.Scores.Teamwork,
		in.Scores.Communication, overall, in.Achievements, in.AreasOfImprovement, in.ReviewerComments, reviewerID, id, StatusDraft)
	if err != nil {
		return fmt.Errorf("failed to update performance review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.missingOr(ctx, id, ErrNotEditable)
	}
	return nil
}

// Transition moves a review from one status to another. Employee comments
// are only written when non-nil.
func (s *Store) Transition(ctx context.Context, id string, from, to Status, employeeComments *string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE performance_reviews
    SET status = $1, employee_comments = COALESCE($2, employee_comments), updated_at = now()
    WHERE id = $3 AND status = $4
  `, to, employeeComments, id, from)
	if err != nil {
		return fmt.Errorf("failed to update performance review status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.missingOr(ctx, id, ErrInvalidTransition)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM performance_reviews WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete performance review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (s *Store) missingOr(ctx context.Context, id string, fallback error) error {
	var exists bool
	if err := s.DB.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM performance_reviews WHERE id = $1)", id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrReviewNotFound
	}
	return fallback
}
