package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrdesk/internal/platform/db"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

const recordColumns = `
    a.id, a.employee_id, u.name, a.work_date, a.check_in, a.check_out, a.status, a.notes,
    a.check_in_location, a.check_out_location,
    a.check_in_photo IS NOT NULL, a.check_out_photo IS NOT NULL,
    a.created_at, a.updated_at`

const recordFrom = `
    FROM attendance_records a
    JOIN employees e ON e.id = a.employee_id
    JOIN users u ON u.id = e.user_id`

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	var checkIn, checkOut pgtype.Time
	var status string
	if err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.EmployeeName, &rec.Date, &checkIn, &checkOut, &status, &rec.Notes,
		&rec.CheckInLocation, &rec.CheckOutLocation,
		&rec.HasCheckInPhoto, &rec.HasCheckOutPhoto,
		&rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return Record{}, err
	}
	parsed, err := ParseStatus(status)
	if err != nil {
		return Record{}, fmt.Errorf("attendance %s: %w", rec.ID, err)
	}
	rec.Status = parsed
	rec.CheckIn = clockFromPG(checkIn)
	rec.CheckOut = clockFromPG(checkOut)
	return rec, nil
}

func clockFromPG(t pgtype.Time) *Clock {
	if !t.Valid {
		return nil
	}
	c := Clock(time.Duration(t.Microseconds) * time.Microsecond)
	return &c
}

func clockToPG(c *Clock) pgtype.Time {
	if c == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: c.Duration().Microseconds(), Valid: true}
}

func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	rec, err := scanRecord(s.DB.QueryRow(ctx, "SELECT "+recordColumns+recordFrom+" WHERE a.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return rec, nil
}

func (s *Store) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Record, error) {
	rec, err := scanRecord(s.DB.QueryRow(ctx, "SELECT "+recordColumns+recordFrom+`
    WHERE a.employee_id = $1 AND a.work_date = $2`, employeeID, dateOnly(date)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to get attendance by date: %w", err)
	}
	return rec, nil
}

func (s *Store) Create(ctx context.Context, rec Record, checkInPhoto []byte) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO attendance_records (employee_id, work_date, check_in, check_out, status, notes, check_in_location, check_in_photo)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, rec.EmployeeID, dateOnly(rec.Date), clockToPG(rec.CheckIn), clockToPG(rec.CheckOut), string(rec.Status), rec.Notes, rec.CheckInLocation, nilIfEmpty(checkInPhoto)).Scan(&id)
	if db.IsUniqueViolation(err) {
		return "", ErrRecordExists
	}
	if err != nil {
		return "", fmt.Errorf("failed to create attendance: %w", err)
	}
	return id, nil
}

func (s *Store) SaveCheckIn(ctx context.Context, rec Record, photo []byte) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE attendance_records
    SET check_in = $2, status = $3, check_in_location = $4, check_in_photo = $5, updated_at = now()
    WHERE id = $1 AND check_in IS NULL
  `, rec.ID, clockToPG(rec.CheckIn), string(rec.Status), rec.CheckInLocation, nilIfEmpty(photo))
	if err != nil {
		return fmt.Errorf("failed to save check-in: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyCheckedIn
	}
	return nil
}

func (s *Store) SaveCheckOut(ctx context.Context, rec Record, photo []byte) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE attendance_records
    SET check_out = $2, status = $3, check_out_location = $4, check_out_photo = $5, updated_at = now()
    WHERE id = $1 AND check_in IS NOT NULL AND check_out IS NULL
  `, rec.ID, clockToPG(rec.CheckOut), string(rec.Status), rec.CheckOutLocation, nilIfEmpty(photo))
	if err != nil {
		return fmt.Errorf("failed to save check-out: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyCheckedOut
	}
	return nil
}

func (s *Store) Update(ctx context.Context, rec Record) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE attendance_records
    SET work_date = $2, check_in = $3, check_out = $4, status = $5, notes = $6, updated_at = now()
    WHERE id = $1
  `, rec.ID, dateOnly(rec.Date), clockToPG(rec.CheckIn), clockToPG(rec.CheckOut), string(rec.Status), rec.Notes)
	if db.IsUniqueViolation(err) {
		return ErrRecordExists
	}
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM attendance_records WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, filter Filter) (ListResult, error) {
	where := " WHERE 1=1"
	args := []any{}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += fmt.Sprintf(" AND a.employee_id = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, dateOnly(filter.From))
		where += fmt.Sprintf(" AND a.work_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, dateOnly(filter.To))
		where += fmt.Sprintf(" AND a.work_date <= $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(" AND a.status = $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+recordFrom+where, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("failed to count attendance: %w", err)
	}

	query := "SELECT " + recordColumns + recordFrom + where + " ORDER BY u.name, a.work_date"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	out := ListResult{Items: []Record{}, Total: total}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return ListResult{}, err
		}
		out.Items = append(out.Items, rec)
	}
	return out, rows.Err()
}

func (s *Store) Photo(ctx context.Context, id, kind string) ([]byte, error) {
	column := "check_in_photo"
	if kind == PhotoCheckOut {
		column = "check_out_photo"
	}
	var photo []byte
	err := s.DB.QueryRow(ctx, "SELECT "+column+" FROM attendance_records WHERE id = $1", id).Scan(&photo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load photo: %w", err)
	}
	if len(photo) == 0 {
		return nil, ErrPhotoNotFound
	}
	return photo, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func nilIfEmpty(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
