package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrdesk/internal/platform/db"
)

// Sealer encrypts personal fields at rest.
type Sealer interface {
	EncryptString(value string) ([]byte, error)
	DecryptString(sealed []byte) (string, error)
}

type Store struct {
	DB     *pgxpool.Pool
	Crypto Sealer
}

func NewStore(pool *pgxpool.Pool, crypto Sealer) *Store {
	return &Store{DB: pool, Crypto: crypto}
}

const employeeColumns = `
    e.id, e.employee_no, u.id, u.name, u.email, u.role,
    e.department, e.position, e.salary, e.join_date,
    e.contact_number_enc, e.address_enc,
    u.profile_image IS NOT NULL, u.last_login,
    e.created_at, e.updated_at`

const employeeFrom = `
    FROM employees e
    JOIN users u ON u.id = e.user_id`

func (s *Store) scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	var contactEnc, addressEnc []byte
	err := row.Scan(
		&emp.ID, &emp.Number, &emp.UserID, &emp.Name, &emp.Email, &emp.Role,
		&emp.Department, &emp.Position, &emp.Salary, &emp.JoinDate,
		&contactEnc, &addressEnc,
		&emp.HasProfileImage, &emp.LastLogin,
		&emp.CreatedAt, &emp.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	if err != nil {
		return Employee{}, fmt.Errorf("failed to scan employee: %w", err)
	}
	if emp.ContactNumber, err = s.Crypto.DecryptString(contactEnc); err != nil {
		return Employee{}, fmt.Errorf("employee %s contact: %w", emp.ID, err)
	}
	if emp.Address, err = s.Crypto.DecryptString(addressEnc); err != nil {
		return Employee{}, fmt.Errorf("employee %s address: %w", emp.ID, err)
	}
	return emp, nil
}

func (s *Store) seal(in EmployeeInput) (contact, address []byte, err error) {
	if contact, err = s.Crypto.EncryptString(in.ContactNumber); err != nil {
		return nil, nil, err
	}
	if address, err = s.Crypto.EncryptString(in.Address); err != nil {
		return nil, nil, err
	}
	return contact, address, nil
}

func (s *Store) Create(ctx context.Context, in EmployeeInput, passwordHash string) (string, error) {
	contact, address, err := s.seal(in)
	if err != nil {
		return "", err
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var userID string
	err = tx.QueryRow(ctx, `
    INSERT INTO users (name, email, password_hash, role)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, in.Name, in.Email, passwordHash, in.Role).Scan(&userID)
	if db.IsUniqueViolation(err) {
		return "", ErrEmailTaken
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert user: %w", err)
	}

	var employeeID string
	err = tx.QueryRow(ctx, `
    INSERT INTO employees (user_id, department, position, salary, join_date, contact_number_enc, address_enc)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, userID, in.Department, in.Position, in.Salary, in.JoinDate, contact, address).Scan(&employeeID)
	if err != nil {
		return "", fmt.Errorf("failed to insert employee: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return employeeID, nil
}

func (s *Store) Get(ctx context.Context, id string) (Employee, error) {
	return s.scanEmployee(s.DB.QueryRow(ctx, "SELECT "+employeeColumns+employeeFrom+" WHERE e.id = $1", id))
}

func (s *Store) GetByUserID(ctx context.Context, userID string) (Employee, error) {
	return s.scanEmployee(s.DB.QueryRow(ctx, "SELECT "+employeeColumns+employeeFrom+" WHERE u.id = $1", userID))
}

func (s *Store) List(ctx context.Context, filter Filter) (ListResult, error) {
	where := " WHERE 1=1"
	var args []any
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(" AND (u.name ILIKE $%d OR u.email ILIKE $%d OR e.department ILIKE $%d)", len(args), len(args), len(args))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		where += fmt.Sprintf(" AND e.department = $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+employeeFrom+where, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("failed to count employees: %w", err)
	}

	query := "SELECT " + employeeColumns + employeeFrom + where + " ORDER BY u.name, e.employee_no"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	out := ListResult{Items: []Employee{}, Total: total}
	for rows.Next() {
		emp, err := s.scanEmployee(rows)
		if err != nil {
			return ListResult{}, err
		}
		out.Items = append(out.Items, emp)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, id string, in EmployeeInput, passwordHash string) error {
	contact, address, err := s.seal(in)
	if err != nil {
		return err
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var userID string
	err = tx.QueryRow(ctx, `
    UPDATE employees
    SET department = $1, position = $2, salary = $3, join_date = $4,
        contact_number_enc = $5, address_enc = $6, updated_at = now()
    WHERE id = $7
    RETURNING user_id
  `, in.Department, in.Position, in.Salary, in.JoinDate, contact, address, id).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEmployeeNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}

	_, err = tx.Exec(ctx, `
    UPDATE users SET name = $1, email = $2, role = $3, updated_at = now()
    WHERE id = $4
  `, in.Name, in.Email, in.Role, userID)
	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if passwordHash != "" {
		if _, err := tx.Exec(ctx, "UPDATE users SET password_hash = $1 WHERE id = $2", passwordHash, userID); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM users
    WHERE id = (SELECT user_id FROM employees WHERE id = $1)
  `, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) SetProfileImage(ctx context.Context, id string, image []byte) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users SET profile_image = $1, updated_at = now()
    WHERE id = (SELECT user_id FROM employees WHERE id = $2)
  `, image, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) ProfileImage(ctx context.Context, id string) ([]byte, error) {
	var image []byte
	err := s.DB.QueryRow(ctx, `
    SELECT u.profile_image`+employeeFrom+` WHERE e.id = $1
  `, id).Scan(&image)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	return image, err
}
