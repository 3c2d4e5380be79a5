package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// AuthUser is a login row: the user joined to its employee record, if any.
type AuthUser struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employeeId,omitempty"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	PasswordHash string     `json:"-"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

const authUserSelect = `
    SELECT u.id, COALESCE(e.id::text, ''), u.name, u.email, u.role, u.password_hash, u.last_login
    FROM users u
    LEFT JOIN employees e ON e.user_id = u.id`

func scanAuthUser(row pgx.Row) (AuthUser, error) {
	var out AuthUser
	err := row.Scan(&out.ID, &out.EmployeeID, &out.Name, &out.Email, &out.Role, &out.PasswordHash, &out.LastLogin)
	if errors.Is(err, pgx.ErrNoRows) {
		return AuthUser{}, ErrUserNotFound
	}
	if err != nil {
		return AuthUser{}, fmt.Errorf("failed to load user: %w", err)
	}
	return out, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	return scanAuthUser(s.DB.QueryRow(ctx, authUserSelect+" WHERE lower(u.email) = lower($1)", email))
}

func (s *Store) GetUser(ctx context.Context, userID string) (AuthUser, error) {
	return scanAuthUser(s.DB.QueryRow(ctx, authUserSelect+" WHERE u.id = $1", userID))
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

func (s *Store) UpdateUserPassword(ctx context.Context, userID, hash string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2", hash, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
