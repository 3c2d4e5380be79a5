package db

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	tokens "hrdesk/internal/auth"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/platform/config"
)

// Seed makes sure at least one administrator can log in.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	exists, err := administratorExists(ctx, pool)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if strings.TrimSpace(cfg.SeedAdminPassword) == "" {
		return errors.New("no administrator exists and SEED_ADMIN_PASSWORD is empty")
	}
	userID, err := ensureAdminUser(ctx, pool, cfg.SeedAdminName, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	return ensureAdminEmployee(ctx, pool, userID)
}

func administratorExists(ctx context.Context, pool *pgxpool.Pool) (bool, error) {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE role = $1", auth.RoleAdministrator).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, name, email, password string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE lower(email) = lower($1)", email).Scan(&id)
	if err == nil {
		_, err = pool.Exec(ctx, "UPDATE users SET role = $1 WHERE id = $2", auth.RoleAdministrator, id)
		return id, err
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	hash, err := tokens.HashPassword(password)
	if err != nil {
		return "", err
	}
	err = pool.QueryRow(ctx, `
    INSERT INTO users (name, email, password_hash, role)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, name, email, hash, auth.RoleAdministrator).Scan(&id)
	if err != nil {
		return "", err
	}
	slog.Info("seeded administrator", "email", email)
	return id, nil
}

func ensureAdminEmployee(ctx context.Context, pool *pgxpool.Pool, userID string) error {
	_, err := pool.Exec(ctx, `
    INSERT INTO employees (user_id, department, position)
    VALUES ($1, 'Management', 'System Administrator')
    ON CONFLICT (user_id) DO NOTHING
  `, userID)
	return err
}
