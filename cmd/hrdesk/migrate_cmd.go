package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hrdesk/internal/platform/config"
	"hrdesk/internal/platform/db"
)

func newMigrateCmd(load func() config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := load()
			if strings.TrimSpace(cfg.DatabaseURL) == "" {
				return errors.New("DATABASE_URL is required")
			}
			pool, err := db.Connect(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer pool.Close()

			applied, err := db.Migrate(cmd.Context(), pool, cfg.MigrationsDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
			return nil
		},
	}
}

func newSeedCmd(load func() config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the first administrator account if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := load()
			if strings.TrimSpace(cfg.DatabaseURL) == "" {
				return errors.New("DATABASE_URL is required")
			}
			if strings.TrimSpace(cfg.SeedAdminPassword) == "" {
				return errors.New("SEED_ADMIN_PASSWORD is required")
			}
			pool, err := db.Connect(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer pool.Close()
			return db.Seed(cmd.Context(), pool, cfg)
		},
	}
}
