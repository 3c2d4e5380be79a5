package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"hrdesk/internal/platform/config"
)

func newRootCmd() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:           "hrdesk",
		Short:         "Attendance, leave, payroll and review back office",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Optional .env file merged before reading the environment")

	load := func() config.Config {
		var cfg config.Config
		if envFile != "" {
			cfg = config.Load(envFile)
		} else {
			cfg = config.Load()
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
		return cfg
	}

	cmd.AddCommand(newServeCmd(load), newMigrateCmd(load), newSeedCmd(load), newPayrollCmd())
	return cmd
}
