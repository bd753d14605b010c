package main

import (
	"github.com/spf13/cobra"

	"github.com/buildmind/sitetrack/internal/infrastructure/database/postgres"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	var rollbackSteps int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations (or roll back with --rollback)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger, err := logging.NewLogger(cfg.Log)
			if err != nil {
				return err
			}

			if rollbackSteps > 0 {
				if err := postgres.RollbackMigrations(cfg.Database.DSN(), cfg.Database.MigrationPath, rollbackSteps); err != nil {
					return err
				}
				logger.Info("migrations rolled back", logging.Int("steps", rollbackSteps))
				return nil
			}

			if err := postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationPath); err != nil {
				return err
			}
			logger.Info("migrations applied", logging.String("path", cfg.Database.MigrationPath))
			return nil
		},
	}
	cmd.Flags().IntVar(&rollbackSteps, "rollback", 0, "roll back this many migrations instead of applying")
	return cmd
}
