package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sammk21/medusa-v2/internal/bootstrap"
	"github.com/Sammk21/medusa-v2/internal/config"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Sync()

			dbCfg, err := config.LoadDatabaseOnly()
			if err != nil {
				return err
			}
			db, err := config.NewDatabase(dbCfg, logger)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			if err := bootstrap.Migrate(db); err != nil {
				return err
			}
			logger.Info("Schema migration completed", zap.String("driver", dbCfg.Driver))
			return nil
		},
	}
}
