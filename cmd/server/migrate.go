package main

import (
	"fmt"

	"github.com/farm-ledger/internal/logger"
	"github.com/farm-ledger/internal/models"

	"github.com/spf13/cobra"
)

// newMigrateCommand 迁移命令。API 在表结构缺失时拒绝启动，建表与改表只在此处进行
func newMigrateCommand(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the ledger tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.openDB(); err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			if err := models.AutoMigrate(models.DB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if err := models.VerifySchema(models.DB); err != nil {
				return fmt.Errorf("verify schema after migrate: %w", err)
			}
			logger.Infow("migrate_done", "driver", state.cfg.Database.Driver)
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}
