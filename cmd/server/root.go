package main

import (
	"github.com/farm-ledger/internal/config"
	"github.com/farm-ledger/internal/logger"
	"github.com/farm-ledger/internal/models"

	"github.com/spf13/cobra"
)

// cliState 由根命令 PersistentPreRun 填充，供各子命令共享
type cliState struct {
	cfg *config.Config
}

func newRootCommand() *cobra.Command {
	state := &cliState{}
	root := &cobra.Command{
		Use:           "farm-ledger",
		Short:         "Farm procurement delivery ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			state.cfg = config.Load()
			logger.Init(state.cfg.Server.Mode, state.cfg.Log.ToLoggerOptions())
		},
	}
	serve := newServeCommand(state)
	root.AddCommand(serve, newMigrateCommand(state), newTokenCommand(state))
	// 不带子命令时运行全部服务
	root.Flags().AddFlagSet(serve.Flags())
	root.RunE = serve.RunE
	return root
}

func (s *cliState) openDB() error {
	return models.InitDB(s.cfg.Database.Driver, s.cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           s.cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           s.cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: s.cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: s.cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, s.cfg.Server.Mode == "debug")
}
