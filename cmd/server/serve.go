package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/farm-ledger/internal/app"
	"github.com/farm-ledger/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCommand(state *cliState) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and/or the background worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			printStartupBanner()
			cfg := state.cfg
			if isWeakSecret(cfg.JWT.SecretKey) {
				if cfg.Server.Mode == "release" {
					return fmt.Errorf("jwt secret is weak or still the default, set a strong random secret")
				}
				logger.Warnw("jwt_secret_weak", "hint", "set FARM_JWT_SECRET before production use")
			}
			if err := state.openDB(); err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			if cfg.Server.Mode == "release" {
				gin.SetMode(gin.ReleaseMode)
			}
			return app.Run(app.Options{
				Config:  cfg,
				Logger:  logger.S(),
				Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
				Mode:    mode,
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", app.ModeAll, "what to run: all, api or worker")
	return cmd
}
