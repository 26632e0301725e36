package app

import (
	"os"
	"time"

	"github.com/farm-ledger/internal/config"
	"github.com/farm-ledger/internal/logger"

	"go.uber.org/zap"
)

const defaultShutdownTimeout = 10 * time.Second

const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}
