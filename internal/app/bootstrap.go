package app

import (
	"errors"
	"fmt"

	"github.com/farm-ledger/internal/config"
	"github.com/farm-ledger/internal/logger"
	"github.com/farm-ledger/internal/provider"
	"github.com/farm-ledger/internal/router"
	"github.com/farm-ledger/internal/worker"
)

// BuildRunner 按运行模式组装容器与服务
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	switch mode {
	case ModeAll, ModeAPI, ModeWorker:
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	container := provider.NewContainer(cfg)

	var services []Service

	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		httpService := NewHTTPService(addr, engine)
		services = append(services, httpService)
	}

	if mode == ModeWorker || (mode == ModeAll && cfg.Queue.Enabled) {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer, cfg.Inventory.ExpiryScanInterval())
		if err != nil {
			container.Close()
			return nil, err
		}
		services = append(services, workerService)
	} else if mode == ModeAll {
		logger.Warnw("app_worker_skipped", "reason", "queue disabled")
	}

	if len(services) == 0 {
		container.Close()
		return nil, fmt.Errorf("no services initialized for mode %q", mode)
	}

	runner := NewRunner(services...)
	runner.cleanup = container.Close
	return runner, nil
}

// Run 构建运行器并阻塞，直到收到信号或某个服务失败
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
