package app

import (
	"context"
	"errors"
	"os/signal"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service 常驻服务
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 统一启动服务，任一服务退出时停止全部服务
type Runner struct {
	services []Service
	cleanup  func()
}

func NewRunner(services ...Service) *Runner {
	return &Runner{services: services}
}

// RunWithOptions 运行直到收到 opts.Signals 中的信号
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = normalizeOptions(opts)
	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}

	return runner.Run(ctx, opts.ShutdownTimeout, opts.Logger)
}

// errServiceExited 服务提前正常退出时的占位错误，确保其余服务被取消
var errServiceExited = errors.New("service exited")

// Run 启动全部服务并阻塞，直到 ctx 结束或某个服务返回。
// 随后在 stopTimeout 内停止所有服务，最后执行清理。
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration, log *zap.SugaredLogger) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	for _, svc := range r.services {
		if svc == nil {
			return errors.New("service is nil")
		}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if stopTimeout <= 0 {
		stopTimeout = defaultShutdownTimeout
	}

	g, groupCtx := errgroup.WithContext(ctx)
	for _, svc := range r.services {
		g.Go(func() error {
			log.Infow("service_start", "service", svc.Name())
			err := svc.Start(groupCtx)
			log.Infow("service_exit", "service", svc.Name(), "error", err)
			if err == nil && ctx.Err() == nil {
				return errServiceExited
			}
			return err
		})
	}
	g.Go(func() error {
		<-groupCtx.Done()
		r.stopAll(stopTimeout, log)
		return nil
	})

	err := g.Wait()
	if r.cleanup != nil {
		r.cleanup()
	}
	if errors.Is(err, errServiceExited) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (r *Runner) stopAll(timeout time.Duration, log *zap.SugaredLogger) {
	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for _, svc := range r.services {
		if err := svc.Stop(stopCtx); err != nil {
			log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
		}
	}
}
