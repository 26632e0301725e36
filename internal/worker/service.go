package worker

import (
	"context"
	"errors"
	"time"

	"github.com/farm-ledger/internal/config"
	"github.com/farm-ledger/internal/logger"
	"github.com/farm-ledger/internal/queue"

	"github.com/go-co-op/gocron/v2"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"
)

// expiryScanEnqueuer 调度器所需的队列能力
type expiryScanEnqueuer interface {
	EnqueueInventoryExpiryScan(payload queue.InventoryExpiryScanPayload, uniqueFor time.Duration) error
}

// Service 同时运行 asynq 消费者与到期扫描调度
type Service struct {
	name         string
	server       *asynq.Server
	mux          *asynq.ServeMux
	consumer     *Consumer
	enqueuer     expiryScanEnqueuer
	scanInterval time.Duration
}

func NewService(cfg *config.QueueConfig, consumer *Consumer, scanInterval time.Duration) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	serverCfg.Logger = logger.S()
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	s := &Service{
		name:         "worker",
		server:       server,
		mux:          mux,
		consumer:     consumer,
		scanInterval: scanInterval,
	}
	if consumer.Container != nil && consumer.QueueClient != nil {
		s.enqueuer = consumer.QueueClient
	}
	return s, nil
}

func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 阻塞直到 ctx 取消或任一部分失败
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.server.Start(s.mux); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	})

	if s.enqueuer != nil && s.scanInterval > 0 {
		g.Go(func() error {
			return runExpiryScanSchedule(ctx, s.enqueuer, s.scanInterval)
		})
	}

	return g.Wait()
}

func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runExpiryScanSchedule 立即投递一次扫描，之后按周期投递直到 ctx 结束
func runExpiryScanSchedule(ctx context.Context, enqueuer expiryScanEnqueuer, interval time.Duration) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			enqueueExpiryScan(enqueuer, interval)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	logger.Infow("worker_expiry_scan_schedule_started", "interval", interval.String())
	scheduler.Start()

	<-ctx.Done()
	return scheduler.Shutdown()
}

func enqueueExpiryScan(enqueuer expiryScanEnqueuer, interval time.Duration) {
	if err := enqueuer.EnqueueInventoryExpiryScan(queue.InventoryExpiryScanPayload{}, interval); err != nil {
		logger.Warnw("worker_enqueue_expiry_scan_failed", "error", err)
	}
}
