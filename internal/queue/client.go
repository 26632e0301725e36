package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/farm-ledger/internal/config"
	"github.com/farm-ledger/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	DefaultQueue  = constants.QueueDefault
	CriticalQueue = constants.QueueCritical
)

// Client asynq 客户端封装，未启用时接受并丢弃任务
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	return &Client{
		client:       asynq.NewClient(buildRedisOpt(cfg)),
		enabled:      true,
		defaultQueue: DefaultQueue,
	}, nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueDeliveryStatusChanged 投递已提交的状态变更事件
func (c *Client) EnqueueDeliveryStatusChanged(payload DeliveryStatusChangedPayload) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewDeliveryStatusChangedTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.Enqueue(task,
		asynq.Queue(CriticalQueue),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	return err
}

// EnqueueInventoryExpiryScan 投递到期扫描任务。uniqueFor 防止多个调度器重复入队，
// asynq.ErrDuplicateTask 视为成功
func (c *Client) EnqueueInventoryExpiryScan(payload InventoryExpiryScanPayload, uniqueFor time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewInventoryExpiryScanTask(payload)
	if err != nil {
		return err
	}
	options := []asynq.Option{asynq.Queue(c.defaultQueue), asynq.MaxRetry(1)}
	if uniqueFor > 0 {
		options = append(options, asynq.Unique(uniqueFor))
	}
	_, err = c.client.Enqueue(task, options...)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

// BuildServerConfig 构建 worker 使用的 asynq 服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := 5
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{DefaultQueue: 1, CriticalQueue: 2}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return buildRedisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	opt := asynq.RedisClientOpt{}
	if cfg != nil {
		if h := strings.TrimSpace(cfg.Host); h != "" {
			host = h
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		opt.Password = cfg.Password
		opt.DB = cfg.DB
	}
	opt.Addr = fmt.Sprintf("%s:%d", host, port)
	return opt
}
