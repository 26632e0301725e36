package worker

import (
	"context"
	"encoding/json"

	"github.com/farm-ledger/internal/logger"
	"github.com/farm-ledger/internal/provider"
	"github.com/farm-ledger/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 交付与库存任务消费者
type Consumer struct {
	*provider.Container
}

func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册任务处理器
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskDeliveryStatusChanged, c.handleDeliveryStatusChanged)
	mux.HandleFunc(queue.TaskInventoryExpiryScan, c.handleInventoryExpiryScan)
}

// handleDeliveryStatusChanged 处理已提交的状态变更。请求链路的缓存失效可能失败，此处再失效一次
func (c *Consumer) handleDeliveryStatusChanged(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.DeliveryStatusChangedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_delivery_status_changed_unmarshal_failed", "error", err)
		// 载荷格式错误，重试无意义
		return asynq.SkipRetry
	}
	if payload.PurchaseID == 0 || payload.SupplierID == 0 {
		logger.Debugw("worker_delivery_status_changed_skip_invalid_payload",
			"purchase_id", payload.PurchaseID,
			"supplier_id", payload.SupplierID,
		)
		return nil
	}
	if c.HistoryCache != nil {
		if err := c.HistoryCache.Invalidate(ctx, payload.SupplierID); err != nil {
			logger.Warnw("worker_delivery_history_invalidate_failed",
				"supplier_id", payload.SupplierID,
				"error", err,
			)
			return err
		}
	}
	logger.Infow("worker_delivery_status_changed",
		"purchase_id", payload.PurchaseID,
		"supplier_id", payload.SupplierID,
		"event_id", payload.EventID,
		"previous_status", payload.PreviousStatus,
		"status", payload.Status,
		"actor_id", payload.ActorID,
		"request_id", payload.RequestID,
	)
	return nil
}

func (c *Consumer) handleInventoryExpiryScan(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.InventoryBatchService == nil {
		return nil
	}
	var payload queue.InventoryExpiryScanPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			logger.Warnw("worker_inventory_expiry_scan_unmarshal_failed", "error", err)
			return asynq.SkipRetry
		}
	}

	found, err := c.InventoryBatchService.ScanExpiring(ctx, payload.ReferenceDate)
	if err != nil {
		logger.Warnw("worker_inventory_expiry_scan_failed", "error", err)
		return err
	}

	expired, expiringSoon := 0, 0
	for _, item := range found {
		if item.Expiry.IsExpired() {
			expired++
			logger.Warnw("inventory_batch_expired",
				"batch_id", item.Batch.ID,
				"batch_code", item.Batch.BatchCode,
				"item_name", item.Batch.ItemName,
				"days_ago", item.Expiry.Days,
			)
			continue
		}
		expiringSoon++
		logger.Infow("inventory_batch_expiring_soon",
			"batch_id", item.Batch.ID,
			"batch_code", item.Batch.BatchCode,
			"item_name", item.Batch.ItemName,
			"days_left", item.Expiry.Days,
		)
	}
	logger.Infow("worker_inventory_expiry_scan_done",
		"expired", expired,
		"expiring_soon", expiringSoon,
	)
	return nil
}
