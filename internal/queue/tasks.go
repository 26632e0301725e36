package queue

import (
	"encoding/json"
	"time"

	"github.com/farm-ledger/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskDeliveryStatusChanged 状态变更提交后投递
	TaskDeliveryStatusChanged = constants.TaskDeliveryStatusChanged
	// TaskInventoryExpiryScan 库存批次到期扫描
	TaskInventoryExpiryScan = constants.TaskInventoryExpiryScan
)

// DeliveryStatusChangedPayload 状态变更事件载荷
type DeliveryStatusChangedPayload struct {
	PurchaseID     uint      `json:"purchase_id"`
	SupplierID     uint      `json:"supplier_id"`
	EventID        uint      `json:"event_id"`
	PreviousStatus string    `json:"previous_status"`
	Status         string    `json:"status"`
	ActorID        uint      `json:"actor_id,omitempty"`
	RequestID      string    `json:"request_id,omitempty"`
	ChangedAt      time.Time `json:"changed_at"`
}

// InventoryExpiryScanPayload 到期扫描载荷，参考时间为零值时使用 worker 当前时间
type InventoryExpiryScanPayload struct {
	ReferenceDate time.Time `json:"reference_date,omitempty"`
}

func NewDeliveryStatusChangedTask(payload DeliveryStatusChangedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDeliveryStatusChanged, body), nil
}

func NewInventoryExpiryScanTask(payload InventoryExpiryScanPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInventoryExpiryScan, body), nil
}
