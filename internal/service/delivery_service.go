package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/farm-ledger/internal/constants"
	"github.com/farm-ledger/internal/logger"
	"github.com/farm-ledger/internal/queue"
	"github.com/farm-ledger/internal/repository"

	"gorm.io/gorm"
)

const (
	maxTrackingNumberLength = 100
	maxCarrierLength        = 100
	maxNotesLength          = 2000
)

// DeliveryEventPublisher 状态变更事件发布接口
type DeliveryEventPublisher interface {
	EnqueueDeliveryStatusChanged(payload queue.DeliveryStatusChangedPayload) error
}

// DeliveryHistoryCache 供应商交付历史缓存接口。Load 返回读取前的失效代数，
// 若此后 Invalidate 推进了代数，Store 放弃写入
type DeliveryHistoryCache interface {
	Load(ctx context.Context, supplierID uint, limit int, dest interface{}) (int64, bool, error)
	Store(ctx context.Context, supplierID uint, limit int, generation int64, value interface{}) error
	Invalidate(ctx context.Context, supplierID uint) error
}

// DeliveryFields 状态变更附带的可选字段
type DeliveryFields struct {
	DeliveryDate   *time.Time
	TrackingNumber string
	Carrier        string
	Notes          string
}

// TransitionInput 状态变更输入
type TransitionInput struct {
	PurchaseID   uint
	TargetStatus string
	Fields       DeliveryFields
	RequestID    string
}

// TransitionOutcome 状态变更结果
type TransitionOutcome struct {
	PurchaseID     uint       `json:"purchase_id"`
	SupplierID     uint       `json:"supplier_id"`
	PreviousStatus string     `json:"previous_status"`
	Status         string     `json:"status"`
	EventID        uint       `json:"event_id"`
	DeliveryDate   *time.Time `json:"delivery_date"`
	StatusDate     time.Time  `json:"status_date"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// DeliveryService 交付状态变更服务。任意状态间均可切换，每次成功变更记录一条事件
type DeliveryService struct {
	purchaseRepo repository.PurchaseRepository
	audit        *AuditTrailWriter
	publisher    DeliveryEventPublisher
	historyCache DeliveryHistoryCache
	timeout      time.Duration
	now          func() time.Time
}

// NewDeliveryService 创建交付状态服务，publisher 与 historyCache 可为 nil
func NewDeliveryService(
	purchaseRepo repository.PurchaseRepository,
	audit *AuditTrailWriter,
	publisher DeliveryEventPublisher,
	historyCache DeliveryHistoryCache,
	timeout time.Duration,
) *DeliveryService {
	return &DeliveryService{
		purchaseRepo: purchaseRepo,
		audit:        audit,
		publisher:    publisher,
		historyCache: historyCache,
		timeout:      timeout,
		now:          time.Now,
	}
}

// Transition 校验请求后，在同一事务内更新采购单并追加跟踪事件。校验或权限失败时不开启事务
func (s *DeliveryService) Transition(ctx context.Context, auth AuthContext, input TransitionInput) (*TransitionOutcome, error) {
	if err := auth.RequireAdmin(); err != nil {
		return nil, err
	}
	input, err := normalizeTransitionInput(input)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var outcome TransitionOutcome
	err = s.purchaseRepo.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.purchaseRepo.WithTx(tx)
		purchase, err := repo.GetByIDForUpdate(ctx, input.PurchaseID)
		if err != nil {
			return newStorageError("load purchase", err)
		}
		if purchase == nil {
			return ErrPurchaseNotFound
		}

		var deliveryDate *time.Time
		if input.TargetStatus == constants.DeliveryStatusDelivered {
			deliveryDate = input.Fields.DeliveryDate
		}
		updatedAt := s.now()
		if err := repo.UpdateDeliveryStatus(ctx, purchase.ID, input.TargetStatus, deliveryDate, updatedAt); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPurchaseNotFound
			}
			return newStorageError("update purchase status", err)
		}

		event, err := s.audit.Append(ctx, tx, AppendEventInput{
			PurchaseID:     purchase.ID,
			StatusUpdate:   input.TargetStatus,
			TrackingNumber: input.Fields.TrackingNumber,
			Carrier:        input.Fields.Carrier,
			Notes:          input.Fields.Notes,
			ActorID:        auth.ActorID,
			ActorName:      auth.Username,
			RequestID:      input.RequestID,
		})
		if err != nil {
			return err
		}

		outcome = TransitionOutcome{
			PurchaseID:     purchase.ID,
			SupplierID:     purchase.SupplierID,
			PreviousStatus: purchase.Status,
			Status:         input.TargetStatus,
			EventID:        event.ID,
			DeliveryDate:   deliveryDate,
			StatusDate:     event.StatusDate,
			UpdatedAt:      updatedAt,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPurchaseNotFound) || errors.Is(err, ErrStorage) || IsValidationError(err) {
			return nil, err
		}
		// 提交失败与上下文超时在此返回
		return nil, newStorageError("commit transition", err)
	}

	s.afterCommit(ctx, auth, input, outcome)
	return &outcome, nil
}

// afterCommit 提交后的附加处理，不影响已提交的结果
func (s *DeliveryService) afterCommit(ctx context.Context, auth AuthContext, input TransitionInput, outcome TransitionOutcome) {
	log := logger.SW(
		"purchase_id", outcome.PurchaseID,
		"supplier_id", outcome.SupplierID,
		"event_id", outcome.EventID,
		"request_id", input.RequestID,
	)
	log.Infow("delivery_status_transitioned",
		"previous_status", outcome.PreviousStatus,
		"status", outcome.Status,
		"actor_id", auth.ActorID,
	)

	if s.historyCache != nil {
		if err := s.historyCache.Invalidate(context.WithoutCancel(ctx), outcome.SupplierID); err != nil {
			log.Warnw("delivery_history_cache_invalidate_failed", "error", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.EnqueueDeliveryStatusChanged(queue.DeliveryStatusChangedPayload{
			PurchaseID:     outcome.PurchaseID,
			SupplierID:     outcome.SupplierID,
			EventID:        outcome.EventID,
			PreviousStatus: outcome.PreviousStatus,
			Status:         outcome.Status,
			ActorID:        auth.ActorID,
			RequestID:      input.RequestID,
			ChangedAt:      outcome.StatusDate,
		}); err != nil {
			log.Warnw("delivery_status_event_enqueue_failed", "error", err)
		}
	}
}

func normalizeTransitionInput(input TransitionInput) (TransitionInput, error) {
	if input.PurchaseID == 0 {
		return input, newValidationError("purchase_id", ErrMissingRequiredField)
	}
	input.TargetStatus = strings.ToLower(strings.TrimSpace(input.TargetStatus))
	if input.TargetStatus == "" {
		return input, newValidationError("status", ErrMissingRequiredField)
	}
	if !constants.IsDeliveryStatus(input.TargetStatus) {
		return input, newValidationError("status", ErrInvalidStatus)
	}
	if input.TargetStatus == constants.DeliveryStatusDelivered {
		if input.Fields.DeliveryDate == nil || input.Fields.DeliveryDate.IsZero() {
			return input, newValidationError("delivery_date", ErrMissingRequiredField)
		}
	}

	input.Fields.TrackingNumber = strings.TrimSpace(input.Fields.TrackingNumber)
	input.Fields.Carrier = strings.TrimSpace(input.Fields.Carrier)
	input.Fields.Notes = strings.TrimSpace(input.Fields.Notes)
	switch {
	case len(input.Fields.TrackingNumber) > maxTrackingNumberLength:
		return input, newValidationError("tracking_number", ErrFieldTooLong)
	case len(input.Fields.Carrier) > maxCarrierLength:
		return input, newValidationError("carrier", ErrFieldTooLong)
	case len(input.Fields.Notes) > maxNotesLength:
		return input, newValidationError("notes", ErrFieldTooLong)
	}
	return input, nil
}

// DeliveryStatusResult UpdateDeliveryStatus 的结果，Success 与 Err 二选一。
// 适配层按调用方语言渲染 MessageKey，并决定返回 JSON 还是重定向
type DeliveryStatusResult struct {
	Success        bool
	MessageKey     string
	MessageArgs    []interface{}
	RedirectTarget string
	Outcome        *TransitionOutcome
	Err            error
}

// UpdateDeliveryStatus 执行 Transition 并转换为 DeliveryStatusResult，存储错误仅保留在 Err 中用于日志
func (s *DeliveryService) UpdateDeliveryStatus(ctx context.Context, auth AuthContext, input TransitionInput) DeliveryStatusResult {
	result := DeliveryStatusResult{RedirectTarget: purchaseRedirectTarget(input.PurchaseID)}
	outcome, err := s.Transition(ctx, auth, input)
	if err != nil {
		result.Err = err
		result.MessageKey, result.MessageArgs = deliveryErrorMessage(err)
		return result
	}
	result.Success = true
	result.Outcome = outcome
	result.MessageKey = "delivery.status_updated"
	result.MessageArgs = []interface{}{outcome.Status}
	return result
}

func purchaseRedirectTarget(purchaseID uint) string {
	if purchaseID == 0 {
		return "/admin/purchases"
	}
	return fmt.Sprintf("/admin/purchases/%d", purchaseID)
}

func deliveryErrorMessage(err error) (string, []interface{}) {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "error.forbidden", nil
	case errors.Is(err, ErrPurchaseNotFound):
		return "error.purchase_not_found", nil
	case errors.Is(err, ErrInvalidStatus):
		return "error.invalid_status", nil
	case errors.As(err, &verr) && verr.Field == "delivery_date":
		return "error.delivery_date_required", nil
	case errors.As(err, &verr) && errors.Is(verr.Err, ErrFieldTooLong):
		return "error.field_too_long", []interface{}{verr.Field}
	case errors.As(err, &verr):
		return "error.missing_field", []interface{}{verr.Field}
	default:
		return "error.delivery_update_failed", nil
	}
}
