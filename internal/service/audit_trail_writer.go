package service

import (
	"context"
	"strings"
	"time"

	"github.com/farm-ledger/internal/constants"
	"github.com/farm-ledger/internal/models"
	"github.com/farm-ledger/internal/repository"

	"gorm.io/gorm"
)

// AppendEventInput 追加跟踪事件输入（时间戳由写入方生成）
type AppendEventInput struct {
	PurchaseID     uint
	StatusUpdate   string
	TrackingNumber string
	Carrier        string
	Notes          string
	ActorID        uint
	ActorName      string
	RequestID      string
}

// AuditTrailWriter 交付跟踪审计写入，只追加，不修改或删除已有事件
type AuditTrailWriter struct {
	trackingRepo repository.DeliveryTrackingRepository
	now          func() time.Time
}

func NewAuditTrailWriter(trackingRepo repository.DeliveryTrackingRepository) *AuditTrailWriter {
	return &AuditTrailWriter{
		trackingRepo: trackingRepo,
		now:          time.Now,
	}
}

// Append 在 tx 内写入一条事件，返回时已回填 ID 与 StatusDate（写入时刻的服务端时间）
func (w *AuditTrailWriter) Append(ctx context.Context, tx *gorm.DB, input AppendEventInput) (*models.DeliveryTrackingEvent, error) {
	if input.PurchaseID == 0 {
		return nil, newValidationError("purchase_id", ErrMissingRequiredField)
	}
	if !constants.IsDeliveryStatus(input.StatusUpdate) {
		return nil, newValidationError("status", ErrInvalidStatus)
	}
	event := &models.DeliveryTrackingEvent{
		PurchaseID:     input.PurchaseID,
		StatusUpdate:   input.StatusUpdate,
		StatusDate:     w.now(),
		TrackingNumber: strings.TrimSpace(input.TrackingNumber),
		Carrier:        strings.TrimSpace(input.Carrier),
		Notes:          strings.TrimSpace(input.Notes),
		ActorID:        input.ActorID,
		ActorName:      input.ActorName,
		RequestID:      input.RequestID,
	}
	if err := w.trackingRepo.WithTx(tx).Append(ctx, event); err != nil {
		return nil, newStorageError("append tracking event", err)
	}
	return event, nil
}
