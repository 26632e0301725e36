package repository

import (
	"context"
	"errors"

	"github.com/farm-ledger/internal/models"

	"gorm.io/gorm"
)

// DeliveryTrackingRepository 交付跟踪数据访问接口（只追加，不更新不删除）
type DeliveryTrackingRepository interface {
	Append(ctx context.Context, event *models.DeliveryTrackingEvent) error
	ListByPurchase(ctx context.Context, purchaseID uint) ([]models.DeliveryTrackingEvent, error)
	LatestByPurchase(ctx context.Context, purchaseID uint) (*models.DeliveryTrackingEvent, error)
	CountByPurchase(ctx context.Context, purchaseID uint) (int64, error)
	WithTx(tx *gorm.DB) DeliveryTrackingRepository
}

// GormDeliveryTrackingRepository GORM 实现
type GormDeliveryTrackingRepository struct {
	db *gorm.DB
}

func NewDeliveryTrackingRepository(db *gorm.DB) *GormDeliveryTrackingRepository {
	return &GormDeliveryTrackingRepository{db: db}
}

func (r *GormDeliveryTrackingRepository) WithTx(tx *gorm.DB) DeliveryTrackingRepository {
	if tx == nil {
		return r
	}
	return &GormDeliveryTrackingRepository{db: tx}
}

// Append 追加事件并回填 ID
func (r *GormDeliveryTrackingRepository) Append(ctx context.Context, event *models.DeliveryTrackingEvent) error {
	if event == nil {
		return errors.New("nil tracking event")
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// ListByPurchase 获取完整跟踪记录（最新在前）
func (r *GormDeliveryTrackingRepository) ListByPurchase(ctx context.Context, purchaseID uint) ([]models.DeliveryTrackingEvent, error) {
	events := make([]models.DeliveryTrackingEvent, 0)
	if err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Order("status_date DESC, id DESC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// LatestByPurchase 获取最新事件，无事件时返回 nil, nil
func (r *GormDeliveryTrackingRepository) LatestByPurchase(ctx context.Context, purchaseID uint) (*models.DeliveryTrackingEvent, error) {
	var event models.DeliveryTrackingEvent
	if err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Order("status_date DESC, id DESC").
		First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *GormDeliveryTrackingRepository) CountByPurchase(ctx context.Context, purchaseID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DeliveryTrackingEvent{}).
		Where("purchase_id = ?", purchaseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
