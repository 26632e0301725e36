package repository

import (
	"context"
	"errors"
	"time"

	"github.com/farm-ledger/internal/models"

	"gorm.io/gorm"
)

// PurchaseRepository 采购单数据访问接口（只读取与更新交付状态，不负责创建）
type PurchaseRepository interface {
	GetByID(ctx context.Context, id uint) (*models.PurchaseOrder, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.PurchaseOrder, error)
	GetWithItems(ctx context.Context, id uint) (*models.PurchaseOrder, error)
	UpdateDeliveryStatus(ctx context.Context, id uint, status string, deliveryDate *time.Time, updatedAt time.Time) error
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) PurchaseRepository
}

// GormPurchaseRepository GORM 实现
type GormPurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPurchaseRepository) WithTx(tx *gorm.DB) PurchaseRepository {
	if tx == nil {
		return r
	}
	return &GormPurchaseRepository{db: tx}
}

// Transaction 在同一事务中执行 fn，出错整体回滚
func (r *GormPurchaseRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// GetByID 根据 ID 获取采购单，不存在时返回 nil, nil
func (r *GormPurchaseRepository) GetByID(ctx context.Context, id uint) (*models.PurchaseOrder, error) {
	return r.first(r.db.WithContext(ctx), id)
}

// GetByIDForUpdate 根据 ID 获取采购单并加行锁（需在事务内调用）
func (r *GormPurchaseRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.PurchaseOrder, error) {
	return r.first(forUpdate(r.db.WithContext(ctx)), id)
}

// GetWithItems 获取采购单及明细（按插入顺序）
func (r *GormPurchaseRepository) GetWithItems(ctx context.Context, id uint) (*models.PurchaseOrder, error) {
	query := r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Preload("Supplier")
	return r.first(query, id)
}

func (r *GormPurchaseRepository) first(query *gorm.DB, id uint) (*models.PurchaseOrder, error) {
	if id == 0 {
		return nil, nil
	}
	var purchase models.PurchaseOrder
	if err := query.First(&purchase, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &purchase, nil
}

// UpdateDeliveryStatus 同时更新状态、交付日期与更新时间。deliveryDate 为 nil 时清空该列，
// 未匹配到记录时返回 gorm.ErrRecordNotFound
func (r *GormPurchaseRepository) UpdateDeliveryStatus(ctx context.Context, id uint, status string, deliveryDate *time.Time, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"delivery_date": deliveryDate,
			"updated_at":    updatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
