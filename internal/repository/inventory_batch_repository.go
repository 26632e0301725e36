package repository

import (
	"context"
	"strings"

	"github.com/farm-ledger/internal/models"

	"gorm.io/gorm"
)

// InventoryBatchRepository 库存批次数据访问接口
type InventoryBatchRepository interface {
	List(ctx context.Context, filter InventoryBatchListFilter) ([]models.InventoryBatch, int64, error)
}

// GormInventoryBatchRepository GORM 实现
type GormInventoryBatchRepository struct {
	db *gorm.DB
}

func NewInventoryBatchRepository(db *gorm.DB) *GormInventoryBatchRepository {
	return &GormInventoryBatchRepository{db: db}
}

// List 按到期日升序（无到期日排最后）、再按 ID 排序
func (r *GormInventoryBatchRepository) List(ctx context.Context, filter InventoryBatchListFilter) ([]models.InventoryBatch, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InventoryBatch{})
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if filter.SupplierID != 0 {
		query = query.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.OnlyDated || filter.ExpiringBefore != nil {
		query = query.Where("expiry_date IS NOT NULL")
	}
	if filter.ExpiringBefore != nil {
		query = query.Where("expiry_date < ?", *filter.ExpiringBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	batches := make([]models.InventoryBatch, 0)
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.
		Order("CASE WHEN expiry_date IS NULL THEN 1 ELSE 0 END ASC").
		Order("expiry_date ASC").
		Order("id ASC").
		Find(&batches).Error; err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}
