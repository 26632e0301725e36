package repository

import (
	"context"
	"errors"

	"github.com/farm-ledger/internal/models"

	"gorm.io/gorm"
)

// SupplierRepository 供应商数据访问接口
type SupplierRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Supplier, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

// GormSupplierRepository GORM 实现
type GormSupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// GetByID 根据 ID 获取供应商，不存在或已删除时返回 nil, nil
func (r *GormSupplierRepository) GetByID(ctx context.Context, id uint) (*models.Supplier, error) {
	if id == 0 {
		return nil, nil
	}
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &supplier, nil
}

func (r *GormSupplierRepository) Exists(ctx context.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Supplier{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
