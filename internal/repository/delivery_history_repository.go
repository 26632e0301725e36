package repository

import (
	"context"

	"github.com/farm-ledger/internal/models"

	"gorm.io/gorm"
)

// DeliveryHistoryRepository 交付报表聚合查询接口（只做聚合，不含业务规则）
type DeliveryHistoryRepository interface {
	ListSupplierSummaries(ctx context.Context, supplierID uint, limit int) ([]DeliverySummaryRow, error)
	RollupsByPurchase(ctx context.Context, purchaseIDs []uint) (map[uint]PurchaseRollupRow, error)
}

// GormDeliveryHistoryRepository GORM 实现
type GormDeliveryHistoryRepository struct {
	db *gorm.DB
}

func NewDeliveryHistoryRepository(db *gorm.DB) *GormDeliveryHistoryRepository {
	return &GormDeliveryHistoryRepository{db: db}
}

// ListSupplierSummaries 获取供应商最近 limit 条采购单及汇总，按采购日期倒序、ID 兜底；
// 无明细的采购单汇总为零
func (r *GormDeliveryHistoryRepository) ListSupplierSummaries(ctx context.Context, supplierID uint, limit int) ([]DeliverySummaryRow, error) {
	purchases := make([]models.PurchaseOrder, 0)
	query := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("purchase_date DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&purchases).Error; err != nil {
		return nil, err
	}
	if len(purchases) == 0 {
		return []DeliverySummaryRow{}, nil
	}

	ids := make([]uint, 0, len(purchases))
	for _, p := range purchases {
		ids = append(ids, p.ID)
	}
	rollups, err := r.RollupsByPurchase(ctx, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]DeliverySummaryRow, 0, len(purchases))
	for _, p := range purchases {
		rollup, ok := rollups[p.ID]
		if !ok {
			rollup = PurchaseRollupRow{PurchaseID: p.ID}
		}
		rows = append(rows, DeliverySummaryRow{Purchase: p, Rollup: rollup})
	}
	return rows, nil
}

// RollupsByPurchase 单次分组查询计算每张采购单的明细数、总数量与总金额
func (r *GormDeliveryHistoryRepository) RollupsByPurchase(ctx context.Context, purchaseIDs []uint) (map[uint]PurchaseRollupRow, error) {
	result := make(map[uint]PurchaseRollupRow, len(purchaseIDs))
	if len(purchaseIDs) == 0 {
		return result, nil
	}
	rows := make([]PurchaseRollupRow, 0, len(purchaseIDs))
	if err := r.db.WithContext(ctx).Model(&models.PurchaseItem{}).
		Select(`
			purchase_id as purchase_id,
			COUNT(*) as item_count,
			COALESCE(SUM(quantity), 0) as total_quantity,
			COALESCE(SUM(quantity * unit_price), 0) as total_cost
		`).
		Where("purchase_id IN ?", purchaseIDs).
		Group("purchase_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.PurchaseID] = row
	}
	return result, nil
}
