package repository

import (
	"time"

	"github.com/farm-ledger/internal/models"
)

// InventoryBatchListFilter 库存批次列表筛选
type InventoryBatchListFilter struct {
	Page       int
	PageSize   int
	Category   string
	SupplierID uint
	// ExpiringBefore 仅保留到期日早于该值的批次（不含）
	ExpiringBefore *time.Time
	// OnlyDated 排除无到期日的批次
	OnlyDated bool
}

// PurchaseRollupRow 采购单明细汇总
type PurchaseRollupRow struct {
	PurchaseID    uint
	ItemCount     int64
	TotalQuantity models.Quantity
	TotalCost     models.Money
}

// DeliverySummaryRow 采购单及其汇总
type DeliverySummaryRow struct {
	Purchase models.PurchaseOrder
	Rollup   PurchaseRollupRow
}
