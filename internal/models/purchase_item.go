package models

import "time"

// PurchaseItem 采购单明细表（由采购流程写入，此处只读）
type PurchaseItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	PurchaseID uint      `gorm:"index;not null" json:"purchase_id"`
	ItemName   string    `gorm:"type:varchar(150);not null" json:"item_name"`
	Unit       string    `gorm:"type:varchar(20)" json:"unit,omitempty"`
	Quantity   Quantity  `gorm:"type:decimal(20,3);not null;default:0" json:"quantity"`
	UnitPrice  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`
	CreatedAt  time.Time `json:"created_at"`
}

func (PurchaseItem) TableName() string {
	return "purchase_items"
}

// LineTotal 行金额 = 数量 × 单价，四舍五入到分
func (i PurchaseItem) LineTotal() Money {
	return NewMoneyFromDecimal(i.Quantity.Decimal.Mul(i.UnitPrice.Decimal))
}
