package models

import "time"

// InventoryBatch 库存批次表，仅用于到期报表
type InventoryBatch struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	BatchCode    string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"batch_code"`
	ItemName     string     `gorm:"type:varchar(150);not null" json:"item_name"`
	Category     string     `gorm:"type:varchar(50);index" json:"category,omitempty"` // 饲料 / 兽药 / 种子 / 肥料
	Quantity     Quantity   `gorm:"type:decimal(20,3);not null;default:0" json:"quantity"`
	Unit         string     `gorm:"type:varchar(20)" json:"unit,omitempty"`
	SupplierID   *uint      `gorm:"index" json:"supplier_id,omitempty"`
	PurchaseID   *uint      `gorm:"index" json:"purchase_id,omitempty"`
	ReceivedDate *time.Time `json:"received_date,omitempty"`
	ExpiryDate   *time.Time `gorm:"index" json:"expiry_date"`
	Location     string     `gorm:"type:varchar(100)" json:"location,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (InventoryBatch) TableName() string {
	return "inventory_batches"
}
