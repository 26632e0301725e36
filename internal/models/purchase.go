package models

import "time"

// PurchaseOrder 采购单表，记录当前交付状态，历史见 DeliveryTrackingEvent
type PurchaseOrder struct {
	ID                   uint       `gorm:"primarykey" json:"id"`
	SupplierID           uint       `gorm:"index;not null" json:"supplier_id"`
	PurchaseDate         time.Time  `gorm:"index;not null" json:"purchase_date"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"`
	// 仅当状态为 delivered 时 DeliveryDate 非空
	DeliveryDate *time.Time `json:"delivery_date"`
	Status       string     `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"`
	Reference    string     `gorm:"type:varchar(64);index" json:"reference,omitempty"` // 供应商侧订单号
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Supplier *Supplier               `gorm:"foreignKey:SupplierID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"supplier,omitempty"`
	Items    []PurchaseItem          `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Events   []DeliveryTrackingEvent `gorm:"foreignKey:PurchaseID;constraint:OnDelete:RESTRICT" json:"events,omitempty"`
}

func (PurchaseOrder) TableName() string {
	return "purchases"
}
