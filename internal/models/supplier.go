package models

import (
	"time"

	"gorm.io/gorm"
)

// Supplier 供应商表（由其他系统维护，台账只读）
type Supplier struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(150);not null" json:"name"`
	ContactName string         `gorm:"type:varchar(100)" json:"contact_name,omitempty"`
	Phone       string         `gorm:"type:varchar(40)" json:"phone,omitempty"`
	Email       string         `gorm:"type:varchar(150)" json:"email,omitempty"`
	Address     string         `gorm:"type:varchar(255)" json:"address,omitempty"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Supplier) TableName() string {
	return "suppliers"
}
