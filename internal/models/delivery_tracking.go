package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrTrackingEventImmutable 修改或删除已记录的跟踪事件时由 gorm 钩子返回
var ErrTrackingEventImmutable = errors.New("delivery tracking events are write-once")

// DeliveryTrackingEvent 交付跟踪事件表，StatusDate 由服务端写入时生成
type DeliveryTrackingEvent struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	PurchaseID     uint      `gorm:"index;index:idx_delivery_tracking_history,priority:1;not null" json:"purchase_id"`
	StatusUpdate   string    `gorm:"type:varchar(20);not null" json:"status_update"`
	StatusDate     time.Time `gorm:"index:idx_delivery_tracking_history,priority:2;not null" json:"status_date"`
	TrackingNumber string    `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`
	Carrier        string    `gorm:"type:varchar(100)" json:"carrier,omitempty"`
	Notes          string    `gorm:"type:text" json:"notes,omitempty"`
	ActorID        uint      `gorm:"index" json:"actor_id,omitempty"`
	ActorName      string    `gorm:"type:varchar(100)" json:"actor_name,omitempty"`
	RequestID      string    `gorm:"type:varchar(64);index" json:"request_id,omitempty"`
}

func (DeliveryTrackingEvent) TableName() string {
	return "delivery_tracking"
}

func (DeliveryTrackingEvent) BeforeUpdate(tx *gorm.DB) error {
	return ErrTrackingEventImmutable
}

func (DeliveryTrackingEvent) BeforeDelete(tx *gorm.DB) error {
	return ErrTrackingEventImmutable
}
