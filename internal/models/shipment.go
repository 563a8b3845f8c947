package models

import (
	"time"

	"gorm.io/gorm"
)

// Shipment is the dispatch record for a shipped order.
type Shipment struct {
	ID             uint           `gorm:"primarykey" json:"id"`                      // primary key
	OrderID        uint           `gorm:"uniqueIndex;not null" json:"order_id"`      // shipped order
	Courier        string         `gorm:"not null" json:"courier"`                   // carrier name
	TrackingNumber string         `gorm:"index" json:"tracking_number"`              // carrier tracking reference
	ShippedBy      *uint          `gorm:"index" json:"shipped_by,omitempty"`         // dispatching admin
	ShippedAt      *time.Time     `gorm:"index" json:"shipped_at,omitempty"`         // dispatch time
	DeliveredAt    *time.Time     `gorm:"index" json:"delivered_at,omitempty"`       // delivery confirmation time
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                   // created at
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                   // updated at
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                            // soft delete
}

// TableName sets the table name.
func (Shipment) TableName() string {
	return "shipments"
}
