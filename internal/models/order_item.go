package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem is an immutable product snapshot taken at order creation.
type OrderItem struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                     // primary key
	OrderID     uint           `gorm:"index;not null" json:"order_id"`                           // owning order
	ProductID   uint           `gorm:"index;not null" json:"product_id"`                         // source product
	ProductName string         `gorm:"not null" json:"product_name"`                             // name snapshot
	SKU         string         `gorm:"not null" json:"sku"`                                      // SKU snapshot
	UnitPrice   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // price snapshot
	Quantity    int            `gorm:"not null" json:"quantity"`                                 // quantity
	TotalPrice  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // unit price x quantity
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                  // created at
	UpdatedAt   time.Time      `json:"updated_at"`                                               // updated at
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                           // soft delete
}

// TableName sets the table name.
func (OrderItem) TableName() string {
	return "order_items"
}
