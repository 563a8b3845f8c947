package models

import (
	"time"
)

// InventoryLog is an append-only record of a stock quantity change.
type InventoryLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`              // primary key
	ProductID  uint      `gorm:"index;not null" json:"product_id"`  // affected product
	Delta      int       `gorm:"not null" json:"delta"`             // signed quantity change
	StockAfter int       `gorm:"not null" json:"stock_after"`       // quantity on hand after the change
	Reason     string    `gorm:"index;not null" json:"reason"`      // movement reason tag
	OrderID    *uint     `gorm:"index" json:"order_id,omitempty"`   // triggering order, if any
	ActorID    *uint     `gorm:"index" json:"actor_id,omitempty"`   // admin who made a manual adjustment
	Note       string    `gorm:"type:text" json:"note,omitempty"`   // free-form note
	CreatedAt  time.Time `gorm:"index" json:"created_at"`           // created at
}

// TableName sets the table name.
func (InventoryLog) TableName() string {
	return "inventory_logs"
}
