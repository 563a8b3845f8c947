package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem is one line of a user's cart. The cart itself is implicit:
// a user's cart is the set of their cart items.
type CartItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                         // primary key
	UserID    uint           `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`    // cart owner
	ProductID uint           `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"` // product
	Quantity  int            `gorm:"not null" json:"quantity"`                                     // quantity, >= 1
	UnitPrice Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`      // price snapshot at add time
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                      // created at
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                                      // updated at
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                               // soft delete

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // product association
}

// TableName sets the table name.
func (CartItem) TableName() string {
	return "cart_items"
}
