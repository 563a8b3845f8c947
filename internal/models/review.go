package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is a customer product review. One per user per product,
// and only after a paid order containing the product.
type Review struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                        // primary key
	ProductID uint           `gorm:"not null;uniqueIndex:idx_review_user_product" json:"product_id"` // reviewed product
	UserID    uint           `gorm:"not null;uniqueIndex:idx_review_user_product" json:"user_id"`    // author
	OrderID   uint           `gorm:"index" json:"order_id"`                                       // qualifying paid order
	Rating    int            `gorm:"not null" json:"rating"`                                      // 1..5
	Title     string         `json:"title"`                                                       // short headline
	Comment   string         `gorm:"type:text" json:"comment"`                                    // review body
	Status    string         `gorm:"default:'pending';index" json:"status"`                       // moderation status
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                     // created at
	UpdatedAt time.Time      `json:"updated_at"`                                                  // updated at
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                              // soft delete

	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`       // author association
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // product association
}

// TableName sets the table name.
func (Review) TableName() string {
	return "reviews"
}
