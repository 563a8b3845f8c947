package models

import (
	"time"

	"gorm.io/gorm"
)

// CouponUsage records one redemption of a coupon.
type CouponUsage struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                         // primary key
	CouponID       uint           `gorm:"index;not null" json:"coupon_id"`                              // redeemed coupon
	UserID         uint           `gorm:"index;not null" json:"user_id"`                                // redeeming user
	OrderID        uint           `gorm:"index;not null" json:"order_id"`                               // order it was applied to
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // discount granted
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                      // created at
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                               // soft delete
}

// TableName sets the table name.
func (CouponUsage) TableName() string {
	return "coupon_usages"
}
