package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon is a discount code applied at checkout.
type Coupon struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                      // primary key
	Code         string         `gorm:"uniqueIndex;not null" json:"code"`                          // coupon code
	Type         string         `gorm:"not null" json:"type"`                                      // fixed or percent
	Value        Money          `gorm:"type:decimal(20,2);not null" json:"value"`                  // amount or percentage
	MinAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_amount"`   // minimum order subtotal
	MaxDiscount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount"` // cap for percent coupons (0 = no cap)
	UsageLimit   int            `gorm:"not null;default:0" json:"usage_limit"`                     // total redemptions (0 = unlimited)
	UsedCount    int            `gorm:"not null;default:0" json:"used_count"`                      // redemptions so far
	PerUserLimit int            `gorm:"not null;default:0" json:"per_user_limit"`                  // per-user redemptions (0 = unlimited)
	StartsAt     *time.Time     `gorm:"index" json:"starts_at"`                                    // valid from
	EndsAt       *time.Time     `gorm:"index" json:"ends_at"`                                      // valid until
	IsActive     bool           `gorm:"not null" json:"is_active"`                                 // enabled
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                   // created at
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                                   // updated at
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                            // soft delete
}

// TableName sets the table name.
func (Coupon) TableName() string {
	return "coupons"
}
