package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is an immutable snapshot of a completed checkout.
// Amounts are computed once at creation and never recomputed.
type Order struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                          // primary key
	OrderNo             string         `gorm:"uniqueIndex;not null" json:"order_no"`                          // human-readable order number
	UserID              uint           `gorm:"index;not null" json:"user_id"`                                 // buyer
	Status              string         `gorm:"index;not null" json:"status"`                                  // order status
	PaymentStatus       string         `gorm:"index;not null" json:"payment_status"`                          // payment status
	PaymentMethod       string         `gorm:"not null" json:"payment_method"`                                // selected payment method
	Currency            string         `gorm:"not null" json:"currency"`                                      // currency code
	SubtotalAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal_amount"`  // sum of line totals
	TaxAmount           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`       // VAT on subtotal
	ShippingAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_amount"`  // shipping fee
	DiscountAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`  // coupon discount
	TotalAmount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`     // subtotal + tax + shipping - discount
	CouponID            *uint          `gorm:"index" json:"coupon_id,omitempty"`                              // applied coupon
	ShippingAddressJSON JSON           `gorm:"type:json" json:"shipping_address"`                             // shipping address snapshot
	BillingAddressJSON  JSON           `gorm:"type:json" json:"billing_address"`                              // billing address snapshot
	Notes               string         `gorm:"type:text" json:"notes"`                                        // buyer notes
	ClientIP            string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`                   // checkout client IP
	PaidAt              *time.Time     `gorm:"index" json:"paid_at"`                                          // payment time
	CancelledAt         *time.Time     `gorm:"index" json:"cancelled_at"`                                     // cancellation time
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                       // created at
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                       // updated at
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                                // soft delete

	Items    []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`    // line items
	Payments []Payment   `gorm:"foreignKey:OrderID" json:"payments,omitempty"` // payment attempts
	Shipment *Shipment   `gorm:"foreignKey:OrderID" json:"shipment,omitempty"` // shipment record
}

// TableName sets the table name.
func (Order) TableName() string {
	return "orders"
}
