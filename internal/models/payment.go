package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment is one gateway payment attempt against an order.
type Payment struct {
	ID              uint           `gorm:"primarykey" json:"id"`                       // primary key
	OrderID         uint           `gorm:"index;not null" json:"order_id"`             // owning order
	Method          string         `gorm:"not null" json:"method"`                     // gateway (mpesa/stripe)
	Amount          Money          `gorm:"type:decimal(20,2);not null" json:"amount"`  // charged amount
	Currency        string         `gorm:"not null" json:"currency"`                   // currency code
	Status          string         `gorm:"index;not null" json:"status"`               // payment status
	ProviderRef     string         `gorm:"index" json:"provider_ref"`                  // gateway transaction id
	ReceiptNumber   string         `gorm:"index" json:"receipt_number"`                // gateway receipt (M-Pesa receipt number)
	PhoneNumber     string         `gorm:"type:varchar(20)" json:"phone_number"`       // payer phone for STK push
	FailReason      string         `gorm:"type:text" json:"fail_reason,omitempty"`     // gateway failure description
	ProviderPayload JSON           `gorm:"type:json" json:"provider_payload"`          // raw callback payload
	PaidAt          *time.Time     `gorm:"index" json:"paid_at"`                       // settlement time
	CallbackAt      *time.Time     `gorm:"index" json:"callback_at"`                   // last callback time
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                    // created at
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                    // updated at
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                             // soft delete
}

// TableName sets the table name.
func (Payment) TableName() string {
	return "payments"
}
