package models

import (
	"time"

	"gorm.io/gorm"
)

// Address is an entry in a user's address book.
type Address struct {
	ID         uint           `gorm:"primarykey" json:"id"`                   // primary key
	UserID     uint           `gorm:"index;not null" json:"user_id"`          // owner
	FullName   string         `gorm:"not null" json:"full_name"`              // recipient name
	Phone      string         `gorm:"type:varchar(20);not null" json:"phone"` // recipient phone
	Line1      string         `gorm:"not null" json:"line1"`                  // street address
	Line2      string         `json:"line2"`                                  // apartment / building
	City       string         `gorm:"not null" json:"city"`                   // city or town
	County     string         `json:"county"`                                 // county / region
	PostalCode string         `gorm:"type:varchar(20)" json:"postal_code"`    // postal code
	Country    string         `gorm:"default:'KE'" json:"country"`            // ISO country code
	IsDefault  bool           `gorm:"default:false;index" json:"is_default"`  // default shipping address
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                // created at
	UpdatedAt  time.Time      `json:"updated_at"`                             // updated at
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                         // soft delete
}

// TableName sets the table name.
func (Address) TableName() string {
	return "addresses"
}

// Snapshot flattens the address for embedding into an order.
func (a *Address) Snapshot() JSON {
	return JSON{
		"full_name":   a.FullName,
		"phone":       a.Phone,
		"line1":       a.Line1,
		"line2":       a.Line2,
		"city":        a.City,
		"county":      a.County,
		"postal_code": a.PostalCode,
		"country":     a.Country,
	}
}
