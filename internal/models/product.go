package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a catalog item.
type Product struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                // primary key
	CategoryID        *uint          `gorm:"index" json:"category_id"`                            // owning category, optional
	SKU               string         `gorm:"uniqueIndex;not null" json:"sku"`                     // unique stock keeping unit
	Name              string         `gorm:"not null;index" json:"name"`                          // display name
	Description       string         `gorm:"type:text" json:"description"`                        // long description
	Price             Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`  // unit price
	StockQuantity     int            `gorm:"not null;default:0" json:"stock_quantity"`            // quantity on hand
	LowStockThreshold int            `gorm:"not null;default:5" json:"low_stock_threshold"`       // reorder alert level
	Images            StringArray    `gorm:"type:json" json:"images"`                             // image URLs
	Tags              StringArray    `gorm:"type:json" json:"tags"`                               // search tags
	SpecsJSON         JSON           `gorm:"type:json" json:"specs"`                              // free-form specifications
	IsActive          bool           `gorm:"index" json:"is_active"`                              // listed on the storefront
	IsFeatured        bool           `gorm:"default:false;index" json:"is_featured"`              // featured placement
	SortOrder         int            `gorm:"default:0;index" json:"sort_order"`                   // display weight
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                             // created at
	UpdatedAt         time.Time      `json:"updated_at"`                                          // updated at
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                      // soft delete

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // category association
}

// TableName sets the table name.
func (Product) TableName() string {
	return "products"
}

// IsLowStock reports whether stock is at or below the alert threshold.
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.LowStockThreshold
}
