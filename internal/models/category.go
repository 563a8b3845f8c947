package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// JSON column type for free-form structured data (specs, address snapshots).
type JSON map[string]interface{}

// Value implements driver.Valuer.
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner.
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// StringArray column type for tags and image lists.
type StringArray []string

// Value implements driver.Valuer.
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Category is a storefront product category.
type Category struct {
	ID          uint           `gorm:"primarykey" json:"id"`                 // primary key
	Name        string         `gorm:"uniqueIndex;not null" json:"name"`     // unique category name
	Description string         `gorm:"type:text" json:"description"`         // description
	ImageURL    string         `gorm:"type:varchar(500)" json:"image_url"`   // category image
	IsActive    bool           `gorm:"index" json:"is_active"`               // visible on the storefront
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`    // display weight
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`              // created at
	UpdatedAt   time.Time      `json:"updated_at"`                           // updated at
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                       // soft delete
}

// TableName sets the table name.
func (Category) TableName() string {
	return "categories"
}
