package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User is a registered customer or administrator account.
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`               // primary key
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`  // login email
	PasswordHash string         `gorm:"not null" json:"-"`                  // bcrypt hash, never serialized
	FirstName    string         `gorm:"default:''" json:"first_name"`       // given name
	LastName     string         `gorm:"default:''" json:"last_name"`        // family name
	Phone        string         `gorm:"type:varchar(20)" json:"phone"`      // contact phone (254 format for M-Pesa)
	IsAdmin      bool           `gorm:"default:false;index" json:"is_admin"`// admin flag
	Status       string         `gorm:"default:'active'" json:"status"`     // account status
	TokenVersion uint64         `gorm:"not null;default:0" json:"-"`        // bumps invalidate all issued tokens
	LastLoginAt  *time.Time     `json:"last_login_at"`                      // last successful login
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`            // created at
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`            // updated at
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                     // soft delete
}

// TableName sets the table name.
func (User) TableName() string {
	return "users"
}

// FullName joins the name parts, skipping empty segments.
func (u *User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}
