package repository

import "time"

// ProductListFilter filters product list queries.
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   uint
	CategoryName string
	Search       string
	FeaturedOnly bool
	OnlyActive   bool
	WithCategory bool
}

// OrderListFilter filters order list queries.
type OrderListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	Status        string
	PaymentStatus string
	OrderNo       string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// PaymentListFilter filters payment list queries.
type PaymentListFilter struct {
	Page        int
	PageSize    int
	OrderID     uint
	Method      string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ReviewListFilter filters review list queries.
type ReviewListFilter struct {
	Page         int
	PageSize     int
	ProductID    uint
	UserID       uint
	Status       string
	ApprovedOnly bool
}

// UserListFilter filters user list queries.
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// InventoryLogListFilter filters inventory log queries.
type InventoryLogListFilter struct {
	Page        int
	PageSize    int
	ProductID   uint
	OrderID     uint
	Reason      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
