package repository

import (
	"github.com/fixmore/mall/internal/models"

	"gorm.io/gorm"
)

// InventoryLogRepository is the stock movement data access interface.
type InventoryLogRepository interface {
	Create(log *models.InventoryLog) error
	List(filter InventoryLogListFilter) ([]models.InventoryLog, int64, error)
	WithTx(tx *gorm.DB) *GormInventoryLogRepository
}

// GormInventoryLogRepository is the GORM implementation.
type GormInventoryLogRepository struct {
	db *gorm.DB
}

// NewInventoryLogRepository creates an inventory log repository.
func NewInventoryLogRepository(db *gorm.DB) *GormInventoryLogRepository {
	return &GormInventoryLogRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormInventoryLogRepository) WithTx(tx *gorm.DB) *GormInventoryLogRepository {
	if tx == nil {
		return r
	}
	return &GormInventoryLogRepository{db: tx}
}

// Create appends a stock movement record.
func (r *GormInventoryLogRepository) Create(log *models.InventoryLog) error {
	return r.db.Create(log).Error
}

// List lists stock movements, newest first.
func (r *GormInventoryLogRepository) List(filter InventoryLogListFilter) ([]models.InventoryLog, int64, error) {
	query := r.db.Model(&models.InventoryLog{})

	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Reason != "" {
		query = query.Where("reason = ?", filter.Reason)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var logs []models.InventoryLog
	if err := query.Order("id desc").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
