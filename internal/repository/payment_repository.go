package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository is the payment data access interface.
type PaymentRepository interface {
	Create(payment *models.Payment) error
	Update(payment *models.Payment) error
	GetByID(id uint) (*models.Payment, error)
	GetLatestByProviderRef(providerRef string) (*models.Payment, error)
	ListByOrderID(orderID uint) ([]models.Payment, error)
	GetLatestPendingByOrder(orderID uint) (*models.Payment, error)
	ListAdmin(filter PaymentListFilter) ([]models.Payment, int64, error)
	MarkExpiredBefore(cutoff time.Time, reason string) (int64, error)
	WithTx(tx *gorm.DB) *GormPaymentRepository
}

// GormPaymentRepository is the GORM implementation.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a payment repository.
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) *GormPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create creates a payment record.
func (r *GormPaymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// Update saves a payment record.
func (r *GormPaymentRepository) Update(payment *models.Payment) error {
	return r.db.Save(payment).Error
}

// GetByID fetches a payment by ID.
func (r *GormPaymentRepository) GetByID(id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// GetLatestByProviderRef fetches the newest payment carrying the provider
// reference. Callbacks are matched through this.
func (r *GormPaymentRepository) GetLatestByProviderRef(providerRef string) (*models.Payment, error) {
	providerRef = strings.TrimSpace(providerRef)
	if providerRef == "" {
		return nil, nil
	}
	var payment models.Payment
	result := r.db.Where("provider_ref = ?", providerRef).Order("id desc").Limit(1).Find(&payment)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &payment, nil
}

// ListByOrderID lists an order's payment records.
func (r *GormPaymentRepository) ListByOrderID(orderID uint) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.Where("order_id = ?", orderID).Order("id desc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// GetLatestPendingByOrder fetches the newest in-flight payment for an order.
func (r *GormPaymentRepository) GetLatestPendingByOrder(orderID uint) (*models.Payment, error) {
	var payment models.Payment
	result := r.db.Where("order_id = ? AND status IN ?",
		orderID,
		[]string{constants.PaymentStatusInitiated, constants.PaymentStatusPending},
	).Order("id desc").Limit(1).Find(&payment)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &payment, nil
}

// ListAdmin lists payments for the admin panel.
func (r *GormPaymentRepository) ListAdmin(filter PaymentListFilter) ([]models.Payment, int64, error) {
	query := r.db.Model(&models.Payment{})

	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Method != "" {
		query = query.Where("method = ?", filter.Method)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
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

	var payments []models.Payment
	if err := query.Order("id desc").Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// MarkExpiredBefore fails in-flight payments created before the cutoff.
func (r *GormPaymentRepository) MarkExpiredBefore(cutoff time.Time, reason string) (int64, error) {
	result := r.db.Model(&models.Payment{}).
		Where("status IN ? AND created_at < ?",
			[]string{constants.PaymentStatusInitiated, constants.PaymentStatusPending},
			cutoff,
		).
		Updates(map[string]interface{}{
			"status":      constants.PaymentStatusFailed,
			"fail_reason": reason,
		})
	return result.RowsAffected, result.Error
}
