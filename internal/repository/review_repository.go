package repository

import (
	"errors"

	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/models"

	"gorm.io/gorm"
)

// ReviewRepository is the review data access interface.
type ReviewRepository interface {
	Create(review *models.Review) error
	Update(review *models.Review) error
	GetByID(id uint) (*models.Review, error)
	GetByUserAndProduct(userID, productID uint) (*models.Review, error)
	ListByProduct(filter ReviewListFilter) ([]models.Review, int64, error)
	ListAdmin(filter ReviewListFilter) ([]models.Review, int64, error)
	Delete(id uint) error
	ProductRatingSummary(productID uint) (avg float64, count int64, err error)
}

// GormReviewRepository is the GORM implementation.
type GormReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a review repository.
func NewReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Create creates a review.
func (r *GormReviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

// Update saves a review.
func (r *GormReviewRepository) Update(review *models.Review) error {
	return r.db.Save(review).Error
}

// GetByID fetches a review by ID.
func (r *GormReviewRepository) GetByID(id uint) (*models.Review, error) {
	var review models.Review
	if err := r.db.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

// GetByUserAndProduct fetches the user's review of a product.
func (r *GormReviewRepository) GetByUserAndProduct(userID, productID uint) (*models.Review, error) {
	var review models.Review
	if err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

// ListByProduct lists a product's reviews for the storefront.
func (r *GormReviewRepository) ListByProduct(filter ReviewListFilter) ([]models.Review, int64, error) {
	var reviews []models.Review
	query := r.db.Model(&models.Review{}).Where("product_id = ?", filter.ProductID)

	if filter.ApprovedOnly {
		query = query.Where("status = ?", constants.ReviewStatusApproved)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Preload("User").Order("id desc").Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// ListAdmin lists reviews for the admin panel.
func (r *GormReviewRepository) ListAdmin(filter ReviewListFilter) ([]models.Review, int64, error) {
	var reviews []models.Review
	query := r.db.Model(&models.Review{})

	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Preload("User").Preload("Product").Order("id desc").Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// Delete removes a review.
func (r *GormReviewRepository) Delete(id uint) error {
	return r.db.Delete(&models.Review{}, id).Error
}

// ProductRatingSummary returns the approved rating average and count.
func (r *GormReviewRepository) ProductRatingSummary(productID uint) (float64, int64, error) {
	type summaryRow struct {
		Avg   float64
		Count int64
	}
	var row summaryRow
	if err := r.db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
		Where("product_id = ? AND status = ?", productID, constants.ReviewStatusApproved).
		Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.Avg, row.Count, nil
}
