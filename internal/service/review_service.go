package service

import (
	"strings"

	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/logger"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"
)

// ReviewService handles product reviews and their moderation.
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cache       *CatalogCache
}

// NewReviewService creates a review service.
func NewReviewService(reviewRepo repository.ReviewRepository, orderRepo repository.OrderRepository, productRepo repository.ProductRepository, cache *CatalogCache) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cache:       cache,
	}
}

// ReviewInput is the customer review payload.
type ReviewInput struct {
	Rating  int
	Title   string
	Comment string
}

// CreateReview creates a pending review. Only buyers with a paid order
// containing the product may review it, once each.
func (s *ReviewService) CreateReview(userID, productID uint, input ReviewInput) (*models.Review, error) {
	if userID == 0 || productID == 0 {
		return nil, ErrNotFound
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}

	paidCount, err := s.orderRepo.CountPaidByUserAndProduct(userID, productID)
	if err != nil {
		return nil, err
	}
	if paidCount == 0 {
		return nil, ErrReviewNotEligible
	}

	existing, err := s.reviewRepo.GetByUserAndProduct(userID, productID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrReviewExists
	}

	review := models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    input.Rating,
		Title:     strings.TrimSpace(input.Title),
		Comment:   strings.TrimSpace(input.Comment),
		Status:    constants.ReviewStatusPending,
	}
	if err := s.reviewRepo.Create(&review); err != nil {
		return nil, err
	}

	logger.Infow("review_created",
		"review_id", review.ID,
		"product_id", productID,
		"user_id", userID,
		"rating", input.Rating,
	)
	return &review, nil
}

// ListProductReviews lists a product's approved reviews.
func (s *ReviewService) ListProductReviews(productID uint, page, pageSize int) ([]models.Review, int64, error) {
	return s.reviewRepo.ListByProduct(repository.ReviewListFilter{
		ProductID:    productID,
		ApprovedOnly: true,
		Page:         page,
		PageSize:     pageSize,
	})
}

// ListAdmin lists reviews for moderation.
func (s *ReviewService) ListAdmin(filter repository.ReviewListFilter) ([]models.Review, int64, error) {
	return s.reviewRepo.ListAdmin(filter)
}

// Moderate approves or rejects a pending review. Approval changes the
// product's published rating, so its cache entry is dropped.
func (s *ReviewService) Moderate(id uint, approve bool) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrNotFound
	}

	status := constants.ReviewStatusRejected
	if approve {
		status = constants.ReviewStatusApproved
	}
	if review.Status == status {
		return review, nil
	}
	review.Status = status
	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.InvalidateProduct(review.ProductID)
	}
	logger.Infow("review_moderated",
		"review_id", review.ID,
		"product_id", review.ProductID,
		"status", status,
	)
	return review, nil
}

// Delete removes a review.
func (s *ReviewService) Delete(id uint) error {
	review, err := s.reviewRepo.GetByID(id)
	if err != nil {
		return err
	}
	if review == nil {
		return ErrNotFound
	}
	if err := s.reviewRepo.Delete(id); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateProduct(review.ProductID)
	}
	return nil
}
