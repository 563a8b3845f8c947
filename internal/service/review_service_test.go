package service

import (
	"errors"
	"testing"

	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"

	"gorm.io/gorm"
)

func newTestReviewService(db *gorm.DB) *ReviewService {
	return NewReviewService(
		repository.NewReviewRepository(db),
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		nil,
	)
}

func createPaidOrderForProduct(t *testing.T, db *gorm.DB, userID, productID uint) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:       "ORD" + t.Name(),
		UserID:        userID,
		Status:        constants.OrderStatusDelivered,
		PaymentStatus: constants.OrderPaymentStatusPaid,
		PaymentMethod: constants.PaymentMethodMpesa,
		Currency:      "KES",
		TotalAmount:   money(1000),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	item := &models.OrderItem{
		OrderID:    order.ID,
		ProductID:  productID,
		Quantity:   1,
		UnitPrice:  money(1000),
		TotalPrice: money(1000),
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create order item failed: %v", err)
	}
	return order
}

func TestCreateReviewRequiresPaidOrder(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestReviewService(db)
	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "REV-1", 1000, 5)

	_, err := svc.CreateReview(user.ID, product.ID, ReviewInput{Rating: 5, Comment: "great"})
	if !errors.Is(err, ErrReviewNotEligible) {
		t.Fatalf("no paid order want ErrReviewNotEligible got %v", err)
	}

	createPaidOrderForProduct(t, db, user.ID, product.ID)
	review, err := svc.CreateReview(user.ID, product.ID, ReviewInput{Rating: 4, Title: "Solid", Comment: "works well"})
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}
	if review.Status != constants.ReviewStatusPending {
		t.Fatalf("new review status want pending got %s", review.Status)
	}

	if _, err := svc.CreateReview(user.ID, product.ID, ReviewInput{Rating: 5}); !errors.Is(err, ErrReviewExists) {
		t.Fatalf("duplicate review want ErrReviewExists got %v", err)
	}
}

func TestCreateReviewValidatesRating(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestReviewService(db)
	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "REV-2", 1000, 5)

	for _, rating := range []int{0, 6, -1} {
		if _, err := svc.CreateReview(user.ID, product.ID, ReviewInput{Rating: rating}); !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("rating %d want ErrInvalidRating got %v", rating, err)
		}
	}
}

func TestModerateReviewControlsVisibility(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestReviewService(db)
	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "REV-3", 1000, 5)
	createPaidOrderForProduct(t, db, user.ID, product.ID)

	review, err := svc.CreateReview(user.ID, product.ID, ReviewInput{Rating: 5, Comment: "excellent"})
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}

	visible, total, err := svc.ListProductReviews(product.ID, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 0 || len(visible) != 0 {
		t.Fatalf("pending review must not be public, got %d", total)
	}

	approved, err := svc.Moderate(review.ID, true)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.ReviewStatusApproved {
		t.Fatalf("status want approved got %s", approved.Status)
	}

	visible, total, err = svc.ListProductReviews(product.ID, 1, 10)
	if err != nil {
		t.Fatalf("list after approve failed: %v", err)
	}
	if total != 1 || len(visible) != 1 {
		t.Fatalf("approved review should be public, got %d", total)
	}

	rejected, err := svc.Moderate(review.ID, false)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.ReviewStatusRejected {
		t.Fatalf("status want rejected got %s", rejected.Status)
	}

	if _, err := svc.Moderate(9999, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing review want ErrNotFound got %v", err)
	}
}
