package service

import (
	"errors"
	"testing"

	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newTestCartService(db *gorm.DB) *CartService {
	return NewCartService(
		repository.NewCartRepository(db),
		repository.NewProductRepository(db),
	)
}

func TestCartAddAndMergeLines(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestCartService(db)
	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "CART-1", 500, 10)

	if err := svc.AddItem(user.ID, product.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.AddItem(user.ID, product.ID, 3); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	summary, err := svc.GetCart(user.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(summary.Items) != 1 {
		t.Fatalf("lines want 1 got %d", len(summary.Items))
	}
	if summary.Items[0].Quantity != 5 {
		t.Fatalf("merged quantity want 5 got %d", summary.Items[0].Quantity)
	}
	if !summary.Subtotal.Decimal.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("subtotal want 2500 got %s", summary.Subtotal)
	}
}

func TestCartAddRejectsOverStock(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestCartService(db)
	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "CART-2", 500, 3)

	if err := svc.AddItem(user.ID, product.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.AddItem(user.ID, product.ID, 2); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("over-stock add want ErrInsufficientStock got %v", err)
	}
	if err := svc.AddItem(user.ID, product.ID, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("zero add want ErrInvalidQuantity got %v", err)
	}
}

func TestCartUpdateZeroRemovesLine(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestCartService(db)
	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "CART-3", 500, 10)

	if err := svc.AddItem(user.ID, product.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.UpdateItem(user.ID, product.ID, 0); err != nil {
		t.Fatalf("zero update failed: %v", err)
	}

	summary, err := svc.GetCart(user.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(summary.Items) != 0 {
		t.Fatalf("cart should be empty, got %d lines", len(summary.Items))
	}

	if err := svc.UpdateItem(user.ID, product.ID, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update on missing line want ErrNotFound got %v", err)
	}
}

func TestCartDropsInactiveProducts(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestCartService(db)
	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "CART-4", 500, 10)

	if err := svc.AddItem(user.ID, product.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	summary, err := svc.GetCart(user.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(summary.Items) != 0 {
		t.Fatalf("inactive product should be dropped, got %d lines", len(summary.Items))
	}

	var count int64
	db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 0 {
		t.Fatalf("dropped line should be deleted, got %d rows", count)
	}
}

func TestCartAddInactiveProduct(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestCartService(db)
	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "CART-5", 500, 10)
	db.Model(&models.Product{}).Where("id = ?", product.ID).Update("is_active", false)

	if err := svc.AddItem(user.ID, product.ID, 1); !errors.Is(err, ErrProductInactive) {
		t.Fatalf("want ErrProductInactive got %v", err)
	}
}

func TestCartClear(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestCartService(db)
	user := createTestUser(t, db, "buyer@example.co.ke")
	first := createTestProduct(t, db, "CART-6", 500, 10)
	second := createTestProduct(t, db, "CART-7", 800, 10)

	if err := svc.AddItem(user.ID, first.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.AddItem(user.ID, second.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.Clear(user.ID); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	summary, err := svc.GetCart(user.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(summary.Items) != 0 {
		t.Fatalf("cart should be empty after clear")
	}
}
