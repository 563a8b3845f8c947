package service

import (
	"errors"
	"testing"

	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"

	"gorm.io/gorm"
)

func newTestInventoryService(db *gorm.DB) *InventoryService {
	return NewInventoryService(
		repository.NewProductRepository(db),
		repository.NewInventoryLogRepository(db),
		nil,
	)
}

func TestAdjustStockUpAndDown(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestInventoryService(db)
	product := createTestProduct(t, db, "INV-1", 1000, 10)

	entry, err := svc.Adjust(AdjustInput{ProductID: product.ID, Delta: 5, ActorID: 3, Note: "restock delivery"})
	if err != nil {
		t.Fatalf("positive adjust failed: %v", err)
	}
	if entry.StockAfter != 15 {
		t.Fatalf("stock_after want 15 got %d", entry.StockAfter)
	}
	if entry.Reason != constants.InventoryReasonAdminAdjust {
		t.Fatalf("default reason want admin_adjust got %s", entry.Reason)
	}
	if entry.ActorID == nil || *entry.ActorID != 3 {
		t.Fatalf("actor should be recorded")
	}

	entry, err = svc.Adjust(AdjustInput{ProductID: product.ID, Delta: -8, ActorID: 3})
	if err != nil {
		t.Fatalf("negative adjust failed: %v", err)
	}
	if entry.StockAfter != 7 {
		t.Fatalf("stock_after want 7 got %d", entry.StockAfter)
	}

	var updated models.Product
	db.First(&updated, product.ID)
	if updated.StockQuantity != 7 {
		t.Fatalf("product stock want 7 got %d", updated.StockQuantity)
	}
}

func TestAdjustStockNeverBelowZero(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestInventoryService(db)
	product := createTestProduct(t, db, "INV-2", 1000, 3)

	if _, err := svc.Adjust(AdjustInput{ProductID: product.ID, Delta: -5, ActorID: 1}); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock got %v", err)
	}

	var updated models.Product
	db.First(&updated, product.ID)
	if updated.StockQuantity != 3 {
		t.Fatalf("stock should be untouched, got %d", updated.StockQuantity)
	}
	var logCount int64
	db.Model(&models.InventoryLog{}).Where("product_id = ?", product.ID).Count(&logCount)
	if logCount != 0 {
		t.Fatalf("failed adjustment must not leave a ledger entry, got %d", logCount)
	}
}

func TestAdjustStockValidation(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestInventoryService(db)
	product := createTestProduct(t, db, "INV-3", 1000, 3)

	if _, err := svc.Adjust(AdjustInput{ProductID: product.ID, Delta: 0}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("zero delta want ErrInvalidQuantity got %v", err)
	}
	if _, err := svc.Adjust(AdjustInput{ProductID: product.ID, Delta: 1, Reason: "shrinkage"}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("unknown reason want ErrInvalidQuantity got %v", err)
	}
	if _, err := svc.Adjust(AdjustInput{ProductID: 9999, Delta: 1}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing product want ErrNotFound got %v", err)
	}
}

func TestListLogsFiltersByReason(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestInventoryService(db)
	product := createTestProduct(t, db, "INV-4", 1000, 10)

	if _, err := svc.Adjust(AdjustInput{ProductID: product.ID, Delta: 2, Reason: constants.InventoryReasonRestock}); err != nil {
		t.Fatalf("restock adjust failed: %v", err)
	}
	if _, err := svc.Adjust(AdjustInput{ProductID: product.ID, Delta: -1}); err != nil {
		t.Fatalf("admin adjust failed: %v", err)
	}

	logs, total, err := svc.ListLogs(repository.InventoryLogListFilter{
		ProductID: product.ID,
		Reason:    constants.InventoryReasonRestock,
		Page:      1,
		PageSize:  10,
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(logs) != 1 {
		t.Fatalf("restock entries want 1 got %d", total)
	}
	if logs[0].Delta != 2 {
		t.Fatalf("delta want 2 got %d", logs[0].Delta)
	}
}
