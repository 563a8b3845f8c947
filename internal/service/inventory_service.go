package service

import (
	"strings"

	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/logger"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"

	"gorm.io/gorm"
)

// InventoryService handles manual stock adjustments and the movement ledger.
type InventoryService struct {
	productRepo repository.ProductRepository
	logRepo     repository.InventoryLogRepository
	cache       *CatalogCache
}

// NewInventoryService creates an inventory service.
func NewInventoryService(productRepo repository.ProductRepository, logRepo repository.InventoryLogRepository, cache *CatalogCache) *InventoryService {
	return &InventoryService{
		productRepo: productRepo,
		logRepo:     logRepo,
		cache:       cache,
	}
}

// AdjustInput is an admin stock adjustment.
type AdjustInput struct {
	ProductID uint
	Delta     int
	Reason    string
	ActorID   uint
	Note      string
}

// Adjust applies a signed stock change and appends a ledger entry. Negative
// deltas never take stock below zero.
func (s *InventoryService) Adjust(input AdjustInput) (*models.InventoryLog, error) {
	if input.ProductID == 0 {
		return nil, ErrNotFound
	}
	if input.Delta == 0 {
		return nil, ErrInvalidQuantity
	}
	reason := strings.ToLower(strings.TrimSpace(input.Reason))
	switch reason {
	case constants.InventoryReasonAdminAdjust, constants.InventoryReasonRestock:
	case "":
		reason = constants.InventoryReasonAdminAdjust
	default:
		return nil, ErrInvalidQuantity
	}

	var entry *models.InventoryLog
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		logRepo := s.logRepo.WithTx(tx)

		product, err := productRepo.GetByID(input.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrNotFound
		}

		if input.Delta > 0 {
			if _, err := productRepo.IncrementStock(product.ID, input.Delta); err != nil {
				return err
			}
		} else {
			affected, err := productRepo.DecrementStock(product.ID, -input.Delta)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrInsufficientStock
			}
		}

		actorID := input.ActorID
		entry = &models.InventoryLog{
			ProductID:  product.ID,
			Delta:      input.Delta,
			StockAfter: product.StockQuantity + input.Delta,
			Reason:     reason,
			Note:       strings.TrimSpace(input.Note),
		}
		if actorID != 0 {
			entry.ActorID = &actorID
		}
		return logRepo.Create(entry)
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.InvalidateProduct(input.ProductID)
	}
	logger.Infow("inventory_adjusted",
		"product_id", input.ProductID,
		"delta", input.Delta,
		"reason", reason,
		"actor_id", input.ActorID,
	)
	return entry, nil
}

// ListLogs lists stock movements for the admin panel.
func (s *InventoryService) ListLogs(filter repository.InventoryLogListFilter) ([]models.InventoryLog, int64, error) {
	return s.logRepo.List(filter)
}

// ListLowStock lists products at or below their low stock threshold.
func (s *InventoryService) ListLowStock(limit int) ([]models.Product, error) {
	return s.productRepo.ListLowStock(limit)
}
