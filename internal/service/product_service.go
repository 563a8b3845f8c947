package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService handles catalog products.
type ProductService struct {
	repo       repository.ProductRepository
	reviewRepo repository.ReviewRepository
	cache      *CatalogCache
}

// NewProductService creates a product service.
func NewProductService(repo repository.ProductRepository, reviewRepo repository.ReviewRepository, cache *CatalogCache) *ProductService {
	return &ProductService{repo: repo, reviewRepo: reviewRepo, cache: cache}
}

// ProductInput is the create/update payload.
type ProductInput struct {
	CategoryID        *uint
	SKU               string
	Name              string
	Description       string
	Price             decimal.Decimal
	StockQuantity     *int
	LowStockThreshold *int
	Images            []string
	Tags              []string
	Specs             map[string]interface{}
	IsActive          *bool
	IsFeatured        *bool
	SortOrder         int
}

// ProductDetail is a product plus its approved review summary.
type ProductDetail struct {
	models.Product
	RatingAverage float64 `json:"rating_average"`
	RatingCount   int64   `json:"rating_count"`
}

// ProductPage is one cached listing page.
type ProductPage struct {
	Items []models.Product `json:"items"`
	Total int64            `json:"total"`
}

// ListPublic lists active products for the storefront, read through the
// cache.
func (s *ProductService) ListPublic(ctx context.Context, filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.OnlyActive = true
	filter.WithCategory = true

	key := publicListCacheKey(filter)
	var page ProductPage
	if s.cache.GetProductList(ctx, key, &page) {
		return page.Items, page.Total, nil
	}

	items, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	s.cache.SetProductList(ctx, key, ProductPage{Items: items, Total: total})
	return items, total, nil
}

// GetPublicByID fetches an active product with its rating summary.
func (s *ProductService) GetPublicByID(ctx context.Context, id uint) (*ProductDetail, error) {
	var detail ProductDetail
	if s.cache.GetProduct(ctx, id, &detail) {
		return &detail, nil
	}

	product, err := s.repo.GetActiveByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}

	avg, count, err := s.reviewRepo.ProductRatingSummary(id)
	if err != nil {
		return nil, err
	}

	detail = ProductDetail{
		Product:       *product,
		RatingAverage: avg,
		RatingCount:   count,
	}
	s.cache.SetProduct(ctx, id, detail)
	return &detail, nil
}

// ListAdmin lists all products for the admin panel.
func (s *ProductService) ListAdmin(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.OnlyActive = false
	filter.WithCategory = true
	return s.repo.List(filter)
}

// GetAdminByID fetches any product for the admin panel.
func (s *ProductService) GetAdminByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// ListLowStock lists active products at or below their restock threshold.
func (s *ProductService) ListLowStock() ([]models.Product, error) {
	return s.repo.ListLowStock(0)
}

// Create creates a product.
func (s *ProductService) Create(input ProductInput) (*models.Product, error) {
	sku := strings.ToUpper(strings.TrimSpace(input.SKU))
	name := strings.TrimSpace(input.Name)
	if sku == "" || name == "" || input.Price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrProductInactive
	}

	count, err := s.repo.CountBySKU(sku, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSKUExists
	}

	product := models.Product{
		CategoryID:  input.CategoryID,
		SKU:         sku,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Price:       models.NewMoneyFromDecimal(input.Price.Round(2)),
		Images:      models.StringArray(input.Images),
		Tags:        models.StringArray(input.Tags),
		SpecsJSON:   models.JSON(input.Specs),
		IsActive:    true,
		SortOrder:   input.SortOrder,
	}
	if input.StockQuantity != nil && *input.StockQuantity >= 0 {
		product.StockQuantity = *input.StockQuantity
	}
	if input.LowStockThreshold != nil && *input.LowStockThreshold >= 0 {
		product.LowStockThreshold = *input.LowStockThreshold
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}

	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}
	s.cache.InvalidateProducts()
	return &product, nil
}

// Update updates a product. Stock changes go through the inventory service,
// not here.
func (s *ProductService) Update(id uint, input ProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}

	sku := strings.ToUpper(strings.TrimSpace(input.SKU))
	if sku != "" && sku != product.SKU {
		count, err := s.repo.CountBySKU(sku, &id)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrSKUExists
		}
		product.SKU = sku
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		product.Name = name
	}
	product.Description = strings.TrimSpace(input.Description)
	if input.Price.GreaterThan(decimal.Zero) {
		product.Price = models.NewMoneyFromDecimal(input.Price.Round(2))
	}
	product.CategoryID = input.CategoryID
	product.Images = models.StringArray(input.Images)
	product.Tags = models.StringArray(input.Tags)
	product.SpecsJSON = models.JSON(input.Specs)
	product.SortOrder = input.SortOrder
	if input.LowStockThreshold != nil && *input.LowStockThreshold >= 0 {
		product.LowStockThreshold = *input.LowStockThreshold
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	s.cache.InvalidateProduct(id)
	return product, nil
}

// Delete soft-deletes a product.
func (s *ProductService) Delete(id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.cache.InvalidateProduct(id)
	return nil
}

func publicListCacheKey(filter repository.ProductListFilter) string {
	return fmt.Sprintf("c%d:n%s:s%s:f%t:p%d:z%d",
		filter.CategoryID,
		strings.ToLower(strings.TrimSpace(filter.CategoryName)),
		strings.ToLower(strings.TrimSpace(filter.Search)),
		filter.FeaturedOnly,
		filter.Page,
		filter.PageSize,
	)
}
