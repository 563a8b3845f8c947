package service

import (
	"time"

	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"

	"github.com/shopspring/decimal"
)

// CartItemDetail is one cart line resolved against the live product.
type CartItemDetail struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice models.Money    `json:"unit_price"`
	LineTotal models.Money    `json:"line_total"`
	InStock   bool            `json:"in_stock"`
	Product   *models.Product `json:"product"`
}

// CartSummary is the whole cart with its running subtotal.
type CartSummary struct {
	Items    []CartItemDetail `json:"items"`
	Subtotal models.Money     `json:"subtotal"`
}

// CartService handles the shopping cart.
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService creates a cart service.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart returns the user's cart. Lines whose product vanished or went
// inactive are dropped on read.
func (s *CartService) GetCart(userID uint) (*CartSummary, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	summary := &CartSummary{Items: make([]CartItemDetail, 0, len(items))}
	subtotal := decimal.Zero
	for _, item := range items {
		product := item.Product
		if product == nil || product.ID == 0 {
			p, err := s.productRepo.GetByID(item.ProductID)
			if err != nil {
				return nil, err
			}
			product = p
		}
		if product == nil || !product.IsActive {
			_ = s.cartRepo.DeleteByUserAndProduct(userID, item.ProductID)
			continue
		}

		lineTotal := product.Price.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		subtotal = subtotal.Add(lineTotal)
		summary.Items = append(summary.Items, CartItemDetail{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			LineTotal: models.NewMoneyFromDecimal(lineTotal),
			InStock:   product.StockQuantity >= item.Quantity,
			Product:   product,
		})
	}
	summary.Subtotal = models.NewMoneyFromDecimal(subtotal.Round(2))
	return summary, nil
}

// AddItem adds a product to the cart. An existing line has the quantity
// added on top.
func (s *CartService) AddItem(userID, productID uint, quantity int) error {
	if userID == 0 || productID == 0 {
		return ErrNotFound
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	product, err := s.productRepo.GetActiveByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductInactive
	}

	existing, err := s.cartRepo.GetByUserAndProduct(userID, productID)
	if err != nil {
		return err
	}
	newQuantity := quantity
	if existing != nil {
		newQuantity += existing.Quantity
	}
	if product.StockQuantity < newQuantity {
		return ErrInsufficientStock
	}

	now := time.Now()
	item := &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  newQuantity,
		UnitPrice: product.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.cartRepo.Upsert(item)
}

// UpdateItem sets a cart line's quantity. Zero removes the line.
func (s *CartService) UpdateItem(userID, productID uint, quantity int) error {
	if userID == 0 || productID == 0 {
		return ErrNotFound
	}
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.cartRepo.DeleteByUserAndProduct(userID, productID)
	}

	product, err := s.productRepo.GetActiveByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductInactive
	}
	if product.StockQuantity < quantity {
		return ErrInsufficientStock
	}

	existing, err := s.cartRepo.GetByUserAndProduct(userID, productID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}

	now := time.Now()
	item := &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: product.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.cartRepo.Upsert(item)
}

// RemoveItem drops one cart line.
func (s *CartService) RemoveItem(userID, productID uint) error {
	if userID == 0 || productID == 0 {
		return ErrNotFound
	}
	return s.cartRepo.DeleteByUserAndProduct(userID, productID)
}

// Clear empties the cart.
func (s *CartService) Clear(userID uint) error {
	if userID == 0 {
		return ErrNotFound
	}
	return s.cartRepo.ClearByUser(userID)
}
