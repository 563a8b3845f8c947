package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/logger"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/queue"
	"github.com/fixmore/mall/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService handles checkout and the order lifecycle.
type OrderService struct {
	orderRepo      repository.OrderRepository
	productRepo    repository.ProductRepository
	cartRepo       repository.CartRepository
	addressRepo    repository.AddressRepository
	inventoryRepo  repository.InventoryLogRepository
	couponRepo     repository.CouponRepository
	usageRepo      repository.CouponUsageRepository
	shipmentRepo   repository.ShipmentRepository
	couponService  *CouponService
	settingService *SettingService
	queueClient    *queue.Client
	cache          *CatalogCache
}

// NewOrderService creates an order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	addressRepo repository.AddressRepository,
	inventoryRepo repository.InventoryLogRepository,
	couponRepo repository.CouponRepository,
	usageRepo repository.CouponUsageRepository,
	shipmentRepo repository.ShipmentRepository,
	couponService *CouponService,
	settingService *SettingService,
	queueClient *queue.Client,
	cache *CatalogCache,
) *OrderService {
	return &OrderService{
		orderRepo:      orderRepo,
		productRepo:    productRepo,
		cartRepo:       cartRepo,
		addressRepo:    addressRepo,
		inventoryRepo:  inventoryRepo,
		couponRepo:     couponRepo,
		usageRepo:      usageRepo,
		shipmentRepo:   shipmentRepo,
		couponService:  couponService,
		settingService: settingService,
		queueClient:    queueClient,
		cache:          cache,
	}
}

// CheckoutInput is the checkout payload.
type CheckoutInput struct {
	UserID            uint
	ShippingAddressID uint
	BillingAddressID  uint
	PaymentMethod     string
	CouponCode        string
	Notes             string
	ClientIP          string
}

var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusConfirmed: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusShipped: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
	},
}

// Checkout turns the user's cart into an order inside one transaction.
// Stock is decremented per line with a guarded update; any shortfall rolls
// the whole order back.
func (s *OrderService) Checkout(input CheckoutInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, ErrNotFound
	}

	method := strings.ToLower(strings.TrimSpace(input.PaymentMethod))
	switch method {
	case constants.PaymentMethodMpesa, constants.PaymentMethodStripe, constants.PaymentMethodCOD:
	default:
		return nil, ErrPaymentMethodDisabled
	}

	cartItems, err := s.cartRepo.ListByUser(input.UserID)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}

	shippingAddress, err := s.resolveAddress(input.UserID, input.ShippingAddressID)
	if err != nil {
		return nil, err
	}
	billingAddress := shippingAddress
	if input.BillingAddressID != 0 && input.BillingAddressID != input.ShippingAddressID {
		billingAddress, err = s.resolveAddress(input.UserID, input.BillingAddressID)
		if err != nil {
			return nil, err
		}
	}

	shopCfg, err := s.settingService.GetShopConfig()
	if err != nil {
		return nil, err
	}

	// Price against the live catalog, not the cart snapshot.
	orderItems := make([]models.OrderItem, 0, len(cartItems))
	subtotal := decimal.Zero
	for _, cartItem := range cartItems {
		product, err := s.productRepo.GetActiveByID(cartItem.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, ErrProductInactive
		}
		if cartItem.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if product.StockQuantity < cartItem.Quantity {
			return nil, ErrInsufficientStock
		}

		lineTotal := product.Price.Decimal.Mul(decimal.NewFromInt(int64(cartItem.Quantity))).Round(2)
		subtotal = subtotal.Add(lineTotal)
		orderItems = append(orderItems, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			SKU:         product.SKU,
			UnitPrice:   product.Price,
			Quantity:    cartItem.Quantity,
			TotalPrice:  models.NewMoneyFromDecimal(lineTotal),
		})
	}
	subtotal = subtotal.Round(2)

	discount := decimal.Zero
	var appliedCoupon *models.Coupon
	if strings.TrimSpace(input.CouponCode) != "" {
		discountMoney, coupon, err := s.couponService.ApplyCoupon(
			models.NewMoneyFromDecimal(subtotal), input.CouponCode, input.UserID)
		if err != nil {
			return nil, err
		}
		discount = discountMoney.Decimal.Round(2)
		appliedCoupon = coupon
	}

	tax := subtotal.Mul(shopCfg.VATRate).Round(2)
	shipping := shopCfg.ShippingFee.Round(2)
	if subtotal.GreaterThanOrEqual(shopCfg.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	total := subtotal.Add(tax).Add(shipping).Sub(discount).Round(2)
	if total.IsNegative() {
		total = decimal.Zero
	}

	orderNo, err := s.generateUniqueOrderNo()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &models.Order{
		OrderNo:             orderNo,
		UserID:              input.UserID,
		Status:              constants.OrderStatusPending,
		PaymentStatus:       constants.OrderPaymentStatusPending,
		PaymentMethod:       method,
		Currency:            shopCfg.Currency,
		SubtotalAmount:      models.NewMoneyFromDecimal(subtotal),
		TaxAmount:           models.NewMoneyFromDecimal(tax),
		ShippingAmount:      models.NewMoneyFromDecimal(shipping),
		DiscountAmount:      models.NewMoneyFromDecimal(discount),
		TotalAmount:         models.NewMoneyFromDecimal(total),
		ShippingAddressJSON: shippingAddress.Snapshot(),
		BillingAddressJSON:  billingAddress.Snapshot(),
		Notes:               strings.TrimSpace(input.Notes),
		ClientIP:            strings.TrimSpace(input.ClientIP),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if appliedCoupon != nil {
		order.CouponID = &appliedCoupon.ID
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		inventoryRepo := s.inventoryRepo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)

		if err := orderRepo.Create(order, orderItems); err != nil {
			return err
		}

		for _, item := range orderItems {
			affected, err := productRepo.DecrementStock(item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrInsufficientStock
			}
			product, err := productRepo.GetByID(item.ProductID)
			if err != nil {
				return err
			}
			stockAfter := 0
			if product != nil {
				stockAfter = product.StockQuantity
			}
			if err := inventoryRepo.Create(&models.InventoryLog{
				ProductID:  item.ProductID,
				Delta:      -item.Quantity,
				StockAfter: stockAfter,
				Reason:     constants.InventoryReasonSale,
				OrderID:    &order.ID,
				CreatedAt:  now,
			}); err != nil {
				return err
			}
		}

		if appliedCoupon != nil {
			if err := s.usageRepo.WithTx(tx).Create(&models.CouponUsage{
				CouponID:       appliedCoupon.ID,
				UserID:         input.UserID,
				OrderID:        order.ID,
				DiscountAmount: models.NewMoneyFromDecimal(discount),
				CreatedAt:      now,
			}); err != nil {
				return err
			}
			if err := s.couponRepo.WithTx(tx).IncrementUsedCount(appliedCoupon.ID, 1); err != nil {
				return err
			}
		}

		return cartRepo.ClearByUser(input.UserID)
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return nil, ErrInsufficientStock
		}
		logger.Errorw("order_checkout_failed",
			"user_id", input.UserID,
			"order_no", orderNo,
			"error", err,
		)
		return nil, err
	}

	s.cache.InvalidateProducts()
	s.enqueuePostCheckout(order, shopCfg.PaymentExpireMinutes)

	full, err := s.orderRepo.GetByID(order.ID)
	if err == nil && full != nil {
		return full, nil
	}
	return order, nil
}

func (s *OrderService) enqueuePostCheckout(order *models.Order, expireMinutes int) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	if err := s.queueClient.EnqueueOrderConfirmEmail(queue.OrderEmailPayload{
		OrderID: order.ID,
	}); err != nil {
		logger.Errorw("order_enqueue_confirm_email_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}
	if expireMinutes <= 0 {
		expireMinutes = 30
	}
	if err := s.queueClient.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{
		OrderID: order.ID,
	}, time.Duration(expireMinutes)*time.Minute); err != nil {
		logger.Errorw("order_enqueue_timeout_cancel_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}
}

func (s *OrderService) resolveAddress(userID, addressID uint) (*models.Address, error) {
	if addressID != 0 {
		address, err := s.addressRepo.GetByIDAndUser(addressID, userID)
		if err != nil {
			return nil, err
		}
		if address == nil {
			return nil, ErrAddressNotFound
		}
		return address, nil
	}
	address, err := s.addressRepo.GetDefaultByUser(userID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}
	return address, nil
}

// CancelOrder cancels one of the user's orders and restores its stock.
// Only pending and confirmed orders qualify.
func (s *OrderService) CancelOrder(orderID, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	if err := s.cancelOrder(order); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(order.ID)
}

// CancelExpiredOrder cancels an order whose payment window lapsed. Invoked
// by the queue worker; a paid or already cancelled order is left alone.
func (s *OrderService) CancelExpiredOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	if order.PaymentStatus == constants.OrderPaymentStatusPaid {
		return order, nil
	}
	if order.Status == constants.OrderStatusCancelled {
		return order, nil
	}
	if order.Status != constants.OrderStatusPending {
		return order, nil
	}
	if err := s.cancelOrder(order); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(order.ID)
}

func (s *OrderService) cancelOrder(order *models.Order) error {
	if order.Status != constants.OrderStatusPending && order.Status != constants.OrderStatusConfirmed {
		return ErrOrderNotCancellable
	}
	if order.PaymentStatus == constants.OrderPaymentStatusPaid {
		return ErrOrderNotCancellable
	}

	now := time.Now()
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		inventoryRepo := s.inventoryRepo.WithTx(tx)

		// The guarded update is the authority; the checks above only give a
		// fast error. A concurrent cancel (user racing the timeout worker)
		// that loaded the same snapshot loses here and restores nothing.
		affected, err := orderRepo.MarkCancelled(order.ID, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrOrderNotCancellable
		}

		for _, item := range order.Items {
			if _, err := productRepo.IncrementStock(item.ProductID, item.Quantity); err != nil {
				return err
			}
			product, err := productRepo.GetByID(item.ProductID)
			if err != nil {
				return err
			}
			stockAfter := 0
			if product != nil {
				stockAfter = product.StockQuantity
			}
			if err := inventoryRepo.Create(&models.InventoryLog{
				ProductID:  item.ProductID,
				Delta:      item.Quantity,
				StockAfter: stockAfter,
				Reason:     constants.InventoryReasonCancel,
				OrderID:    &order.ID,
				CreatedAt:  now,
			}); err != nil {
				return err
			}
		}

		if order.CouponID != nil {
			if err := s.usageRepo.WithTx(tx).DeleteByOrderID(order.ID); err != nil {
				return err
			}
			if err := s.couponRepo.WithTx(tx).DecrementUsedCount(*order.CouponID, 1); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateProducts()
	logger.Infow("order_cancelled",
		"order_id", order.ID,
		"order_no", order.OrderNo,
	)
	return nil
}

// UpdateOrderStatus moves an order along the admin status machine.
func (s *OrderService) UpdateOrderStatus(orderID uint, targetStatus string) (*models.Order, error) {
	target := strings.ToLower(strings.TrimSpace(targetStatus))
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	if order.Status == target {
		return order, nil
	}
	if !isTransitionAllowed(order.Status, target) {
		return nil, ErrInvalidStatusTransition
	}

	if target == constants.OrderStatusCancelled {
		if err := s.cancelOrder(order); err != nil {
			return nil, err
		}
		return s.orderRepo.GetByID(order.ID)
	}

	now := time.Now()
	if err := s.orderRepo.UpdateStatus(order.ID, target, map[string]interface{}{
		"updated_at": now,
	}); err != nil {
		return nil, err
	}
	logger.Infow("order_status_updated",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"from", order.Status,
		"to", target,
	)
	return s.orderRepo.GetByID(order.ID)
}

// ShipOrder records the shipment and moves the order to shipped. The order
// must be processing.
func (s *OrderService) ShipOrder(orderID uint, courier, trackingNumber string, adminID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	if order.Status != constants.OrderStatusProcessing {
		return nil, ErrOrderNotShippable
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		shipment := &models.Shipment{
			OrderID:        order.ID,
			Courier:        strings.TrimSpace(courier),
			TrackingNumber: strings.TrimSpace(trackingNumber),
			ShippedAt:      &now,
		}
		if adminID != 0 {
			shipment.ShippedBy = &adminID
		}
		if err := s.shipmentRepo.WithTx(tx).Create(shipment); err != nil {
			return err
		}
		return s.orderRepo.WithTx(tx).UpdateStatus(order.ID, constants.OrderStatusShipped, map[string]interface{}{
			"updated_at": now,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(order.ID)
}

// MarkDelivered completes a shipped order's delivery.
func (s *OrderService) MarkDelivered(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	if order.Status != constants.OrderStatusShipped {
		return nil, ErrInvalidStatusTransition
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if order.Shipment != nil {
			shipment := order.Shipment
			shipment.DeliveredAt = &now
			if err := s.shipmentRepo.WithTx(tx).Update(shipment); err != nil {
				return err
			}
		}
		return s.orderRepo.WithTx(tx).UpdateStatus(order.ID, constants.OrderStatusDelivered, map[string]interface{}{
			"updated_at": now,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(order.ID)
}

// TrackingEvent is one step in the order timeline.
type TrackingEvent struct {
	Status     string     `json:"status"`
	OccurredAt *time.Time `json:"occurred_at"`
}

// TrackOrder synthesizes the order timeline from its timestamps.
func (s *OrderService) TrackOrder(orderID, userID uint) (*models.Order, []TrackingEvent, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, ErrNotFound
	}

	created := order.CreatedAt
	events := []TrackingEvent{
		{Status: constants.OrderStatusPending, OccurredAt: &created},
	}
	if order.Status == constants.OrderStatusCancelled {
		events = append(events, TrackingEvent{
			Status:     constants.OrderStatusCancelled,
			OccurredAt: order.CancelledAt,
		})
		return order, events, nil
	}

	if order.PaidAt != nil {
		events = append(events, TrackingEvent{
			Status:     constants.OrderStatusConfirmed,
			OccurredAt: order.PaidAt,
		})
	}
	switch order.Status {
	case constants.OrderStatusProcessing:
		events = append(events, TrackingEvent{Status: constants.OrderStatusProcessing})
	case constants.OrderStatusShipped, constants.OrderStatusDelivered:
		events = append(events, TrackingEvent{Status: constants.OrderStatusProcessing})
		var shippedAt *time.Time
		if order.Shipment != nil {
			shippedAt = order.Shipment.ShippedAt
		}
		events = append(events, TrackingEvent{Status: constants.OrderStatusShipped, OccurredAt: shippedAt})
		if order.Status == constants.OrderStatusDelivered {
			var deliveredAt *time.Time
			if order.Shipment != nil {
				deliveredAt = order.Shipment.DeliveredAt
			}
			events = append(events, TrackingEvent{Status: constants.OrderStatusDelivered, OccurredAt: deliveredAt})
		}
	}
	return order, events, nil
}

// GetOrderByUser fetches one of the user's orders.
func (s *OrderService) GetOrderByUser(orderID, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	return order, nil
}

// ListOrdersByUser lists the user's orders.
func (s *OrderService) ListOrdersByUser(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListByUser(filter)
}

// ListOrdersForAdmin lists orders for the admin panel.
func (s *OrderService) ListOrdersForAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// GetOrderForAdmin fetches any order.
func (s *OrderService) GetOrderForAdmin(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	return order, nil
}

func isTransitionAllowed(current, target string) bool {
	nexts, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

func (s *OrderService) generateUniqueOrderNo() (string, error) {
	for i := 0; i < 5; i++ {
		orderNo := generateOrderNo()
		count, err := s.orderRepo.CountByOrderNo(orderNo)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return orderNo, nil
		}
	}
	return "", fmt.Errorf("order number generation exhausted retries")
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("ORD%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
