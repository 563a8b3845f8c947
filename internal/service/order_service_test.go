package service

import (
	"errors"
	"regexp"
	"testing"

	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestCheckoutComputesTotals(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestOrderService(db)

	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "PH-TEST-1", 1000, 10)
	createTestAddress(t, db, user.ID, true)
	addCartLine(t, db, user.ID, product.ID, 2, 1000)

	order, err := svc.Checkout(CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: constants.PaymentMethodMpesa,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if !order.SubtotalAmount.Decimal.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("subtotal want 2000 got %s", order.SubtotalAmount)
	}
	// 16% VAT on 2000.
	if !order.TaxAmount.Decimal.Equal(decimal.NewFromInt(320)) {
		t.Fatalf("tax want 320 got %s", order.TaxAmount)
	}
	if !order.ShippingAmount.Decimal.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("shipping want 300 got %s", order.ShippingAmount)
	}
	if !order.TotalAmount.Decimal.Equal(decimal.NewFromInt(2620)) {
		t.Fatalf("total want 2620 got %s", order.TotalAmount)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("status want pending got %s", order.Status)
	}
	if order.Currency != "KES" {
		t.Fatalf("currency want KES got %s", order.Currency)
	}
	if len(order.Items) != 1 {
		t.Fatalf("items want 1 got %d", len(order.Items))
	}

	var updated models.Product
	if err := db.First(&updated, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if updated.StockQuantity != 8 {
		t.Fatalf("stock after checkout want 8 got %d", updated.StockQuantity)
	}

	var cartCount int64
	db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&cartCount)
	if cartCount != 0 {
		t.Fatalf("cart should be cleared, got %d lines", cartCount)
	}

	var logCount int64
	db.Model(&models.InventoryLog{}).
		Where("product_id = ? AND reason = ?", product.ID, constants.InventoryReasonSale).
		Count(&logCount)
	if logCount != 1 {
		t.Fatalf("sale ledger entry want 1 got %d", logCount)
	}
}

func TestCheckoutFreeShippingOverThreshold(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestOrderService(db)

	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "TV-TEST-1", 6000, 3)
	createTestAddress(t, db, user.ID, true)
	addCartLine(t, db, user.ID, product.ID, 1, 6000)

	order, err := svc.Checkout(CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: constants.PaymentMethodCOD,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if !order.ShippingAmount.Decimal.IsZero() {
		t.Fatalf("shipping over threshold want 0 got %s", order.ShippingAmount)
	}
}

func TestCheckoutAppliesCoupon(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestOrderService(db)

	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "PH-TEST-2", 1500, 5)
	createTestAddress(t, db, user.ID, true)
	addCartLine(t, db, user.ID, product.ID, 2, 1500)
	coupon := createTestCoupon(t, db, &models.Coupon{
		Code:      "KARIBU200",
		Type:      constants.CouponTypeFixed,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
		MinAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(2000)),
		IsActive:  true,
	})

	order, err := svc.Checkout(CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: constants.PaymentMethodMpesa,
		CouponCode:    "karibu200",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if !order.DiscountAmount.Decimal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("discount want 200 got %s", order.DiscountAmount)
	}
	// 3000 + 480 tax + 300 shipping - 200 discount.
	if !order.TotalAmount.Decimal.Equal(decimal.NewFromInt(3580)) {
		t.Fatalf("total want 3580 got %s", order.TotalAmount)
	}
	if order.CouponID == nil || *order.CouponID != coupon.ID {
		t.Fatalf("order should reference the coupon")
	}

	var reloaded models.Coupon
	if err := db.First(&reloaded, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloaded.UsedCount != 1 {
		t.Fatalf("coupon used count want 1 got %d", reloaded.UsedCount)
	}
	var usageCount int64
	db.Model(&models.CouponUsage{}).Where("order_id = ?", order.ID).Count(&usageCount)
	if usageCount != 1 {
		t.Fatalf("coupon usage row want 1 got %d", usageCount)
	}
}

func TestCheckoutInsufficientStock(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestOrderService(db)

	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "PH-TEST-3", 1000, 1)
	createTestAddress(t, db, user.ID, true)
	addCartLine(t, db, user.ID, product.ID, 3, 1000)

	_, err := svc.Checkout(CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: constants.PaymentMethodMpesa,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock got %v", err)
	}

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	if orderCount != 0 {
		t.Fatalf("no order should survive a failed checkout, got %d", orderCount)
	}
	var updated models.Product
	db.First(&updated, product.ID)
	if updated.StockQuantity != 1 {
		t.Fatalf("stock should be untouched, got %d", updated.StockQuantity)
	}
}

// exhaustedProductRepo lets the first stock decrement through and reports
// zero rows for every later one, as if another checkout drained the stock
// mid-transaction.
type exhaustedProductRepo struct {
	repository.ProductRepository
	decrements *int
}

func (r exhaustedProductRepo) WithTx(tx *gorm.DB) repository.ProductRepository {
	return exhaustedProductRepo{
		ProductRepository: r.ProductRepository.WithTx(tx),
		decrements:        r.decrements,
	}
}

func (r exhaustedProductRepo) DecrementStock(productID uint, quantity int) (int64, error) {
	*r.decrements++
	if *r.decrements > 1 {
		return 0, nil
	}
	return r.ProductRepository.DecrementStock(productID, quantity)
}

func TestCheckoutRollsBackOnLateStockShortfall(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestOrderService(db)
	decrements := 0
	svc.productRepo = exhaustedProductRepo{
		ProductRepository: repository.NewProductRepository(db),
		decrements:        &decrements,
	}

	user := createTestUser(t, db, "buyer@example.co.ke")
	phone := createTestProduct(t, db, "PH-TEST-11", 1000, 5)
	charger := createTestProduct(t, db, "AC-TEST-11", 2000, 5)
	createTestAddress(t, db, user.ID, true)
	addCartLine(t, db, user.ID, phone.ID, 1, 1000)
	addCartLine(t, db, user.ID, charger.ID, 2, 2000)

	_, err := svc.Checkout(CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: constants.PaymentMethodMpesa,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock got %v", err)
	}
	if decrements != 2 {
		t.Fatalf("decrement attempts want 2 got %d", decrements)
	}

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	if orderCount != 0 {
		t.Fatalf("no order should survive the rollback, got %d", orderCount)
	}
	for _, product := range []*models.Product{phone, charger} {
		var reloaded models.Product
		db.First(&reloaded, product.ID)
		if reloaded.StockQuantity != 5 {
			t.Fatalf("%s stock want 5 got %d", product.SKU, reloaded.StockQuantity)
		}
	}
	var cartCount int64
	db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&cartCount)
	if cartCount != 2 {
		t.Fatalf("cart must survive a failed checkout, got %d lines", cartCount)
	}
	var logCount int64
	db.Model(&models.InventoryLog{}).Count(&logCount)
	if logCount != 0 {
		t.Fatalf("no ledger entry should survive the rollback, got %d", logCount)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestOrderService(db)
	user := createTestUser(t, db, "buyer@example.co.ke")
	createTestAddress(t, db, user.ID, true)

	_, err := svc.Checkout(CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: constants.PaymentMethodMpesa,
	})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("want ErrEmptyCart got %v", err)
	}
}

func TestCheckoutRejectsUnknownPaymentMethod(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestOrderService(db)
	user := createTestUser(t, db, "buyer@example.co.ke")

	_, err := svc.Checkout(CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: "barter",
	})
	if !errors.Is(err, ErrPaymentMethodDisabled) {
		t.Fatalf("want ErrPaymentMethodDisabled got %v", err)
	}
}

func TestCheckoutMissingAddress(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestOrderService(db)
	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "PH-TEST-4", 1000, 5)
	addCartLine(t, db, user.ID, product.ID, 1, 1000)

	_, err := svc.Checkout(CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: constants.PaymentMethodMpesa,
	})
	if !errors.Is(err, ErrAddressNotFound) {
		t.Fatalf("want ErrAddressNotFound got %v", err)
	}
}

func TestCancelOrderRestoresStock(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestOrderService(db)

	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "PH-TEST-5", 1000, 4)
	createTestAddress(t, db, user.ID, true)
	addCartLine(t, db, user.ID, product.ID, 3, 1000)

	order, err := svc.Checkout(CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: constants.PaymentMethodMpesa,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	cancelled, err := svc.CancelOrder(order.ID, user.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled {
		t.Fatalf("status want cancelled got %s", cancelled.Status)
	}
	if cancelled.CancelledAt == nil {
		t.Fatalf("cancelled_at should be set")
	}

	var updated models.Product
	db.First(&updated, product.ID)
	if updated.StockQuantity != 4 {
		t.Fatalf("stock after cancel want 4 got %d", updated.StockQuantity)
	}

	if _, err := svc.CancelOrder(order.ID, user.ID); !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("second cancel want ErrOrderNotCancellable got %v", err)
	}
	db.First(&updated, product.ID)
	if updated.StockQuantity != 4 {
		t.Fatalf("stock must not be restored twice, got %d", updated.StockQuantity)
	}
}

func TestCancelOrderStaleSnapshotLosesRace(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestOrderService(db)

	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "PH-TEST-10", 1000, 10)
	createTestAddress(t, db, user.ID, true)
	addCartLine(t, db, user.ID, product.ID, 3, 1000)

	order, err := svc.Checkout(CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: constants.PaymentMethodMpesa,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	// Two callers (user cancel vs timeout worker) load the same pending
	// snapshot before either commits.
	repo := repository.NewOrderRepository(db)
	first, err := repo.GetByID(order.ID)
	if err != nil || first == nil {
		t.Fatalf("load first snapshot failed: %v", err)
	}
	second, err := repo.GetByID(order.ID)
	if err != nil || second == nil {
		t.Fatalf("load second snapshot failed: %v", err)
	}

	if err := svc.cancelOrder(first); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	if err := svc.cancelOrder(second); !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("stale snapshot cancel want ErrOrderNotCancellable got %v", err)
	}

	var updated models.Product
	db.First(&updated, product.ID)
	if updated.StockQuantity != 10 {
		t.Fatalf("stock must be restored exactly once, want 10 got %d", updated.StockQuantity)
	}
	var logCount int64
	db.Model(&models.InventoryLog{}).
		Where("product_id = ? AND reason = ?", product.ID, constants.InventoryReasonCancel).
		Count(&logCount)
	if logCount != 1 {
		t.Fatalf("cancel ledger entry want 1 got %d", logCount)
	}
}

func TestCancelExpiredOrderSkipsPaid(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestOrderService(db)

	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "PH-TEST-6", 1000, 4)
	createTestAddress(t, db, user.ID, true)
	addCartLine(t, db, user.ID, product.ID, 1, 1000)

	order, err := svc.Checkout(CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: constants.PaymentMethodMpesa,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"payment_status": constants.OrderPaymentStatusPaid,
			"status":         constants.OrderStatusConfirmed,
		}).Error; err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	result, err := svc.CancelExpiredOrder(order.ID)
	if err != nil {
		t.Fatalf("cancel expired failed: %v", err)
	}
	if result.Status == constants.OrderStatusCancelled {
		t.Fatalf("paid order must not be timeout-cancelled")
	}
}

func TestOrderStatusMachine(t *testing.T) {
	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{from: constants.OrderStatusPending, to: constants.OrderStatusConfirmed, allowed: true},
		{from: constants.OrderStatusPending, to: constants.OrderStatusCancelled, allowed: true},
		{from: constants.OrderStatusPending, to: constants.OrderStatusShipped, allowed: false},
		{from: constants.OrderStatusConfirmed, to: constants.OrderStatusProcessing, allowed: true},
		{from: constants.OrderStatusConfirmed, to: constants.OrderStatusCancelled, allowed: true},
		{from: constants.OrderStatusProcessing, to: constants.OrderStatusShipped, allowed: true},
		{from: constants.OrderStatusProcessing, to: constants.OrderStatusCancelled, allowed: false},
		{from: constants.OrderStatusShipped, to: constants.OrderStatusDelivered, allowed: true},
		{from: constants.OrderStatusShipped, to: constants.OrderStatusCancelled, allowed: false},
		{from: constants.OrderStatusDelivered, to: constants.OrderStatusShipped, allowed: false},
		{from: constants.OrderStatusCancelled, to: constants.OrderStatusPending, allowed: false},
	}
	for _, tc := range cases {
		if got := isTransitionAllowed(tc.from, tc.to); got != tc.allowed {
			t.Fatalf("%s -> %s: want %v got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestUpdateOrderStatusRejectsInvalidTransition(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestOrderService(db)

	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "PH-TEST-7", 1000, 4)
	createTestAddress(t, db, user.ID, true)
	addCartLine(t, db, user.ID, product.ID, 1, 1000)

	order, err := svc.Checkout(CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: constants.PaymentMethodMpesa,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if _, err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusShipped); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("pending->shipped want ErrInvalidStatusTransition got %v", err)
	}

	confirmed, err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("pending->confirmed failed: %v", err)
	}
	if confirmed.Status != constants.OrderStatusConfirmed {
		t.Fatalf("status want confirmed got %s", confirmed.Status)
	}
}

func TestShipOrderRequiresProcessing(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestOrderService(db)

	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "PH-TEST-8", 1000, 4)
	createTestAddress(t, db, user.ID, true)
	addCartLine(t, db, user.ID, product.ID, 1, 1000)

	order, err := svc.Checkout(CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: constants.PaymentMethodMpesa,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if _, err := svc.ShipOrder(order.ID, "G4S", "TRK-001", 1); !errors.Is(err, ErrOrderNotShippable) {
		t.Fatalf("pending ship want ErrOrderNotShippable got %v", err)
	}

	if _, err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusConfirmed); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusProcessing); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	shipped, err := svc.ShipOrder(order.ID, "G4S", "TRK-001", 7)
	if err != nil {
		t.Fatalf("ship failed: %v", err)
	}
	if shipped.Status != constants.OrderStatusShipped {
		t.Fatalf("status want shipped got %s", shipped.Status)
	}
	if shipped.Shipment == nil || shipped.Shipment.TrackingNumber != "TRK-001" {
		t.Fatalf("shipment should carry the tracking number")
	}

	delivered, err := svc.MarkDelivered(order.ID)
	if err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
	if delivered.Status != constants.OrderStatusDelivered {
		t.Fatalf("status want delivered got %s", delivered.Status)
	}
	if delivered.Shipment == nil || delivered.Shipment.DeliveredAt == nil {
		t.Fatalf("shipment should record delivery time")
	}
}

func TestTrackOrderTimeline(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestOrderService(db)

	user := createTestUser(t, db, "buyer@example.co.ke")
	product := createTestProduct(t, db, "PH-TEST-9", 1000, 4)
	createTestAddress(t, db, user.ID, true)
	addCartLine(t, db, user.ID, product.ID, 1, 1000)

	order, err := svc.Checkout(CheckoutInput{
		UserID:        user.ID,
		PaymentMethod: constants.PaymentMethodMpesa,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	_, events, err := svc.TrackOrder(order.ID, user.ID)
	if err != nil {
		t.Fatalf("track failed: %v", err)
	}
	if len(events) != 1 || events[0].Status != constants.OrderStatusPending {
		t.Fatalf("pending order timeline want [pending] got %+v", events)
	}

	if _, err := svc.CancelOrder(order.ID, user.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	_, events, err = svc.TrackOrder(order.ID, user.ID)
	if err != nil {
		t.Fatalf("track cancelled failed: %v", err)
	}
	if len(events) != 2 || events[1].Status != constants.OrderStatusCancelled {
		t.Fatalf("cancelled timeline want pending,cancelled got %+v", events)
	}
}

func TestGenerateOrderNoFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD\d{14}\d{6}$`)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		orderNo := generateOrderNo()
		if !pattern.MatchString(orderNo) {
			t.Fatalf("order no format mismatch: %s", orderNo)
		}
		seen[orderNo] = true
	}
	if len(seen) < 2 {
		t.Fatalf("order numbers should vary, got %d unique of 20", len(seen))
	}
}
