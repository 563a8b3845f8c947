package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// setupServiceDB opens a fresh in-memory database, points the package
// global at it and migrates the schema.
func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	previous := models.DB
	models.DB = db
	t.Cleanup(func() {
		models.DB = previous
	})
	if err := models.AutoMigrate(); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "x",
		FirstName:    "Wanjiku",
		LastName:     "Kamau",
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createTestProduct(t *testing.T, db *gorm.DB, sku string, price int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		SKU:               sku,
		Name:              "Product " + sku,
		Price:             models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		StockQuantity:     stock,
		LowStockThreshold: 5,
		IsActive:          true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func createTestAddress(t *testing.T, db *gorm.DB, userID uint, isDefault bool) *models.Address {
	t.Helper()
	address := &models.Address{
		UserID:    userID,
		FullName:  "Wanjiku Kamau",
		Phone:     "254712345678",
		Line1:     "Moi Avenue 12",
		City:      "Nairobi",
		County:    "Nairobi",
		Country:   "KE",
		IsDefault: isDefault,
	}
	if err := db.Create(address).Error; err != nil {
		t.Fatalf("create address failed: %v", err)
	}
	return address
}

func addCartLine(t *testing.T, db *gorm.DB, userID, productID uint, quantity int, price int64) {
	t.Helper()
	item := &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}
}

func newTestOrderService(db *gorm.DB) *OrderService {
	couponRepo := repository.NewCouponRepository(db)
	usageRepo := repository.NewCouponUsageRepository(db)
	return NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		repository.NewCartRepository(db),
		repository.NewAddressRepository(db),
		repository.NewInventoryLogRepository(db),
		couponRepo,
		usageRepo,
		repository.NewShipmentRepository(db),
		NewCouponService(couponRepo, usageRepo),
		NewSettingService(repository.NewSettingRepository(db)),
		nil,
		nil,
	)
}

func createTestCoupon(t *testing.T, db *gorm.DB, coupon *models.Coupon) *models.Coupon {
	t.Helper()
	if coupon.Type == "" {
		coupon.Type = constants.CouponTypeFixed
	}
	if err := db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	return coupon
}

func timePtr(value time.Time) *time.Time {
	return &value
}
