package service

import (
	"errors"
	"testing"
	"time"

	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newTestCouponService(db *gorm.DB) *CouponService {
	return NewCouponService(
		repository.NewCouponRepository(db),
		repository.NewCouponUsageRepository(db),
	)
}

func money(value int64) models.Money {
	return models.NewMoneyFromDecimal(decimal.NewFromInt(value))
}

func TestApplyCouponFixed(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestCouponService(db)
	createTestCoupon(t, db, &models.Coupon{
		Code:      "KARIBU200",
		Type:      constants.CouponTypeFixed,
		Value:     money(200),
		MinAmount: money(2000),
		IsActive:  true,
	})

	discount, coupon, err := svc.ApplyCoupon(money(2500), "KARIBU200", 1)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !discount.Decimal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("discount want 200 got %s", discount)
	}
	if coupon == nil || coupon.Code != "KARIBU200" {
		t.Fatalf("coupon should be returned")
	}
}

func TestApplyCouponPercentWithCap(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestCouponService(db)
	createTestCoupon(t, db, &models.Coupon{
		Code:        "SAVE10",
		Type:        constants.CouponTypePercent,
		Value:       money(10),
		MinAmount:   money(5000),
		MaxDiscount: money(1500),
		IsActive:    true,
	})

	discount, _, err := svc.ApplyCoupon(money(8000), "SAVE10", 1)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !discount.Decimal.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("10%% of 8000 want 800 got %s", discount)
	}

	discount, _, err = svc.ApplyCoupon(money(20000), "SAVE10", 1)
	if err != nil {
		t.Fatalf("apply capped failed: %v", err)
	}
	if !discount.Decimal.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("capped discount want 1500 got %s", discount)
	}
}

func TestApplyCouponDiscountNeverExceedsSubtotal(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestCouponService(db)
	createTestCoupon(t, db, &models.Coupon{
		Code:     "BIG",
		Type:     constants.CouponTypeFixed,
		Value:    money(5000),
		IsActive: true,
	})

	discount, _, err := svc.ApplyCoupon(money(1000), "BIG", 1)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !discount.Decimal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("discount clamp want 1000 got %s", discount)
	}
}

func TestApplyCouponMinNotMet(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestCouponService(db)
	createTestCoupon(t, db, &models.Coupon{
		Code:      "KARIBU200",
		Type:      constants.CouponTypeFixed,
		Value:     money(200),
		MinAmount: money(2000),
		IsActive:  true,
	})

	if _, _, err := svc.ApplyCoupon(money(1500), "KARIBU200", 1); !errors.Is(err, ErrCouponMinNotMet) {
		t.Fatalf("want ErrCouponMinNotMet got %v", err)
	}
}

func TestApplyCouponExpiredAndInactive(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestCouponService(db)
	createTestCoupon(t, db, &models.Coupon{
		Code:     "EXPIRED",
		Type:     constants.CouponTypeFixed,
		Value:    money(100),
		EndsAt:   timePtr(time.Now().Add(-time.Hour)),
		IsActive: true,
	})
	createTestCoupon(t, db, &models.Coupon{
		Code:     "NOTYET",
		Type:     constants.CouponTypeFixed,
		Value:    money(100),
		StartsAt: timePtr(time.Now().Add(time.Hour)),
		IsActive: true,
	})
	createTestCoupon(t, db, &models.Coupon{
		Code:     "OFF",
		Type:     constants.CouponTypeFixed,
		Value:    money(100),
		IsActive: false,
	})

	for _, code := range []string{"EXPIRED", "NOTYET", "OFF", "MISSING"} {
		if _, _, err := svc.ApplyCoupon(money(1000), code, 1); !errors.Is(err, ErrCouponInvalid) {
			t.Fatalf("%s: want ErrCouponInvalid got %v", code, err)
		}
	}
}

func TestCreateCouponInactivePersists(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestCouponService(db)

	inactive := false
	coupon, err := svc.Create(CouponInput{
		Code:     "paused50",
		Type:     constants.CouponTypeFixed,
		Value:    decimal.NewFromInt(50),
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if coupon.IsActive {
		t.Fatalf("coupon should be created inactive")
	}

	var reloaded models.Coupon
	if err := db.First(&reloaded, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloaded.IsActive {
		t.Fatalf("inactive flag must survive the round trip")
	}

	if _, _, err := svc.ApplyCoupon(money(1000), "PAUSED50", 1); !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("inactive coupon want ErrCouponInvalid got %v", err)
	}
}

func TestApplyCouponUsageLimits(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestCouponService(db)
	usedUp := createTestCoupon(t, db, &models.Coupon{
		Code:       "USEDUP",
		Type:       constants.CouponTypeFixed,
		Value:      money(100),
		UsageLimit: 2,
		UsedCount:  2,
		IsActive:   true,
	})
	_ = usedUp

	if _, _, err := svc.ApplyCoupon(money(1000), "USEDUP", 1); !errors.Is(err, ErrCouponUsedUp) {
		t.Fatalf("global limit want ErrCouponUsedUp got %v", err)
	}

	perUser := createTestCoupon(t, db, &models.Coupon{
		Code:         "ONCE",
		Type:         constants.CouponTypeFixed,
		Value:        money(100),
		PerUserLimit: 1,
		IsActive:     true,
	})
	if err := db.Create(&models.CouponUsage{
		CouponID:       perUser.ID,
		UserID:         42,
		OrderID:        1,
		DiscountAmount: money(100),
	}).Error; err != nil {
		t.Fatalf("create usage failed: %v", err)
	}

	if _, _, err := svc.ApplyCoupon(money(1000), "ONCE", 42); !errors.Is(err, ErrCouponUsedUp) {
		t.Fatalf("per-user limit want ErrCouponUsedUp got %v", err)
	}
	if _, _, err := svc.ApplyCoupon(money(1000), "ONCE", 43); err != nil {
		t.Fatalf("other user should pass, got %v", err)
	}
}

func TestCreateCouponValidation(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestCouponService(db)

	created, err := svc.Create(CouponInput{
		Code:  "save10",
		Type:  "percent",
		Value: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Code != "SAVE10" {
		t.Fatalf("code should be uppercased, got %s", created.Code)
	}
	if !created.IsActive {
		t.Fatalf("coupon should default to active")
	}

	if _, err := svc.Create(CouponInput{Code: "SAVE10", Type: "percent", Value: decimal.NewFromInt(5)}); !errors.Is(err, ErrCouponCodeExists) {
		t.Fatalf("duplicate code want ErrCouponCodeExists got %v", err)
	}
	if _, err := svc.Create(CouponInput{Code: "BAD", Type: "bogo", Value: decimal.NewFromInt(5)}); !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("unknown type want ErrCouponInvalid got %v", err)
	}
	if _, err := svc.Create(CouponInput{Code: "ZERO", Type: "fixed", Value: decimal.Zero}); !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("zero value want ErrCouponInvalid got %v", err)
	}
}
