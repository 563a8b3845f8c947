package service

import (
	"strings"
	"time"

	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponService validates and applies order coupons.
type CouponService struct {
	couponRepo repository.CouponRepository
	usageRepo  repository.CouponUsageRepository
}

// NewCouponService creates a coupon service.
func NewCouponService(couponRepo repository.CouponRepository, usageRepo repository.CouponUsageRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		usageRepo:  usageRepo,
	}
}

// ApplyCoupon resolves the discount a coupon yields on a subtotal. The
// discount never exceeds the subtotal.
func (s *CouponService) ApplyCoupon(subtotal models.Money, code string, userID uint) (models.Money, *models.Coupon, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if trimmed == "" {
		return models.Money{}, nil, ErrCouponInvalid
	}

	coupon, err := s.couponRepo.GetByCode(trimmed)
	if err != nil {
		return models.Money{}, nil, err
	}
	if coupon == nil {
		return models.Money{}, nil, ErrCouponInvalid
	}
	if !coupon.IsActive {
		return models.Money{}, coupon, ErrCouponInvalid
	}

	now := time.Now()
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return models.Money{}, coupon, ErrCouponInvalid
	}
	if coupon.EndsAt != nil && now.After(*coupon.EndsAt) {
		return models.Money{}, coupon, ErrCouponInvalid
	}

	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return models.Money{}, coupon, ErrCouponUsedUp
	}

	if coupon.PerUserLimit > 0 && userID != 0 {
		count, err := s.usageRepo.CountByUser(coupon.ID, userID)
		if err != nil {
			return models.Money{}, coupon, err
		}
		if int(count) >= coupon.PerUserLimit {
			return models.Money{}, coupon, ErrCouponUsedUp
		}
	}

	if subtotal.Decimal.Cmp(coupon.MinAmount.Decimal) < 0 {
		return models.Money{}, coupon, ErrCouponMinNotMet
	}

	discount, err := s.calculateDiscount(coupon, subtotal)
	if err != nil {
		return models.Money{}, coupon, err
	}

	if coupon.MaxDiscount.Decimal.GreaterThan(decimal.Zero) && discount.Decimal.GreaterThan(coupon.MaxDiscount.Decimal) {
		discount = models.NewMoneyFromDecimal(coupon.MaxDiscount.Decimal)
	}
	if discount.Decimal.GreaterThan(subtotal.Decimal) {
		discount = models.NewMoneyFromDecimal(subtotal.Decimal)
	}

	return discount, coupon, nil
}

func (s *CouponService) calculateDiscount(coupon *models.Coupon, subtotal models.Money) (models.Money, error) {
	switch strings.ToLower(strings.TrimSpace(coupon.Type)) {
	case constants.CouponTypeFixed:
		if coupon.Value.Decimal.LessThanOrEqual(decimal.Zero) {
			return models.Money{}, ErrCouponInvalid
		}
		return models.NewMoneyFromDecimal(coupon.Value.Decimal), nil
	case constants.CouponTypePercent:
		if coupon.Value.Decimal.LessThanOrEqual(decimal.Zero) {
			return models.Money{}, ErrCouponInvalid
		}
		percent := coupon.Value.Decimal.Div(decimal.NewFromInt(100))
		discount := subtotal.Decimal.Mul(percent)
		return models.NewMoneyFromDecimal(discount), nil
	default:
		return models.Money{}, ErrCouponInvalid
	}
}

// CouponInput is the admin create/update payload.
type CouponInput struct {
	Code         string
	Type         string
	Value        decimal.Decimal
	MinAmount    decimal.Decimal
	MaxDiscount  decimal.Decimal
	UsageLimit   int
	PerUserLimit int
	StartsAt     *time.Time
	EndsAt       *time.Time
	IsActive     *bool
}

// List lists coupons for the admin panel.
func (s *CouponService) List(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	return s.couponRepo.List(filter)
}

// GetByID fetches a coupon.
func (s *CouponService) GetByID(id uint) (*models.Coupon, error) {
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrNotFound
	}
	return coupon, nil
}

// Create creates a coupon.
func (s *CouponService) Create(input CouponInput) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, ErrCouponInvalid
	}
	couponType := strings.ToLower(strings.TrimSpace(input.Type))
	if couponType != constants.CouponTypeFixed && couponType != constants.CouponTypePercent {
		return nil, ErrCouponInvalid
	}
	if input.Value.LessThanOrEqual(decimal.Zero) {
		return nil, ErrCouponInvalid
	}

	existing, err := s.couponRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCouponCodeExists
	}

	coupon := models.Coupon{
		Code:         code,
		Type:         couponType,
		Value:        models.NewMoneyFromDecimal(input.Value.Round(2)),
		MinAmount:    models.NewMoneyFromDecimal(input.MinAmount.Round(2)),
		MaxDiscount:  models.NewMoneyFromDecimal(input.MaxDiscount.Round(2)),
		UsageLimit:   input.UsageLimit,
		PerUserLimit: input.PerUserLimit,
		StartsAt:     input.StartsAt,
		EndsAt:       input.EndsAt,
		IsActive:     true,
	}
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}
	if err := s.couponRepo.Create(&coupon); err != nil {
		return nil, err
	}
	return &coupon, nil
}

// Update updates a coupon. The code is immutable once issued.
func (s *CouponService) Update(id uint, input CouponInput) (*models.Coupon, error) {
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrNotFound
	}

	if couponType := strings.ToLower(strings.TrimSpace(input.Type)); couponType != "" {
		if couponType != constants.CouponTypeFixed && couponType != constants.CouponTypePercent {
			return nil, ErrCouponInvalid
		}
		coupon.Type = couponType
	}
	if input.Value.GreaterThan(decimal.Zero) {
		coupon.Value = models.NewMoneyFromDecimal(input.Value.Round(2))
	}
	coupon.MinAmount = models.NewMoneyFromDecimal(input.MinAmount.Round(2))
	coupon.MaxDiscount = models.NewMoneyFromDecimal(input.MaxDiscount.Round(2))
	coupon.UsageLimit = input.UsageLimit
	coupon.PerUserLimit = input.PerUserLimit
	coupon.StartsAt = input.StartsAt
	coupon.EndsAt = input.EndsAt
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}

	if err := s.couponRepo.Update(coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// Delete removes a coupon.
func (s *CouponService) Delete(id uint) error {
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return err
	}
	if coupon == nil {
		return ErrNotFound
	}
	return s.couponRepo.Delete(id)
}
