package admin

import (
	"errors"
	"time"

	"github.com/fixmore/mall/internal/http/response"
	"github.com/fixmore/mall/internal/repository"
	"github.com/fixmore/mall/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type couponRequest struct {
	Code         string          `json:"code" binding:"required,max=50"`
	Type         string          `json:"type" binding:"required,oneof=fixed percent"`
	Value        decimal.Decimal `json:"value" binding:"required"`
	MinAmount    decimal.Decimal `json:"min_amount"`
	MaxDiscount  decimal.Decimal `json:"max_discount"`
	UsageLimit   int             `json:"usage_limit"`
	PerUserLimit int             `json:"per_user_limit"`
	StartsAt     *time.Time      `json:"starts_at"`
	EndsAt       *time.Time      `json:"ends_at"`
	IsActive     *bool           `json:"is_active"`
}

func (r couponRequest) toInput() service.CouponInput {
	return service.CouponInput{
		Code:         r.Code,
		Type:         r.Type,
		Value:        r.Value,
		MinAmount:    r.MinAmount,
		MaxDiscount:  r.MaxDiscount,
		UsageLimit:   r.UsageLimit,
		PerUserLimit: r.PerUserLimit,
		StartsAt:     r.StartsAt,
		EndsAt:       r.EndsAt,
		IsActive:     r.IsActive,
	}
}

type couponListQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Code     string `form:"code"`
	IsActive *bool  `form:"is_active"`
}

// GetCoupons lists coupons.
func (h *Handler) GetCoupons(c *gin.Context) {
	var q couponListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, response.CodeBadRequest, "invalid query parameters", err)
		return
	}
	page, pageSize := normalizePagination(q.Page, q.PageSize)

	coupons, total, err := h.CouponService.List(repository.CouponListFilter{
		Code:     q.Code,
		IsActive: q.IsActive,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list coupons", err)
		return
	}
	response.SuccessWithPage(c, coupons, response.NewPagination(page, pageSize, total))
}

// GetCoupon returns one coupon.
func (h *Handler) GetCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	coupon, err := h.CouponService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "coupon not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load coupon", err)
		return
	}
	response.Success(c, coupon)
}

// CreateCoupon adds a coupon.
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req couponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	coupon, err := h.CouponService.Create(req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponCodeExists):
			respondError(c, response.CodeBadRequest, "coupon code already exists", nil)
		case errors.Is(err, service.ErrCouponInvalid):
			respondError(c, response.CodeBadRequest, "invalid coupon data", nil)
		default:
			respondError(c, response.CodeInternal, "failed to create coupon", err)
		}
		return
	}

	requestLog(c).Infow("coupon_created", "coupon_id", coupon.ID, "code", coupon.Code)
	response.Success(c, coupon)
}

// UpdateCoupon updates a coupon.
func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req couponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	coupon, err := h.CouponService.Update(id, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "coupon not found", nil)
		case errors.Is(err, service.ErrCouponCodeExists):
			respondError(c, response.CodeBadRequest, "coupon code already exists", nil)
		case errors.Is(err, service.ErrCouponInvalid):
			respondError(c, response.CodeBadRequest, "invalid coupon data", nil)
		default:
			respondError(c, response.CodeInternal, "failed to update coupon", err)
		}
		return
	}
	response.Success(c, coupon)
}

// DeleteCoupon removes a coupon.
func (h *Handler) DeleteCoupon(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.CouponService.Delete(id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "coupon not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to delete coupon", err)
		return
	}
	response.SuccessWithMsg(c, "coupon deleted", nil)
}
