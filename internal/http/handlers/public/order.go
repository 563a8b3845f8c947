package public

import (
	"errors"
	"strconv"

	"github.com/fixmore/mall/internal/http/response"
	"github.com/fixmore/mall/internal/repository"
	"github.com/fixmore/mall/internal/service"

	"github.com/gin-gonic/gin"
)

type checkoutRequest struct {
	ShippingAddressID uint   `json:"shipping_address_id" binding:"required"`
	BillingAddressID  uint   `json:"billing_address_id"`
	PaymentMethod     string `json:"payment_method" binding:"required,oneof=mpesa stripe cash_on_delivery"`
	CouponCode        string `json:"coupon_code" binding:"omitempty,max=50"`
	Notes             string `json:"notes" binding:"omitempty,max=1000"`
}

type orderListQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
}

// Checkout converts the user's cart into a pending order. Stock is
// reserved and the cart cleared in one transaction.
func (h *Handler) Checkout(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	order, err := h.OrderService.Checkout(service.CheckoutInput{
		UserID:            userID,
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		PaymentMethod:     req.PaymentMethod,
		CouponCode:        req.CouponCode,
		Notes:             req.Notes,
		ClientIP:          c.ClientIP(),
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	requestLog(c).Infow("order_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"user_id", userID,
		"total", order.TotalAmount,
	)
	response.Success(c, order)
}

// GetOrders lists the user's orders newest first.
func (h *Handler) GetOrders(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var q orderListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, response.CodeBadRequest, "invalid query parameters", err)
		return
	}
	page, pageSize := normalizePagination(q.Page, q.PageSize)

	orders, total, err := h.OrderService.ListOrdersByUser(repository.OrderListFilter{
		UserID:   userID,
		Status:   q.Status,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list orders", err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetOrder returns one of the user's orders with its items.
func (h *Handler) GetOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}

	order, err := h.OrderService.GetOrderByUser(uint(id), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load order", err)
		return
	}
	response.Success(c, order)
}

// CancelOrder cancels a pending or confirmed order and restores stock.
func (h *Handler) CancelOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}

	order, err := h.OrderService.CancelOrder(uint(id), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrOrderNotCancellable):
			respondError(c, response.CodeBadRequest, "order can no longer be cancelled", nil)
		default:
			respondError(c, response.CodeInternal, "failed to cancel order", err)
		}
		return
	}

	requestLog(c).Infow("order_cancelled", "order_id", order.ID, "user_id", userID)
	response.Success(c, order)
}

// TrackOrder returns the order's status history timeline.
func (h *Handler) TrackOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}

	order, events, err := h.OrderService.TrackOrder(uint(id), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to track order", err)
		return
	}
	response.Success(c, gin.H{
		"order_no": order.OrderNo,
		"status":   order.Status,
		"timeline": events,
	})
}
