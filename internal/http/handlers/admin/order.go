package admin

import (
	"errors"

	"github.com/fixmore/mall/internal/http/response"
	"github.com/fixmore/mall/internal/repository"
	"github.com/fixmore/mall/internal/service"

	"github.com/gin-gonic/gin"
)

type adminOrderListQuery struct {
	Page          int    `form:"page"`
	PageSize      int    `form:"page_size"`
	UserID        uint   `form:"user_id"`
	Status        string `form:"status"`
	PaymentStatus string `form:"payment_status"`
	OrderNo       string `form:"order_no"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type shipOrderRequest struct {
	Courier        string `json:"courier" binding:"required,max=100"`
	TrackingNumber string `json:"tracking_number" binding:"required,max=100"`
}

// GetOrders lists all orders with optional filters.
func (h *Handler) GetOrders(c *gin.Context) {
	var q adminOrderListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, response.CodeBadRequest, "invalid query parameters", err)
		return
	}
	page, pageSize := normalizePagination(q.Page, q.PageSize)

	orders, total, err := h.OrderService.ListOrdersForAdmin(repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		UserID:        q.UserID,
		Status:        q.Status,
		PaymentStatus: q.PaymentStatus,
		OrderNo:       q.OrderNo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list orders", err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetOrder returns any order with items and shipment.
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.OrderService.GetOrderForAdmin(id)
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

// UpdateOrderStatus moves an order along the fulfilment state machine.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	order, err := h.OrderService.UpdateOrderStatus(id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrInvalidStatusTransition):
			respondError(c, response.CodeBadRequest, "invalid order status transition", nil)
		default:
			respondError(c, response.CodeInternal, "failed to update order status", err)
		}
		return
	}

	requestLog(c).Infow("order_status_updated", "order_id", order.ID, "status", order.Status)
	response.Success(c, order)
}

// ShipOrder records the shipment and moves the order to shipped.
func (h *Handler) ShipOrder(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req shipOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	order, err := h.OrderService.ShipOrder(id, req.Courier, req.TrackingNumber, adminID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrOrderNotShippable):
			respondError(c, response.CodeBadRequest, "order is not ready to ship", nil)
		default:
			respondError(c, response.CodeInternal, "failed to ship order", err)
		}
		return
	}

	requestLog(c).Infow("order_shipped",
		"order_id", order.ID,
		"courier", req.Courier,
		"tracking_number", req.TrackingNumber,
		"admin_id", adminID,
	)
	response.Success(c, order)
}

// MarkDelivered completes a shipped order.
func (h *Handler) MarkDelivered(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.OrderService.MarkDelivered(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrInvalidStatusTransition):
			respondError(c, response.CodeBadRequest, "order is not shipped", nil)
		default:
			respondError(c, response.CodeInternal, "failed to mark delivered", err)
		}
		return
	}

	requestLog(c).Infow("order_delivered", "order_id", order.ID)
	response.Success(c, order)
}
