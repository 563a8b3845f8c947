package admin

import (
	"errors"

	"github.com/fixmore/mall/internal/http/response"
	"github.com/fixmore/mall/internal/repository"
	"github.com/fixmore/mall/internal/service"

	"github.com/gin-gonic/gin"
)

type paymentListQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderID  uint   `form:"order_id"`
	Method   string `form:"method"`
	Status   string `form:"status"`
}

// GetPayments lists payment records.
func (h *Handler) GetPayments(c *gin.Context) {
	var q paymentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, response.CodeBadRequest, "invalid query parameters", err)
		return
	}
	page, pageSize := normalizePagination(q.Page, q.PageSize)

	payments, total, err := h.PaymentService.ListPayments(repository.PaymentListFilter{
		Page:     page,
		PageSize: pageSize,
		OrderID:  q.OrderID,
		Method:   q.Method,
		Status:   q.Status,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list payments", err)
		return
	}
	response.SuccessWithPage(c, payments, response.NewPagination(page, pageSize, total))
}

// GetPayment returns one payment record.
func (h *Handler) GetPayment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.PaymentService.GetPayment(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrPaymentNotFound) {
			respondError(c, response.CodeNotFound, "payment not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load payment", err)
		return
	}
	response.Success(c, payment)
}
