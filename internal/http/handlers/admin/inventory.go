package admin

import (
	"errors"

	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/http/response"
	"github.com/fixmore/mall/internal/repository"
	"github.com/fixmore/mall/internal/service"

	"github.com/gin-gonic/gin"
)

type adjustStockRequest struct {
	Delta int    `json:"delta" binding:"required"`
	Note  string `json:"note" binding:"omitempty,max=500"`
}

type inventoryLogListQuery struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	ProductID uint   `form:"product_id"`
	Reason    string `form:"reason"`
}

// AdjustStock applies a signed stock change to a product and records it
// in the movement ledger.
func (h *Handler) AdjustStock(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	log, err := h.InventoryService.Adjust(service.AdjustInput{
		ProductID: id,
		Delta:     req.Delta,
		Reason:    constants.InventoryReasonAdminAdjust,
		ActorID:   adminID,
		Note:      req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		case errors.Is(err, service.ErrInsufficientStock):
			respondError(c, response.CodeBadRequest, "adjustment would take stock below zero", nil)
		case errors.Is(err, service.ErrInvalidQuantity):
			respondError(c, response.CodeBadRequest, "delta must be non-zero", nil)
		default:
			respondError(c, response.CodeInternal, "failed to adjust stock", err)
		}
		return
	}

	requestLog(c).Infow("stock_adjusted",
		"product_id", id,
		"delta", req.Delta,
		"admin_id", adminID,
	)
	response.Success(c, log)
}

// GetInventoryLogs lists stock movement ledger entries.
func (h *Handler) GetInventoryLogs(c *gin.Context) {
	var q inventoryLogListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, response.CodeBadRequest, "invalid query parameters", err)
		return
	}
	page, pageSize := normalizePagination(q.Page, q.PageSize)

	logs, total, err := h.InventoryService.ListLogs(repository.InventoryLogListFilter{
		Page:      page,
		PageSize:  pageSize,
		ProductID: q.ProductID,
		Reason:    q.Reason,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list inventory logs", err)
		return
	}
	response.SuccessWithPage(c, logs, response.NewPagination(page, pageSize, total))
}
