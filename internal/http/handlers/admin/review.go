package admin

import (
	"errors"

	"github.com/fixmore/mall/internal/http/response"
	"github.com/fixmore/mall/internal/repository"
	"github.com/fixmore/mall/internal/service"

	"github.com/gin-gonic/gin"
)

type reviewListQuery struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	ProductID uint   `form:"product_id"`
	UserID    uint   `form:"user_id"`
	Status    string `form:"status"`
}

type moderateReviewRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

// GetReviews lists reviews for moderation.
func (h *Handler) GetReviews(c *gin.Context) {
	var q reviewListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, response.CodeBadRequest, "invalid query parameters", err)
		return
	}
	page, pageSize := normalizePagination(q.Page, q.PageSize)

	reviews, total, err := h.ReviewService.ListAdmin(repository.ReviewListFilter{
		Page:      page,
		PageSize:  pageSize,
		ProductID: q.ProductID,
		UserID:    q.UserID,
		Status:    q.Status,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list reviews", err)
		return
	}
	response.SuccessWithPage(c, reviews, response.NewPagination(page, pageSize, total))
}

// ModerateReview approves or rejects a pending review.
func (h *Handler) ModerateReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req moderateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	review, err := h.ReviewService.Moderate(id, *req.Approve)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "review not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to moderate review", err)
		return
	}

	requestLog(c).Infow("review_moderated", "review_id", review.ID, "status", review.Status)
	response.Success(c, review)
}

// DeleteReview removes a review and refreshes the product rating.
func (h *Handler) DeleteReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.ReviewService.Delete(id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "review not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to delete review", err)
		return
	}
	response.SuccessWithMsg(c, "review deleted", nil)
}
