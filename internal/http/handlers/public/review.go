package public

import (
	"errors"
	"strconv"

	"github.com/fixmore/mall/internal/http/response"
	"github.com/fixmore/mall/internal/service"

	"github.com/gin-gonic/gin"
)

type createReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Title   string `json:"title" binding:"omitempty,max=200"`
	Comment string `json:"comment" binding:"omitempty,max=2000"`
}

type reviewListQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// GetProductReviews lists approved reviews for a product.
func (h *Handler) GetProductReviews(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	var q reviewListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, response.CodeBadRequest, "invalid query parameters", err)
		return
	}
	page, pageSize := normalizePagination(q.Page, q.PageSize)

	reviews, total, err := h.ReviewService.ListProductReviews(uint(productID), page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list reviews", err)
		return
	}
	response.SuccessWithPage(c, reviews, response.NewPagination(page, pageSize, total))
}

// CreateReview lets a buyer review a product from a delivered order.
// The review starts in pending state until moderated.
func (h *Handler) CreateReview(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	review, err := h.ReviewService.CreateReview(userID, uint(productID), service.ReviewInput{
		Rating:  req.Rating,
		Title:   req.Title,
		Comment: req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		case errors.Is(err, service.ErrInvalidRating):
			respondError(c, response.CodeBadRequest, "rating must be between 1 and 5", nil)
		case errors.Is(err, service.ErrReviewNotEligible):
			respondError(c, response.CodeForbidden, "only buyers of the product can review it", nil)
		case errors.Is(err, service.ErrReviewExists):
			respondError(c, response.CodeBadRequest, "product already reviewed", nil)
		default:
			respondError(c, response.CodeInternal, "failed to create review", err)
		}
		return
	}

	requestLog(c).Infow("review_created", "review_id", review.ID, "product_id", productID, "user_id", userID)
	response.Success(c, review)
}
