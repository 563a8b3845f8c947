package public

import (
	"errors"
	"strconv"

	"github.com/fixmore/mall/internal/http/response"
	"github.com/fixmore/mall/internal/repository"
	"github.com/fixmore/mall/internal/service"

	"github.com/gin-gonic/gin"
)

type productListQuery struct {
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	CategoryID uint   `form:"category_id"`
	Category   string `form:"category"`
	Search     string `form:"search"`
	Featured   bool   `form:"featured"`
}

// GetProducts lists active products with optional category, search and
// featured filters.
func (h *Handler) GetProducts(c *gin.Context) {
	var q productListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, response.CodeBadRequest, "invalid query parameters", err)
		return
	}
	page, pageSize := normalizePagination(q.Page, q.PageSize)

	products, total, err := h.ProductService.ListPublic(c.Request.Context(), repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   q.CategoryID,
		CategoryName: q.Category,
		Search:       q.Search,
		FeaturedOnly: q.Featured,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list products", err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetProduct returns an active product with its rating summary.
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	detail, err := h.ProductService.GetPublicByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrProductInactive) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load product", err)
		return
	}
	response.Success(c, detail)
}

// GetCategories lists active categories for storefront navigation.
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.List(true)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list categories", err)
		return
	}
	response.Success(c, categories)
}
