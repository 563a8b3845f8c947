package admin

import (
	"errors"

	"github.com/fixmore/mall/internal/http/response"
	"github.com/fixmore/mall/internal/service"

	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty,max=1000"`
	ImageURL    string `json:"image_url" binding:"omitempty,max=500"`
	IsActive    *bool  `json:"is_active"`
	SortOrder   int    `json:"sort_order"`
}

func (r categoryRequest) toInput() service.CategoryInput {
	return service.CategoryInput{
		Name:        r.Name,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		IsActive:    r.IsActive,
		SortOrder:   r.SortOrder,
	}
}

// GetCategories lists all categories including inactive ones.
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.List(false)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list categories", err)
		return
	}
	response.Success(c, categories)
}

// CreateCategory adds a category.
func (h *Handler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	category, err := h.CategoryService.Create(req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrCategoryNameExists) {
			respondError(c, response.CodeBadRequest, "category name already exists", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to create category", err)
		return
	}
	response.Success(c, category)
}

// UpdateCategory updates a category.
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	category, err := h.CategoryService.Update(id, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "category not found", nil)
		case errors.Is(err, service.ErrCategoryNameExists):
			respondError(c, response.CodeBadRequest, "category name already exists", nil)
		default:
			respondError(c, response.CodeInternal, "failed to update category", err)
		}
		return
	}
	response.Success(c, category)
}

// DeleteCategory removes a category with no products.
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.CategoryService.Delete(id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "category not found", nil)
		case errors.Is(err, service.ErrCategoryInUse):
			respondError(c, response.CodeBadRequest, "category still has products", nil)
		default:
			respondError(c, response.CodeInternal, "failed to delete category", err)
		}
		return
	}
	response.SuccessWithMsg(c, "category deleted", nil)
}
