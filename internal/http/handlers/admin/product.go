package admin

import (
	"errors"

	"github.com/fixmore/mall/internal/http/response"
	"github.com/fixmore/mall/internal/repository"
	"github.com/fixmore/mall/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type productRequest struct {
	CategoryID        *uint                  `json:"category_id"`
	SKU               string                 `json:"sku" binding:"required,max=100"`
	Name              string                 `json:"name" binding:"required,max=255"`
	Description       string                 `json:"description"`
	Price             decimal.Decimal        `json:"price" binding:"required"`
	StockQuantity     *int                   `json:"stock_quantity"`
	LowStockThreshold *int                   `json:"low_stock_threshold"`
	Images            []string               `json:"images"`
	Tags              []string               `json:"tags"`
	Specs             map[string]interface{} `json:"specs"`
	IsActive          *bool                  `json:"is_active"`
	IsFeatured        *bool                  `json:"is_featured"`
	SortOrder         int                    `json:"sort_order"`
}

func (r productRequest) toInput() service.ProductInput {
	return service.ProductInput{
		CategoryID:        r.CategoryID,
		SKU:               r.SKU,
		Name:              r.Name,
		Description:       r.Description,
		Price:             r.Price,
		StockQuantity:     r.StockQuantity,
		LowStockThreshold: r.LowStockThreshold,
		Images:            r.Images,
		Tags:              r.Tags,
		Specs:             r.Specs,
		IsActive:          r.IsActive,
		IsFeatured:        r.IsFeatured,
		SortOrder:         r.SortOrder,
	}
}

type adminProductListQuery struct {
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	CategoryID uint   `form:"category_id"`
	Search     string `form:"search"`
}

// GetProducts lists all products including inactive ones.
func (h *Handler) GetProducts(c *gin.Context) {
	var q adminProductListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, response.CodeBadRequest, "invalid query parameters", err)
		return
	}
	page, pageSize := normalizePagination(q.Page, q.PageSize)

	products, total, err := h.ProductService.ListAdmin(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: q.CategoryID,
		Search:     q.Search,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list products", err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetProduct returns one product regardless of status.
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.ProductService.GetAdminByID(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load product", err)
		return
	}
	response.Success(c, product)
}

// CreateProduct adds a product to the catalog.
func (h *Handler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	product, err := h.ProductService.Create(req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSKUExists):
			respondError(c, response.CodeBadRequest, "sku already exists", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeBadRequest, "invalid product data", nil)
		default:
			respondError(c, response.CodeInternal, "failed to create product", err)
		}
		return
	}

	requestLog(c).Infow("product_created", "product_id", product.ID, "sku", product.SKU)
	response.Success(c, product)
}

// UpdateProduct updates a product.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	product, err := h.ProductService.Update(id, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		case errors.Is(err, service.ErrSKUExists):
			respondError(c, response.CodeBadRequest, "sku already exists", nil)
		default:
			respondError(c, response.CodeInternal, "failed to update product", err)
		}
		return
	}
	response.Success(c, product)
}

// DeleteProduct soft deletes a product.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.ProductService.Delete(id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to delete product", err)
		return
	}

	requestLog(c).Infow("product_deleted", "product_id", id)
	response.SuccessWithMsg(c, "product deleted", nil)
}

// GetLowStockProducts lists products at or below their low stock threshold.
func (h *Handler) GetLowStockProducts(c *gin.Context) {
	products, err := h.ProductService.ListLowStock()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list low stock products", err)
		return
	}
	response.Success(c, products)
}
