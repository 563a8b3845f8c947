package public

import (
	"strconv"

	"github.com/fixmore/mall/internal/http/response"

	"github.com/gin-gonic/gin"
)

type addCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// GetCart returns the user's cart with per-line and total pricing.
func (h *Handler) GetCart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	summary, err := h.CartService.GetCart(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load cart", err)
		return
	}
	response.Success(c, summary)
}

// AddCartItem adds a product to the cart, merging quantities.
func (h *Handler) AddCartItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	if err := h.CartService.AddItem(userID, req.ProductID, req.Quantity); err != nil {
		respondCartError(c, err)
		return
	}

	summary, err := h.CartService.GetCart(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load cart", err)
		return
	}
	response.Success(c, summary)
}

// UpdateCartItem sets a line quantity. Quantity zero removes the line.
func (h *Handler) UpdateCartItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	if err := h.CartService.UpdateItem(userID, uint(productID), req.Quantity); err != nil {
		respondCartError(c, err)
		return
	}

	summary, err := h.CartService.GetCart(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load cart", err)
		return
	}
	response.Success(c, summary)
}

// RemoveCartItem deletes one line from the cart.
func (h *Handler) RemoveCartItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	if err := h.CartService.RemoveItem(userID, uint(productID)); err != nil {
		respondCartError(c, err)
		return
	}
	response.SuccessWithMsg(c, "item removed", nil)
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	if err := h.CartService.Clear(userID); err != nil {
		respondError(c, response.CodeInternal, "failed to clear cart", err)
		return
	}
	response.SuccessWithMsg(c, "cart cleared", nil)
}
