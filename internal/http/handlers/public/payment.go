package public

import (
	"errors"
	"strconv"

	"github.com/fixmore/mall/internal/http/response"
	"github.com/fixmore/mall/internal/service"

	"github.com/gin-gonic/gin"
)

type initiateMpesaRequest struct {
	OrderID     uint   `json:"order_id" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required,max=20"`
}

type initiateStripeRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// GetPaymentMethods lists the payment methods currently enabled.
func (h *Handler) GetPaymentMethods(c *gin.Context) {
	response.Success(c, h.PaymentService.ListPaymentMethods())
}

// InitiateMpesaPayment sends an STK push to the buyer's phone for a
// pending order. The payment settles asynchronously via callback.
func (h *Handler) InitiateMpesaPayment(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req initiateMpesaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	result, err := h.PaymentService.InitiateMpesa(service.InitiateMpesaInput{
		OrderID:     req.OrderID,
		UserID:      userID,
		PhoneNumber: req.PhoneNumber,
		Context:     c.Request.Context(),
	})
	if err != nil {
		respondPaymentInitiateError(c, err)
		return
	}

	requestLog(c).Infow("mpesa_stk_initiated",
		"order_id", req.OrderID,
		"payment_id", result.Payment.ID,
		"user_id", userID,
	)
	response.Success(c, gin.H{
		"payment":          result.Payment,
		"customer_message": result.CustomerMessage,
	})
}

// InitiateStripePayment creates a Stripe payment intent and returns the
// client secret the frontend confirms the card with.
func (h *Handler) InitiateStripePayment(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req initiateStripeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	result, err := h.PaymentService.InitiateStripe(service.InitiateStripeInput{
		OrderID: req.OrderID,
		UserID:  userID,
		Context: c.Request.Context(),
	})
	if err != nil {
		respondPaymentInitiateError(c, err)
		return
	}

	requestLog(c).Infow("stripe_intent_created",
		"order_id", req.OrderID,
		"payment_id", result.Payment.ID,
		"user_id", userID,
	)
	response.Success(c, gin.H{
		"payment":         result.Payment,
		"client_secret":   result.ClientSecret,
		"publishable_key": result.PublishableKey,
	})
}

// GetPayment returns one payment record. Buyers can only read payments
// belonging to their own orders.
func (h *Handler) GetPayment(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid payment id", nil)
		return
	}

	payment, err := h.PaymentService.GetPayment(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrPaymentNotFound) {
			respondError(c, response.CodeNotFound, "payment not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load payment", err)
		return
	}

	order, err := h.OrderService.GetOrderByUser(payment.OrderID, userID)
	if err != nil || order == nil {
		respondError(c, response.CodeNotFound, "payment not found", nil)
		return
	}
	response.Success(c, payment)
}
