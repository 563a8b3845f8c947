package public

import (
	"errors"
	"io"
	"net/http"

	"github.com/fixmore/mall/internal/service"

	"github.com/gin-gonic/gin"
)

// MpesaCallback receives the Daraja STK push result. Safaricom expects
// a ResultCode 0 acknowledgement even when the payment itself failed,
// otherwise the callback is retried.
func (h *Handler) MpesaCallback(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		requestLog(c).Warnw("mpesa_callback_body_read_failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"ResultCode": 1, "ResultDesc": "Invalid payload"})
		return
	}

	if err := h.PaymentService.HandleMpesaCallback(body); err != nil {
		if errors.Is(err, service.ErrCallbackInvalid) {
			requestLog(c).Warnw("mpesa_callback_invalid", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"ResultCode": 1, "ResultDesc": "Invalid payload"})
			return
		}
		// Processing failures are logged but still acknowledged so the
		// gateway does not retry a payload we already recorded.
		requestLog(c).Errorw("mpesa_callback_failed", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Success"})
}

// StripeWebhook receives Stripe events. The signature header is
// verified before any state changes.
func (h *Handler) StripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid payload")
		return
	}

	headers := map[string]string{
		"Stripe-Signature": c.GetHeader("Stripe-Signature"),
	}
	if err := h.PaymentService.HandleStripeWebhook(headers, body); err != nil {
		if errors.Is(err, service.ErrCallbackInvalid) {
			requestLog(c).Warnw("stripe_webhook_invalid", "error", err)
			c.String(http.StatusBadRequest, "invalid signature")
			return
		}
		requestLog(c).Errorw("stripe_webhook_failed", "error", err)
		c.String(http.StatusInternalServerError, "processing failed")
		return
	}

	c.String(http.StatusOK, "ok")
}
