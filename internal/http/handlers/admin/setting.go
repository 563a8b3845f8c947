package admin

import (
	"errors"

	"github.com/fixmore/mall/internal/http/response"
	"github.com/fixmore/mall/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type shopSettingsRequest struct {
	Currency              string          `json:"currency" binding:"required,len=3"`
	VATRate               decimal.Decimal `json:"vat_rate"`
	ShippingFee           decimal.Decimal `json:"shipping_fee"`
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
	PaymentExpireMinutes  int             `json:"payment_expire_minutes" binding:"required,min=1,max=1440"`
}

type testEmailRequest struct {
	To      string `json:"to" binding:"required,email"`
	Subject string `json:"subject" binding:"omitempty,max=200"`
	Body    string `json:"body" binding:"omitempty,max=5000"`
}

// GetShopSettings returns the storefront pricing configuration.
func (h *Handler) GetShopSettings(c *gin.Context) {
	cfg, err := h.SettingService.GetShopConfig()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load shop settings", err)
		return
	}
	response.Success(c, cfg)
}

// UpdateShopSettings replaces the storefront pricing configuration.
func (h *Handler) UpdateShopSettings(c *gin.Context) {
	var req shopSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	cfg, err := h.SettingService.UpdateShopConfig(service.ShopConfig{
		Currency:              req.Currency,
		VATRate:               req.VATRate,
		ShippingFee:           req.ShippingFee,
		FreeShippingThreshold: req.FreeShippingThreshold,
		PaymentExpireMinutes:  req.PaymentExpireMinutes,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to update shop settings", err)
		return
	}

	requestLog(c).Infow("shop_settings_updated", "currency", cfg.Currency)
	response.Success(c, cfg)
}

// TestEmail sends a probe message through the configured SMTP relay.
func (h *Handler) TestEmail(c *gin.Context) {
	var req testEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	if err := h.EmailService.SendCustomEmail(req.To, req.Subject, req.Body); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailServiceDisabled):
			respondError(c, response.CodeBadRequest, "email sending disabled", nil)
		case errors.Is(err, service.ErrEmailServiceNotConfigured):
			respondError(c, response.CodeBadRequest, "email service not configured", nil)
		case errors.Is(err, service.ErrEmailRecipientRejected):
			respondError(c, response.CodeBadRequest, "recipient address rejected", nil)
		default:
			respondError(c, response.CodeInternal, "failed to send test email", err)
		}
		return
	}
	response.SuccessWithMsg(c, "test email sent", nil)
}
