package admin

import (
	"errors"

	handlershared "github.com/fixmore/mall/internal/http/handlers/shared"
	"github.com/fixmore/mall/internal/http/response"
	"github.com/fixmore/mall/internal/service"

	"github.com/gin-gonic/gin"
)

type adminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	handlershared.CaptchaPayloadRequest
}

// Login authenticates an admin account. Non-admin users are rejected
// with the same message as bad credentials.
func (h *Handler) Login(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	if h.CaptchaService != nil && h.CaptchaService.Enabled() {
		id, answer := req.Normalized()
		if err := h.CaptchaService.Verify(id, answer); err != nil {
			switch {
			case errors.Is(err, service.ErrCaptchaRequired):
				respondError(c, response.CodeBadRequest, "captcha required", nil)
			case errors.Is(err, service.ErrCaptchaInvalid):
				respondError(c, response.CodeBadRequest, "captcha verification failed", nil)
			default:
				respondError(c, response.CodeInternal, "captcha verification failed", err)
			}
			return
		}
	}

	user, pair, err := h.AuthService.AdminLogin(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "invalid email or password", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeForbidden, "account disabled", nil)
		default:
			respondError(c, response.CodeInternal, "login failed", err)
		}
		return
	}

	requestLog(c).Infow("admin_login", "admin_id", user.ID)
	response.Success(c, gin.H{
		"user":  user,
		"token": pair,
	})
}
