package public

import (
	"errors"

	handlershared "github.com/fixmore/mall/internal/http/handlers/shared"
	"github.com/fixmore/mall/internal/http/response"
	"github.com/fixmore/mall/internal/service"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Phone     string `json:"phone" binding:"omitempty,max=20"`
	handlershared.CaptchaPayloadRequest
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	handlershared.CaptchaPayloadRequest
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=20"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// Register creates a customer account and returns a token pair.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}
	if err := h.verifyCaptcha(c, req.CaptchaPayloadRequest); err != nil {
		return
	}

	user, pair, err := h.AuthService.Register(req.Email, req.Password, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			respondError(c, response.CodeBadRequest, "email already registered", nil)
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "invalid email address", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, "password does not meet policy", nil)
		default:
			respondError(c, response.CodeInternal, "registration failed", err)
		}
		return
	}

	requestLog(c).Infow("user_registered", "user_id", user.ID)
	response.Success(c, gin.H{
		"user":  user,
		"token": pair,
	})
}

// Login authenticates a customer and returns a token pair.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}
	if err := h.verifyCaptcha(c, req.CaptchaPayloadRequest); err != nil {
		return
	}

	user, pair, err := h.AuthService.Login(req.Email, req.Password)
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

	requestLog(c).Infow("user_login", "user_id", user.ID)
	response.Success(c, gin.H{
		"user":  user,
		"token": pair,
	})
}

// Refresh exchanges a refresh token for a new token pair.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	_, pair, err := h.AuthService.Refresh(req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			respondError(c, response.CodeUnauthorized, "invalid or expired refresh token", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeForbidden, "account disabled", nil)
		default:
			respondError(c, response.CodeInternal, "token refresh failed", err)
		}
		return
	}
	response.Success(c, gin.H{"token": pair})
}

// GetCurrentUser returns the authenticated user's profile.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	user, err := h.AuthService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "user not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load profile", err)
		return
	}
	response.Success(c, user)
}

// UpdateProfile updates the authenticated user's name and phone.
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	user, err := h.AuthService.UpdateProfile(userID, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "user not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "profile update failed", err)
		return
	}
	response.Success(c, user)
}

// ChangePassword rotates the password after verifying the current one.
// All previously issued tokens are invalidated.
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	if err := h.AuthService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPassword):
			respondError(c, response.CodeBadRequest, "current password is incorrect", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, "new password does not meet policy", nil)
		default:
			respondError(c, response.CodeInternal, "password change failed", err)
		}
		return
	}

	requestLog(c).Infow("user_password_changed", "user_id", userID)
	response.SuccessWithMsg(c, "password updated, please sign in again", nil)
}

func (h *Handler) verifyCaptcha(c *gin.Context, payload handlershared.CaptchaPayloadRequest) error {
	if h.CaptchaService == nil || !h.CaptchaService.Enabled() {
		return nil
	}
	id, answer := payload.Normalized()
	if err := h.CaptchaService.Verify(id, answer); err != nil {
		switch {
		case errors.Is(err, service.ErrCaptchaRequired):
			respondError(c, response.CodeBadRequest, "captcha required", nil)
		case errors.Is(err, service.ErrCaptchaInvalid):
			respondError(c, response.CodeBadRequest, "captcha verification failed", nil)
		default:
			respondError(c, response.CodeInternal, "captcha verification failed", err)
		}
		return err
	}
	return nil
}
