package public

import (
	"errors"
	"strconv"

	"github.com/fixmore/mall/internal/http/response"
	"github.com/fixmore/mall/internal/service"

	"github.com/gin-gonic/gin"
)

type addressRequest struct {
	FullName   string `json:"full_name" binding:"required,max=200"`
	Phone      string `json:"phone" binding:"required,max=20"`
	Line1      string `json:"line1" binding:"required,max=255"`
	Line2      string `json:"line2" binding:"omitempty,max=255"`
	City       string `json:"city" binding:"required,max=100"`
	County     string `json:"county" binding:"omitempty,max=100"`
	PostalCode string `json:"postal_code" binding:"omitempty,max=20"`
	Country    string `json:"country" binding:"omitempty,max=100"`
	IsDefault  bool   `json:"is_default"`
}

func (r addressRequest) toInput() service.AddressInput {
	return service.AddressInput{
		FullName:   r.FullName,
		Phone:      r.Phone,
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		County:     r.County,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		IsDefault:  r.IsDefault,
	}
}

// GetAddresses lists the user's addresses.
func (h *Handler) GetAddresses(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	addresses, err := h.AddressService.List(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list addresses", err)
		return
	}
	response.Success(c, addresses)
}

// CreateAddress adds a shipping address.
func (h *Handler) CreateAddress(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	address, err := h.AddressService.Create(userID, req.toInput())
	if err != nil {
		respondError(c, response.CodeInternal, "failed to create address", err)
		return
	}
	response.Success(c, address)
}

// UpdateAddress updates one of the user's addresses.
func (h *Handler) UpdateAddress(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid address id", nil)
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	address, err := h.AddressService.Update(uint(id), userID, req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrAddressNotFound) || errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "address not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to update address", err)
		return
	}
	response.Success(c, address)
}

// DeleteAddress removes one of the user's addresses.
func (h *Handler) DeleteAddress(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid address id", nil)
		return
	}

	if err := h.AddressService.Delete(uint(id), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrAddressNotFound), errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "address not found", nil)
		case errors.Is(err, service.ErrDefaultAddressOnly):
			respondError(c, response.CodeBadRequest, "cannot delete the only default address", nil)
		default:
			respondError(c, response.CodeInternal, "failed to delete address", err)
		}
		return
	}
	response.SuccessWithMsg(c, "address deleted", nil)
}
