package public

import (
	"errors"

	"github.com/fixmore/mall/internal/http/response"
	"github.com/fixmore/mall/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError binds one service sentinel to its API response.
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrEmptyCart, code: response.CodeBadRequest, msg: "cart is empty"},
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, msg: "invalid item quantity"},
	{target: service.ErrInsufficientStock, code: response.CodeBadRequest, msg: "insufficient stock"},
	{target: service.ErrProductInactive, code: response.CodeBadRequest, msg: "product no longer available"},
	{target: service.ErrAddressNotFound, code: response.CodeBadRequest, msg: "shipping address not found"},
	{target: service.ErrPaymentMethodDisabled, code: response.CodeBadRequest, msg: "payment method not available"},
	{target: service.ErrCouponInvalid, code: response.CodeBadRequest, msg: "coupon invalid or expired"},
	{target: service.ErrCouponMinNotMet, code: response.CodeBadRequest, msg: "order below coupon minimum"},
	{target: service.ErrCouponUsedUp, code: response.CodeBadRequest, msg: "coupon usage limit reached"},
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, msg: "invalid quantity"},
	{target: service.ErrInsufficientStock, code: response.CodeBadRequest, msg: "insufficient stock"},
	{target: service.ErrProductInactive, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "cart item not found"},
}

var paymentInitiateErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrAlreadyPaid, code: response.CodeBadRequest, msg: "order already paid"},
	{target: service.ErrOrderNotPayable, code: response.CodeBadRequest, msg: "order is not awaiting payment"},
	{target: service.ErrPaymentMethodDisabled, code: response.CodeBadRequest, msg: "payment method not available"},
	{target: service.ErrInvalidPhoneNumber, code: response.CodeBadRequest, msg: "invalid M-Pesa phone number"},
	{target: service.ErrPaymentGatewayFailed, code: response.CodeInternal, msg: "payment gateway request failed"},
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "checkout failed")
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart operation failed")
}

func respondPaymentInitiateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentInitiateErrorRules, response.CodeInternal, "payment initiation failed")
}
