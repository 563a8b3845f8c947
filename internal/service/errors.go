package service

import "errors"

// Sentinel errors shared across services. Handlers map these to response
// codes with errors.Is.
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserDisabled       = errors.New("account disabled")
	ErrInvalidToken       = errors.New("invalid token")

	ErrCaptchaRequired = errors.New("captcha required")
	ErrCaptchaInvalid  = errors.New("captcha invalid")

	ErrCategoryNameExists = errors.New("category name already exists")
	ErrCategoryInUse      = errors.New("category still has products")
	ErrSKUExists          = errors.New("sku already exists")
	ErrProductInactive    = errors.New("product not available")

	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrOrderNotCancellable     = errors.New("order can no longer be cancelled")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrOrderNotPayable         = errors.New("order is not awaiting payment")
	ErrOrderNotShippable       = errors.New("order is not ready to ship")
	ErrAlreadyPaid             = errors.New("order already paid")
	ErrPaymentMethodDisabled   = errors.New("payment method disabled")
	ErrInvalidPhoneNumber      = errors.New("invalid phone number")
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrPaymentGatewayFailed    = errors.New("payment gateway request failed")
	ErrCallbackInvalid         = errors.New("callback payload invalid")

	ErrCouponInvalid      = errors.New("coupon invalid or expired")
	ErrCouponMinNotMet    = errors.New("order below coupon minimum")
	ErrCouponUsedUp       = errors.New("coupon usage limit reached")
	ErrCouponCodeExists   = errors.New("coupon code already exists")
	ErrReviewNotEligible  = errors.New("only buyers of the product can review it")
	ErrReviewExists       = errors.New("product already reviewed")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrAddressNotFound    = errors.New("address not found")
	ErrDefaultAddressOnly = errors.New("cannot delete the only default address")

	ErrEmailServiceDisabled      = errors.New("email sending disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("recipient address rejected")
)
