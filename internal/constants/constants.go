package constants

// Order status constants
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Order payment status constants
const (
	OrderPaymentStatusPending  = "pending"
	OrderPaymentStatusPaid     = "paid"
	OrderPaymentStatusFailed   = "failed"
	OrderPaymentStatusRefunded = "refunded"
)

// Payment status constants
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusPending   = "pending"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
)

// Payment method constants
const (
	PaymentMethodMpesa  = "mpesa"
	PaymentMethodStripe = "stripe"
	PaymentMethodCOD    = "cash_on_delivery"
)

// Inventory movement reason constants
const (
	InventoryReasonSale        = "sale"
	InventoryReasonCancel      = "order_cancelled"
	InventoryReasonAdminAdjust = "admin_adjust"
	InventoryReasonRestock     = "restock"
)

// Coupon type constants
const (
	CouponTypeFixed   = "fixed"
	CouponTypePercent = "percent"
)

// Review status constants
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// Queue constants
const (
	QueueDefault           = "default"
	TaskOrderConfirmEmail  = "order:confirmation_email"
	TaskPaymentReceipt     = "payment:receipt_email"
	TaskOrderTimeoutCancel = "order:timeout_cancel"
)

// Cache constants
const (
	RedisPrefixDefault = "fixmore"
)

// Setting keys
const (
	SettingKeyShopConfig             = "shop_config"
	SettingFieldCurrency             = "currency"
	SettingFieldVATRate              = "vat_rate"
	SettingFieldShippingFee          = "shipping_fee"
	SettingFieldFreeShippingOver     = "free_shipping_threshold"
	SettingFieldPaymentExpireMinutes = "payment_expire_minutes"
)

// Currency constants
const (
	SiteCurrencyDefault = "KES"
)

// M-Pesa callback constants
const (
	MpesaResultSuccess = 0
)
