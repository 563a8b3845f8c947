package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fixmore/mall/internal/config"
	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/logger"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/payment/mpesa"
	"github.com/fixmore/mall/internal/payment/stripe"
	"github.com/fixmore/mall/internal/queue"
	"github.com/fixmore/mall/internal/repository"

	"go.uber.org/zap"
)

// PaymentService drives gateway payments and their callbacks.
type PaymentService struct {
	cfg         *config.Config
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	mpesaClient *mpesa.Client
	queueClient *queue.Client
}

// NewPaymentService creates a payment service. The M-Pesa client is nil when
// the gateway is disabled.
func NewPaymentService(cfg *config.Config, orderRepo repository.OrderRepository, paymentRepo repository.PaymentRepository, mpesaClient *mpesa.Client, queueClient *queue.Client) *PaymentService {
	return &PaymentService{
		cfg:         cfg,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		mpesaClient: mpesaClient,
		queueClient: queueClient,
	}
}

func paymentLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// PaymentMethodInfo is one enabled payment method for the storefront.
type PaymentMethodInfo struct {
	Method      string `json:"method"`
	DisplayName string `json:"display_name"`
}

// ListPaymentMethods lists the payment methods a buyer can currently pick.
func (s *PaymentService) ListPaymentMethods() []PaymentMethodInfo {
	methods := make([]PaymentMethodInfo, 0, 3)
	if s.cfg != nil && s.cfg.Mpesa.Enabled {
		methods = append(methods, PaymentMethodInfo{Method: constants.PaymentMethodMpesa, DisplayName: "M-Pesa"})
	}
	if s.cfg != nil && s.cfg.Stripe.Enabled {
		methods = append(methods, PaymentMethodInfo{Method: constants.PaymentMethodStripe, DisplayName: "Card (Stripe)"})
	}
	methods = append(methods, PaymentMethodInfo{Method: constants.PaymentMethodCOD, DisplayName: "Cash on delivery"})
	return methods
}

// InitiateMpesaInput starts an STK push against an order.
type InitiateMpesaInput struct {
	OrderID     uint
	UserID      uint
	PhoneNumber string
	Context     context.Context
}

// InitiateMpesaResult is the accepted push.
type InitiateMpesaResult struct {
	Payment         *models.Payment
	CustomerMessage string
}

// InitiateMpesa sends an STK push for the order's outstanding total.
func (s *PaymentService) InitiateMpesa(input InitiateMpesaInput) (*InitiateMpesaResult, error) {
	if s.cfg == nil || !s.cfg.Mpesa.Enabled || s.mpesaClient == nil {
		return nil, ErrPaymentMethodDisabled
	}
	order, err := s.payableOrder(input.OrderID, input.UserID)
	if err != nil {
		return nil, err
	}
	phone, err := mpesa.NormalizePhone(input.PhoneNumber)
	if err != nil {
		return nil, ErrInvalidPhoneNumber
	}

	log := paymentLogger(
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"method", constants.PaymentMethodMpesa,
	)

	now := time.Now()
	payment := &models.Payment{
		OrderID:     order.ID,
		Method:      constants.PaymentMethodMpesa,
		Amount:      order.TotalAmount,
		Currency:    order.Currency,
		Status:      constants.PaymentStatusInitiated,
		PhoneNumber: phone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		log.Errorw("payment_create_failed", "error", err)
		return nil, err
	}

	ctx := input.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pushResult, err := s.mpesaClient.STKPush(ctx, mpesa.STKPushInput{
		Phone:            phone,
		Amount:           order.TotalAmount.Decimal,
		AccountReference: order.OrderNo,
		Description:      "Order " + order.OrderNo,
	})
	if err != nil {
		s.markPaymentFailed(payment, err.Error())
		log.Errorw("mpesa_stk_push_failed", "payment_id", payment.ID, "error", err)
		if errors.Is(err, mpesa.ErrPhoneInvalid) {
			return nil, ErrInvalidPhoneNumber
		}
		return nil, ErrPaymentGatewayFailed
	}

	payment.Status = constants.PaymentStatusPending
	payment.ProviderRef = pushResult.CheckoutRequestID
	payment.UpdatedAt = time.Now()
	if err := s.paymentRepo.Update(payment); err != nil {
		log.Errorw("payment_update_failed", "payment_id", payment.ID, "error", err)
		return nil, err
	}

	log.Infow("mpesa_stk_push_sent",
		"payment_id", payment.ID,
		"checkout_request_id", pushResult.CheckoutRequestID,
		"amount", payment.Amount.String(),
	)
	return &InitiateMpesaResult{
		Payment:         payment,
		CustomerMessage: pushResult.CustomerMessage,
	}, nil
}

// InitiateStripeInput creates a card payment intent for an order.
type InitiateStripeInput struct {
	OrderID uint
	UserID  uint
	Context context.Context
}

// InitiateStripeResult carries the client secret the frontend confirms with.
type InitiateStripeResult struct {
	Payment        *models.Payment
	ClientSecret   string
	PublishableKey string
}

// InitiateStripe creates a Stripe payment intent for the order total.
func (s *PaymentService) InitiateStripe(input InitiateStripeInput) (*InitiateStripeResult, error) {
	if s.cfg == nil || !s.cfg.Stripe.Enabled {
		return nil, ErrPaymentMethodDisabled
	}
	order, err := s.payableOrder(input.OrderID, input.UserID)
	if err != nil {
		return nil, err
	}

	log := paymentLogger(
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"method", constants.PaymentMethodStripe,
	)

	now := time.Now()
	payment := &models.Payment{
		OrderID:   order.ID,
		Method:    constants.PaymentMethodStripe,
		Amount:    order.TotalAmount,
		Currency:  order.Currency,
		Status:    constants.PaymentStatusInitiated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		log.Errorw("payment_create_failed", "error", err)
		return nil, err
	}

	ctx := input.Context
	if ctx == nil {
		ctx = context.Background()
	}
	stripeCfg := s.stripeConfig()
	intent, err := stripe.CreatePaymentIntent(ctx, stripeCfg, stripe.CreateIntentInput{
		OrderNo:     order.OrderNo,
		PaymentID:   payment.ID,
		Amount:      order.TotalAmount.String(),
		Currency:    order.Currency,
		Description: "Order " + order.OrderNo,
	})
	if err != nil {
		s.markPaymentFailed(payment, err.Error())
		log.Errorw("stripe_intent_create_failed", "payment_id", payment.ID, "error", err)
		return nil, ErrPaymentGatewayFailed
	}

	payment.Status = constants.PaymentStatusPending
	payment.ProviderRef = intent.PaymentIntentID
	payment.UpdatedAt = time.Now()
	if intent.Raw != nil {
		payment.ProviderPayload = models.JSON(intent.Raw)
	}
	if err := s.paymentRepo.Update(payment); err != nil {
		log.Errorw("payment_update_failed", "payment_id", payment.ID, "error", err)
		return nil, err
	}

	log.Infow("stripe_intent_created",
		"payment_id", payment.ID,
		"payment_intent_id", intent.PaymentIntentID,
		"amount", payment.Amount.String(),
	)
	return &InitiateStripeResult{
		Payment:        payment,
		ClientSecret:   intent.ClientSecret,
		PublishableKey: s.cfg.Stripe.PublishableKey,
	}, nil
}

// ListPayments lists payments for the admin panel.
func (s *PaymentService) ListPayments(filter repository.PaymentListFilter) ([]models.Payment, int64, error) {
	return s.paymentRepo.ListAdmin(filter)
}

// GetPayment fetches one payment record.
func (s *PaymentService) GetPayment(id uint) (*models.Payment, error) {
	if id == 0 {
		return nil, ErrPaymentNotFound
	}
	payment, err := s.paymentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// ExpireStaleBefore bulk-fails in-flight payments older than the cutoff.
func (s *PaymentService) ExpireStaleBefore(cutoff time.Time) (int64, error) {
	affected, err := s.paymentRepo.MarkExpiredBefore(cutoff, "payment window elapsed")
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		paymentLogger().Infow("payments_expired", "count", affected, "cutoff", cutoff)
	}
	return affected, nil
}

// payableOrder loads the order and checks it can accept a payment attempt.
func (s *PaymentService) payableOrder(orderID, userID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrNotFound
	}
	var order *models.Order
	var err error
	if userID != 0 {
		order, err = s.orderRepo.GetByIDAndUser(orderID, userID)
	} else {
		order, err = s.orderRepo.GetByID(orderID)
	}
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	if order.PaymentStatus == constants.OrderPaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}
	switch order.Status {
	case constants.OrderStatusPending, constants.OrderStatusConfirmed:
	default:
		return nil, ErrOrderNotPayable
	}
	return order, nil
}

func (s *PaymentService) markPaymentFailed(payment *models.Payment, reason string) {
	payment.Status = constants.PaymentStatusFailed
	payment.FailReason = strings.TrimSpace(reason)
	payment.UpdatedAt = time.Now()
	if err := s.paymentRepo.Update(payment); err != nil {
		paymentLogger().Errorw("payment_mark_failed_error", "payment_id", payment.ID, "error", err)
	}
}

func (s *PaymentService) stripeConfig() *stripe.Config {
	timeout := time.Duration(s.cfg.Stripe.TimeoutMS) * time.Millisecond
	return &stripe.Config{
		SecretKey:      s.cfg.Stripe.SecretKey,
		PublishableKey: s.cfg.Stripe.PublishableKey,
		WebhookSecret:  s.cfg.Stripe.WebhookSecret,
		Timeout:        timeout,
	}
}
