package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fixmore/mall/internal/config"
	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"

	"gorm.io/gorm"
)

func newTestPaymentService(db *gorm.DB, cfg *config.Config) *PaymentService {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return NewPaymentService(
		cfg,
		repository.NewOrderRepository(db),
		repository.NewPaymentRepository(db),
		nil,
		nil,
	)
}

func createPendingOrderWithPayment(t *testing.T, db *gorm.DB, checkoutRequestID string) (*models.Order, *models.Payment) {
	t.Helper()
	order := &models.Order{
		OrderNo:        "ORD20260901120000123456",
		UserID:         1,
		Status:         constants.OrderStatusPending,
		PaymentStatus:  constants.OrderPaymentStatusPending,
		PaymentMethod:  constants.PaymentMethodMpesa,
		Currency:       "KES",
		SubtotalAmount: money(2000),
		TaxAmount:      money(320),
		ShippingAmount: money(300),
		TotalAmount:    money(2620),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	payment := &models.Payment{
		OrderID:     order.ID,
		Method:      constants.PaymentMethodMpesa,
		Amount:      order.TotalAmount,
		Currency:    order.Currency,
		Status:      constants.PaymentStatusPending,
		ProviderRef: checkoutRequestID,
		PhoneNumber: "254712345678",
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	return order, payment
}

func mpesaCallbackBody(checkoutRequestID string, resultCode int) []byte {
	if resultCode == 0 {
		return []byte(fmt.Sprintf(`{
			"Body": {
				"stkCallback": {
					"MerchantRequestID": "29115-34620561-1",
					"CheckoutRequestID": %q,
					"ResultCode": 0,
					"ResultDesc": "The service request is processed successfully.",
					"CallbackMetadata": {
						"Item": [
							{"Name": "Amount", "Value": 2620},
							{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
							{"Name": "TransactionDate", "Value": 20260901143022},
							{"Name": "PhoneNumber", "Value": 254712345678}
						]
					}
				}
			}
		}`, checkoutRequestID))
	}
	return []byte(fmt.Sprintf(`{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": %q,
				"ResultCode": %d,
				"ResultDesc": "Request cancelled by user."
			}
		}
	}`, checkoutRequestID, resultCode))
}

func TestHandleMpesaCallbackSettlesOrder(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestPaymentService(db, nil)
	order, payment := createPendingOrderWithPayment(t, db, "ws_CO_1")

	if err := svc.HandleMpesaCallback(mpesaCallbackBody("ws_CO_1", 0)); err != nil {
		t.Fatalf("callback failed: %v", err)
	}

	var updatedPayment models.Payment
	db.First(&updatedPayment, payment.ID)
	if updatedPayment.Status != constants.PaymentStatusSuccess {
		t.Fatalf("payment status want success got %s", updatedPayment.Status)
	}
	if updatedPayment.ReceiptNumber != "NLJ7RT61SV" {
		t.Fatalf("receipt want NLJ7RT61SV got %s", updatedPayment.ReceiptNumber)
	}
	if updatedPayment.PaidAt == nil {
		t.Fatalf("paid_at should be set")
	}

	var updatedOrder models.Order
	db.First(&updatedOrder, order.ID)
	if updatedOrder.PaymentStatus != constants.OrderPaymentStatusPaid {
		t.Fatalf("order payment status want paid got %s", updatedOrder.PaymentStatus)
	}
	if updatedOrder.Status != constants.OrderStatusConfirmed {
		t.Fatalf("order status want confirmed got %s", updatedOrder.Status)
	}
	if updatedOrder.PaidAt == nil {
		t.Fatalf("order paid_at should be set")
	}
}

func TestHandleMpesaCallbackIdempotent(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestPaymentService(db, nil)
	order, payment := createPendingOrderWithPayment(t, db, "ws_CO_2")

	if err := svc.HandleMpesaCallback(mpesaCallbackBody("ws_CO_2", 0)); err != nil {
		t.Fatalf("first callback failed: %v", err)
	}
	var firstPaidAt time.Time
	var updatedOrder models.Order
	db.First(&updatedOrder, order.ID)
	firstPaidAt = *updatedOrder.PaidAt

	if err := svc.HandleMpesaCallback(mpesaCallbackBody("ws_CO_2", 0)); err != nil {
		t.Fatalf("duplicate callback should be acknowledged, got %v", err)
	}

	db.First(&updatedOrder, order.ID)
	if !updatedOrder.PaidAt.Equal(firstPaidAt) {
		t.Fatalf("duplicate callback must not change paid_at")
	}
	var updatedPayment models.Payment
	db.First(&updatedPayment, payment.ID)
	if updatedPayment.Status != constants.PaymentStatusSuccess {
		t.Fatalf("payment should stay success, got %s", updatedPayment.Status)
	}
}

func TestHandleMpesaCallbackFailure(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestPaymentService(db, nil)
	order, payment := createPendingOrderWithPayment(t, db, "ws_CO_3")

	if err := svc.HandleMpesaCallback(mpesaCallbackBody("ws_CO_3", 1032)); err != nil {
		t.Fatalf("failure callback should be acknowledged, got %v", err)
	}

	var updatedPayment models.Payment
	db.First(&updatedPayment, payment.ID)
	if updatedPayment.Status != constants.PaymentStatusFailed {
		t.Fatalf("payment status want failed got %s", updatedPayment.Status)
	}
	if updatedPayment.FailReason == "" {
		t.Fatalf("fail reason should be recorded")
	}

	var updatedOrder models.Order
	db.First(&updatedOrder, order.ID)
	if updatedOrder.PaymentStatus != constants.OrderPaymentStatusPending {
		t.Fatalf("order should stay pending, got %s", updatedOrder.PaymentStatus)
	}
}

func TestHandleMpesaCallbackLeavesCancelledOrder(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestPaymentService(db, nil)
	order, payment := createPendingOrderWithPayment(t, db, "ws_CO_5")

	// The buyer cancels while the STK push is still on their phone.
	now := time.Now()
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"status":       constants.OrderStatusCancelled,
			"cancelled_at": now,
		}).Error; err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}

	if err := svc.HandleMpesaCallback(mpesaCallbackBody("ws_CO_5", 0)); err != nil {
		t.Fatalf("callback for cancelled order should be acknowledged, got %v", err)
	}

	// The settled payment stays on record for reconciliation.
	var updatedPayment models.Payment
	db.First(&updatedPayment, payment.ID)
	if updatedPayment.Status != constants.PaymentStatusSuccess {
		t.Fatalf("payment status want success got %s", updatedPayment.Status)
	}

	var updatedOrder models.Order
	db.First(&updatedOrder, order.ID)
	if updatedOrder.Status != constants.OrderStatusCancelled {
		t.Fatalf("cancelled order must not be re-confirmed, got %s", updatedOrder.Status)
	}
	if updatedOrder.PaymentStatus != constants.OrderPaymentStatusPending {
		t.Fatalf("cancelled order payment status must stay pending, got %s", updatedOrder.PaymentStatus)
	}
	if updatedOrder.PaidAt != nil {
		t.Fatalf("cancelled order must not gain paid_at")
	}
}

func TestExpireStaleBeforeFailsInFlightPayments(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestPaymentService(db, nil)
	order, stale := createPendingOrderWithPayment(t, db, "ws_CO_6")

	old := time.Now().Add(-2 * time.Hour)
	if err := db.Model(&models.Payment{}).Where("id = ?", stale.ID).
		Update("created_at", old).Error; err != nil {
		t.Fatalf("backdate payment failed: %v", err)
	}
	fresh := &models.Payment{
		OrderID:     order.ID,
		Method:      constants.PaymentMethodMpesa,
		Amount:      order.TotalAmount,
		Currency:    order.Currency,
		Status:      constants.PaymentStatusInitiated,
		ProviderRef: "ws_CO_6_retry",
	}
	if err := db.Create(fresh).Error; err != nil {
		t.Fatalf("create fresh payment failed: %v", err)
	}

	affected, err := svc.ExpireStaleBefore(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expired payments want 1 got %d", affected)
	}

	var expired models.Payment
	db.First(&expired, stale.ID)
	if expired.Status != constants.PaymentStatusFailed {
		t.Fatalf("stale payment status want failed got %s", expired.Status)
	}
	if expired.FailReason != "payment window elapsed" {
		t.Fatalf("fail reason want %q got %q", "payment window elapsed", expired.FailReason)
	}

	var kept models.Payment
	db.First(&kept, fresh.ID)
	if kept.Status != constants.PaymentStatusInitiated {
		t.Fatalf("fresh payment must be untouched, got %s", kept.Status)
	}
}

func TestHandleMpesaCallbackUnknownReference(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestPaymentService(db, nil)

	if err := svc.HandleMpesaCallback(mpesaCallbackBody("ws_CO_unknown", 0)); err != nil {
		t.Fatalf("unknown reference should be acknowledged, got %v", err)
	}
}

func TestHandleMpesaCallbackInvalidBody(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestPaymentService(db, nil)

	if err := svc.HandleMpesaCallback([]byte("not json")); !errors.Is(err, ErrCallbackInvalid) {
		t.Fatalf("want ErrCallbackInvalid got %v", err)
	}
}

func TestHandleStripeWebhookDisabled(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestPaymentService(db, &config.Config{})

	err := svc.HandleStripeWebhook(nil, []byte("{}"))
	if !errors.Is(err, ErrPaymentMethodDisabled) {
		t.Fatalf("want ErrPaymentMethodDisabled got %v", err)
	}
}

func TestHandleStripeWebhookBadSignature(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestPaymentService(db, &config.Config{
		Stripe: config.StripeConfig{
			Enabled:       true,
			SecretKey:     "sk_test_123",
			WebhookSecret: "whsec_test",
		},
	})

	headers := map[string]string{"Stripe-Signature": "t=1,v1=bogus"}
	err := svc.HandleStripeWebhook(headers, []byte(`{"type":"payment_intent.succeeded","data":{"object":{}}}`))
	if !errors.Is(err, ErrCallbackInvalid) {
		t.Fatalf("want ErrCallbackInvalid got %v", err)
	}
}

func TestInitiateMpesaRequiresEnabledGateway(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestPaymentService(db, &config.Config{})

	_, err := svc.InitiateMpesa(InitiateMpesaInput{OrderID: 1, UserID: 1, PhoneNumber: "0712345678"})
	if !errors.Is(err, ErrPaymentMethodDisabled) {
		t.Fatalf("want ErrPaymentMethodDisabled got %v", err)
	}
}

func TestPayableOrderGuards(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestPaymentService(db, nil)
	order, _ := createPendingOrderWithPayment(t, db, "ws_CO_4")

	if _, err := svc.payableOrder(order.ID, order.UserID); err != nil {
		t.Fatalf("pending order should be payable, got %v", err)
	}

	db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("payment_status", constants.OrderPaymentStatusPaid)
	if _, err := svc.payableOrder(order.ID, order.UserID); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("paid order want ErrAlreadyPaid got %v", err)
	}

	db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"payment_status": constants.OrderPaymentStatusPending,
		"status":         constants.OrderStatusCancelled,
	})
	if _, err := svc.payableOrder(order.ID, order.UserID); !errors.Is(err, ErrOrderNotPayable) {
		t.Fatalf("cancelled order want ErrOrderNotPayable got %v", err)
	}

	if _, err := svc.payableOrder(order.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign user want ErrNotFound got %v", err)
	}
}

func TestListPaymentMethodsFollowsConfig(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestPaymentService(db, &config.Config{
		Mpesa:  config.MpesaConfig{Enabled: true},
		Stripe: config.StripeConfig{Enabled: false},
	})

	methods := svc.ListPaymentMethods()
	if len(methods) != 2 {
		t.Fatalf("methods want 2 got %d", len(methods))
	}
	if methods[0].Method != constants.PaymentMethodMpesa {
		t.Fatalf("first method want mpesa got %s", methods[0].Method)
	}
	if methods[1].Method != constants.PaymentMethodCOD {
		t.Fatalf("last method want cash_on_delivery got %s", methods[1].Method)
	}
}
