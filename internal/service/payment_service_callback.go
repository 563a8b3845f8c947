package service

import (
	"encoding/json"
	"time"

	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/payment/mpesa"
	"github.com/fixmore/mall/internal/payment/stripe"
	"github.com/fixmore/mall/internal/queue"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HandleMpesaCallback processes the Daraja STK callback. Unknown references
// and repeated deliveries are acknowledged without side effects.
func (s *PaymentService) HandleMpesaCallback(body []byte) error {
	result, err := mpesa.ParseCallback(body)
	if err != nil {
		paymentLogger().Warnw("mpesa_callback_parse_failed", "error", err)
		return ErrCallbackInvalid
	}

	log := paymentLogger(
		"checkout_request_id", result.CheckoutRequestID,
		"result_code", result.ResultCode,
	)
	log.Infow("mpesa_callback_received")

	payment, err := s.paymentRepo.GetLatestByProviderRef(result.CheckoutRequestID)
	if err != nil {
		log.Errorw("mpesa_callback_payment_fetch_failed", "error", err)
		return err
	}
	if payment == nil {
		// Daraja retries callbacks; an unknown reference is acknowledged so
		// it stops retrying.
		log.Warnw("mpesa_callback_payment_not_found")
		return nil
	}
	if payment.Status == constants.PaymentStatusSuccess {
		log.Infow("mpesa_callback_idempotent_success", "payment_id", payment.ID)
		return nil
	}

	var payload models.JSON
	if raw := decodeCallbackPayload(body); raw != nil {
		payload = raw
	}

	if result.Success() {
		paidAt := time.Now()
		if result.TransactionDate != nil {
			paidAt = *result.TransactionDate
		}
		return s.settlePayment(payment, settleInput{
			ReceiptNumber: result.ReceiptNumber,
			PhoneNumber:   result.PhoneNumber,
			PaidAt:        paidAt,
			Payload:       payload,
		}, log)
	}

	return s.failPayment(payment, result.ResultDesc, payload, log)
}

// HandleStripeWebhook verifies and processes a Stripe webhook delivery.
func (s *PaymentService) HandleStripeWebhook(headers map[string]string, body []byte) error {
	if s.cfg == nil || !s.cfg.Stripe.Enabled {
		return ErrPaymentMethodDisabled
	}
	event, err := stripe.VerifyAndParseWebhook(s.stripeConfig(), headers, body, time.Now())
	if err != nil {
		paymentLogger().Warnw("stripe_webhook_verify_failed", "error", err)
		return ErrCallbackInvalid
	}

	log := paymentLogger(
		"event_id", event.EventID,
		"event_type", event.EventType,
		"payment_intent_id", event.PaymentIntentID,
		"target_status", event.Status,
	)
	log.Infow("stripe_webhook_received")

	payment, err := s.resolveStripePayment(event)
	if err != nil {
		log.Errorw("stripe_webhook_payment_fetch_failed", "error", err)
		return err
	}
	if payment == nil {
		// Events for intents we never issued are acknowledged and dropped.
		log.Warnw("stripe_webhook_payment_not_found")
		return nil
	}
	if payment.Status == constants.PaymentStatusSuccess {
		log.Infow("stripe_webhook_idempotent_success", "payment_id", payment.ID)
		return nil
	}

	var payload models.JSON
	if event.Raw != nil {
		payload = models.JSON(event.Raw)
	}

	switch event.Status {
	case constants.PaymentStatusSuccess:
		paidAt := time.Now()
		if event.PaidAt != nil {
			paidAt = *event.PaidAt
		}
		return s.settlePayment(payment, settleInput{
			ReceiptNumber: event.PaymentIntentID,
			PaidAt:        paidAt,
			Payload:       payload,
		}, log)
	case constants.PaymentStatusFailed:
		return s.failPayment(payment, event.EventType, payload, log)
	default:
		// Processing events only refresh the stored payload.
		now := time.Now()
		payment.CallbackAt = &now
		payment.UpdatedAt = now
		if payload != nil {
			payment.ProviderPayload = payload
		}
		if err := s.paymentRepo.Update(payment); err != nil {
			return err
		}
		log.Infow("stripe_webhook_noop", "payment_id", payment.ID)
		return nil
	}
}

func (s *PaymentService) resolveStripePayment(event *stripe.WebhookResult) (*models.Payment, error) {
	if event.PaymentID != 0 {
		payment, err := s.paymentRepo.GetByID(event.PaymentID)
		if err != nil {
			return nil, err
		}
		if payment != nil {
			return payment, nil
		}
	}
	if event.PaymentIntentID == "" {
		return nil, nil
	}
	return s.paymentRepo.GetLatestByProviderRef(event.PaymentIntentID)
}

type settleInput struct {
	ReceiptNumber string
	PhoneNumber   string
	PaidAt        time.Time
	Payload       models.JSON
}

// settlePayment marks the payment successful and confirms the order. A
// cancelled order keeps its status; the settled payment is recorded for the
// admin to reconcile.
func (s *PaymentService) settlePayment(payment *models.Payment, input settleInput, log *zap.SugaredLogger) error {
	now := time.Now()
	payment.Status = constants.PaymentStatusSuccess
	payment.PaidAt = &input.PaidAt
	payment.CallbackAt = &now
	payment.UpdatedAt = now
	payment.FailReason = ""
	if input.ReceiptNumber != "" {
		payment.ReceiptNumber = input.ReceiptNumber
	}
	if input.PhoneNumber != "" {
		payment.PhoneNumber = input.PhoneNumber
	}
	if input.Payload != nil {
		payment.ProviderPayload = input.Payload
	}

	orderConfirmed := false
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		paymentRepo := s.paymentRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		if err := paymentRepo.Update(payment); err != nil {
			return err
		}

		order, err := orderRepo.GetByID(payment.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrNotFound
		}
		if order.PaymentStatus == constants.OrderPaymentStatusPaid {
			return nil
		}

		updates := map[string]interface{}{
			"payment_status": constants.OrderPaymentStatusPaid,
			"paid_at":        input.PaidAt,
			"updated_at":     now,
		}
		status := order.Status
		if status == constants.OrderStatusPending {
			status = constants.OrderStatusConfirmed
		}
		// Guarded so a cancellation committing after the read above is not
		// overwritten; the settled payment stays on record for reconciliation.
		affected, err := orderRepo.UpdateStatusFrom(order.ID,
			[]string{constants.OrderStatusPending, constants.OrderStatusConfirmed},
			status, updates)
		if err != nil {
			return err
		}
		if affected == 0 {
			log.Warnw("payment_settled_for_cancelled_order",
				"payment_id", payment.ID,
				"order_id", order.ID,
				"order_no", order.OrderNo,
			)
			return nil
		}
		orderConfirmed = true
		return nil
	})
	if err != nil {
		log.Errorw("payment_settle_failed", "payment_id", payment.ID, "error", err)
		return err
	}

	log.Infow("payment_settled",
		"payment_id", payment.ID,
		"order_id", payment.OrderID,
		"receipt_number", payment.ReceiptNumber,
		"order_confirmed", orderConfirmed,
	)
	if orderConfirmed {
		s.enqueueReceiptAsync(payment, log)
	}
	return nil
}

func (s *PaymentService) failPayment(payment *models.Payment, reason string, payload models.JSON, log *zap.SugaredLogger) error {
	now := time.Now()
	payment.Status = constants.PaymentStatusFailed
	payment.FailReason = reason
	payment.CallbackAt = &now
	payment.UpdatedAt = now
	if payload != nil {
		payment.ProviderPayload = payload
	}
	if err := s.paymentRepo.Update(payment); err != nil {
		log.Errorw("payment_fail_update_failed", "payment_id", payment.ID, "error", err)
		return err
	}
	log.Infow("payment_failed", "payment_id", payment.ID, "reason", reason)
	return nil
}

func decodeCallbackPayload(body []byte) models.JSON {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}
	return models.JSON(raw)
}

func (s *PaymentService) enqueueReceiptAsync(payment *models.Payment, log *zap.SugaredLogger) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	err := s.queueClient.EnqueuePaymentReceipt(queue.PaymentReceiptPayload{
		OrderID:   payment.OrderID,
		PaymentID: payment.ID,
	}, asynq.MaxRetry(3))
	if err != nil {
		log.Warnw("payment_enqueue_receipt_failed",
			"payment_id", payment.ID,
			"order_id", payment.OrderID,
			"error", err,
		)
	}
}
