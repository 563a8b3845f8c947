package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/fixmore/mall/internal/logger"
	"github.com/fixmore/mall/internal/provider"
	"github.com/fixmore/mall/internal/queue"
	"github.com/fixmore/mall/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer handles background tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates a consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register wires the task handlers.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderConfirmEmail, c.handleOrderConfirmEmail)
	mux.HandleFunc(queue.TaskPaymentReceipt, c.handlePaymentReceipt)
	mux.HandleFunc(queue.TaskOrderTimeoutCancel, c.handleOrderTimeoutCancel)
}

func (c *Consumer) handleOrderConfirmEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.OrderEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_confirm_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_confirm_email_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_confirm_email_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	receiverEmail, err := c.receiverEmail(order.UserID)
	if err != nil {
		return err
	}
	if receiverEmail == "" || c.EmailService == nil {
		return nil
	}
	input := service.OrderEmailInput{
		OrderNo:  order.OrderNo,
		Status:   order.Status,
		Total:    order.TotalAmount,
		Currency: order.Currency,
		Items:    order.Items,
	}
	if err := c.EmailService.SendOrderConfirmation(receiverEmail, input); err != nil {
		if errors.Is(err, service.ErrEmailServiceDisabled) || errors.Is(err, service.ErrEmailServiceNotConfigured) {
			logger.Debugw("worker_order_confirm_email_skip_disabled", "order_id", order.ID)
			return nil
		}
		logger.Warnw("worker_order_confirm_email_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handlePaymentReceipt(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.PaymentReceiptPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_payment_receipt_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 || payload.PaymentID == 0 {
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_payment_receipt_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	payment, err := c.PaymentRepo.GetByID(payload.PaymentID)
	if err != nil {
		logger.Warnw("worker_payment_receipt_fetch_payment_failed", "payment_id", payload.PaymentID, "error", err)
		return err
	}
	if order == nil || payment == nil {
		logger.Debugw("worker_payment_receipt_skip_not_found",
			"order_id", payload.OrderID,
			"payment_id", payload.PaymentID,
		)
		return nil
	}
	receiverEmail, err := c.receiverEmail(order.UserID)
	if err != nil {
		return err
	}
	if receiverEmail == "" || c.EmailService == nil {
		return nil
	}
	input := service.ReceiptEmailInput{
		OrderNo:       order.OrderNo,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		Method:        payment.Method,
		ReceiptNumber: payment.ReceiptNumber,
	}
	if err := c.EmailService.SendPaymentReceipt(receiverEmail, input); err != nil {
		if errors.Is(err, service.ErrEmailServiceDisabled) || errors.Is(err, service.ErrEmailServiceNotConfigured) {
			logger.Debugw("worker_payment_receipt_skip_disabled", "order_id", order.ID)
			return nil
		}
		logger.Warnw("worker_payment_receipt_send_failed",
			"order_id", order.ID,
			"payment_id", payment.ID,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleOrderTimeoutCancel(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.OrderTimeoutCancelPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_timeout_cancel_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 || c.OrderService == nil {
		return nil
	}
	if _, err := c.OrderService.CancelExpiredOrder(payload.OrderID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			logger.Debugw("worker_order_timeout_cancel_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		case errors.Is(err, service.ErrOrderNotCancellable):
			logger.Debugw("worker_order_timeout_cancel_skip_not_cancellable", "order_id", payload.OrderID)
			return nil
		default:
			logger.Warnw("worker_order_timeout_cancel_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	return nil
}

func (c *Consumer) receiverEmail(userID uint) (string, error) {
	if userID == 0 {
		return "", nil
	}
	user, err := c.UserRepo.GetByID(userID)
	if err != nil {
		logger.Warnw("worker_fetch_user_failed", "user_id", userID, "error", err)
		return "", err
	}
	if user == nil {
		return "", nil
	}
	return strings.TrimSpace(user.Email), nil
}
