package queue

import (
	"encoding/json"

	"github.com/fixmore/mall/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderConfirmEmail is the order confirmation email task.
	TaskOrderConfirmEmail = constants.TaskOrderConfirmEmail
	// TaskPaymentReceipt is the payment receipt email task.
	TaskPaymentReceipt = constants.TaskPaymentReceipt
	// TaskOrderTimeoutCancel is the unpaid order timeout task.
	TaskOrderTimeoutCancel = constants.TaskOrderTimeoutCancel
)

// OrderEmailPayload carries the order for confirmation emails.
type OrderEmailPayload struct {
	OrderID uint `json:"order_id"`
}

// PaymentReceiptPayload carries the settled payment for receipt emails.
type PaymentReceiptPayload struct {
	OrderID   uint `json:"order_id"`
	PaymentID uint `json:"payment_id"`
}

// OrderTimeoutCancelPayload carries the order for timeout cancellation.
type OrderTimeoutCancelPayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderConfirmEmailTask creates an order confirmation email task.
func NewOrderConfirmEmailTask(payload OrderEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderConfirmEmail, body), nil
}

// NewPaymentReceiptTask creates a payment receipt email task.
func NewPaymentReceiptTask(payload PaymentReceiptPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentReceipt, body), nil
}

// NewOrderTimeoutCancelTask creates an unpaid order timeout task.
func NewOrderTimeoutCancelTask(payload OrderTimeoutCancelPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderTimeoutCancel, body), nil
}
