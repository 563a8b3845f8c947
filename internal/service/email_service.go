package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/fixmore/mall/internal/config"
	"github.com/fixmore/mall/internal/models"
)

// EmailService sends transactional emails over SMTP.
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService creates an email service.
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// OrderEmailInput carries the order fields the templates render.
type OrderEmailInput struct {
	OrderNo  string
	Status   string
	Total    models.Money
	Currency string
	Items    []models.OrderItem
}

// SendOrderConfirmation sends the post-checkout confirmation.
func (s *EmailService) SendOrderConfirmation(toEmail string, input OrderEmailInput) error {
	subject := fmt.Sprintf("Order %s received", input.OrderNo)
	var body bytes.Buffer
	fmt.Fprintf(&body, "Thank you for your order.\n\n")
	fmt.Fprintf(&body, "Order number: %s\n", input.OrderNo)
	for _, item := range input.Items {
		fmt.Fprintf(&body, "  %s x%d\n", item.ProductName, item.Quantity)
	}
	fmt.Fprintf(&body, "\nTotal: %s %s\n", input.Total.String(), input.Currency)
	fmt.Fprintf(&body, "\nWe will confirm your order as soon as payment is received.\n")
	return s.sendTextEmail(toEmail, subject, body.String())
}

// ReceiptEmailInput carries the settled payment fields.
type ReceiptEmailInput struct {
	OrderNo       string
	Amount        models.Money
	Currency      string
	Method        string
	ReceiptNumber string
}

// SendPaymentReceipt sends the payment receipt after settlement.
func (s *EmailService) SendPaymentReceipt(toEmail string, input ReceiptEmailInput) error {
	subject := fmt.Sprintf("Payment received for order %s", input.OrderNo)
	var body bytes.Buffer
	fmt.Fprintf(&body, "We have received your payment.\n\n")
	fmt.Fprintf(&body, "Order number: %s\n", input.OrderNo)
	fmt.Fprintf(&body, "Amount: %s %s\n", input.Amount.String(), input.Currency)
	fmt.Fprintf(&body, "Method: %s\n", input.Method)
	if strings.TrimSpace(input.ReceiptNumber) != "" {
		fmt.Fprintf(&body, "Receipt: %s\n", input.ReceiptNumber)
	}
	fmt.Fprintf(&body, "\nYour order is now being prepared.\n")
	return s.sendTextEmail(toEmail, subject, body.String())
}

// SendOrderStatusUpdate notifies the buyer of a status change.
func (s *EmailService) SendOrderStatusUpdate(toEmail string, input OrderEmailInput) error {
	subject := fmt.Sprintf("Order %s is now %s", input.OrderNo, input.Status)
	body := fmt.Sprintf("Order number: %s\nStatus: %s\nTotal: %s %s\n",
		input.OrderNo, input.Status, input.Total.String(), input.Currency)
	return s.sendTextEmail(toEmail, subject, body)
}

// SendCustomEmail sends a test or one-off email.
func (s *EmailService) SendCustomEmail(toEmail, subject, body string) error {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "SMTP configuration test"
	}
	body = strings.TrimSpace(body)
	if body == "" {
		body = "This is a test email. Your SMTP configuration is working."
	}
	return s.sendTextEmail(toEmail, subject, body)
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if s.cfg.UseSSL {
		return normalizeEmailSendError(sendMailWithSSL(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
	}
	if s.cfg.UseTLS {
		return normalizeEmailSendError(sendMailWithStartTLS(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
	}
	return normalizeEmailSendError(sendMailPlain(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendMailWithSSL(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailWithStartTLS(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return err
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	directKeywords := []string{
		"no such recipient",
		"no such user",
		"recipient not found",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown user",
		"unknown mailbox",
		"mailbox unavailable",
	}
	for _, keyword := range directKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		hints := []string{"recipient", "user", "mailbox", "address", "rcpt"}
		for _, hint := range hints {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
