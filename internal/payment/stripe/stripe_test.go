package stripe

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestValidateConfig(t *testing.T) {
	cfg := &Config{SecretKey: " sk_test_123 "}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("validate config failed: %v", err)
	}
	if cfg.SecretKey != "sk_test_123" {
		t.Fatalf("secret key not trimmed: %q", cfg.SecretKey)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("unexpected default api base url: %s", cfg.APIBaseURL)
	}
	if cfg.WebhookToleranceSeconds != defaultWebhookToleranceS {
		t.Fatalf("unexpected default tolerance: %d", cfg.WebhookToleranceSeconds)
	}

	if err := ValidateConfig(&Config{}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("empty secret key should fail, got %v", err)
	}
}

func webhookBody(t *testing.T, eventType string, object map[string]interface{}) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"id":   "evt_test_1",
		"type": eventType,
		"data": map[string]interface{}{"object": object},
	})
	if err != nil {
		t.Fatalf("marshal webhook body failed: %v", err)
	}
	return body
}

func TestVerifyAndParseWebhookSucceeded(t *testing.T) {
	now := time.Unix(1760000000, 0)
	cfg := &Config{
		SecretKey:               "sk_test_123",
		WebhookSecret:           "whsec_test_abc",
		WebhookToleranceSeconds: 300,
	}
	body := webhookBody(t, "payment_intent.succeeded", map[string]interface{}{
		"id":              "pi_test_123",
		"status":          "succeeded",
		"currency":        "kes",
		"amount_received": 262000,
		"created":         now.Unix(),
		"metadata": map[string]interface{}{
			"payment_id": "1001",
			"order_no":   "FM20260901ABC123",
		},
	})
	sig := computeSignature(cfg.WebhookSecret, now.Unix(), body)
	headers := map[string]string{"Stripe-Signature": "t=1760000000,v1=" + sig}

	result, err := VerifyAndParseWebhook(cfg, headers, body, now)
	if err != nil {
		t.Fatalf("verify and parse webhook failed: %v", err)
	}
	if result.EventType != "payment_intent.succeeded" {
		t.Fatalf("unexpected event type: %s", result.EventType)
	}
	if result.PaymentID != 1001 {
		t.Fatalf("unexpected payment id: %d", result.PaymentID)
	}
	if result.OrderNo != "FM20260901ABC123" {
		t.Fatalf("unexpected order no: %s", result.OrderNo)
	}
	if result.ProviderRef != "pi_test_123" {
		t.Fatalf("unexpected provider ref: %s", result.ProviderRef)
	}
	if result.Status != "success" {
		t.Fatalf("unexpected status: %s", result.Status)
	}
	if result.Amount != "2620.00" {
		t.Fatalf("unexpected amount: %s", result.Amount)
	}
	if result.Currency != "KES" {
		t.Fatalf("unexpected currency: %s", result.Currency)
	}
}

func TestVerifyAndParseWebhookInvalidSignature(t *testing.T) {
	now := time.Unix(1760000000, 0)
	cfg := &Config{
		SecretKey:               "sk_test_123",
		WebhookSecret:           "whsec_test_abc",
		WebhookToleranceSeconds: 300,
	}
	body := webhookBody(t, "payment_intent.succeeded", map[string]interface{}{
		"id": "pi_test_123",
	})
	headers := map[string]string{"Stripe-Signature": "t=1760000000,v1=deadbeef"}

	if _, err := VerifyAndParseWebhook(cfg, headers, body, now); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected signature error, got %v", err)
	}
}

func TestVerifyAndParseWebhookTimestampOutsideTolerance(t *testing.T) {
	eventTime := time.Unix(1760000000, 0)
	now := eventTime.Add(20 * time.Minute)
	cfg := &Config{
		SecretKey:               "sk_test_123",
		WebhookSecret:           "whsec_test_abc",
		WebhookToleranceSeconds: 300,
	}
	body := webhookBody(t, "payment_intent.succeeded", map[string]interface{}{
		"id": "pi_test_123",
	})
	sig := computeSignature(cfg.WebhookSecret, eventTime.Unix(), body)
	headers := map[string]string{"Stripe-Signature": "t=1760000000,v1=" + sig}

	if _, err := VerifyAndParseWebhook(cfg, headers, body, now); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected tolerance error, got %v", err)
	}
}

func TestMapEventTypeStatus(t *testing.T) {
	cases := []struct {
		eventType string
		want      string
		mapped    bool
	}{
		{eventType: "payment_intent.succeeded", want: "success", mapped: true},
		{eventType: "payment_intent.payment_failed", want: "failed", mapped: true},
		{eventType: "payment_intent.canceled", want: "failed", mapped: true},
		{eventType: "payment_intent.processing", want: "pending", mapped: true},
		{eventType: "charge.refunded", mapped: false},
	}
	for _, tc := range cases {
		got, ok := mapEventTypeStatus(tc.eventType)
		if ok != tc.mapped {
			t.Fatalf("%s: mapped want %v got %v", tc.eventType, tc.mapped, ok)
		}
		if ok && got != tc.want {
			t.Fatalf("%s: status want %s got %s", tc.eventType, tc.want, got)
		}
	}
}

func TestMapPaymentIntentStatus(t *testing.T) {
	if got := mapPaymentIntentStatus("succeeded"); got != "success" {
		t.Fatalf("expected success, got %s", got)
	}
	if got := mapPaymentIntentStatus("processing"); got != "pending" {
		t.Fatalf("expected pending, got %s", got)
	}
	if got := mapPaymentIntentStatus("canceled"); got != "failed" {
		t.Fatalf("expected failed, got %s", got)
	}
	if got := mapPaymentIntentStatus("unknown"); got != "pending" {
		t.Fatalf("expected pending fallback, got %s", got)
	}
}

func TestMinorAmountConversion(t *testing.T) {
	minor, err := toMinorAmount("2620.00", "KES")
	if err != nil {
		t.Fatalf("to minor amount failed: %v", err)
	}
	if minor != 262000 {
		t.Fatalf("minor amount want 262000 got %d", minor)
	}
	if got := fromMinorAmount(262000, "KES"); got != "2620.00" {
		t.Fatalf("from minor amount want 2620.00 got %s", got)
	}

	if _, err := toMinorAmount("0", "KES"); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("zero amount should fail, got %v", err)
	}
	if _, err := toMinorAmount("abc", "KES"); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("bad amount should fail, got %v", err)
	}
}
