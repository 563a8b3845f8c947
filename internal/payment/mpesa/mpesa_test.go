package mpesa

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestDerivePassword(t *testing.T) {
	got := derivePassword("174379", "passkey-sandbox", "20260901143022")
	want := base64.StdEncoding.EncodeToString([]byte("174379passkey-sandbox20260901143022"))
	if got != want {
		t.Fatalf("password want %s got %s", want, got)
	}
	decoded, err := base64.StdEncoding.DecodeString(got)
	if err != nil {
		t.Fatalf("password should be valid base64: %v", err)
	}
	if string(decoded) != "174379passkey-sandbox20260901143022" {
		t.Fatalf("password must be shortcode+passkey+timestamp, got %s", decoded)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "local 07", input: "0712345678", want: "254712345678", ok: true},
		{name: "local 01", input: "0110345678", want: "254110345678", ok: true},
		{name: "plus prefix", input: "+254712345678", want: "254712345678", ok: true},
		{name: "bare 254", input: "254712345678", want: "254712345678", ok: true},
		{name: "nine digit", input: "712345678", want: "254712345678", ok: true},
		{name: "spaces and dashes", input: " 0712-345-678 ", want: "254712345678", ok: true},
		{name: "landline", input: "0202345678", ok: false},
		{name: "too short", input: "07123", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "foreign", input: "+14155551212", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizePhone(tc.input)
			if tc.ok {
				if err != nil {
					t.Fatalf("normalize %q failed: %v", tc.input, err)
				}
				if got != tc.want {
					t.Fatalf("normalize %q want %s got %s", tc.input, tc.want, got)
				}
				return
			}
			if !errors.Is(err, ErrPhoneInvalid) {
				t.Fatalf("normalize %q want ErrPhoneInvalid got %v", tc.input, err)
			}
		})
	}
}

func TestValidateConfigDefaults(t *testing.T) {
	cfg := Config{
		Environment:    "sandbox",
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		Shortcode:      "174379",
		Passkey:        "passkey",
		CallbackURL:    "https://example.co.ke/payments/mpesa/callback",
	}
	if err := ValidateConfig(&cfg); err != nil {
		t.Fatalf("validate config failed: %v", err)
	}
	if cfg.BaseURL != sandboxBaseURL {
		t.Fatalf("sandbox base url want %s got %s", sandboxBaseURL, cfg.BaseURL)
	}

	prod := cfg
	prod.Environment = "production"
	prod.BaseURL = ""
	if err := ValidateConfig(&prod); err != nil {
		t.Fatalf("validate production config failed: %v", err)
	}
	if prod.BaseURL != productionBaseURL {
		t.Fatalf("production base url want %s got %s", productionBaseURL, prod.BaseURL)
	}

	missing := cfg
	missing.Passkey = ""
	if err := ValidateConfig(&missing); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("missing passkey should fail, got %v", err)
	}
}

func TestParseCallbackSuccess(t *testing.T) {
	body := []byte(`{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode": 0,
				"ResultDesc": "The service request is processed successfully.",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 2620.00},
						{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
						{"Name": "TransactionDate", "Value": 20260901143022},
						{"Name": "PhoneNumber", "Value": 254712345678}
					]
				}
			}
		}
	}`)

	result, err := ParseCallback(body)
	if err != nil {
		t.Fatalf("parse callback failed: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success result")
	}
	if result.CheckoutRequestID != "ws_CO_191220191020363925" {
		t.Fatalf("unexpected checkout request id: %s", result.CheckoutRequestID)
	}
	if result.ReceiptNumber != "NLJ7RT61SV" {
		t.Fatalf("unexpected receipt number: %s", result.ReceiptNumber)
	}
	if result.PhoneNumber != "254712345678" {
		t.Fatalf("unexpected phone number: %s", result.PhoneNumber)
	}
	if !result.Amount.Equal(toDecimal(2620.00)) {
		t.Fatalf("unexpected amount: %s", result.Amount)
	}
	if result.TransactionDate == nil {
		t.Fatalf("expected transaction date")
	}
}

func TestParseCallbackFailure(t *testing.T) {
	body := []byte(`{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode": 1032,
				"ResultDesc": "Request cancelled by user."
			}
		}
	}`)

	result, err := ParseCallback(body)
	if err != nil {
		t.Fatalf("parse callback failed: %v", err)
	}
	if result.Success() {
		t.Fatalf("cancelled callback should not be success")
	}
	if result.ResultCode != 1032 {
		t.Fatalf("unexpected result code: %d", result.ResultCode)
	}
	if result.ReceiptNumber != "" {
		t.Fatalf("failure callback should have no receipt")
	}
}

func TestParseCallbackInvalid(t *testing.T) {
	if _, err := ParseCallback(nil); !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("empty body should fail, got %v", err)
	}
	if _, err := ParseCallback([]byte("not json")); !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("bad json should fail, got %v", err)
	}
	if _, err := ParseCallback([]byte(`{"Body":{"stkCallback":{}}}`)); !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("missing checkout id should fail, got %v", err)
	}
}
