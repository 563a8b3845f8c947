// Package mpesa is a thin Safaricom Daraja client covering OAuth, STK push
// and the STK callback payload.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid   = errors.New("mpesa config invalid")
	ErrRequestFailed   = errors.New("mpesa request failed")
	ErrResponseInvalid = errors.New("mpesa response invalid")
	ErrPhoneInvalid    = errors.New("mpesa phone number invalid")
)

const (
	sandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	productionBaseURL = "https://api.safaricom.co.ke"
	defaultTimeout    = 15 * time.Second
	timestampLayout   = "20060102150405"

	// ResultSuccess is the ResultCode Daraja sends for a completed payment.
	ResultSuccess = 0
)

// Config is the Daraja gateway configuration.
type Config struct {
	Environment    string
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	CallbackURL    string
	Timeout        time.Duration
}

func (c *Config) normalize() {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.ConsumerKey = strings.TrimSpace(c.ConsumerKey)
	c.ConsumerSecret = strings.TrimSpace(c.ConsumerSecret)
	c.Shortcode = strings.TrimSpace(c.Shortcode)
	c.Passkey = strings.TrimSpace(c.Passkey)
	c.CallbackURL = strings.TrimSpace(c.CallbackURL)
	if c.BaseURL == "" {
		if c.Environment == "production" {
			c.BaseURL = productionBaseURL
		} else {
			c.BaseURL = sandboxBaseURL
		}
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// ValidateConfig checks the required fields.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	cfg.normalize()
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return fmt.Errorf("%w: consumer_key and consumer_secret are required", ErrConfigInvalid)
	}
	if cfg.Shortcode == "" {
		return fmt.Errorf("%w: shortcode is required", ErrConfigInvalid)
	}
	if cfg.Passkey == "" {
		return fmt.Errorf("%w: passkey is required", ErrConfigInvalid)
	}
	if cfg.CallbackURL == "" {
		return fmt.Errorf("%w: callback_url is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return fmt.Errorf("%w: base_url is invalid", ErrConfigInvalid)
	}
	return nil
}

// Client talks to the Daraja API. It caches the OAuth token until shortly
// before expiry.
type Client struct {
	cfg  Config
	http *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a Daraja client.
func NewClient(cfg Config) (*Client, error) {
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

var kenyanMobilePattern = regexp.MustCompile(`^254(7|1)\d{8}$`)

// NormalizePhone converts a Kenyan mobile number into the 254XXXXXXXXX form
// Daraja expects. Accepts 07XX/01XX, +254 and 254 prefixes.
func NormalizePhone(phone string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		if r == '+' {
			return r
		}
		return -1
	}, strings.TrimSpace(phone))

	cleaned = strings.TrimPrefix(cleaned, "+")
	switch {
	case strings.HasPrefix(cleaned, "254"):
	case strings.HasPrefix(cleaned, "0") && len(cleaned) == 10:
		cleaned = "254" + cleaned[1:]
	case len(cleaned) == 9 && (strings.HasPrefix(cleaned, "7") || strings.HasPrefix(cleaned, "1")):
		cleaned = "254" + cleaned
	}
	if !kenyanMobilePattern.MatchString(cleaned) {
		return "", ErrPhoneInvalid
	}
	return cleaned, nil
}

// STKPushInput starts a push payment prompt on the customer's phone.
type STKPushInput struct {
	Phone            string
	Amount           decimal.Decimal
	AccountReference string
	Description      string
}

// STKPushResult is Daraja's accept-for-processing response.
type STKPushResult struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// STKPush sends a payment prompt to the customer's phone. The amount is
// truncated to whole shillings as Daraja rejects fractional amounts.
func (c *Client) STKPush(ctx context.Context, input STKPushInput) (*STKPushResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	phone, err := NormalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}
	if input.Amount.LessThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: amount must be at least 1", ErrConfigInvalid)
	}
	reference := strings.TrimSpace(input.AccountReference)
	if reference == "" {
		return nil, fmt.Errorf("%w: account reference is required", ErrConfigInvalid)
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		description = reference
	}

	token, err := c.accessTokenValue(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format(timestampLayout)
	payload := map[string]interface{}{
		"BusinessShortCode": c.cfg.Shortcode,
		"Password":          derivePassword(c.cfg.Shortcode, c.cfg.Passkey, timestamp),
		"Timestamp":         timestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            input.Amount.Truncate(0).IntPart(),
		"PartyA":            phone,
		"PartyB":            c.cfg.Shortcode,
		"PhoneNumber":       phone,
		"CallBackURL":       c.cfg.CallbackURL,
		"AccountReference":  reference,
		"TransactionDesc":   description,
	}

	body, statusCode, err := c.doJSONRequest(ctx, http.MethodPost, "/mpesa/stkpush/v1/processrequest", token, payload)
	if err != nil {
		return nil, err
	}

	var result STKPushResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decode stk push response failed", ErrResponseInvalid)
	}
	if statusCode < 200 || statusCode >= 300 {
		detail := strings.TrimSpace(result.ResponseDescription)
		if detail == "" {
			detail = fmt.Sprintf("status %d", statusCode)
		}
		return nil, fmt.Errorf("%w: stk push rejected: %s", ErrRequestFailed, detail)
	}
	if strings.TrimSpace(result.CheckoutRequestID) == "" {
		return nil, fmt.Errorf("%w: missing CheckoutRequestID", ErrResponseInvalid)
	}
	if strings.TrimSpace(result.ResponseCode) != "0" {
		return nil, fmt.Errorf("%w: stk push rejected: %s", ErrRequestFailed, result.ResponseDescription)
	}
	return &result, nil
}

// CallbackResult is the parsed STK callback.
type CallbackResult struct {
	MerchantRequestID string
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	Amount            decimal.Decimal
	ReceiptNumber     string
	PhoneNumber       string
	TransactionDate   *time.Time
}

// Success reports whether the payment completed.
func (r *CallbackResult) Success() bool {
	return r.ResultCode == ResultSuccess
}

type callbackEnvelope struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string      `json:"Name"`
					Value interface{} `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// ParseCallback decodes the Body.stkCallback envelope Daraja posts to the
// callback URL. Metadata items are only present on success.
func ParseCallback(body []byte) (*CallbackResult, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: body is empty", ErrResponseInvalid)
	}
	var envelope callbackEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode callback failed", ErrResponseInvalid)
	}
	cb := envelope.Body.StkCallback
	if strings.TrimSpace(cb.CheckoutRequestID) == "" {
		return nil, fmt.Errorf("%w: missing CheckoutRequestID", ErrResponseInvalid)
	}

	result := &CallbackResult{
		MerchantRequestID: strings.TrimSpace(cb.MerchantRequestID),
		CheckoutRequestID: strings.TrimSpace(cb.CheckoutRequestID),
		ResultCode:        cb.ResultCode,
		ResultDesc:        strings.TrimSpace(cb.ResultDesc),
	}
	for _, item := range cb.CallbackMetadata.Item {
		switch item.Name {
		case "Amount":
			result.Amount = toDecimal(item.Value)
		case "MpesaReceiptNumber":
			result.ReceiptNumber = toString(item.Value)
		case "PhoneNumber":
			result.PhoneNumber = toString(item.Value)
		case "TransactionDate":
			if parsed, err := time.ParseInLocation(timestampLayout, toString(item.Value), time.Local); err == nil {
				result.TransactionDate = &parsed
			}
		}
	}
	return result, nil
}

func (c *Client) accessTokenValue(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	endpoint := c.cfg.BaseURL + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build token request failed", ErrRequestFailed)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.cfg.ConsumerKey + ":" + c.cfg.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read token response failed", ErrResponseInvalid)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: token request status %d", ErrRequestFailed, resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("%w: decode token response failed", ErrResponseInvalid)
	}
	if strings.TrimSpace(tokenResp.AccessToken) == "" {
		return "", fmt.Errorf("%w: missing access_token", ErrResponseInvalid)
	}

	expiresIn, err := strconv.Atoi(strings.TrimSpace(tokenResp.ExpiresIn))
	if err != nil || expiresIn <= 0 {
		expiresIn = 3599
	}
	c.accessToken = strings.TrimSpace(tokenResp.AccessToken)
	// Refresh a minute early so in-flight requests never carry a stale token.
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn-60) * time.Second)
	return c.accessToken, nil
}

func (c *Client) doJSONRequest(ctx context.Context, method, path, token string, payload interface{}) ([]byte, int, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: encode request failed", ErrRequestFailed)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return body, resp.StatusCode, nil
}

func derivePassword(shortcode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
}

func toString(value interface{}) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatInt(int64(typed), 10)
	case json.Number:
		return typed.String()
	default:
		return ""
	}
}

func toDecimal(value interface{}) decimal.Decimal {
	switch typed := value.(type) {
	case float64:
		return decimal.NewFromFloat(typed)
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(typed))
		if err != nil {
			return decimal.Zero
		}
		return parsed
	case json.Number:
		parsed, err := decimal.NewFromString(typed.String())
		if err != nil {
			return decimal.Zero
		}
		return parsed
	default:
		return decimal.Zero
	}
}
