package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"

	"github.com/shopspring/decimal"
)

// ShopConfig is the storefront pricing configuration kept in the settings
// table. Amounts are KES.
type ShopConfig struct {
	Currency              string          `json:"currency"`
	VATRate               decimal.Decimal `json:"vat_rate"`
	ShippingFee           decimal.Decimal `json:"shipping_fee"`
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
	PaymentExpireMinutes  int             `json:"payment_expire_minutes"`
}

// DefaultShopConfig returns the seed configuration.
func DefaultShopConfig() ShopConfig {
	return ShopConfig{
		Currency:              constants.SiteCurrencyDefault,
		VATRate:               decimal.NewFromFloat(0.16),
		ShippingFee:           decimal.NewFromInt(300),
		FreeShippingThreshold: decimal.NewFromInt(5000),
		PaymentExpireMinutes:  30,
	}
}

// SettingService manages settings stored as JSON documents.
type SettingService struct {
	repo repository.SettingRepository
}

// NewSettingService creates a setting service.
func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// GetByKey fetches a raw setting document.
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	return setting.ValueJSON, nil
}

// Update persists a setting document.
func (s *SettingService) Update(key string, value map[string]interface{}) (models.JSON, error) {
	setting, err := s.repo.Upsert(key, models.JSON(value))
	if err != nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// GetShopConfig reads the shop config, filling gaps with defaults.
func (s *SettingService) GetShopConfig() (ShopConfig, error) {
	cfg := DefaultShopConfig()
	if s == nil {
		return cfg, nil
	}

	value, err := s.GetByKey(constants.SettingKeyShopConfig)
	if err != nil {
		return cfg, err
	}
	if value == nil {
		return cfg, nil
	}

	if raw, ok := value[constants.SettingFieldCurrency]; ok {
		if currency, ok := raw.(string); ok && strings.TrimSpace(currency) != "" {
			cfg.Currency = strings.ToUpper(strings.TrimSpace(currency))
		}
	}
	if raw, ok := value[constants.SettingFieldVATRate]; ok {
		if rate, err := parseSettingDecimal(raw); err == nil && !rate.IsNegative() {
			cfg.VATRate = rate
		}
	}
	if raw, ok := value[constants.SettingFieldShippingFee]; ok {
		if fee, err := parseSettingDecimal(raw); err == nil && !fee.IsNegative() {
			cfg.ShippingFee = fee
		}
	}
	if raw, ok := value[constants.SettingFieldFreeShippingOver]; ok {
		if threshold, err := parseSettingDecimal(raw); err == nil && !threshold.IsNegative() {
			cfg.FreeShippingThreshold = threshold
		}
	}
	if raw, ok := value[constants.SettingFieldPaymentExpireMinutes]; ok {
		if minutes, err := parseSettingInt(raw); err == nil && minutes > 0 {
			cfg.PaymentExpireMinutes = minutes
		}
	}

	return cfg, nil
}

// UpdateShopConfig persists the shop config document.
func (s *SettingService) UpdateShopConfig(cfg ShopConfig) (ShopConfig, error) {
	value := map[string]interface{}{
		constants.SettingFieldCurrency:             strings.ToUpper(strings.TrimSpace(cfg.Currency)),
		constants.SettingFieldVATRate:              cfg.VATRate.String(),
		constants.SettingFieldShippingFee:          cfg.ShippingFee.StringFixed(2),
		constants.SettingFieldFreeShippingOver:     cfg.FreeShippingThreshold.StringFixed(2),
		constants.SettingFieldPaymentExpireMinutes: cfg.PaymentExpireMinutes,
	}
	if _, err := s.Update(constants.SettingKeyShopConfig, value); err != nil {
		return cfg, err
	}
	return s.GetShopConfig()
}

// SeedDefaults writes the default shop config if none exists yet.
func (s *SettingService) SeedDefaults() error {
	existing, err := s.GetByKey(constants.SettingKeyShopConfig)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	_, err = s.UpdateShopConfig(DefaultShopConfig())
	return err
}

func parseSettingInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), nil
		}
		if f, err := v.Float64(); err == nil {
			return int(f), nil
		}
		return 0, fmt.Errorf("invalid json number")
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, fmt.Errorf("empty string")
		}
		return strconv.Atoi(trimmed)
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}

func parseSettingDecimal(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return decimal.Zero, fmt.Errorf("empty string")
		}
		return decimal.NewFromString(trimmed)
	default:
		return decimal.Zero, fmt.Errorf("unsupported type %T", value)
	}
}
