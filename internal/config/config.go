package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	// Store identity used in the confirmation message and the invoice.
	StoreName      string
	WhatsAppNumber string
	CurrencyCode   string

	// Fixed store origin for distance-based courier pricing. Used as the
	// fallback whenever live geolocation is unavailable.
	StoreOriginLat float64
	StoreOriginLng float64

	// Courier fee shape for Lima Metropolitana.
	DeliveryPerKmRate     decimal.Decimal
	DeliveryMinFee        decimal.Decimal
	DeliveryMaxFee        decimal.Decimal
	DeliveryFreeThreshold decimal.Decimal

	// Advisory agency recharge range shown for Provincia orders.
	AgencyFeeMin decimal.Decimal
	AgencyFeeMax decimal.Decimal

	// RoundingPolicy names the single rounding rule every total-rendering
	// surface applies: "half_up" or "floor1".
	RoundingPolicy string

	CartTTL        time.Duration
	SettingsTTL    time.Duration
	IdempotencyTTL time.Duration

	CheckoutRateLimit string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		StoreName:      valueOrDefault(k.String("STORE_NAME"), "MascoTienda"),
		WhatsAppNumber: strings.TrimSpace(k.String("WHATSAPP_NUMBER")),
		CurrencyCode:   valueOrDefault(k.String("CURRENCY_CODE"), "S/"),

		StoreOriginLat: k.Float64("STORE_ORIGIN_LAT"),
		StoreOriginLng: k.Float64("STORE_ORIGIN_LNG"),

		DeliveryPerKmRate:     parseDecimal(k.String("DELIVERY_PER_KM_RATE"), "1.00"),
		DeliveryMinFee:        parseDecimal(k.String("DELIVERY_MIN_FEE"), "7.00"),
		DeliveryMaxFee:        parseDecimal(k.String("DELIVERY_MAX_FEE"), "20.00"),
		DeliveryFreeThreshold: parseDecimal(k.String("DELIVERY_FREE_THRESHOLD"), "150.00"),

		AgencyFeeMin: parseDecimal(k.String("AGENCY_FEE_MIN"), "10.00"),
		AgencyFeeMax: parseDecimal(k.String("AGENCY_FEE_MAX"), "15.00"),

		RoundingPolicy: valueOrDefault(k.String("ROUNDING_POLICY"), "half_up"),

		CartTTL:        parseDuration(k.String("CART_TTL"), "72h"),
		SettingsTTL:    parseDuration(k.String("SETTINGS_TTL"), "5m"),
		IdempotencyTTL: parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),

		CheckoutRateLimit: valueOrDefault(k.String("CHECKOUT_RATE_LIMIT"), "20-M"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.StoreOriginLat == 0 && cfg.StoreOriginLng == 0 {
		// Default: the shop in central Lima.
		cfg.StoreOriginLat = -12.0464
		cfg.StoreOriginLng = -77.0428
	}
	if cfg.DeliveryMinFee.GreaterThan(cfg.DeliveryMaxFee) {
		return nil, errors.New("DELIVERY_MIN_FEE must not exceed DELIVERY_MAX_FEE")
	}
	if cfg.AgencyFeeMin.GreaterThan(cfg.AgencyFeeMax) {
		return nil, errors.New("AGENCY_FEE_MIN must not exceed AGENCY_FEE_MAX")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseDecimal(value, fallback string) decimal.Decimal {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := decimal.NewFromString(base)
	if err != nil {
		return decimal.RequireFromString(fallback)
	}
	return d
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
