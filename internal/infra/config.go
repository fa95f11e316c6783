package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	// PaymentPublicKey is handed to the presentation layer; PaymentSecretKey
	// signs webhook bodies and must never leave the process.
	PaymentPublicKey string
	PaymentSecretKey string

	FundraisingGoal   int64
	MinDonationAmount int64
	RecentLimit       int

	RateLimitMax    int
	RateLimitWindow time.Duration
	StorageTimeout  time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	AllowedOrigins []string
	GeoIPDBPath    string
	DefaultLocale  string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		PaymentPublicKey:  os.Getenv("PAYMENT_PUBLIC_KEY"),
		PaymentSecretKey:  os.Getenv("PAYMENT_SECRET_KEY"),
		FundraisingGoal:   getEnvInt64("FUNDRAISING_GOAL", 1_000_000),
		MinDonationAmount: getEnvInt64("MIN_DONATION_AMOUNT", 100),
		RecentLimit:       getEnvInt("RECENT_LIMIT", 10),
		RateLimitMax:      getEnvInt("RATE_LIMIT_MAX", 10),
		RateLimitWindow:   time.Second * time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)),
		StorageTimeout:    time.Second * time.Duration(getEnvInt("STORAGE_TIMEOUT_SECONDS", 5)),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		AllowedOrigins:    splitList(os.Getenv("ALLOWED_ORIGINS")),
		GeoIPDBPath:       os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:     getEnv("DEFAULT_LOCALE", "en"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.PaymentSecretKey == "" {
		return nil, fmt.Errorf("PAYMENT_SECRET_KEY is required")
	}

	if cfg.MinDonationAmount <= 0 {
		return nil, fmt.Errorf("MIN_DONATION_AMOUNT must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
