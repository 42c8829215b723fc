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

// Storage driver selection for the product catalog.
const (
	StoragePostgres = "postgres"
	StorageFile     = "file"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	StorageDriver      string
	DataDir            string
	CORSAllowedOrigins []string

	ProductCacheTTL     time.Duration
	ProductDefaultLimit int
	ProductMaxLimit     int

	DefaultSingleShipping decimal.Decimal
	DefaultMultiShipping  decimal.Decimal

	ExtractRateWindow time.Duration
	ExtractRateMax    int
	ImportMaxBody     int64
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
		StorageDriver:      strings.ToLower(valueOrDefault(k.String("STORAGE_DRIVER"), StoragePostgres)),
		DataDir:            valueOrDefault(k.String("DATA_DIR"), "data"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		ProductCacheTTL:     parseDuration(k.String("PRODUCT_CACHE_TTL"), "60s"),
		ProductDefaultLimit: intOrDefault(k.Int("PRODUCT_DEFAULT_LIMIT"), 20),
		ProductMaxLimit:     intOrDefault(k.Int("PRODUCT_MAX_LIMIT"), 100),

		DefaultSingleShipping: parseDecimal(k.String("PRICING_DEFAULT_SINGLE_SHIPPING"), "5"),
		DefaultMultiShipping:  parseDecimal(k.String("PRICING_DEFAULT_MULTI_SHIPPING"), "5"),

		ExtractRateWindow: parseDuration(k.String("EXTRACT_RATE_WINDOW"), "1m"),
		ExtractRateMax:    intOrDefault(k.Int("EXTRACT_RATE_MAX"), 30),
		ImportMaxBody:     int64(intOrDefault(k.Int("IMPORT_MAX_BODY_BYTES"), 1<<20)),
	}

	switch cfg.StorageDriver {
	case StoragePostgres, StorageFile:
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER: %s", cfg.StorageDriver)
	}

	if cfg.StorageDriver == StoragePostgres && cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required when STORAGE_DRIVER is postgres")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
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

func intOrDefault(value, fallback int) int {
	if value > 0 {
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
	if err != nil || d.IsNegative() {
		d, _ = decimal.NewFromString(fallback)
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
