package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":       "postgres://localhost:5432/hampers",
		"REDIS_URL":          "redis://localhost:6379/0",
		"APP_ENV":            "",
		"PORT":               "",
		"STORAGE_DRIVER":     "",
		"PRODUCT_CACHE_TTL":  "",
		"EXTRACT_RATE_MAX":   "",
		"CORS_ALLOWED_ORIGINS": "",
	})
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, StoragePostgres, cfg.StorageDriver)
	require.Equal(t, 60*time.Second, cfg.ProductCacheTTL)
	require.Equal(t, 20, cfg.ProductDefaultLimit)
	require.Equal(t, 30, cfg.ExtractRateMax)
	require.Equal(t, "5", cfg.DefaultSingleShipping.String())
	require.Equal(t, "5", cfg.DefaultMultiShipping.String())
}

func TestLoadFileStorageSkipsDatabaseURL(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":   "",
		"REDIS_URL":      "redis://localhost:6379/0",
		"STORAGE_DRIVER": "file",
		"DATA_DIR":       "/tmp/hampers",
	})
	require.NoError(t, err)
	require.Equal(t, StorageFile, cfg.StorageDriver)
	require.Equal(t, "/tmp/hampers", cfg.DataDir)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"REDIS_URL":      "redis://localhost:6379/0",
		"STORAGE_DRIVER": "mongo",
	})
	require.Error(t, err)
}

func TestLoadRequiresDatabaseURLForPostgres(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL":   "",
		"REDIS_URL":      "redis://localhost:6379/0",
		"STORAGE_DRIVER": "postgres",
	})
	require.Error(t, err)
}
