package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "ORDER_EXCHANGE", "CORS_ORIGINS", "PRODUCT_CACHE_TTL"} {
		t.Setenv(key, "")
	}
	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "orders_exchange", cfg.OrderExchange)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 10*time.Minute, cfg.ProductCacheTTL)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("PRODUCT_CACHE_TTL", "30s")
	t.Setenv("JWT_SECRET", "from-env")

	cfg := LoadConfig()

	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.ProductCacheTTL)
	assert.Equal(t, "from-env", cfg.JWTSecret)
}

func TestSecretFileWinsOverEnv(t *testing.T) {
	secret := filepath.Join(t.TempDir(), "jwt")
	assert.NoError(t, os.WriteFile(secret, []byte("from-file\n"), 0o600))
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("JWT_SECRET_FILE", secret)

	assert.Equal(t, "from-file", LoadConfig().JWTSecret)
}

func TestBadDurationFallsBack(t *testing.T) {
	t.Setenv("PRODUCT_CACHE_TTL", "soon")

	assert.Equal(t, 10*time.Minute, LoadConfig().ProductCacheTTL)
}
