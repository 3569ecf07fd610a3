package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_BACKEND", "STORE_TIMEOUT", "JWT_ACCESS_EXPIRY", "JWT_REFRESH_EXPIRY", "REDIS_ENDPOINT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	t.Setenv("JWT_SECRET_KEY", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StoreBackendRedis, cfg.Store.Backend)
	assert.Equal(t, 2*time.Second, cfg.Store.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 14*24*time.Hour, cfg.JWT.RefreshExpiry)
	assert.Equal(t, "localhost:6379", cfg.Redis.Endpoint)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", testSecret)
	t.Setenv("JWT_ACCESS_EXPIRY", "5s")
	t.Setenv("JWT_REFRESH_EXPIRY", "50s")
	t.Setenv("STORE_BACKEND", "dynamodb")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("BCRYPT_COST", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.JWT.AccessExpiry)
	assert.Equal(t, 50*time.Second, cfg.JWT.RefreshExpiry)
	assert.Equal(t, StoreBackendDynamoDB, cfg.Store.Backend)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 4, cfg.Password.BcryptCost)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{"JWT_SECRET_KEY": ""}},
		{name: "short secret", env: map[string]string{"JWT_SECRET_KEY": "too-short"}},
		{name: "access not shorter than refresh", env: map[string]string{
			"JWT_SECRET_KEY":     testSecret,
			"JWT_ACCESS_EXPIRY":  "1h",
			"JWT_REFRESH_EXPIRY": "1h",
		}},
		{name: "unknown backend", env: map[string]string{
			"JWT_SECRET_KEY": testSecret,
			"STORE_BACKEND":  "memcached",
		}},
		{name: "bcrypt cost out of range", env: map[string]string{
			"JWT_SECRET_KEY": testSecret,
			"BCRYPT_COST":    "99",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}
