package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, DefaultDatabaseURL, cfg.Database.URL)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, DefaultSecretKey, cfg.Auth.SecretKey)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, 50.0, cfg.RateLimit.RPS)
	assert.Equal(t, 100, cfg.RateLimit.Burst)
	assert.Equal(t, 24*time.Hour, cfg.Webhook.DedupTTL)
	assert.Equal(t, "coaching.events", cfg.AMQP.Exchange)
	assert.Empty(t, cfg.Redis.Address)
}

func TestLoadFromOverrides(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"DATABASE_DRIVER":   "sqlite3",
		"DATABASE_URL":      "file:coaching.db",
		"API_PORT":          "9090",
		"API_AUTH_ENABLED":  "true",
		"SECRET_KEY":        "s3cret",
		"WEBHOOK_DEDUP_TTL": "90m",
		"REDIS_DB":          "2",
	}))
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, 90*time.Minute, cfg.Webhook.DedupTTL)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoadFromRejectsInvalidValues(t *testing.T) {
	_, err := LoadFrom(env(map[string]string{
		"DATABASE_DRIVER":   "mysql",
		"API_PORT":          "eighty",
		"DB_AUTO_MIGRATE":   "sometimes",
		"WEBHOOK_DEDUP_TTL": "forever",
	}))
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "DATABASE_DRIVER")
	assert.Contains(t, msg, "API_PORT")
	assert.Contains(t, msg, "DB_AUTO_MIGRATE")
	assert.Contains(t, msg, "WEBHOOK_DEDUP_TTL")

	_, err = LoadFrom(env(map[string]string{
		"ENVIRONMENT":      "production",
		"API_AUTH_ENABLED": "true",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRET_KEY")
}

func TestLoadFromAllowsDefaultSecretInDevelopment(t *testing.T) {
	for _, environment := range []string{"development", "test"} {
		cfg, err := LoadFrom(env(map[string]string{
			"ENVIRONMENT":      environment,
			"API_AUTH_ENABLED": "true",
		}))
		require.NoError(t, err, environment)
		assert.Equal(t, DefaultSecretKey, cfg.Auth.SecretKey)
	}

	cfg, err := LoadFrom(env(map[string]string{
		"ENVIRONMENT":      "production",
		"API_AUTH_ENABLED": "true",
		"SECRET_KEY":       "rotated",
	}))
	require.NoError(t, err)
	assert.True(t, cfg.Auth.Enabled)
}
