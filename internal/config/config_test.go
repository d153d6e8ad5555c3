package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/giftworks")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("OPERATOR_EMAILS", "")
	t.Setenv("LEGACY_ADMIN_SLUGS", "")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	// Development gets a fallback secret instead of failing.
	assert.Equal(t, "dev-secret-change-in-production", cfg.JWTSecret)
	assert.Nil(t, cfg.OperatorEmails)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRequiresSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/giftworks")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadParsesLists(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/giftworks")
	t.Setenv("APP_ENV", "development")
	t.Setenv("OPERATOR_EMAILS", "ops@giftworks.app, second@giftworks.app ,,")
	t.Setenv("LEGACY_ADMIN_SLUGS", "first-church")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("BILLING_PRICE_MAP", "price_1=individual")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, []string{"ops@giftworks.app", "second@giftworks.app"}, cfg.OperatorEmails)
	assert.Equal(t, []string{"first-church"}, cfg.LegacySlugs)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, "price_1=individual", cfg.PriceMap)
}
