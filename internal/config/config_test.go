package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.True(t, decimal.NewFromInt(10000).Equal(cfg.MinOrderAmount))
	assert.Equal(t, "NGN", cfg.Currency)
	assert.Equal(t, "₦", cfg.CurrencySymbol)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.KafkaBrokers)

	assert.True(t, decimal.Zero.Equal(cfg.ShippingTiers.Fee(0)))
	assert.True(t, decimal.NewFromInt(4000).Equal(cfg.ShippingTiers.Fee(2)))
	assert.True(t, decimal.NewFromInt(5000).Equal(cfg.ShippingTiers.Fee(7)))
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("MIN_ORDER_AMOUNT", "8000")
	t.Setenv("SHIPPING_TIERS", "0:0,1:2000,4:6000")
	t.Setenv("ORDER_STORE", "Postgres")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("ORDER_NOTIFY_TO", "ops@example.com")
	t.Setenv("PROVIDER_TIMEOUT", "3s")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(8000).Equal(cfg.MinOrderAmount))
	assert.True(t, decimal.NewFromInt(2000).Equal(cfg.ShippingTiers.Fee(3)))
	assert.True(t, decimal.NewFromInt(6000).Equal(cfg.ShippingTiers.Fee(4)))
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, 6543, cfg.Postgres.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"ops@example.com"}, cfg.SMTP.To)
	assert.Equal(t, 3*time.Second, cfg.ProviderTimeout)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Setenv("MIN_ORDER_AMOUNT", "lots")
	t.Setenv("SHIPPING_TIERS", "1:abc")
	t.Setenv("ORDER_STORE", "cassandra")
	t.Setenv("DB_PORT", "x")

	_, err := loadConfig()
	require.Error(t, err)
	assert.ErrorContains(t, err, "MIN_ORDER_AMOUNT")
	assert.ErrorContains(t, err, "SHIPPING_TIERS")
	assert.ErrorContains(t, err, "ORDER_STORE")
	assert.ErrorContains(t, err, "DB_PORT")
}

func TestLoadConfig_NegativeMinimum(t *testing.T) {
	t.Setenv("MIN_ORDER_AMOUNT", "-1")

	_, err := loadConfig()
	assert.ErrorContains(t, err, "must not be negative")
}

func TestLoadConfig_Sandbox(t *testing.T) {
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.PaystackSandbox)
	assert.Equal(t, 100, cfg.SandboxSuccessRate)

	t.Setenv("PAYSTACK_SANDBOX", "true")
	t.Setenv("PAYSTACK_SANDBOX_SUCCESS_RATE", "80")
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.PaystackSandbox)
	assert.Equal(t, 80, cfg.SandboxSuccessRate)

	t.Setenv("PAYSTACK_SANDBOX_SUCCESS_RATE", "150")
	_, err = loadConfig()
	assert.ErrorContains(t, err, "PAYSTACK_SANDBOX_SUCCESS_RATE")
}
