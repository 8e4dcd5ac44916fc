package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("BINANCE_API_KEY", "key")
	t.Setenv("BINANCE_API_SECRET", "secret")
	t.Setenv("QUOTE_ASSET", " usdt ")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "key", cfg.Binance.APIKey)
	assert.Equal(t, "secret", cfg.Binance.SecretKey)
	assert.False(t, cfg.Binance.UseTestnet)
	assert.Equal(t, 10*time.Second, cfg.Binance.Timeout)
	assert.Equal(t, "USDT", cfg.App.QuoteAsset)
	assert.Equal(t, 5*time.Second, cfg.App.BalanceRefresh)
	assert.Equal(t, time.Second, cfg.App.PriceRefresh)
	assert.True(t, cfg.Trading.TriggerPct.Equal(decimal.NewFromInt(1)))
	assert.True(t, cfg.Trading.LimitOffsetPct.Equal(decimal.RequireFromString("0.1")))
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("BINANCE_API_KEY", "key")
	t.Setenv("BINANCE_API_SECRET", "secret")
	t.Setenv("BINANCE_USE_TESTNET", "true")
	t.Setenv("SL_TRIGGER_PCT", "2.5")
	t.Setenv("PRICE_REFRESH", "500ms")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Binance.UseTestnet)
	assert.True(t, cfg.Trading.TriggerPct.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, 500*time.Millisecond, cfg.App.PriceRefresh)
}

func TestLoadConfig_MissingCredentials(t *testing.T) {
	t.Setenv("BINANCE_API_KEY", "")
	t.Setenv("BINANCE_API_SECRET", "")
	os.Unsetenv("BINANCE_API_SECRET")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		var cfg Config
		cfg.Binance.APIKey = "key"
		cfg.Binance.SecretKey = "secret"
		cfg.Binance.Timeout = time.Second
		cfg.App.QuoteAsset = "USDT"
		cfg.App.BalanceRefresh = 5 * time.Second
		cfg.App.PriceRefresh = time.Second
		cfg.Trading.TriggerPct = decimal.NewFromInt(1)
		cfg.Trading.LimitOffsetPct = decimal.RequireFromString("0.1")
		return &cfg
	}
	require.NoError(t, ValidateConfig(valid()))

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.Binance.SecretKey = "" }},
		{"empty quote", func(c *Config) { c.App.QuoteAsset = "" }},
		{"zero timeout", func(c *Config) { c.Binance.Timeout = 0 }},
		{"fast balance refresh", func(c *Config) { c.App.BalanceRefresh = 10 * time.Millisecond }},
		{"fast price refresh", func(c *Config) { c.App.PriceRefresh = time.Millisecond }},
		{"zero trigger", func(c *Config) { c.Trading.TriggerPct = decimal.Zero }},
		{"trigger 100", func(c *Config) { c.Trading.TriggerPct = decimal.NewFromInt(100) }},
		{"negative offset", func(c *Config) { c.Trading.LimitOffsetPct = decimal.NewFromInt(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, ValidateConfig(cfg))
		})
	}
}
