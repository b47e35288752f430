package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

// writeConfig writes a config.yml into a temp directory and returns the path.
func writeConfig(t *testing.T, content string) string {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o644)
	assert.NoError(t, err)
	return dir
}

func TestLoadConfig(t *testing.T) {
	t.Run("DefaultsWithoutFile", func(t *testing.T) {
		viper.Reset()

		cfg, err := LoadConfig(t.TempDir())

		assert.NoError(t, err)
		assert.Equal(t, StrategyMomentum, cfg.Trading.Strategy)
		assert.InDelta(t, 0.85, cfg.Trading.BuyThreshold, 1e-9)
		assert.InDelta(t, 0.97, cfg.Trading.SellThreshold, 1e-9)
		assert.InDelta(t, 10.0, cfg.Trading.BuyAmountUSDC, 1e-9)
		assert.Equal(t, 3, cfg.Trading.Momentum.ShortWindow)
		assert.Equal(t, 72, cfg.Trading.Momentum.LongWindow)
		assert.Equal(t, 7, cfg.Trading.SnapshotRetention)
		assert.Equal(t, "https://gamma-api.polymarket.com", cfg.Polymarket.GammaBaseURL)
	})

	t.Run("FileOverridesDefaults", func(t *testing.T) {
		viper.Reset()
		dir := writeConfig(t, `
job_name: golden
trading:
  strategy: time_based
  buy_amount_usdc: 25
  time_based:
    entry_hours_max: 48
`)

		cfg, err := LoadConfig(dir)

		assert.NoError(t, err)
		assert.Equal(t, "golden", cfg.JobName)
		assert.Equal(t, StrategyTimeBased, cfg.Trading.Strategy)
		assert.InDelta(t, 25.0, cfg.Trading.BuyAmountUSDC, 1e-9)
		assert.InDelta(t, 48.0, cfg.Trading.TimeBased.EntryHoursMax, 1e-9)
		// Untouched keys keep their defaults.
		assert.InDelta(t, 4.0, cfg.Trading.TimeBased.EntryHoursMin, 1e-9)
	})

	t.Run("EnvironmentOverridesFile", func(t *testing.T) {
		viper.Reset()
		dir := writeConfig(t, "trading:\n  buy_amount_usdc: 25\n")
		t.Setenv("POLYBOT_TRADING_BUY_AMOUNT_USDC", "50")

		cfg, err := LoadConfig(dir)

		assert.NoError(t, err)
		assert.InDelta(t, 50.0, cfg.Trading.BuyAmountUSDC, 1e-9)
	})
}

func TestFinalize(t *testing.T) {
	valid := func() Config {
		return Config{
			Simulation: true,
			Trading: Trading{
				Strategy:      StrategyMomentum,
				BuyThreshold:  0.85,
				SellThreshold: 0.97,
			},
		}
	}

	t.Run("FillsSimulationDSN", func(t *testing.T) {
		cfg := valid()

		assert.NoError(t, cfg.Finalize())
		assert.Equal(t, "data/trades_sim.db", cfg.Database.DSN)
	})

	t.Run("FillsLiveDSN", func(t *testing.T) {
		cfg := valid()
		cfg.Simulation = false
		cfg.Polymarket.PrivateKey = "key"
		cfg.Polymarket.FunderAddress = "0xfunder"

		assert.NoError(t, cfg.Finalize())
		assert.Equal(t, "data/trades.db", cfg.Database.DSN)
	})

	t.Run("KeepsExplicitDSN", func(t *testing.T) {
		cfg := valid()
		cfg.Database.DSN = "/var/lib/bot/trades.db"

		assert.NoError(t, cfg.Finalize())
		assert.Equal(t, "/var/lib/bot/trades.db", cfg.Database.DSN)
	})

	t.Run("RejectsUnknownStrategy", func(t *testing.T) {
		cfg := valid()
		cfg.Trading.Strategy = "martingale"

		assert.Error(t, cfg.Finalize())
	})

	t.Run("RejectsInvertedThresholds", func(t *testing.T) {
		cfg := valid()
		cfg.Trading.BuyThreshold = 0.98

		assert.Error(t, cfg.Finalize())
	})

	t.Run("LiveModeRequiresCredentials", func(t *testing.T) {
		cfg := valid()
		cfg.Simulation = false

		assert.Error(t, cfg.Finalize())
	})
}
