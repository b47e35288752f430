package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/izowooi/golden-burger/internal/signal"
)

// Strategy variant names accepted in trading.strategy.
const (
	StrategyProbability = "probability"
	StrategyMomentum    = "momentum"
	StrategyTimeBased   = "time_based"
)

// Config holds all configuration for the application.
type Config struct {
	JobName    string     `mapstructure:"job_name"`
	Simulation bool       `mapstructure:"simulation"`
	Polymarket Polymarket `mapstructure:"polymarket"`
	Trading    Trading    `mapstructure:"trading"`
	Slack      Slack      `mapstructure:"slack"`
	Logger     Logger     `mapstructure:"logger"`
	Database   Database   `mapstructure:"database"`
}

// Polymarket holds API endpoints, credentials and client limits.
type Polymarket struct {
	GammaBaseURL   string  `mapstructure:"gamma_base_url"`
	ClobBaseURL    string  `mapstructure:"clob_base_url"`
	PrivateKey     string  `mapstructure:"private_key"`
	FunderAddress  string  `mapstructure:"funder_address"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	MaxRetries     int     `mapstructure:"max_retries"`
}

// Trading holds the strategy thresholds shared by all variants.
type Trading struct {
	Strategy           string       `mapstructure:"strategy"`
	BuyThreshold       float64      `mapstructure:"buy_threshold"`
	SellThreshold      float64      `mapstructure:"sell_threshold"`
	BuyAmountUSDC      float64      `mapstructure:"buy_amount_usdc"`
	MinLiquidity       float64      `mapstructure:"min_liquidity"`
	MinVolume24h       float64      `mapstructure:"min_volume_24h"`
	MaxPositions       int          `mapstructure:"max_positions"` // <= 0 means unlimited
	TakeProfitPercent  float64      `mapstructure:"take_profit_percent"`
	StopLossPercent    float64      `mapstructure:"stop_loss_percent"` // negative
	SaveSnapshots      bool         `mapstructure:"save_snapshots"`
	SnapshotRetention  int          `mapstructure:"snapshot_retention_days"`
	ExcludedCategories []string     `mapstructure:"excluded_categories"`
	Momentum           Momentum     `mapstructure:"momentum"`
	TimeBased          TimeBased    `mapstructure:"time_based"`
	TrailingStop       TrailingStop `mapstructure:"trailing_stop"`
}

// Momentum holds the golden/dead-cross tunables.
type Momentum struct {
	Enabled              bool    `mapstructure:"enabled"`
	ShortWindow          int     `mapstructure:"short_window"`
	LongWindow           int     `mapstructure:"long_window"`
	GoldenCrossThreshold float64 `mapstructure:"golden_cross_threshold"`
	DeadCrossThreshold   float64 `mapstructure:"dead_cross_threshold"`
}

// Params converts the momentum section into signal-library parameters.
func (m Momentum) Params() signal.MomentumParams {
	return signal.MomentumParams{
		Enabled:              m.Enabled,
		ShortWindow:          m.ShortWindow,
		LongWindow:           m.LongWindow,
		GoldenCrossThreshold: m.GoldenCrossThreshold,
		DeadCrossThreshold:   m.DeadCrossThreshold,
	}
}

// TimeBased holds the time-to-resolution entry/exit windows.
type TimeBased struct {
	EntryHoursMax float64 `mapstructure:"entry_hours_max"`
	EntryHoursMin float64 `mapstructure:"entry_hours_min"`
	ExitHours     float64 `mapstructure:"exit_hours"`
}

// TrailingStop holds the drawdown exit settings.
type TrailingStop struct {
	Enabled bool    `mapstructure:"enabled"`
	Percent float64 `mapstructure:"percent"`
}

// Slack holds the webhook notification settings.
type Slack struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Database holds the configuration for the trade store.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// LoadConfig reads configuration from the YAML file in path and from
// environment variables (POLYBOT_ prefix, dots become underscores). The
// precedence is environment > file > built-in default; explicit run-time
// overrides such as the -simulate flag are applied by the caller on top,
// followed by Validate.
func LoadConfig(path string) (config Config, err error) {
	// A local .env file supplies credentials during development; ignore
	// errors, production sets real environment variables.
	_ = godotenv.Load()

	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.SetEnvPrefix("polybot")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err = viper.ReadInConfig(); err != nil {
		// A missing file is fine: env vars and defaults carry the run.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}

func setDefaults() {
	viper.SetDefault("job_name", "default")
	viper.SetDefault("simulation", false)

	viper.SetDefault("polymarket.gamma_base_url", "https://gamma-api.polymarket.com")
	viper.SetDefault("polymarket.clob_base_url", "https://clob.polymarket.com")
	viper.SetDefault("polymarket.rate_limit", 10) // requests per second
	viper.SetDefault("polymarket.rate_limit_burst", 5)
	viper.SetDefault("polymarket.max_retries", 3)

	viper.SetDefault("trading.strategy", StrategyMomentum)
	viper.SetDefault("trading.buy_threshold", 0.85)
	viper.SetDefault("trading.sell_threshold", 0.97)
	viper.SetDefault("trading.buy_amount_usdc", 10.0)
	viper.SetDefault("trading.min_liquidity", 50000.0)
	viper.SetDefault("trading.min_volume_24h", 0.0)
	viper.SetDefault("trading.max_positions", -1)
	viper.SetDefault("trading.take_profit_percent", 0.07)
	viper.SetDefault("trading.stop_loss_percent", -0.10)
	viper.SetDefault("trading.save_snapshots", true)
	viper.SetDefault("trading.snapshot_retention_days", 7)
	viper.SetDefault("trading.excluded_categories", []string{
		"Sports", "sports", "NFL", "NBA", "MLB", "NHL",
		"Soccer", "Football", "Basketball", "Baseball",
	})

	viper.SetDefault("trading.momentum.enabled", true)
	viper.SetDefault("trading.momentum.short_window", 3) // 15 min at a 5-min snapshot cadence
	viper.SetDefault("trading.momentum.long_window", 72) // 6 h at a 5-min snapshot cadence
	viper.SetDefault("trading.momentum.golden_cross_threshold", 0.02)
	viper.SetDefault("trading.momentum.dead_cross_threshold", -0.02)

	viper.SetDefault("trading.time_based.entry_hours_max", 24)
	viper.SetDefault("trading.time_based.entry_hours_min", 4)
	viper.SetDefault("trading.time_based.exit_hours", 4)

	viper.SetDefault("trading.trailing_stop.enabled", false)
	viper.SetDefault("trading.trailing_stop.percent", 0.05)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
}

// Finalize fills derived values and fails fast on configuration that would
// otherwise only surface as broken behavior deep inside a trading cycle.
// It must run after any explicit run-time overrides have been applied.
func (c *Config) Finalize() error {
	if c.Database.DSN == "" {
		if c.Simulation {
			c.Database.DSN = "data/trades_sim.db"
		} else {
			c.Database.DSN = "data/trades.db"
		}
	}

	switch c.Trading.Strategy {
	case StrategyProbability, StrategyMomentum, StrategyTimeBased:
	default:
		return fmt.Errorf("unknown trading.strategy %q", c.Trading.Strategy)
	}

	if c.Trading.BuyThreshold > c.Trading.SellThreshold {
		return fmt.Errorf("trading.buy_threshold %.2f exceeds sell_threshold %.2f",
			c.Trading.BuyThreshold, c.Trading.SellThreshold)
	}

	// Real orders need real credentials; simulation runs without them.
	if !c.Simulation {
		if c.Polymarket.PrivateKey == "" {
			return fmt.Errorf("polymarket.private_key is required outside simulation mode")
		}
		if c.Polymarket.FunderAddress == "" {
			return fmt.Errorf("polymarket.funder_address is required outside simulation mode")
		}
	}

	return nil
}
