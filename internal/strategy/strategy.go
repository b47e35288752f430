// Package strategy defines the pluggable entry/exit rule sets. The scanner
// and trader are variant-agnostic: they collect the market context and ask
// the configured Strategy whether to act. Each variant composes the pure
// functions from the signal package into its own rule chain.
package strategy

import (
	"fmt"
	"time"

	"github.com/izowooi/golden-burger/internal/config"
	"github.com/izowooi/golden-burger/internal/models"
	"github.com/izowooi/golden-burger/internal/signal"
)

// Exit reason codes produced at the strategy level, on top of the signal
// package's codes. Stored on trade records.
const (
	ReasonThreshold    = "threshold"
	ReasonTrailingStop = "trailing_stop"
	ReasonTimeExit     = "time_exit"
)

// EntryContext carries everything an entry decision may need. Snapshots are
// ordered oldest-first.
type EntryContext struct {
	Snapshots   []models.MarketSnapshot
	Probability float64
	EndDate     *time.Time
	Now         time.Time
}

// ExitContext carries everything an exit decision may need for an open
// position. MaxPrice is the highest midpoint seen since entry, maintained by
// the trader.
type ExitContext struct {
	Snapshots    []models.MarketSnapshot
	EntryPrice   float64
	CurrentPrice float64
	MaxPrice     float64
	EndDate      *time.Time
	Now          time.Time
}

// Strategy is one variant's rule set. ShouldEnter runs after the shared
// category/liquidity/probability filters; ShouldExit evaluates the full exit
// chain for a held position, in the variant's documented priority order.
type Strategy interface {
	Name() string
	ShouldEnter(ctx EntryContext) (bool, string)
	ShouldExit(ctx ExitContext) (bool, string)
}

// New builds the strategy selected by trading.strategy.
func New(cfg config.Trading) (Strategy, error) {
	switch cfg.Strategy {
	case config.StrategyProbability:
		return &Probability{cfg: cfg}, nil
	case config.StrategyMomentum:
		return &Momentum{cfg: cfg}, nil
	case config.StrategyTimeBased:
		return &TimeBased{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}
}

// trailingExit applies the optional drawdown stop shared by the variants.
func trailingExit(cfg config.TrailingStop, maxPrice, currentPrice float64) bool {
	if !cfg.Enabled {
		return false
	}
	return signal.TrailingStopTriggered(maxPrice, currentPrice, cfg.Percent)
}
