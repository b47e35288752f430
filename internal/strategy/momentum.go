package strategy

import (
	"github.com/izowooi/golden-burger/internal/config"
	"github.com/izowooi/golden-burger/internal/signal"
)

// Momentum is the golden/dead-cross variant: entry requires the momentum
// entry signal over the snapshot series, exit adds a dead-cross check to the
// profit/loss rules.
type Momentum struct {
	cfg config.Trading
}

func (s *Momentum) Name() string { return config.StrategyMomentum }

func (s *Momentum) ShouldEnter(ctx EntryContext) (bool, string) {
	return signal.EntrySignal(ctx.Snapshots, s.cfg.Momentum.Params())
}

// ShouldExit runs stop-loss, take-profit and dead-cross in that order, then
// the sell-threshold exit carried over from the threshold variant.
func (s *Momentum) ShouldExit(ctx ExitContext) (bool, string) {
	if exit, reason := signal.ExitSignal(ctx.Snapshots, ctx.EntryPrice, ctx.CurrentPrice,
		s.cfg.TakeProfitPercent, s.cfg.StopLossPercent, s.cfg.Momentum.Params()); exit {
		return true, reason
	}
	if trailingExit(s.cfg.TrailingStop, ctx.MaxPrice, ctx.CurrentPrice) {
		return true, ReasonTrailingStop
	}
	if ctx.CurrentPrice >= s.cfg.SellThreshold {
		return true, ReasonThreshold
	}
	return false, signal.ReasonHold
}
