package strategy

import (
	"github.com/izowooi/golden-burger/internal/config"
	"github.com/izowooi/golden-burger/internal/signal"
)

// Probability is the plain threshold variant: any market inside the buy
// range is entered, and positions are closed by stop-loss, take-profit, the
// optional trailing stop, or the price reaching the sell threshold.
type Probability struct {
	cfg config.Trading
}

func (s *Probability) Name() string { return config.StrategyProbability }

// ShouldEnter always allows entry; the probability-range filter already ran
// in the scanner. The reason code comes from the momentum-disabled branch of
// the entry signal so the stored vocabulary matches the other variants.
func (s *Probability) ShouldEnter(_ EntryContext) (bool, string) {
	return signal.EntrySignal(nil, signal.MomentumParams{Enabled: false})
}

func (s *Probability) ShouldExit(ctx ExitContext) (bool, string) {
	if exit, reason := signal.ExitSignal(nil, ctx.EntryPrice, ctx.CurrentPrice,
		s.cfg.TakeProfitPercent, s.cfg.StopLossPercent,
		signal.MomentumParams{Enabled: false}); exit {
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
