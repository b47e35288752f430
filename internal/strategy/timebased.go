package strategy

import (
	"github.com/izowooi/golden-burger/internal/config"
	"github.com/izowooi/golden-burger/internal/signal"
)

// TimeBased is the resolution-window variant: entry requires the market to
// resolve within the configured window, exit adds a time trigger shortly
// before resolution on top of the profit/loss and trailing rules.
type TimeBased struct {
	cfg config.Trading
}

func (s *TimeBased) Name() string { return config.StrategyTimeBased }

func (s *TimeBased) ShouldEnter(ctx EntryContext) (bool, string) {
	ok, reason, _ := signal.TimeEntryWindow(ctx.EndDate, ctx.Now,
		s.cfg.TimeBased.EntryHoursMax, s.cfg.TimeBased.EntryHoursMin)
	return ok, reason
}

// ShouldExit runs stop-loss, take-profit, the trailing stop and finally the
// time exit, in that order.
func (s *TimeBased) ShouldExit(ctx ExitContext) (bool, string) {
	if exit, reason := signal.ExitSignal(nil, ctx.EntryPrice, ctx.CurrentPrice,
		s.cfg.TakeProfitPercent, s.cfg.StopLossPercent,
		signal.MomentumParams{Enabled: false}); exit {
		return true, reason
	}
	if trailingExit(s.cfg.TrailingStop, ctx.MaxPrice, ctx.CurrentPrice) {
		return true, ReasonTrailingStop
	}
	if hoursLeft, ok := signal.HoursUntilResolution(ctx.EndDate, ctx.Now); ok &&
		hoursLeft < s.cfg.TimeBased.ExitHours {
		return true, ReasonTimeExit
	}
	return false, signal.ReasonHold
}
