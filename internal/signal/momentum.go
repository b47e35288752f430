// Package signal contains the pure decision functions of the bot: momentum
// drift over snapshot windows, golden/dead cross detection, entry/exit
// signals, time-to-resolution windows and trailing-stop checks. Nothing in
// this package performs I/O.
package signal

import "github.com/izowooi/golden-burger/internal/models"

// Entry and exit reason codes. These are stored on the trade record, so they
// are part of the persisted vocabulary and must stay stable.
const (
	ReasonMomentumDisabled      = "momentum_disabled"
	ReasonInsufficientShortData = "insufficient_short_data"
	ReasonShortMomentumPositive = "short_momentum_positive"
	ReasonShortMomentumNegative = "short_momentum_negative"
	ReasonGoldenCross           = "golden_cross"
	ReasonNoSignal              = "no_signal"

	ReasonStopLoss   = "stop_loss"
	ReasonTakeProfit = "take_profit"
	ReasonDeadCross  = "dead_cross"
	ReasonHold       = "hold"
)

// MomentumParams holds the tunables for momentum signal computation.
type MomentumParams struct {
	Enabled              bool
	ShortWindow          int
	LongWindow           int
	GoldenCrossThreshold float64
	DeadCrossThreshold   float64 // negative, e.g. -0.02
}

// Momentum computes the linear drift rate of the leading-outcome probability
// over a snapshot series ordered oldest-first:
//
//	(newest.probability - oldest.probability) / len(snapshots)
//
// This divides by the point count rather than the elapsed time, which is an
// intentional simplification inherited from the strategy's tuning. The second
// return value is false when fewer than two points are available.
func Momentum(snapshots []models.MarketSnapshot) (float64, bool) {
	if len(snapshots) < 2 {
		return 0, false
	}
	oldest := snapshots[0].Probability
	newest := snapshots[len(snapshots)-1].Probability
	return (newest - oldest) / float64(len(snapshots)), true
}

// ShortMomentum computes Momentum over the most recent ShortWindow snapshots.
func ShortMomentum(snapshots []models.MarketSnapshot, p MomentumParams) (float64, bool) {
	if len(snapshots) < p.ShortWindow {
		return 0, false
	}
	return Momentum(snapshots[len(snapshots)-p.ShortWindow:])
}

// LongMomentum computes Momentum over the most recent LongWindow snapshots.
// When fewer than LongWindow points exist, it falls back to using everything
// available, but only once at least 2x ShortWindow points have accumulated.
// The 2x floor is a heuristic carried over from the strategy's tuning, not a
// law; it is exposed here as part of the params so it can be revisited.
func LongMomentum(snapshots []models.MarketSnapshot, p MomentumParams) (float64, bool) {
	if len(snapshots) >= p.LongWindow {
		return Momentum(snapshots[len(snapshots)-p.LongWindow:])
	}
	if len(snapshots) >= 2*p.ShortWindow {
		return Momentum(snapshots)
	}
	return 0, false
}

// GoldenCross reports whether short-window momentum meaningfully leads the
// long-window momentum: short - long >= threshold.
func GoldenCross(short, long, threshold float64) bool {
	return short-long >= threshold
}

// DeadCross reports whether the momentum relationship has inverted:
// short - long <= threshold (threshold is negative).
func DeadCross(short, long, threshold float64) bool {
	return short-long <= threshold
}

// EntrySignal decides whether a position may be opened based on momentum.
//
//  1. Momentum disabled: always enter.
//  2. Short momentum unavailable: never enter.
//  3. Long momentum unavailable: enter iff short momentum is positive.
//  4. Otherwise enter iff a golden cross holds.
//
// The reason code identifies which branch fired.
func EntrySignal(snapshots []models.MarketSnapshot, p MomentumParams) (bool, string) {
	if !p.Enabled {
		return true, ReasonMomentumDisabled
	}

	short, shortOK := ShortMomentum(snapshots, p)
	long, longOK := LongMomentum(snapshots, p)

	if !shortOK {
		return false, ReasonInsufficientShortData
	}

	if !longOK {
		if short > 0 {
			return true, ReasonShortMomentumPositive
		}
		return false, ReasonShortMomentumNegative
	}

	if GoldenCross(short, long, p.GoldenCrossThreshold) {
		return true, ReasonGoldenCross
	}
	return false, ReasonNoSignal
}

// ExitSignal decides whether a position should be closed, in strict priority
// order: stop-loss, then take-profit, then dead cross (when momentum is
// enabled and computable). Returns (shouldExit, reason).
func ExitSignal(snapshots []models.MarketSnapshot, entryPrice, currentPrice, takeProfit, stopLoss float64, p MomentumParams) (bool, string) {
	pnl := PnLPercent(entryPrice, currentPrice)

	if pnl <= stopLoss {
		return true, ReasonStopLoss
	}
	if pnl >= takeProfit {
		return true, ReasonTakeProfit
	}

	if p.Enabled {
		short, shortOK := ShortMomentum(snapshots, p)
		long, longOK := LongMomentum(snapshots, p)
		if shortOK && longOK && DeadCross(short, long, p.DeadCrossThreshold) {
			return true, ReasonDeadCross
		}
	}

	return false, ReasonHold
}

// PnLPercent returns the fractional gain or loss of current over entry.
// A zero entry price yields zero rather than a division by zero.
func PnLPercent(entryPrice, currentPrice float64) float64 {
	if entryPrice == 0 {
		return 0
	}
	return (currentPrice - entryPrice) / entryPrice
}
