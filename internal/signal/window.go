package signal

import "time"

// Time-window reason codes.
const (
	ReasonNoEndDate       = "no_end_date"
	ReasonAlreadyResolved = "already_resolved"
	ReasonTooEarly        = "too_early"
	ReasonTooLate         = "too_late"
	ReasonTimeBased       = "time_based"
)

// HoursUntilResolution returns the hours remaining until the market resolves.
// The second return value is false when no end date is known.
func HoursUntilResolution(endDate *time.Time, now time.Time) (float64, bool) {
	if endDate == nil {
		return 0, false
	}
	return endDate.Sub(now).Hours(), true
}

// TimeEntryWindow checks whether a market sits inside the tradable window
// before resolution: minHours < hoursLeft <= maxHours. The returned hours are
// valid whenever an end date exists, even if the window check fails.
func TimeEntryWindow(endDate *time.Time, now time.Time, maxHours, minHours float64) (bool, string, float64) {
	hoursLeft, ok := HoursUntilResolution(endDate, now)
	if !ok {
		return false, ReasonNoEndDate, 0
	}
	if hoursLeft <= 0 {
		return false, ReasonAlreadyResolved, hoursLeft
	}
	if hoursLeft > maxHours {
		return false, ReasonTooEarly, hoursLeft
	}
	if hoursLeft <= minHours {
		return false, ReasonTooLate, hoursLeft
	}
	return true, ReasonTimeBased, hoursLeft
}

// TrailingStopTriggered reports whether the price has drawn down more than
// trailingPercent from the highest price observed since entry.
func TrailingStopTriggered(maxPriceSeen, currentPrice, trailingPercent float64) bool {
	if maxPriceSeen <= 0 {
		return false
	}
	return currentPrice < maxPriceSeen*(1-trailingPercent)
}

// ProbabilityInBuyRange reports whether a probability is inside the entry
// band. Both ends are inclusive: a market priced exactly at the sell
// threshold may still be entered and is then closed by the exit rules rather
// than rejected up front.
func ProbabilityInBuyRange(probability, buyThreshold, sellThreshold float64) bool {
	return probability >= buyThreshold && probability <= sellThreshold
}
