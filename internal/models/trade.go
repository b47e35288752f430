package models

import (
	"time"

	"gorm.io/gorm"
)

// TradeStatus is the lifecycle state of a Trade.
type TradeStatus string

const (
	StatusPendingBuy  TradeStatus = "pending_buy"  // buy order submitted, waiting for fill
	StatusHolding     TradeStatus = "holding"      // position held
	StatusPendingSell TradeStatus = "pending_sell" // sell order submitted, waiting for fill
	StatusCompleted   TradeStatus = "completed"    // position closed, P&L realized
)

// Trade represents one position attempt on a market. At most one trade may
// exist per condition ID; the unique index backs the repository's duplicate
// check.
type Trade struct {
	gorm.Model

	// Market information
	ConditionID string `gorm:"uniqueIndex;not null" json:"condition_id"`
	MarketSlug  string `json:"market_slug"`
	Question    string `json:"question"`
	Outcome     string `json:"outcome"` // "Yes" or "No"
	TokenID     string `gorm:"not null" json:"token_id"`

	// Buy side
	BuyPrice       float64    `json:"buy_price"`
	BuyAmount      float64    `json:"buy_amount"` // USDC spent
	BuyShares      float64    `json:"buy_shares"`
	BuyOrderID     string     `json:"buy_order_id"`
	BuyTimestamp   *time.Time `json:"buy_timestamp"`
	BuyProbability float64    `json:"buy_probability"`

	// Sell side
	SellPrice       float64    `json:"sell_price"`
	SellShares      float64    `json:"sell_shares"`
	SellOrderID     string     `json:"sell_order_id"`
	SellTimestamp   *time.Time `json:"sell_timestamp"`
	SellProbability float64    `json:"sell_probability"`

	RealizedPnL float64 `gorm:"column:realized_pnl" json:"realized_pnl"`

	Status TradeStatus `gorm:"index;default:pending_buy" json:"status"`

	// Strategy metadata
	LiquidityAtBuy      float64    `json:"liquidity_at_buy"`
	EntryReason         string     `json:"entry_reason"`
	ExitReason          string     `json:"exit_reason"`
	ShortMomentumAtBuy  *float64   `json:"short_momentum_at_buy"`
	LongMomentumAtBuy   *float64   `json:"long_momentum_at_buy"`
	ShortMomentumAtSell *float64   `json:"short_momentum_at_sell"`
	LongMomentumAtSell  *float64   `json:"long_momentum_at_sell"`
	MaxPrice            float64    `json:"max_price"` // highest midpoint seen since entry
	MarketEndDate       *time.Time `json:"market_end_date"`
	HoursToResolution   float64    `json:"hours_to_resolution_at_buy"`
}

// IsTerminal reports whether the trade can no longer change state.
func (t *Trade) IsTerminal() bool {
	return t.Status == StatusCompleted
}
