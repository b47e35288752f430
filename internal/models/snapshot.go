package models

import "time"

// MarketSnapshot is a periodic sample of a market's leading-outcome
// probability. The scanner appends one row per tracked market per cycle;
// momentum windows read them back oldest-first.
type MarketSnapshot struct {
	ID          uint      `gorm:"primarykey"`
	ConditionID string    `gorm:"index;not null"`
	Probability float64   `gorm:"not null"`
	Liquidity   float64
	Volume24h   float64   `gorm:"column:volume_24h"`
	Timestamp   time.Time `gorm:"index"`
}
