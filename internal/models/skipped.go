package models

import "time"

// SkippedMarket records a market judged untradeable (e.g. a rapid price jump
// above the sell threshold). Rows are written once and never updated; the
// repository consults them to block re-entry.
type SkippedMarket struct {
	ID          uint      `gorm:"primarykey"`
	ConditionID string    `gorm:"uniqueIndex;not null"`
	Reason      string    `gorm:"not null"` // e.g. "rapid_jump"
	SkippedAt   time.Time
}
