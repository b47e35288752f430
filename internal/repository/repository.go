// Package repository is the single owner of trade persistence. Every other
// component reads and mutates Trade, MarketSnapshot and SkippedMarket rows
// through it, and it alone enforces the one-position-per-market invariant.
package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/izowooi/golden-burger/internal/models"
)

var (
	// ErrDuplicateMarket is returned when a trade already exists for a
	// condition ID.
	ErrDuplicateMarket = errors.New("trade already exists for market")
	// ErrTradeNotFound is returned when an update references an unknown
	// trade ID.
	ErrTradeNotFound = errors.New("trade not found")
)

// Stats summarizes the store for the cycle report.
type Stats struct {
	TotalTrades int64
	Holding     int64
	Completed   int64
	Skipped     int64
	TotalPnL    float64
}

// TradeRepository wraps a gorm handle with the store operations. A cycle
// creates one repository over its own session; repositories are not shared
// across concurrent invocations.
type TradeRepository struct {
	db *gorm.DB
}

// New creates a repository over db.
func New(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// Session returns a repository bound to a fresh gorm session, giving a cycle
// its own transaction scope.
func (r *TradeRepository) Session() *TradeRepository {
	return &TradeRepository{db: r.db.Session(&gorm.Session{NewDB: true})}
}

// CreateTrade inserts a new trade. The existence check and the insert run in
// one transaction so concurrent cycles cannot race a duplicate past the
// check; the unique index on condition_id backstops it at the schema level.
func (r *TradeRepository) CreateTrade(trade *models.Trade) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Trade{}).
			Where("condition_id = ?", trade.ConditionID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check for existing trade: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateMarket, trade.ConditionID)
		}
		if err := tx.Create(trade).Error; err != nil {
			return fmt.Errorf("failed to create trade: %w", err)
		}
		return nil
	})
}

// UpdateTrade applies a partial update to the trade with the given ID and
// bumps updated_at. The fields map uses column names.
func (r *TradeRepository) UpdateTrade(id uint, fields map[string]interface{}) (*models.Trade, error) {
	var trade models.Trade
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&trade, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrTradeNotFound, id)
			}
			return fmt.Errorf("failed to load trade %d: %w", id, err)
		}
		fields["updated_at"] = time.Now().UTC()
		if err := tx.Model(&trade).Updates(fields).Error; err != nil {
			return fmt.Errorf("failed to update trade %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

// GetTrade loads a trade by ID.
func (r *TradeRepository) GetTrade(id uint) (*models.Trade, error) {
	var trade models.Trade
	if err := r.db.First(&trade, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrTradeNotFound, id)
		}
		return nil, err
	}
	return &trade, nil
}

// GetHoldingTrades returns all trades currently in HOLDING status.
func (r *TradeRepository) GetHoldingTrades() ([]models.Trade, error) {
	var trades []models.Trade
	if err := r.db.Where("status = ?", models.StatusHolding).Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to query holding trades: %w", err)
	}
	return trades, nil
}

// IsAlreadyTraded reports whether a market has a trade in any status or was
// marked skipped. This is the single global gate against re-entering a
// market.
func (r *TradeRepository) IsAlreadyTraded(conditionID string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Trade{}).
		Where("condition_id = ?", conditionID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check trades for %s: %w", conditionID, err)
	}
	if count > 0 {
		return true, nil
	}

	if err := r.db.Model(&models.SkippedMarket{}).
		Where("condition_id = ?", conditionID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check skipped markets for %s: %w", conditionID, err)
	}
	return count > 0, nil
}

// MarkAsSkipped records a market as untradeable. Idempotent: a second call
// for the same market keeps the first row and reason.
func (r *TradeRepository) MarkAsSkipped(conditionID, reason string) error {
	skipped := models.SkippedMarket{
		ConditionID: conditionID,
		Reason:      reason,
		SkippedAt:   time.Now().UTC(),
	}
	err := r.db.
		Where(models.SkippedMarket{ConditionID: conditionID}).
		FirstOrCreate(&skipped).Error
	if err != nil {
		return fmt.Errorf("failed to mark %s as skipped: %w", conditionID, err)
	}
	return nil
}

// PositionCount returns the number of open positions.
func (r *TradeRepository) PositionCount() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Trade{}).
		Where("status = ?", models.StatusHolding).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count positions: %w", err)
	}
	return count, nil
}

// SaveSnapshot appends a market snapshot sample.
func (r *TradeRepository) SaveSnapshot(conditionID string, probability, liquidity, volume24h float64) error {
	snapshot := models.MarketSnapshot{
		ConditionID: conditionID,
		Probability: probability,
		Liquidity:   liquidity,
		Volume24h:   volume24h,
		Timestamp:   time.Now().UTC(),
	}
	if err := r.db.Create(&snapshot).Error; err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", conditionID, err)
	}
	return nil
}

// GetSnapshotsFor returns the most recent limit snapshots of a market in
// oldest-first order, the shape momentum windows expect.
func (r *TradeRepository) GetSnapshotsFor(conditionID string, limit int) ([]models.MarketSnapshot, error) {
	var snapshots []models.MarketSnapshot
	err := r.db.
		Where("condition_id = ?", conditionID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&snapshots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots for %s: %w", conditionID, err)
	}

	// Reverse the newest-first page into chronological order.
	for i, j := 0, len(snapshots)-1; i < j; i, j = i+1, j-1 {
		snapshots[i], snapshots[j] = snapshots[j], snapshots[i]
	}
	return snapshots, nil
}

// CleanupOldSnapshots deletes snapshots strictly older than the retention
// window and returns the number deleted. A snapshot exactly at the boundary
// is kept.
func (r *TradeRepository) CleanupOldSnapshots(retentionDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	res := r.db.Where("timestamp < ?", cutoff).Delete(&models.MarketSnapshot{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// GetStats aggregates the store into the cycle-report summary.
func (r *TradeRepository) GetStats() (Stats, error) {
	var stats Stats

	if err := r.db.Model(&models.Trade{}).Count(&stats.TotalTrades).Error; err != nil {
		return stats, fmt.Errorf("failed to count trades: %w", err)
	}
	if err := r.db.Model(&models.Trade{}).
		Where("status = ?", models.StatusHolding).
		Count(&stats.Holding).Error; err != nil {
		return stats, fmt.Errorf("failed to count holding trades: %w", err)
	}
	if err := r.db.Model(&models.Trade{}).
		Where("status = ?", models.StatusCompleted).
		Count(&stats.Completed).Error; err != nil {
		return stats, fmt.Errorf("failed to count completed trades: %w", err)
	}
	if err := r.db.Model(&models.SkippedMarket{}).Count(&stats.Skipped).Error; err != nil {
		return stats, fmt.Errorf("failed to count skipped markets: %w", err)
	}

	var totalPnL *float64
	err := r.db.Model(&models.Trade{}).
		Where("status = ?", models.StatusCompleted).
		Select("SUM(realized_pnl)").
		Scan(&totalPnL).Error
	if err != nil {
		return stats, fmt.Errorf("failed to sum realized P&L: %w", err)
	}
	if totalPnL != nil {
		stats.TotalPnL = *totalPnL
	}
	return stats, nil
}
