// Package bot wires the scanner, trader and strategy into the trading cycle.
// One invocation runs one cycle: snapshot collection, exit checks on open
// positions, a buy scan, buys, snapshot pruning and a summary report.
package bot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/izowooi/golden-burger/internal/config"
	"github.com/izowooi/golden-burger/internal/notify"
	"github.com/izowooi/golden-burger/internal/polymarket"
	"github.com/izowooi/golden-burger/internal/repository"
	"github.com/izowooi/golden-burger/internal/strategy"
)

// Notifier receives end-of-cycle reports. Failures are logged, never fatal.
type Notifier interface {
	SendCycleReport(ctx context.Context, r notify.CycleReport) error
}

// CycleStats counts what one cycle did.
type CycleStats struct {
	SnapshotsSaved  int
	CheckedHoldings int
	Sold            int
	BuyCandidates   int
	Bought          int
	SnapshotsPruned int64
}

// Bot runs trading cycles. It holds the long-lived dependencies; per-cycle
// state (repository session, scanner, trader) is created inside RunCycle.
type Bot struct {
	logger   *zap.Logger
	cfg      *config.Config
	repo     *repository.TradeRepository
	gamma    polymarket.GammaClientInterface
	clob     polymarket.ClobClientInterface
	strat    strategy.Strategy
	notifier Notifier
}

// New assembles a bot from its dependencies.
func New(logger *zap.Logger, cfg *config.Config, repo *repository.TradeRepository,
	gamma polymarket.GammaClientInterface, clob polymarket.ClobClientInterface,
	strat strategy.Strategy, notifier Notifier) *Bot {
	return &Bot{
		logger:   logger.Named("bot"),
		cfg:      cfg,
		repo:     repo,
		gamma:    gamma,
		clob:     clob,
		strat:    strat,
		notifier: notifier,
	}
}

// RunCycle executes one full trading cycle. Sells always run before buys so
// freed capital and position slots are available to new entries. Failures on
// a single market never abort the cycle; only infrastructure failures that
// make the whole phase impossible do.
func (b *Bot) RunCycle(ctx context.Context) (CycleStats, error) {
	var stats CycleStats

	repo := b.repo.Session()
	scanner := NewMarketScanner(b.logger, b.cfg.Trading, b.gamma, repo, b.strat)
	trader := NewTrader(b.logger, b.cfg.Trading, repo, b.clob, b.strat)

	b.logger.Info("Starting trading cycle",
		zap.String("strategy", b.strat.Name()),
		zap.Bool("simulation", b.cfg.Simulation))

	// Phase 0: extend the snapshot series before any decision reads it.
	if b.cfg.Trading.SaveSnapshots {
		saved, err := scanner.SaveMarketSnapshots(ctx)
		if err != nil {
			return stats, fmt.Errorf("snapshot phase failed: %w", err)
		}
		stats.SnapshotsSaved = saved
	}

	// Phase 1: exit checks on every open position.
	holdings, err := repo.GetHoldingTrades()
	if err != nil {
		return stats, fmt.Errorf("failed to load holdings: %w", err)
	}
	stats.CheckedHoldings = len(holdings)
	for i := range holdings {
		trade := &holdings[i]
		sold, err := trader.ExecuteSell(ctx, trade)
		if err != nil {
			b.logger.Error("Sell check failed",
				zap.String("condition_id", trade.ConditionID), zap.Error(err))
			continue
		}
		if sold {
			stats.Sold++
		}
	}

	// Phase 2: scan for entries.
	candidates, err := scanner.ScanBuyCandidates(ctx)
	if err != nil {
		return stats, fmt.Errorf("buy scan failed: %w", err)
	}
	stats.BuyCandidates = len(candidates)

	// Phase 3: buys. ExecuteBuy re-gates each candidate against the store,
	// so a market sold in phase 1 is not immediately re-entered.
	for _, cand := range candidates {
		trade, err := trader.ExecuteBuy(ctx, cand)
		if err != nil {
			b.logger.Error("Buy failed",
				zap.String("condition_id", cand.ConditionID), zap.Error(err))
			continue
		}
		if trade != nil {
			stats.Bought++
		}
	}

	// Phase 4: prune snapshots past retention.
	if b.cfg.Trading.SaveSnapshots {
		pruned, err := repo.CleanupOldSnapshots(b.cfg.Trading.SnapshotRetention)
		if err != nil {
			b.logger.Error("Snapshot pruning failed", zap.Error(err))
		} else {
			stats.SnapshotsPruned = pruned
		}
	}

	storeStats, err := repo.GetStats()
	if err != nil {
		b.logger.Error("Failed to read store stats", zap.Error(err))
	}

	b.logger.Info("Trading cycle complete",
		zap.Int("snapshots_saved", stats.SnapshotsSaved),
		zap.Int("checked_holdings", stats.CheckedHoldings),
		zap.Int("sold", stats.Sold),
		zap.Int("buy_candidates", stats.BuyCandidates),
		zap.Int("bought", stats.Bought),
		zap.Int64("snapshots_pruned", stats.SnapshotsPruned),
		zap.Int64("open_positions", storeStats.Holding),
		zap.Float64("total_pnl", storeStats.TotalPnL))

	if b.notifier != nil {
		report := notify.CycleReport{
			JobName:         b.cfg.JobName,
			Strategy:        b.strat.Name(),
			Simulation:      b.cfg.Simulation,
			SnapshotsSaved:  stats.SnapshotsSaved,
			CheckedHoldings: stats.CheckedHoldings,
			Sold:            stats.Sold,
			BuyCandidates:   stats.BuyCandidates,
			Bought:          stats.Bought,
			SnapshotsPruned: stats.SnapshotsPruned,
			HoldingTotal:    storeStats.Holding,
			CompletedTotal:  storeStats.Completed,
			SkippedTotal:    storeStats.Skipped,
			TotalPnL:        storeStats.TotalPnL,
		}
		if err := b.notifier.SendCycleReport(ctx, report); err != nil {
			b.logger.Error("Failed to send cycle report", zap.Error(err))
		}
	}

	return stats, nil
}
