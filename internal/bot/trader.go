package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/izowooi/golden-burger/internal/config"
	"github.com/izowooi/golden-burger/internal/models"
	"github.com/izowooi/golden-burger/internal/polymarket"
	"github.com/izowooi/golden-burger/internal/repository"
	"github.com/izowooi/golden-burger/internal/signal"
	"github.com/izowooi/golden-burger/internal/strategy"
)

// MinOrderSize is the exchange's minimum order size in shares.
const MinOrderSize = 5.0

// SkipReasonRapidJump marks markets whose price jumped above the sell
// threshold between scan and buy.
const SkipReasonRapidJump = "rapid_jump"

// Trader opens and closes positions. Every decision re-verifies the live
// midpoint, and no trade row is written unless the exchange accepted the
// order.
type Trader struct {
	logger *zap.Logger
	cfg    config.Trading
	repo   *repository.TradeRepository
	clob   polymarket.ClobClientInterface
	strat  strategy.Strategy
	now    func() time.Time
}

// NewTrader creates a trader bound to one cycle's repository.
func NewTrader(logger *zap.Logger, cfg config.Trading, repo *repository.TradeRepository, clob polymarket.ClobClientInterface, strat strategy.Strategy) *Trader {
	return &Trader{
		logger: logger.Named("trader"),
		cfg:    cfg,
		repo:   repo,
		clob:   clob,
		strat:  strat,
		now:    time.Now,
	}
}

// momentumInfo reads the current short/long momentum for trade metadata.
// Returns nils when momentum is disabled or data is insufficient.
func (t *Trader) momentumInfo(conditionID string) (short, long *float64) {
	if !t.cfg.Momentum.Enabled {
		return nil, nil
	}
	snapshots, err := t.repo.GetSnapshotsFor(conditionID, t.cfg.Momentum.LongWindow+10)
	if err != nil {
		t.logger.Warn("Failed to load snapshots for momentum info",
			zap.String("condition_id", conditionID), zap.Error(err))
		return nil, nil
	}
	p := t.cfg.Momentum.Params()
	if v, ok := signal.ShortMomentum(snapshots, p); ok {
		short = &v
	}
	if v, ok := signal.LongMomentum(snapshots, p); ok {
		long = &v
	}
	return short, long
}

// ExecuteBuy attempts to open a position for a candidate. Business-rule
// rejections (already traded, max positions, price moved, order too small,
// order rejected) return (nil, nil); only infrastructure failures return an
// error. On success the created trade is returned in HOLDING status.
func (t *Trader) ExecuteBuy(ctx context.Context, cand Candidate) (*models.Trade, error) {
	l := t.logger.With(zap.String("condition_id", cand.ConditionID))

	traded, err := t.repo.IsAlreadyTraded(cand.ConditionID)
	if err != nil {
		return nil, err
	}
	if traded {
		l.Info("Market already traded, skipping buy")
		return nil, nil
	}

	if t.cfg.MaxPositions > 0 {
		positions, err := t.repo.PositionCount()
		if err != nil {
			return nil, err
		}
		if positions >= int64(t.cfg.MaxPositions) {
			l.Info("Max positions reached, skipping buy",
				zap.Int64("positions", positions),
				zap.Int("max", t.cfg.MaxPositions))
			return nil, nil
		}
	}

	// Re-verify the live price; scan data may be minutes old.
	price, err := t.clob.GetMidpoint(ctx, cand.TokenID)
	if err != nil {
		return nil, err
	}

	if price > t.cfg.SellThreshold {
		l.Info("Rapid jump above sell threshold, marking market skipped",
			zap.Float64("price", price),
			zap.Float64("sell_threshold", t.cfg.SellThreshold))
		if err := t.repo.MarkAsSkipped(cand.ConditionID, SkipReasonRapidJump); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if price < t.cfg.BuyThreshold {
		l.Info("Price dropped below buy threshold, skipping buy",
			zap.Float64("price", price),
			zap.Float64("buy_threshold", t.cfg.BuyThreshold))
		return nil, nil
	}

	shares := t.cfg.BuyAmountUSDC / price
	if shares < MinOrderSize {
		l.Warn("Order below exchange minimum, skipping buy",
			zap.Float64("shares", shares),
			zap.Float64("min_order_size", MinOrderSize))
		return nil, nil
	}

	shortMom, longMom := t.momentumInfo(cand.ConditionID)

	l.Info("Placing buy order",
		zap.String("outcome", cand.Outcome),
		zap.String("question", truncate(cand.Question, 50)),
		zap.Float64("price", price),
		zap.Float64("shares", shares),
		zap.String("entry_reason", cand.EntryReason))

	result, err := t.clob.PlaceLimitOrder(ctx, cand.TokenID, price, shares, polymarket.SideBuy)
	if err != nil {
		return nil, err
	}
	if !result.Accepted {
		l.Error("Buy order rejected", zap.String("error", result.ErrorMsg))
		return nil, nil
	}

	buyTime := t.now().UTC()
	trade := &models.Trade{
		ConditionID:        cand.ConditionID,
		MarketSlug:         cand.MarketSlug,
		Question:           cand.Question,
		Outcome:            cand.Outcome,
		TokenID:            cand.TokenID,
		BuyPrice:           price,
		BuyAmount:          t.cfg.BuyAmountUSDC,
		BuyShares:          shares,
		BuyOrderID:         result.OrderID,
		BuyTimestamp:       &buyTime,
		BuyProbability:     price,
		Status:             models.StatusHolding,
		LiquidityAtBuy:     cand.Liquidity,
		EntryReason:        cand.EntryReason,
		ShortMomentumAtBuy: shortMom,
		LongMomentumAtBuy:  longMom,
		MaxPrice:           price,
		MarketEndDate:      cand.EndDate,
		HoursToResolution:  cand.HoursToResolution,
	}
	if err := t.repo.CreateTrade(trade); err != nil {
		return nil, err
	}

	l.Info("Buy order accepted",
		zap.Uint("trade_id", trade.ID),
		zap.String("order_id", result.OrderID))
	return trade, nil
}

// ExecuteSell evaluates a held position against the strategy's exit chain
// and closes it when a condition fires. Returns true only when a sell order
// was accepted and the trade transitioned to COMPLETED. An order rejection
// leaves the trade in HOLDING for the next cycle.
func (t *Trader) ExecuteSell(ctx context.Context, trade *models.Trade) (bool, error) {
	l := t.logger.With(
		zap.String("condition_id", trade.ConditionID),
		zap.Uint("trade_id", trade.ID))

	price, err := t.clob.GetMidpoint(ctx, trade.TokenID)
	if err != nil {
		return false, err
	}

	// Trailing-stop bookkeeping: track the highest midpoint since entry.
	maxPrice := trade.MaxPrice
	if maxPrice < trade.BuyPrice {
		maxPrice = trade.BuyPrice
	}
	if price > maxPrice {
		maxPrice = price
		if _, err := t.repo.UpdateTrade(trade.ID, map[string]interface{}{"max_price": maxPrice}); err != nil {
			return false, err
		}
		trade.MaxPrice = maxPrice
		l.Debug("New max price seen", zap.Float64("max_price", maxPrice))
	}

	snapshots, err := t.repo.GetSnapshotsFor(trade.ConditionID, t.cfg.Momentum.LongWindow+10)
	if err != nil {
		return false, err
	}

	now := t.now()
	shouldExit, exitReason := t.strat.ShouldExit(strategy.ExitContext{
		Snapshots:    snapshots,
		EntryPrice:   trade.BuyPrice,
		CurrentPrice: price,
		MaxPrice:     maxPrice,
		EndDate:      trade.MarketEndDate,
		Now:          now,
	})
	if !shouldExit {
		l.Debug("Holding position",
			zap.Float64("price", price),
			zap.Float64("pnl_percent", signal.PnLPercent(trade.BuyPrice, price)))
		return false, nil
	}

	l.Info("Placing sell order",
		zap.String("outcome", trade.Outcome),
		zap.String("question", truncate(trade.Question, 50)),
		zap.Float64("price", price),
		zap.Float64("shares", trade.BuyShares),
		zap.String("exit_reason", exitReason))

	result, err := t.clob.PlaceLimitOrder(ctx, trade.TokenID, price, trade.BuyShares, polymarket.SideSell)
	if err != nil {
		return false, err
	}
	if !result.Accepted {
		l.Error("Sell order rejected, keeping position", zap.String("error", result.ErrorMsg))
		return false, nil
	}

	realizedPnL := (price - trade.BuyPrice) * trade.BuyShares
	shortMom, longMom := t.momentumInfo(trade.ConditionID)
	sellTime := t.now().UTC()

	if _, err := t.repo.UpdateTrade(trade.ID, map[string]interface{}{
		"sell_price":             price,
		"sell_shares":            trade.BuyShares,
		"sell_order_id":          result.OrderID,
		"sell_timestamp":         &sellTime,
		"sell_probability":       price,
		"realized_pnl":           realizedPnL,
		"status":                 models.StatusCompleted,
		"exit_reason":            exitReason,
		"short_momentum_at_sell": shortMom,
		"long_momentum_at_sell":  longMom,
	}); err != nil {
		return false, err
	}

	l.Info("Sell order accepted",
		zap.String("order_id", result.OrderID),
		zap.Float64("realized_pnl", realizedPnL),
		zap.Float64("pnl_percent", signal.PnLPercent(trade.BuyPrice, price)),
		zap.String("exit_reason", exitReason))
	return true, nil
}
