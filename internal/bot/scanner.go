package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/izowooi/golden-burger/internal/config"
	"github.com/izowooi/golden-burger/internal/polymarket"
	"github.com/izowooi/golden-burger/internal/repository"
	"github.com/izowooi/golden-burger/internal/signal"
	"github.com/izowooi/golden-burger/internal/strategy"
)

// Candidate is a market that passed every entry filter. It carries enough
// data for the trader to act without re-fetching market metadata.
type Candidate struct {
	ConditionID       string
	MarketSlug        string
	Question          string
	Outcome           string
	TokenID           string
	Probability       float64
	Liquidity         float64
	EndDate           *time.Time
	HoursToResolution float64
	EntryReason       string
}

// MarketScanner finds buy candidates and maintains the snapshot series the
// momentum signals read.
type MarketScanner struct {
	logger *zap.Logger
	cfg    config.Trading
	gamma  polymarket.GammaClientInterface
	repo   *repository.TradeRepository
	strat  strategy.Strategy
	now    func() time.Time
}

// NewMarketScanner creates a scanner bound to one cycle's repository.
func NewMarketScanner(logger *zap.Logger, cfg config.Trading, gamma polymarket.GammaClientInterface, repo *repository.TradeRepository, strat strategy.Strategy) *MarketScanner {
	return &MarketScanner{
		logger: logger.Named("scanner"),
		cfg:    cfg,
		gamma:  gamma,
		repo:   repo,
		strat:  strat,
		now:    time.Now,
	}
}

// snapshotWindow is how many snapshots the strategies are given: the long
// momentum window plus headroom.
func (s *MarketScanner) snapshotWindow() int {
	return s.cfg.Momentum.LongWindow + 10
}

// ScanBuyCandidates fetches all tradable markets and filters them down to
// entry candidates: excluded categories out, liquidity floor, leading
// outcome inside the buy range, then the strategy's own entry signal. A
// failure to read one market's snapshots skips that market only.
func (s *MarketScanner) ScanBuyCandidates(ctx context.Context) ([]Candidate, error) {
	markets, err := s.gamma.ListTradableMarkets(ctx, s.cfg.MinLiquidity, s.cfg.MinVolume24h)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Scanning markets for buy candidates", zap.Int("markets", len(markets)))

	var candidates []Candidate
	evaluated := 0

	for i := range markets {
		m := &markets[i]
		if m.ConditionID == "" {
			continue
		}
		if isExcludedMarket(m, s.cfg.ExcludedCategories) {
			continue
		}
		if m.LiquidityValue() < s.cfg.MinLiquidity {
			continue
		}

		outcome, ok := m.LeadingOutcome()
		if !ok {
			continue
		}
		if !signal.ProbabilityInBuyRange(outcome.Probability, s.cfg.BuyThreshold, s.cfg.SellThreshold) {
			continue
		}
		evaluated++

		snapshots, err := s.repo.GetSnapshotsFor(m.ConditionID, s.snapshotWindow())
		if err != nil {
			s.logger.Error("Failed to load snapshots, skipping market",
				zap.String("condition_id", m.ConditionID), zap.Error(err))
			continue
		}

		endDate := m.EndTime()
		now := s.now()
		enter, reason := s.strat.ShouldEnter(strategy.EntryContext{
			Snapshots:   snapshots,
			Probability: outcome.Probability,
			EndDate:     endDate,
			Now:         now,
		})
		if !enter {
			s.logger.Debug("Entry signal rejected market",
				zap.String("condition_id", m.ConditionID),
				zap.String("reason", reason))
			continue
		}

		hoursLeft, _ := signal.HoursUntilResolution(endDate, now)
		candidates = append(candidates, Candidate{
			ConditionID:       m.ConditionID,
			MarketSlug:        m.Slug,
			Question:          m.Question,
			Outcome:           outcome.Label,
			TokenID:           outcome.TokenID,
			Probability:       outcome.Probability,
			Liquidity:         m.LiquidityValue(),
			EndDate:           endDate,
			HoursToResolution: hoursLeft,
			EntryReason:       reason,
		})
		s.logger.Debug("Buy candidate found",
			zap.String("question", truncate(m.Question, 50)),
			zap.String("outcome", outcome.Label),
			zap.Float64("probability", outcome.Probability),
			zap.String("reason", reason))
	}

	s.logger.Info("Scan complete",
		zap.Int("evaluated", evaluated),
		zap.Int("candidates", len(candidates)))
	return candidates, nil
}

// SaveMarketSnapshots stores one probability sample per tradable,
// non-excluded market. It runs every cycle regardless of buy activity so the
// momentum series stays unbroken, including for markets that later filters
// reject.
func (s *MarketScanner) SaveMarketSnapshots(ctx context.Context) (int, error) {
	markets, err := s.gamma.ListTradableMarkets(ctx, s.cfg.MinLiquidity, s.cfg.MinVolume24h)
	if err != nil {
		return 0, err
	}

	saved := 0
	for i := range markets {
		m := &markets[i]
		if m.ConditionID == "" {
			continue
		}
		if isExcludedMarket(m, s.cfg.ExcludedCategories) {
			continue
		}
		outcome, ok := m.LeadingOutcome()
		if !ok {
			continue
		}

		if err := s.repo.SaveSnapshot(m.ConditionID, outcome.Probability,
			m.LiquidityValue(), m.Volume24hValue()); err != nil {
			s.logger.Error("Failed to save snapshot",
				zap.String("condition_id", m.ConditionID), zap.Error(err))
			continue
		}
		saved++
	}

	s.logger.Info("Market snapshots saved", zap.Int("count", saved))
	return saved, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
