package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/izowooi/golden-burger/internal/config"
	"github.com/izowooi/golden-burger/internal/models"
	"github.com/izowooi/golden-burger/internal/polymarket"
	"github.com/izowooi/golden-burger/internal/repository"
)

func newTestTrader(t *testing.T, cfg config.Trading) (*Trader, *repository.TradeRepository, *MockClobClient) {
	repo := setupRepo(t)
	clob := new(MockClobClient)
	trader := NewTrader(zap.NewNop(), cfg, repo, clob, mustStrategy(t, cfg))
	return trader, repo, clob
}

func testCandidate() Candidate {
	end := time.Now().UTC().Add(48 * time.Hour)
	return Candidate{
		ConditionID:       "0xabc",
		MarketSlug:        "will-it-happen",
		Question:          "Will it happen?",
		Outcome:           "Yes",
		TokenID:           "tok-yes",
		Probability:       0.86,
		Liquidity:         200000,
		EndDate:           &end,
		HoursToResolution: 48,
		EntryReason:       "momentum_disabled",
	}
}

func TestExecuteBuy(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		trader, repo, clob := newTestTrader(t, testTrading())
		clob.On("GetMidpoint", mock.Anything, "tok-yes").Return(0.86, nil)
		clob.On("PlaceLimitOrder", mock.Anything, "tok-yes", 0.86, mock.Anything, polymarket.SideBuy).
			Return(&polymarket.OrderResult{Accepted: true, OrderID: "order-1"}, nil)

		// Act
		trade, err := trader.ExecuteBuy(context.Background(), testCandidate())

		// Assert
		assert.NoError(t, err)
		assert.NotNil(t, trade)
		assert.Equal(t, models.StatusHolding, trade.Status)
		assert.InDelta(t, 0.86, trade.BuyPrice, 1e-9)
		assert.InDelta(t, 10.0/0.86, trade.BuyShares, 1e-9)
		assert.Equal(t, "order-1", trade.BuyOrderID)
		assert.Equal(t, "momentum_disabled", trade.EntryReason)
		assert.InDelta(t, 0.86, trade.MaxPrice, 1e-9)
		assert.NotNil(t, trade.BuyTimestamp)

		loaded, err := repo.GetTrade(trade.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.StatusHolding, loaded.Status)
		clob.AssertExpectations(t)
	})

	t.Run("AlreadyTradedSkipsWithoutPriceCheck", func(t *testing.T) {
		trader, repo, clob := newTestTrader(t, testTrading())
		assert.NoError(t, repo.CreateTrade(&models.Trade{
			ConditionID: "0xabc",
			TokenID:     "tok-yes",
			Status:      models.StatusCompleted,
		}))

		trade, err := trader.ExecuteBuy(context.Background(), testCandidate())

		assert.NoError(t, err)
		assert.Nil(t, trade)
		clob.AssertNotCalled(t, "GetMidpoint", mock.Anything, mock.Anything)
	})

	t.Run("SecondBuyForSameMarketCreatesNoSecondRow", func(t *testing.T) {
		trader, repo, clob := newTestTrader(t, testTrading())
		clob.On("GetMidpoint", mock.Anything, "tok-yes").Return(0.86, nil)
		clob.On("PlaceLimitOrder", mock.Anything, "tok-yes", 0.86, mock.Anything, polymarket.SideBuy).
			Return(&polymarket.OrderResult{Accepted: true, OrderID: "order-1"}, nil)

		first, err := trader.ExecuteBuy(context.Background(), testCandidate())
		assert.NoError(t, err)
		assert.NotNil(t, first)

		second, err := trader.ExecuteBuy(context.Background(), testCandidate())
		assert.NoError(t, err)
		assert.Nil(t, second)

		count, err := repo.PositionCount()
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("MaxPositionsReached", func(t *testing.T) {
		cfg := testTrading()
		cfg.MaxPositions = 1
		trader, repo, clob := newTestTrader(t, cfg)
		assert.NoError(t, repo.CreateTrade(&models.Trade{
			ConditionID: "0xother",
			TokenID:     "tok-other",
			Status:      models.StatusHolding,
		}))

		trade, err := trader.ExecuteBuy(context.Background(), testCandidate())

		assert.NoError(t, err)
		assert.Nil(t, trade)
		clob.AssertNotCalled(t, "GetMidpoint", mock.Anything, mock.Anything)
	})

	t.Run("RapidJumpMarksMarketSkipped", func(t *testing.T) {
		trader, repo, clob := newTestTrader(t, testTrading())
		clob.On("GetMidpoint", mock.Anything, "tok-yes").Return(0.98, nil)

		trade, err := trader.ExecuteBuy(context.Background(), testCandidate())

		assert.NoError(t, err)
		assert.Nil(t, trade)
		clob.AssertNotCalled(t, "PlaceLimitOrder",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

		// The market is permanently excluded from future entries.
		traded, err := repo.IsAlreadyTraded("0xabc")
		assert.NoError(t, err)
		assert.True(t, traded)
	})

	t.Run("PriceDroppedBelowBuyThreshold", func(t *testing.T) {
		trader, repo, clob := newTestTrader(t, testTrading())
		clob.On("GetMidpoint", mock.Anything, "tok-yes").Return(0.80, nil)

		trade, err := trader.ExecuteBuy(context.Background(), testCandidate())

		assert.NoError(t, err)
		assert.Nil(t, trade)

		// Unlike a rapid jump, a dip does not blacklist the market.
		traded, err := repo.IsAlreadyTraded("0xabc")
		assert.NoError(t, err)
		assert.False(t, traded)
	})

	t.Run("OrderBelowExchangeMinimum", func(t *testing.T) {
		cfg := testTrading()
		cfg.BuyAmountUSDC = 2.0 // 2 / 0.86 = 2.3 shares, under the minimum of 5
		trader, repo, clob := newTestTrader(t, cfg)
		clob.On("GetMidpoint", mock.Anything, "tok-yes").Return(0.86, nil)

		trade, err := trader.ExecuteBuy(context.Background(), testCandidate())

		assert.NoError(t, err)
		assert.Nil(t, trade)
		clob.AssertNotCalled(t, "PlaceLimitOrder",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

		traded, err := repo.IsAlreadyTraded("0xabc")
		assert.NoError(t, err)
		assert.False(t, traded)
	})

	t.Run("RejectedOrderLeavesNoRow", func(t *testing.T) {
		trader, repo, clob := newTestTrader(t, testTrading())
		clob.On("GetMidpoint", mock.Anything, "tok-yes").Return(0.86, nil)
		clob.On("PlaceLimitOrder", mock.Anything, "tok-yes", 0.86, mock.Anything, polymarket.SideBuy).
			Return(&polymarket.OrderResult{Accepted: false, ErrorMsg: "insufficient balance"}, nil)

		trade, err := trader.ExecuteBuy(context.Background(), testCandidate())

		assert.NoError(t, err)
		assert.Nil(t, trade)

		traded, err := repo.IsAlreadyTraded("0xabc")
		assert.NoError(t, err)
		assert.False(t, traded)
	})
}

func heldTrade(repo *repository.TradeRepository, t *testing.T) *models.Trade {
	trade := &models.Trade{
		ConditionID: "0xheld",
		TokenID:     "tok-held",
		BuyPrice:    0.86,
		BuyShares:   11.6,
		Status:      models.StatusHolding,
		MaxPrice:    0.86,
	}
	assert.NoError(t, repo.CreateTrade(trade))
	return trade
}

func TestExecuteSell(t *testing.T) {
	t.Run("TakeProfitClosesTheTrade", func(t *testing.T) {
		// Arrange
		trader, repo, clob := newTestTrader(t, testTrading())
		trade := heldTrade(repo, t)
		clob.On("GetMidpoint", mock.Anything, "tok-held").Return(0.93, nil)
		clob.On("PlaceLimitOrder", mock.Anything, "tok-held", 0.93, 11.6, polymarket.SideSell).
			Return(&polymarket.OrderResult{Accepted: true, OrderID: "order-2"}, nil)

		// Act
		sold, err := trader.ExecuteSell(context.Background(), trade)

		// Assert
		assert.NoError(t, err)
		assert.True(t, sold)

		loaded, err := repo.GetTrade(trade.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, loaded.Status)
		assert.InDelta(t, 0.93, loaded.SellPrice, 1e-9)
		assert.InDelta(t, (0.93-0.86)*11.6, loaded.RealizedPnL, 1e-9)
		assert.Equal(t, "take_profit", loaded.ExitReason)
		assert.NotNil(t, loaded.SellTimestamp)
	})

	t.Run("StopLossClosesTheTrade", func(t *testing.T) {
		trader, repo, clob := newTestTrader(t, testTrading())
		trade := heldTrade(repo, t)
		clob.On("GetMidpoint", mock.Anything, "tok-held").Return(0.76, nil)
		clob.On("PlaceLimitOrder", mock.Anything, "tok-held", 0.76, 11.6, polymarket.SideSell).
			Return(&polymarket.OrderResult{Accepted: true, OrderID: "order-2"}, nil)

		sold, err := trader.ExecuteSell(context.Background(), trade)

		assert.NoError(t, err)
		assert.True(t, sold)

		loaded, err := repo.GetTrade(trade.ID)
		assert.NoError(t, err)
		assert.Equal(t, "stop_loss", loaded.ExitReason)
		assert.Less(t, loaded.RealizedPnL, 0.0)
	})

	t.Run("HoldUpdatesMaxPriceOnly", func(t *testing.T) {
		trader, repo, clob := newTestTrader(t, testTrading())
		trade := heldTrade(repo, t)
		// Above the old peak, inside both exit bounds.
		clob.On("GetMidpoint", mock.Anything, "tok-held").Return(0.89, nil)

		sold, err := trader.ExecuteSell(context.Background(), trade)

		assert.NoError(t, err)
		assert.False(t, sold)
		clob.AssertNotCalled(t, "PlaceLimitOrder",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

		loaded, err := repo.GetTrade(trade.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.StatusHolding, loaded.Status)
		assert.InDelta(t, 0.89, loaded.MaxPrice, 1e-9)
	})

	t.Run("TrailingStopUsesTheStoredPeak", func(t *testing.T) {
		cfg := testTrading()
		cfg.TrailingStop = config.TrailingStop{Enabled: true, Percent: 0.05}
		trader, repo, clob := newTestTrader(t, cfg)
		trade := heldTrade(repo, t)
		_, err := repo.UpdateTrade(trade.ID, map[string]interface{}{"max_price": 0.92})
		assert.NoError(t, err)
		trade.MaxPrice = 0.92

		// 0.87 is inside take-profit/stop-loss bounds but more than 5% below
		// the 0.92 peak.
		clob.On("GetMidpoint", mock.Anything, "tok-held").Return(0.87, nil)
		clob.On("PlaceLimitOrder", mock.Anything, "tok-held", 0.87, 11.6, polymarket.SideSell).
			Return(&polymarket.OrderResult{Accepted: true, OrderID: "order-2"}, nil)

		sold, err := trader.ExecuteSell(context.Background(), trade)

		assert.NoError(t, err)
		assert.True(t, sold)

		loaded, err := repo.GetTrade(trade.ID)
		assert.NoError(t, err)
		assert.Equal(t, "trailing_stop", loaded.ExitReason)
	})

	t.Run("RejectedSellKeepsThePosition", func(t *testing.T) {
		trader, repo, clob := newTestTrader(t, testTrading())
		trade := heldTrade(repo, t)
		clob.On("GetMidpoint", mock.Anything, "tok-held").Return(0.93, nil)
		clob.On("PlaceLimitOrder", mock.Anything, "tok-held", 0.93, 11.6, polymarket.SideSell).
			Return(&polymarket.OrderResult{Accepted: false, ErrorMsg: "no liquidity"}, nil)

		sold, err := trader.ExecuteSell(context.Background(), trade)

		assert.NoError(t, err)
		assert.False(t, sold)

		loaded, err := repo.GetTrade(trade.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.StatusHolding, loaded.Status)
		assert.Empty(t, loaded.ExitReason)
	})
}
