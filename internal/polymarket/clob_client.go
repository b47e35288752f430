package polymarket

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/izowooi/golden-burger/internal/config"
)

// Order sides accepted by the CLOB.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// DefaultTickSize is the exchange price increment. Prices not aligned to it
// are rejected by the CLOB.
const DefaultTickSize = 0.01

// OrderResult is the outcome of an order submission.
type OrderResult struct {
	Accepted bool   `json:"success"`
	OrderID  string `json:"orderID"`
	ErrorMsg string `json:"errorMsg"`
}

// ClobClientInterface is the price/order collaborator consumed by the
// trader.
type ClobClientInterface interface {
	GetMidpoint(ctx context.Context, tokenID string) (float64, error)
	PlaceLimitOrder(ctx context.Context, tokenID string, price, size float64, side string) (*OrderResult, error)
}

// ClobClient talks to the CLOB API for midpoint prices and order placement.
// In simulation mode order placement is faked so strategy logic can be
// exercised end to end without touching the exchange.
type ClobClient struct {
	restClient
	funderAddress string
	simulation    bool
}

var _ ClobClientInterface = (*ClobClient)(nil)

// NewClobClient creates a CLOB API client.
func NewClobClient(cfg *config.Polymarket, simulation bool, logger *zap.Logger) *ClobClient {
	if simulation {
		logger.Warn("CLOB client running in simulation mode, no real orders will be placed")
	}
	return &ClobClient{
		restClient: restClient{
			client:  resty.New().SetBaseURL(cfg.ClobBaseURL).SetHeader("Accept", "application/json"),
			logger:  logger.Named("clob"),
			limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
			retry:   DefaultRetryPolicy(cfg.MaxRetries),
		},
		funderAddress: cfg.FunderAddress,
		simulation:    simulation,
	}
}

// RoundToTick aligns a price to the exchange tick size. The second rounding
// clears floating-point residue from the division.
func RoundToTick(price float64) float64 {
	return math.Round(math.Round(price/DefaultTickSize)*DefaultTickSize*100) / 100
}

// GetMidpoint returns the mid price between best bid and best ask for a
// token, which doubles as the probability estimate for its outcome.
func (c *ClobClient) GetMidpoint(ctx context.Context, tokenID string) (float64, error) {
	var result struct {
		Mid string `json:"mid"`
	}
	req := c.client.R().
		SetQueryParam("token_id", tokenID).
		SetResult(&result)

	if _, err := c.doRequest(ctx, resty.MethodGet, "/midpoint", req); err != nil {
		return 0, fmt.Errorf("failed to get midpoint for %s: %w", tokenID, err)
	}

	mid, err := strconv.ParseFloat(result.Mid, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse midpoint %q for %s: %w", result.Mid, tokenID, err)
	}
	return mid, nil
}

// PlaceLimitOrder submits a limit order at the tick-aligned price. Order
// signing happens server-side through the funder account; this client only
// carries the order intent. Simulation mode returns an accepted fake order.
func (c *ClobClient) PlaceLimitOrder(ctx context.Context, tokenID string, price, size float64, side string) (*OrderResult, error) {
	rounded := RoundToTick(price)

	if c.simulation {
		c.logger.Info("[SIM] Limit order",
			zap.String("side", side),
			zap.String("token_id", tokenID),
			zap.Float64("price", rounded),
			zap.Float64("size", size))
		return &OrderResult{
			Accepted: true,
			OrderID:  fmt.Sprintf("SIM_%s_%s", side, shortToken(tokenID)),
		}, nil
	}

	body := map[string]interface{}{
		"token_id": tokenID,
		"price":    rounded,
		"size":     size,
		"side":     side,
		"type":     "GTC",
	}

	var result OrderResult
	req := c.client.R().
		SetHeader("POLY-ADDRESS", c.funderAddress).
		SetBody(body).
		SetResult(&result)

	if _, err := c.doRequest(ctx, resty.MethodPost, "/order", req); err != nil {
		return nil, fmt.Errorf("failed to place %s order for %s: %w", side, tokenID, err)
	}

	if result.Accepted {
		c.logger.Info("Limit order placed",
			zap.String("side", side),
			zap.String("order_id", result.OrderID),
			zap.Float64("price", rounded),
			zap.Float64("size", size))
	} else {
		c.logger.Warn("Limit order rejected",
			zap.String("side", side),
			zap.String("token_id", tokenID),
			zap.String("error", result.ErrorMsg))
	}
	return &result, nil
}

// shortToken truncates a token ID for log and simulated-order labels.
func shortToken(tokenID string) string {
	if len(tokenID) <= 8 {
		return tokenID
	}
	return tokenID[:8]
}
