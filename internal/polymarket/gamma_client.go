package polymarket

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/izowooi/golden-burger/internal/config"
)

const (
	gammaPageSize = 100
	// Safety cap on pagination so a misbehaving API cannot spin the
	// scanner forever.
	gammaMaxOffset = 5000
)

// GammaClientInterface is the market-data collaborator consumed by the
// scanner.
type GammaClientInterface interface {
	ListTradableMarkets(ctx context.Context, minLiquidity, minVolume float64) ([]Market, error)
}

// GammaClient reads market metadata from the Gamma API. Read endpoints need
// no authentication.
type GammaClient struct {
	restClient
}

var _ GammaClientInterface = (*GammaClient)(nil)

// NewGammaClient creates a Gamma API client.
func NewGammaClient(cfg *config.Polymarket, logger *zap.Logger) *GammaClient {
	return &GammaClient{
		restClient: restClient{
			client:  resty.New().SetBaseURL(cfg.GammaBaseURL).SetHeader("Accept", "application/json"),
			logger:  logger.Named("gamma"),
			limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
			retry:   DefaultRetryPolicy(cfg.MaxRetries),
		},
	}
}

// listPage fetches one page of active, open markets.
func (c *GammaClient) listPage(ctx context.Context, offset int) ([]Market, error) {
	var markets []Market
	req := c.client.R().
		SetQueryParams(map[string]string{
			"active": "true",
			"closed": "false",
			"limit":  strconv.Itoa(gammaPageSize),
			"offset": strconv.Itoa(offset),
		}).
		SetResult(&markets)

	if _, err := c.doRequest(ctx, resty.MethodGet, "/markets", req); err != nil {
		return nil, fmt.Errorf("failed to list markets at offset %d: %w", offset, err)
	}
	return markets, nil
}

// ListTradableMarkets pages through all active markets and returns those
// meeting the liquidity and 24h-volume floors.
func (c *GammaClient) ListTradableMarkets(ctx context.Context, minLiquidity, minVolume float64) ([]Market, error) {
	var all []Market

	for offset := 0; ; offset += gammaPageSize {
		if offset >= gammaMaxOffset {
			c.logger.Warn("Reached maximum pagination limit", zap.Int("offset", offset))
			break
		}

		page, err := c.listPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for _, m := range page {
			if m.ConditionID == "" {
				continue
			}
			if m.LiquidityValue() < minLiquidity {
				continue
			}
			if minVolume > 0 && m.Volume24hValue() < minVolume {
				continue
			}
			all = append(all, m)
		}

		if len(page) < gammaPageSize {
			break
		}
	}

	c.logger.Info("Retrieved tradable markets",
		zap.Int("count", len(all)),
		zap.Float64("min_liquidity", minLiquidity))
	return all, nil
}
