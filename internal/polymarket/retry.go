package polymarket

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RetryPolicy decides how transient API failures are retried: rate limits
// (HTTP 429, honoring a Retry-After hint), server errors (5xx) and
// connection/timeout failures. Anything else fails immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy mirrors the exchange clients' production settings.
func DefaultRetryPolicy(maxAttempts int) RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return RetryPolicy{MaxAttempts: maxAttempts, BaseDelay: 2 * time.Second}
}

// backoff computes the wait before the next attempt. Exponential with up to
// one second of jitter so parallel bot jobs do not retry in lockstep.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	delay := time.Duration(float64(p.BaseDelay) * math.Pow(2, float64(attempt)))
	return delay + time.Duration(rand.Float64()*float64(time.Second))
}

// restClient bundles the pieces every Polymarket API client shares: a resty
// client, a client-side rate limiter and the retry policy.
type restClient struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
	retry   RetryPolicy
}

// doRequest executes a request under the rate limiter and retry policy.
func (c *restClient) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error

	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request",
			zap.String("method", method),
			zap.String("url", c.client.BaseURL+url),
			zap.Int("attempt", attempt+1))
		resp, err = req.SetContext(ctx).Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil
		}

		shouldRetry := false
		var retryAfter time.Duration

		if err == nil {
			statusCode := resp.StatusCode()
			switch {
			case statusCode == http.StatusTooManyRequests:
				shouldRetry = true
				if seconds, parseErr := strconv.Atoi(resp.Header().Get("Retry-After")); parseErr == nil {
					retryAfter = time.Duration(seconds)*time.Second +
						time.Duration(rand.Float64()*float64(time.Second))
				}
			case statusCode >= 500:
				shouldRetry = true
			}
		} else {
			// Connection errors and timeouts surface here.
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		if retryAfter == 0 {
			retryAfter = c.retry.backoff(attempt)
		}

		c.logger.Warn("Request failed, retrying...",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err))

		select {
		case <-time.After(retryAfter):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err == nil {
		err = fmt.Errorf("status %s: %s", resp.Status(), resp.String())
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.retry.MaxAttempts, err)
}
