package yahoo

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"paper-trading-go/internal/config"
)

const quotePath = "/v7/finance/quote"

// PriceUnavailableError is returned when the market price for a symbol
// cannot be obtained. The ledger caller must surface it, never substitute a
// fabricated price.
type PriceUnavailableError struct {
	Symbol string
	Err    error
}

func (e *PriceUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("price unavailable for %s", e.Symbol)
	}
	return fmt.Sprintf("price unavailable for %s: %v", e.Symbol, e.Err)
}

func (e *PriceUnavailableError) Unwrap() error { return e.Err }

// QuoteClientInterface defines the interface for the Yahoo Finance quote
// client.
type QuoteClientInterface interface {
	GetQuote(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// QuoteClient is a client for the Yahoo Finance quote API.
// It implements the QuoteClientInterface.
type QuoteClient struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure QuoteClient implements the interface
var _ QuoteClientInterface = (*QuoteClient)(nil)

// NewQuoteClient creates a new Yahoo Finance quote client.
func NewQuoteClient(cfg *config.Yahoo, logger *zap.Logger) *QuoteClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &QuoteClient{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// quoteResponse mirrors the shape of the /v7/finance/quote payload.
type quoteResponse struct {
	QuoteResponse struct {
		Result []quoteResult `json:"result"`
	} `json:"quoteResponse"`
}

type quoteResult struct {
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *QuoteClient) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && resp.RawResponse != nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

// GetQuote fetches the current market price for an app-level symbol.
// Any failure surfaces as a PriceUnavailableError; a missing or non-positive
// price in an otherwise successful response is a failure too.
func (c *QuoteClient) GetQuote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	stock := Lookup(symbol)

	var result quoteResponse
	req := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("symbols", stock.VendorSymbol)

	if _, err := c.doRequest(ctx, "GET", quotePath, req); err != nil {
		c.logger.Error("Failed to fetch quote", zap.String("symbol", symbol), zap.Error(err))
		return decimal.Zero, &PriceUnavailableError{Symbol: symbol, Err: err}
	}

	for _, quote := range result.QuoteResponse.Result {
		if quote.Symbol != stock.VendorSymbol {
			continue
		}
		if quote.RegularMarketPrice <= 0 {
			break
		}
		return decimal.NewFromFloat(quote.RegularMarketPrice), nil
	}

	return decimal.Zero, &PriceUnavailableError{Symbol: symbol}
}
