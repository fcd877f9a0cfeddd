// Package quotes fetches live and historical prices from the TraderMade market data
// API. Prices only pre-fill the entry form and mark open trades; no metric uses them.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
	"tradesync/internal/config"
)

// ErrNotConfigured is returned by every call when no API key is set.
var ErrNotConfigured = errors.New("quote provider API key not configured")

// ErrNoQuote is returned when the provider answers without a quote for the instrument.
var ErrNoQuote = errors.New("no quote returned")

// Quote is a live bid/ask snapshot.
type Quote struct {
	Instrument string    `json:"symbol"`
	Bid        float64   `json:"bid"`
	Ask        float64   `json:"ask"`
	Mid        float64   `json:"mid"`
	Timestamp  time.Time `json:"timestamp"`
}

// Candle is one bar of a historical series.
type Candle struct {
	Time  string  `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// ClientInterface is the price source used by the API and the poller.
type ClientInterface interface {
	LivePrice(ctx context.Context, instrument string) (Quote, error)
	Candles(ctx context.Context, instrument string, from, to time.Time) ([]Candle, error)
}

// Client is a client for the TraderMade REST API.
// It implements the ClientInterface.
type Client struct {
	client  *resty.Client
	apiKey  string
	logger  *zap.Logger
	limiter *rate.Limiter
	backoff time.Duration // first retry delay, doubled on every attempt
}

// ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new quote client.
func NewClient(cfg *config.Quotes, logger *zap.Logger) *Client {
	if cfg.ApiKey == "" {
		logger.Warn("No quote API key configured; live prices are disabled")
	}
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	return &Client{
		client:  resty.New().SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).SetTimeout(10 * time.Second),
		apiKey:  cfg.ApiKey,
		logger:  logger,
		limiter: rate.NewLimiter(limit, max(cfg.RateLimitBurst, 1)),
		backoff: time.Second,
	}
}

// Configured reports whether the client has an API key.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type liveResponse struct {
	Quotes []struct {
		Instrument    string  `json:"instrument"`
		BaseCurrency  string  `json:"base_currency"`
		QuoteCurrency string  `json:"quote_currency"`
		Bid           float64 `json:"bid"`
		Ask           float64 `json:"ask"`
		Timestamp     int64   `json:"timestamp"`
	} `json:"quotes"`
	Timestamp int64 `json:"timestamp"`
}

// LivePrice returns the current quote of instrument. Mid is the average of bid and ask.
func (c *Client) LivePrice(ctx context.Context, instrument string) (Quote, error) {
	if !c.Configured() {
		return Quote{}, ErrNotConfigured
	}
	instrument = strings.ToUpper(strings.TrimSpace(instrument))

	req := c.client.R().
		SetContext(ctx).
		SetQueryParam("currency", instrument).
		SetQueryParam("api_key", c.apiKey).
		SetResult(&liveResponse{})

	resp, err := c.doRequest(ctx, http.MethodGet, "/live", req)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to get live price for %s: %w", instrument, err)
	}

	result := resp.Result().(*liveResponse)
	if len(result.Quotes) == 0 {
		return Quote{}, fmt.Errorf("failed to get live price for %s: %w", instrument, ErrNoQuote)
	}
	q := result.Quotes[0]
	ts := q.Timestamp
	if ts == 0 {
		ts = result.Timestamp
	}
	symbol := q.Instrument
	if symbol == "" {
		symbol = q.BaseCurrency + q.QuoteCurrency
	}
	if symbol == "" {
		symbol = instrument
	}
	return Quote{
		Instrument: symbol,
		Bid:        q.Bid,
		Ask:        q.Ask,
		Mid:        (q.Bid + q.Ask) / 2,
		Timestamp:  time.Unix(ts, 0).UTC(),
	}, nil
}

// LivePrices fetches several instruments one after another. The first failure
// aborts the batch.
func (c *Client) LivePrices(ctx context.Context, instruments []string) ([]Quote, error) {
	out := make([]Quote, 0, len(instruments))
	for _, in := range instruments {
		q, err := c.LivePrice(ctx, in)
		if err != nil {
			return out, err
		}
		out = append(out, q)
	}
	return out, nil
}

type timeseriesResponse struct {
	Quotes []struct {
		Date  string  `json:"date"`
		Open  float64 `json:"open"`
		High  float64 `json:"high"`
		Low   float64 `json:"low"`
		Close float64 `json:"close"`
	} `json:"quotes"`
}

// Candles returns the daily series of instrument between from and to.
func (c *Client) Candles(ctx context.Context, instrument string, from, to time.Time) ([]Candle, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	req := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"currency":   strings.ToUpper(instrument),
			"api_key":    c.apiKey,
			"start_date": from.Format("2006-01-02"),
			"end_date":   to.Format("2006-01-02"),
			"format":     "records",
		}).
		SetResult(&timeseriesResponse{})

	resp, err := c.doRequest(ctx, http.MethodGet, "/timeseries", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get candles for %s: %w", instrument, err)
	}

	result := resp.Result().(*timeseriesResponse)
	candles := make([]Candle, len(result.Quotes))
	for i, q := range result.Quotes {
		candles[i] = Candle{Time: q.Date, Open: q.Open, High: q.High, Low: q.Low, Close: q.Close}
	}
	return candles, nil
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		// the key travels in the query string, so log the path only
		c.logger.Debug("Executing request", zap.String("method", method), zap.String("path", url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil
		}

		var retryAfter time.Duration

		if err == nil {
			statusCode := resp.StatusCode()
			switch {
			case statusCode == http.StatusTooManyRequests:
				if seconds, convErr := strconv.Atoi(resp.Header().Get("Retry-After")); convErr == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			case statusCode >= 500:
			default:
				return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
			}
			err = fmt.Errorf("status %s", resp.Status())
		} else if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if retryAfter == 0 {
			// Exponential backoff: 1x, 2x, 4x
			retryAfter = time.Duration(math.Pow(2, float64(i))) * c.backoff
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
