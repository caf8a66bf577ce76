package invest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// SelicClient reads the latest Selic rate from the Banco Central SGS API
// and caches it. Any failure yields the last good value, or the fallback.
type SelicClient struct {
	url      string
	fallback float64
	ttl      time.Duration
	http     *http.Client
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.RWMutex
	rate      float64
	fetchedAt time.Time
}

// SelicOption configures a SelicClient.
type SelicOption func(*SelicClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) SelicOption {
	return func(s *SelicClient) { s.http = c }
}

// WithTTL sets how long a fetched rate is served from cache.
func WithTTL(d time.Duration) SelicOption {
	return func(s *SelicClient) { s.ttl = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SelicOption {
	return func(s *SelicClient) { s.logger = l }
}

func NewSelicClient(url string, fallback float64, timeout time.Duration, opts ...SelicOption) *SelicClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := &SelicClient{
		url:      url,
		fallback: fallback,
		ttl:      time.Hour,
		http:     &http.Client{Timeout: timeout},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Current returns the cached rate while it is fresh and refreshes it
// otherwise. It never fails.
func (c *SelicClient) Current(ctx context.Context) float64 {
	c.mu.RLock()
	rate, at := c.rate, c.fetchedAt
	c.mu.RUnlock()
	if !at.IsZero() && c.now().Sub(at) < c.ttl {
		return rate
	}

	fresh, err := c.Refresh(ctx)
	if err == nil {
		return fresh
	}
	if !at.IsZero() {
		c.logger.Warn("selic refresh failed, serving stale rate", "rate", rate, "error", err)
		return rate
	}
	c.logger.Warn("selic unavailable, using fallback", "rate", c.fallback, "error", err)
	return c.fallback
}

// Cached returns the last fetched rate and when it was fetched. The time is
// zero if nothing was fetched yet.
func (c *SelicClient) Cached() (float64, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rate, c.fetchedAt
}

// Refresh fetches the rate and updates the cache.
func (c *SelicClient) Refresh(ctx context.Context) (float64, error) {
	rate, err := c.fetch(ctx)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	c.rate = rate
	c.fetchedAt = c.now()
	c.mu.Unlock()
	c.logger.Debug("selic refreshed", "rate", rate)
	return rate, nil
}

// sgsPoint is one entry of an SGS series; valor is a decimal string.
type sgsPoint struct {
	Data  string `json:"data"`
	Valor string `json:"valor"`
}

func (c *SelicClient) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("building selic request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching selic: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("selic API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var points []sgsPoint
	if err := json.NewDecoder(resp.Body).Decode(&points); err != nil {
		return 0, fmt.Errorf("decoding selic response: %w", err)
	}
	if len(points) == 0 {
		return 0, fmt.Errorf("selic API returned no data")
	}
	last := points[len(points)-1]
	rate, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(last.Valor), ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing selic value %q: %w", last.Valor, err)
	}
	if rate <= 0 {
		return 0, fmt.Errorf("selic value %v out of range", rate)
	}
	// Series 11 publishes the daily rate; annual series are passed through.
	if rate < 1 {
		rate = annualizeDaily(rate)
	}
	return rate, nil
}

// businessDays is the number of business days per year in Selic accrual.
const businessDays = 252

// annualizeDaily converts a daily percentage rate into an annual one.
func annualizeDaily(daily float64) float64 {
	return round2((math.Pow(1+daily/100, businessDays) - 1) * 100)
}
