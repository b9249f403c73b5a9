package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Monex spot summary endpoint.
const DefaultBaseURL = "https://api.monex.com/api/v2/Metals/spot/summary"

const maxResponseBytes = 1 << 20

var (
	// ErrNoQuote signals a well-formed response that did not carry a usable
	// quote for the requested symbol.
	ErrNoQuote = errors.New("no quote for symbol")
	// ErrRateLimited signals that the outbound limiter refused the request.
	ErrRateLimited = errors.New("outbound price rate limit exceeded")
)

// abandonedError marks a fetch cut short by the caller's own context.
// The breaker counts it as a success.
type abandonedError struct {
	err error
}

func (e *abandonedError) Error() string { return e.err.Error() }

func (e *abandonedError) Unwrap() error { return e.err }

func isAbandoned(err error) bool {
	var abandoned *abandonedError
	return errors.As(err, &abandoned)
}

type waitKey struct{}

// WaitForLimit returns a context whose lookups queue on the outbound limiter
// until ctx ends, instead of giving up after the client's maximum wait.
// Batch jobs such as static exports use it so every page gets a live quote.
func WaitForLimit(ctx context.Context) context.Context {
	return context.WithValue(ctx, waitKey{}, true)
}

func waitsForLimit(ctx context.Context) bool {
	wait, _ := ctx.Value(waitKey{}).(bool)
	return wait
}

// Client issues single-attempt price lookups. It keeps no prices between calls.
type Client struct {
	baseURL    string
	symbols    Symbols
	httpClient *http.Client
	logger     zerolog.Logger
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	maxWait    time.Duration
	metrics    *Metrics
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP client timeout. A timeout is treated like any
// other failed fetch.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger used when a request context carries none.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit caps outbound requests. A request over the limit waits for a
// token up to the WithRateWait bound, then fails with ErrRateLimited.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRateWait bounds how long a request may queue on the limiter. Zero
// means requests over the limit fail immediately.
func WithRateWait(d time.Duration) Option {
	return func(c *Client) {
		if d < 0 {
			d = 0
		}
		c.maxWait = d
	}
}

// WithBreaker opens a circuit after the given number of consecutive failures
// and short-circuits lookups for cooldown.
func WithBreaker(failures uint32, cooldown time.Duration) Option {
	return func(c *Client) {
		if failures == 0 {
			return
		}
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "pricing",
			Timeout: cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || isAbandoned(err)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("price api breaker state changed")
			},
		})
	}
}

// WithMetrics records fetch outcomes and latency.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a price client for the given endpoint and symbol pair.
func NewClient(baseURL string, symbols Symbols, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		symbols: symbols,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: zerolog.Nop(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Symbols returns the symbol pair the client was built with.
func (c *Client) Symbols() Symbols {
	return c.symbols
}

// ProductSpot returns the coin quote, or nil when no data is available.
// It never returns an error: callers render their static fallback instead.
func (c *Client) ProductSpot(ctx context.Context) *Quote {
	return c.lookup(ctx, c.symbols.Product)
}

// MarketSpot returns the raw-metal spot index quote, or nil when no data is
// available. It is meant for generic market reference display only.
func (c *Client) MarketSpot(ctx context.Context) *Quote {
	return c.lookup(ctx, c.symbols.Spot)
}

func (c *Client) lookup(ctx context.Context, symbol string) *Quote {
	q, err := c.Quote(ctx, symbol)
	if err != nil {
		logger := zerolog.Ctx(ctx)
		if logger.GetLevel() == zerolog.Disabled {
			logger = &c.logger
		}
		logger.Warn().Err(err).Str("symbol", symbol).Msg("price fetch failed, using fallback display")
		return nil
	}
	return q
}

// Quote performs one request for symbol. Errors are returned for transport
// failures, non-2xx responses, malformed payloads and unusable prices.
func (c *Client) Quote(ctx context.Context, symbol string) (*Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := c.acquire(ctx); err != nil {
		c.metrics.observe(symbol, outcomeOf(err), 0)
		return nil, err
	}

	start := time.Now()
	var (
		q   *Quote
		err error
	)
	if c.breaker != nil {
		var result interface{}
		result, err = c.breaker.Execute(func() (interface{}, error) {
			return c.attempt(ctx, symbol)
		})
		if err == nil {
			q = result.(*Quote)
		}
	} else {
		q, err = c.attempt(ctx, symbol)
	}
	c.metrics.observe(symbol, outcomeOf(err), time.Since(start))

	return q, err
}

// attempt runs one fetch and marks failures caused by the caller leaving.
func (c *Client) attempt(ctx context.Context, symbol string) (*Quote, error) {
	q, err := c.fetch(ctx, symbol)
	if err != nil && ctx.Err() != nil {
		return nil, &abandonedError{err: err}
	}
	return q, err
}

// acquire takes a limiter token, waiting at most maxWait unless ctx was
// marked with WaitForLimit.
func (c *Client) acquire(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}

	if waitsForLimit(ctx) {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return nil
	}

	r := c.limiter.Reserve()
	if !r.OK() {
		return ErrRateLimited
	}
	delay := r.Delay()
	if delay == 0 {
		return nil
	}
	if delay > c.maxWait {
		r.Cancel()
		return ErrRateLimited
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

func (c *Client) fetch(ctx context.Context, symbol string) (*Quote, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse price api url: %w", err)
	}
	params := endpoint.Query()
	params.Set("metals", symbol)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", symbol, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("price api status %d body %s", resp.StatusCode, truncate(string(body), 256))
	}

	entries, err := decodeSummary(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", symbol, err)
	}

	entry, ok := pick(entries, symbol)
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrNoQuote, symbol)
	}

	q := &Quote{
		Symbol:        symbol,
		Bid:           float64(entry.Bid),
		Ask:           float64(entry.Ask),
		Change:        float64(entry.Change),
		ChangePercent: float64(entry.ChangePercent),
		FetchedAt:     c.now().UTC(),
	}
	if !q.Valid() {
		return nil, fmt.Errorf("%w %s: ask %v", ErrNoQuote, symbol, entry.Ask)
	}
	if q.Bid < 0 || math.IsNaN(q.Bid) || math.IsInf(q.Bid, 0) {
		q.Bid = 0
	}

	return q, nil
}

type summaryEntry struct {
	Symbol        string    `json:"symbol"`
	Bid           flexFloat `json:"bid"`
	Ask           flexFloat `json:"ask"`
	Change        flexFloat `json:"change"`
	ChangePercent flexFloat `json:"changePercent"`
}

// flexFloat accepts JSON numbers and numeric strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*f = 0
		return nil
	}
	raw = strings.Trim(raw, `"`)
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return fmt.Errorf("invalid price %q", raw)
	}
	*f = flexFloat(v)
	return nil
}

func decodeSummary(body []byte) ([]summaryEntry, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty body")
	}

	switch trimmed[0] {
	case '[':
		var entries []summaryEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	case '{':
		var entry summaryEntry
		if err := json.Unmarshal(trimmed, &entry); err != nil {
			return nil, err
		}
		return []summaryEntry{entry}, nil
	default:
		return nil, fmt.Errorf("unexpected payload starting with %q", trimmed[0])
	}
}

func pick(entries []summaryEntry, symbol string) (summaryEntry, bool) {
	for _, e := range entries {
		if strings.EqualFold(e.Symbol, symbol) {
			return e, true
		}
	}
	// a lone unlabeled entry is the answer to a single-symbol request
	if len(entries) == 1 && entries[0].Symbol == "" {
		return entries[0], true
	}
	return summaryEntry{}, false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
