package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
)

const (
	outcomeOK          = "ok"
	outcomeError       = "error"
	outcomeBreakerOpen = "breaker_open"
	outcomeRateLimited = "rate_limited"
	outcomeAbandoned   = "abandoned"
)

// Metrics holds the price client's Prometheus collectors.
type Metrics struct {
	Fetches  *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates and registers the price client collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bullionsite_price_fetch_total",
				Help: "Price API lookups by symbol and outcome",
			},
			[]string{"symbol", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bullionsite_price_fetch_duration_seconds",
				Help:    "Price API lookup latency in seconds",
				Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"symbol"},
		),
	}
	reg.MustRegister(m.Fetches, m.Duration)
	return m
}

func (m *Metrics) observe(symbol, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Fetches.WithLabelValues(symbol, outcome).Inc()
	if outcome == outcomeOK || outcome == outcomeError {
		m.Duration.WithLabelValues(symbol).Observe(d.Seconds())
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return outcomeBreakerOpen
	case isAbandoned(err), errors.Is(err, context.Canceled):
		return outcomeAbandoned
	case errors.Is(err, ErrRateLimited):
		return outcomeRateLimited
	default:
		return outcomeError
	}
}
