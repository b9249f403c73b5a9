package app

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bullionsite/internal/pricing"
)

// Metrics holds the site's Prometheus collectors on a private registry.
type Metrics struct {
	Registry       *prometheus.Registry
	RenderDuration *prometheus.HistogramVec
	PriceFallbacks *prometheus.CounterVec
	Pricing        *pricing.Metrics
}

// NewMetrics creates the registry and registers every collector.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		Registry: reg,
		RenderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bullionsite_page_render_duration_seconds",
				Help:    "Time to fetch, interpolate and render a page in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"page"},
		),
		PriceFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bullionsite_price_fallback_total",
				Help: "Pages rendered with fallback price strings",
			},
			[]string{"page"},
		),
	}
	reg.MustRegister(m.RenderDuration, m.PriceFallbacks)
	m.Pricing = pricing.NewMetrics(reg)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeRender(page string, start time.Time, fallback bool) {
	if m == nil {
		return
	}
	m.RenderDuration.WithLabelValues(page).Observe(time.Since(start).Seconds())
	if fallback {
		m.PriceFallbacks.WithLabelValues(page).Inc()
	}
}
