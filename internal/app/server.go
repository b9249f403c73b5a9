package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"bullionsite/internal/pricing"
	"bullionsite/internal/seo"
	"bullionsite/internal/site"
	"bullionsite/internal/tokens"
	"bullionsite/internal/tools/sitemap"
)

// Server wires handlers, templates, and the price client together.
type Server struct {
	catalog   *site.Catalog
	profile   site.Profile
	prices    *pricing.Client
	templates map[string]*template.Template
	logger    zerolog.Logger
	metrics   *Metrics
	router    *mux.Router
	started   time.Time
}

// New builds a Server from configuration. It loads the site profile and
// constructs the price client with the configured protections.
func New(cfg Config, logger zerolog.Logger) (*Server, error) {
	catalog, err := site.Load(cfg.Site)
	if err != nil {
		return nil, fmt.Errorf("load site: %w", err)
	}

	var metrics *Metrics
	if cfg.MetricsEnabled {
		metrics = NewMetrics()
	}

	opts := []pricing.Option{
		pricing.WithTimeout(cfg.PriceTimeout),
		pricing.WithLogger(logger),
		pricing.WithRateLimit(cfg.PriceRateLimit, cfg.PriceBurst),
		pricing.WithRateWait(cfg.PriceRateWait),
		pricing.WithBreaker(cfg.PriceBreakerFailures, cfg.PriceBreakerCooldown),
	}
	if metrics != nil {
		opts = append(opts, pricing.WithMetrics(metrics.Pricing))
	}
	prices := pricing.NewClient(cfg.PriceAPIURL, catalog.Profile.Symbols(), opts...)

	return NewServer(catalog, prices, logger, metrics)
}

// NewServer constructs an HTTP handler for one site catalog. metrics may be
// nil, in which case /metrics is not served.
func NewServer(catalog *site.Catalog, prices *pricing.Client, logger zerolog.Logger, metrics *Metrics) (*Server, error) {
	if unknown := tokens.Unknown(catalog.Texts()...); len(unknown) > 0 {
		return nil, fmt.Errorf("site %s uses unknown tokens %v", catalog.Profile.Name, unknown)
	}
	for _, text := range catalog.FixedTexts() {
		if found := tokens.Find(text); len(found) > 0 {
			return nil, fmt.Errorf("site %s has tokens %v in metadata or labels, which are never interpolated", catalog.Profile.Name, found)
		}
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	srv := &Server{
		catalog:   catalog,
		profile:   catalog.Profile,
		prices:    prices,
		templates: tmpl,
		logger:    logger,
		metrics:   metrics,
		router:    mux.NewRouter(),
		started:   time.Now().UTC(),
	}
	srv.routes()

	return srv, nil
}

func (s *Server) routes() {
	r := s.router
	r.Use(requestLogger(s.logger))

	pages := r.Methods(http.MethodGet, http.MethodHead).Subrouter()
	pages.HandleFunc("/", s.handleHome)
	pages.HandleFunc("/coin-specs", s.handleCoinSpecs)
	pages.HandleFunc("/design-history", s.handleDesignHistory)
	pages.HandleFunc("/live-gold-prices", s.handleLivePrices)
	pages.HandleFunc("/resources", s.handleResources)
	pages.HandleFunc("/resources/{slug}", s.handleResource)

	pages.HandleFunc("/api/spot", s.handleSpot)
	pages.HandleFunc("/llms.txt", s.handleLLMs)
	pages.HandleFunc("/robots.txt", s.handleRobots)
	pages.HandleFunc("/sitemap.xml", s.handleSitemap)
	pages.HandleFunc("/healthz", s.handleHealth)
	pages.PathPrefix("/static/").Handler(staticHandler())
	if s.metrics != nil {
		pages.Handle("/metrics", s.metrics.Handler())
	}

	r.NotFoundHandler = requestLogger(s.logger)(http.HandlerFunc(s.handleNotFound))
}

// ServeHTTP satisfies http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Catalog returns the site content the server renders.
func (s *Server) Catalog() *site.Catalog {
	return s.catalog
}

func (s *Server) handleSpot(w http.ResponseWriter, r *http.Request) {
	q := s.prices.MarketSpot(r.Context())
	f := s.profile.Formatter()

	type spotResponse struct {
		Available     bool       `json:"available"`
		Symbol        string     `json:"symbol,omitempty"`
		Bid           float64    `json:"bid,omitempty"`
		Ask           float64    `json:"ask,omitempty"`
		Change        float64    `json:"change,omitempty"`
		ChangePercent float64    `json:"changePercent,omitempty"`
		Display       string     `json:"display"`
		FetchedAt     *time.Time `json:"fetchedAt,omitempty"`
	}

	resp := spotResponse{Display: f.Approx(q)}
	status := http.StatusServiceUnavailable
	if q.Valid() {
		status = http.StatusOK
		resp.Available = true
		resp.Symbol = q.Symbol
		resp.Bid = q.Bid
		resp.Ask = q.Ask
		resp.Change = q.Change
		resp.ChangePercent = q.ChangePercent
		resp.FetchedAt = &q.FetchedAt
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("encode spot response")
	}
}

func (s *Server) handleLLMs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(s.catalog.LLMs))
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	var b bytes.Buffer
	b.WriteString("User-agent: *\nAllow: /\nDisallow: /api/\n\n")
	fmt.Fprintf(&b, "Sitemap: %s\n", s.profile.URL("/sitemap.xml"))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(b.Bytes())
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	data, err := sitemap.Marshal(sitemap.Build(s.catalog, s.started))
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render sitemap")
		http.Error(w, "failed to render sitemap", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "page not found", http.StatusNotFound)
}

// jsonLD encodes each schema object, skipping any that fail.
func jsonLD(logger *zerolog.Logger, schemas ...any) []template.JS {
	out := make([]template.JS, 0, len(schemas))
	for _, schema := range schemas {
		js, err := seo.JSONLD(schema)
		if err != nil {
			logger.Error().Err(err).Msg("encode structured data")
			continue
		}
		out = append(out, js)
	}
	return out
}
