package app

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"bullionsite/internal/pricing"
	"bullionsite/internal/seo"
	"bullionsite/internal/site"
	"bullionsite/internal/tokens"
)

type navItem struct {
	Label string
	Path  string
}

var navigation = []navItem{
	{Label: "Home", Path: "/"},
	{Label: "Coin Specs", Path: "/coin-specs"},
	{Label: "Design & History", Path: "/design-history"},
	{Label: "Live Prices", Path: "/live-gold-prices"},
	{Label: "Resources", Path: "/resources"},
}

// priceSourceHeader tells caches and the exporter whether a page carries
// live or fallback prices.
const priceSourceHeader = "X-Price-Source"

func priceSource(live bool) string {
	if live {
		return "live"
	}
	return "fallback"
}

// priceView is the price card state for one render.
type priceView struct {
	Live      bool
	Approx    string
	Range     string
	Plus      string
	Bid       string
	Ask       string
	Change    string
	Up        bool
	FetchedAt time.Time
}

func newPriceView(f pricing.Formatter, q *pricing.Quote) priceView {
	_, _, _, displayable := f.Bounds(q)
	v := priceView{
		Live:   displayable,
		Approx: f.Approx(q),
		Range:  f.Range(q),
		Plus:   f.Plus(q),
	}
	if v.Live {
		v.Bid = pricing.Dollars(q.Bid)
		v.Ask = pricing.Dollars(q.Ask)
		v.Change = pricing.Dollars(q.Change)
		v.Up = q.Change >= 0
		v.FetchedAt = q.FetchedAt
	}
	return v
}

// view is the data every page template receives.
type view struct {
	Site     site.Profile
	Meta     seo.Meta
	Schemas  []template.JS
	Nav      []navItem
	Path     string
	Page     site.Page
	Price    priceView
	Groups   []site.ResourceGroup
	Resource site.Resource
	Article  site.Article
	QA       []site.QAItem
	Related  []site.Resource
	Year     int

	quote  *pricing.Quote
	logger *zerolog.Logger
}

// render fetches the product quote once, resolves tokens against it, lets
// fill populate the page-specific fields, and writes the page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, status int, fill func(v *view, values tokens.Values)) {
	start := time.Now()
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	q := s.prices.ProductSpot(ctx)
	values := tokens.Resolve(s.profile.Formatter(), q)

	v := &view{
		Site:  s.profile,
		Nav:   navigation,
		Path:  r.URL.Path,
		Price: newPriceView(s.profile.Formatter(), q),
		Year:  start.Year(),

		quote:  q,
		logger: logger,
	}
	fill(v, values)

	tmpl, ok := s.templates[name]
	if !ok {
		logger.Error().Str("template", name).Msg("template not found")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", v); err != nil {
		logger.Error().Err(err).Str("template", name).Msg("render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	body := decorateExternalLinks(buf.String(), s.profile.Host())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set(priceSourceHeader, priceSource(v.Price.Live))
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		logger.Debug().Err(err).Msg("write page")
	}

	s.metrics.observeRender(name, start, !v.Price.Live)
}

// staticPage fills a view for one of the fixed routes.
func (s *Server) staticPage(v *view, values tokens.Values, path string, page site.Page, extra ...any) {
	v.Page = values.Page(page)
	v.QA = v.Page.QA
	v.Meta = seo.Build(s.profile, seo.Page{Path: path, Meta: page.Meta})

	schemas := []any{seo.NewWebPage(s.profile, path, v.Meta.OG.Title, v.Meta.Description)}
	schemas = append(schemas, extra...)
	if len(v.QA) > 0 {
		schemas = append(schemas, seo.NewFAQPage(v.QA))
	}
	v.Schemas = jsonLD(v.logger, schemas...)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "home", http.StatusOK, func(v *view, values tokens.Values) {
		s.staticPage(v, values, "/", s.catalog.Pages.Home,
			seo.NewOrganization(s.profile),
			seo.NewProduct(s.profile, v.quote),
		)
	})
}

func (s *Server) handleCoinSpecs(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "coin-specs", http.StatusOK, func(v *view, values tokens.Values) {
		s.staticPage(v, values, "/coin-specs", s.catalog.Pages.CoinSpecs)
	})
}

func (s *Server) handleDesignHistory(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "design-history", http.StatusOK, func(v *view, values tokens.Values) {
		s.staticPage(v, values, "/design-history", s.catalog.Pages.DesignHistory)
	})
}

func (s *Server) handleLivePrices(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "live-gold-prices", http.StatusOK, func(v *view, values tokens.Values) {
		s.staticPage(v, values, "/live-gold-prices", s.catalog.Pages.LivePrices)
	})
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "resources", http.StatusOK, func(v *view, values tokens.Values) {
		s.staticPage(v, values, "/resources", s.catalog.Pages.Resources)
		v.Groups = s.catalog.Groups()
	})
}

func (s *Server) handleResource(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["slug"]
	slug, err := site.NormalizeSlug(raw)
	if err != nil {
		s.handleNotFound(w, r)
		return
	}
	if slug != raw {
		http.Redirect(w, r, "/resources/"+slug, http.StatusMovedPermanently)
		return
	}

	_, known := s.catalog.LookupResource(slug)
	resource := s.catalog.Resource(slug)
	status := http.StatusOK
	if !known {
		status = http.StatusNotFound
	}

	s.render(w, r, "resource", status, func(v *view, values tokens.Values) {
		path := "/resources/" + slug
		v.Resource = resource
		v.Article = values.Article(s.catalog.Article(slug))
		v.QA = values.QA(s.catalog.QAFor(slug))
		v.Related = s.related(resource)
		v.Meta = seo.Build(s.profile, seo.Page{
			Path:    path,
			Meta:    site.PageMeta{Title: resource.Title, Description: resource.Description},
			Type:    "article",
			NoIndex: !known,
		})

		schemas := []any{seo.NewArticle(s.profile, path, resource)}
		if len(v.QA) > 0 {
			schemas = append(schemas, seo.NewFAQPage(v.QA))
		}
		v.Schemas = jsonLD(v.logger, schemas...)
	})
}

// related lists up to three other resources from the same category.
func (s *Server) related(r site.Resource) []site.Resource {
	const limit = 3
	var out []site.Resource
	for _, other := range s.catalog.Resources {
		if other.Slug == r.Slug || other.Category != r.Category {
			continue
		}
		out = append(out, other)
		if len(out) == limit {
			break
		}
	}
	return out
}
