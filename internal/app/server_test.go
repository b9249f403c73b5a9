package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bullionsite/internal/pricing"
	"bullionsite/internal/site"
	"bullionsite/internal/tools/sitemap"
)

// livePrices answers like the Monex summary endpoint.
func livePrices(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Query().Get("metals") {
	case "AE", "LF":
		fmt.Fprintf(w, `[{"symbol":%q,"bid":2690.10,"ask":2713.40,"change":-4.2,"changePercent":-0.15}]`, r.URL.Query().Get("metals"))
	case "GBXSPOT":
		fmt.Fprint(w, `[{"symbol":"GBXSPOT","bid":2649.5,"ask":2650.75,"change":3.1,"changePercent":0.12}]`)
	default:
		fmt.Fprint(w, `[]`)
	}
}

func failingPrices(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "upstream unavailable", http.StatusBadGateway)
}

type testSite struct {
	srv     *Server
	metrics *Metrics
	hits    *int32
	symbols chan string
}

func newTestSite(t *testing.T, name string, handler http.HandlerFunc, opts ...pricing.Option) *testSite {
	t.Helper()

	ts := &testSite{hits: new(int32), symbols: make(chan string, 64)}
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(ts.hits, 1)
		select {
		case ts.symbols <- r.URL.Query().Get("metals"):
		default:
		}
		handler(w, r)
	}))
	t.Cleanup(api.Close)

	catalog, err := site.Load(name)
	require.NoError(t, err)

	ts.metrics = NewMetrics()
	opts = append([]pricing.Option{pricing.WithMetrics(ts.metrics.Pricing)}, opts...)
	client := pricing.NewClient(api.URL, catalog.Profile.Symbols(), opts...)

	ts.srv, err = NewServer(catalog, client, zerolog.Nop(), ts.metrics)
	require.NoError(t, err)
	return ts
}

func (ts *testSite) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (ts *testSite) fetches() int {
	return int(atomic.LoadInt32(ts.hits))
}

func TestHomeRendersLivePrices(t *testing.T) {
	ts := newTestSite(t, "american-eagle", livePrices)

	rec := ts.get(t, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	assert.Equal(t, "live", rec.Header().Get(priceSourceHeader))

	body := rec.Body.String()
	assert.Equal(t, 1, ts.fetches())
	assert.Equal(t, "AE", <-ts.symbols)

	assert.Contains(t, body, "<p class=\"price\">$2,710</p>")
	assert.Contains(t, body, "approximately ~$2,580–$2,850 depending on spot price")
	assert.NotContains(t, body, "{{")
	assert.NotContains(t, body, "price-card--fallback")

	assert.Contains(t, body, `<link rel="canonical" href="https://www.americaneaglegoldcoin.com">`)
	assert.Contains(t, body, `<meta property="og:image:width" content="1200">`)
	assert.Contains(t, body, `<meta name="twitter:card" content="summary_large_image">`)
	assert.Contains(t, body, `"@type":"FAQPage"`)
	assert.Contains(t, body, `"price":"2713.40"`)
	assert.Contains(t, body, `<a href="/design-history">`)
	assert.NotContains(t, body, `<a href="/design-history" target=`)
}

func TestHomeFallsBackWhenPriceAPIFails(t *testing.T) {
	ts := newTestSite(t, "american-eagle", failingPrices)

	rec := ts.get(t, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Equal(t, 1, ts.fetches())
	assert.Equal(t, "fallback", rec.Header().Get(priceSourceHeader))
	assert.Contains(t, body, "price-card--fallback")
	assert.Contains(t, body, "<p class=\"price\">~$2,700</p>")
	assert.Contains(t, body, "approximately ~$2,600–$2,800 depending on spot price")
	assert.NotContains(t, body, `"offers"`)

	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.PriceFallbacks.WithLabelValues("home")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.Pricing.Fetches.WithLabelValues("AE", "error")))
}

func TestEveryPageFetchesExactlyOnce(t *testing.T) {
	ts := newTestSite(t, "american-eagle", livePrices)

	paths := sitemap.Paths(ts.srv.Catalog())
	for i, path := range paths {
		rec := ts.get(t, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, i+1, ts.fetches(), path)
		assert.NotContains(t, rec.Body.String(), "{{", path)
	}
}

func TestFAQStructuredDataMatchesVisibleAnswers(t *testing.T) {
	ts := newTestSite(t, "american-eagle", livePrices)

	body := ts.get(t, "/live-gold-prices").Body.String()

	assert.Contains(t, body, "The total cost is approximately $2,710 including premium.")
	assert.Contains(t, body, `"text":"The Gold Eagle price equals the gold spot price (per troy ounce) plus a premium typically ranging from 3-5%. The total cost is approximately $2,710 including premium.`)
	assert.Contains(t, body, "<dd>$2,713.40</dd>")
}

func TestExternalLinksAreDecorated(t *testing.T) {
	ts := newTestSite(t, "american-eagle", livePrices)

	body := ts.get(t, "/coin-specs").Body.String()

	assert.Contains(t, body, `href="https://www.monex.com/knowledge-base/gold-investing/gold-coins/gold-american-eagles/" target="_blank" rel="nofollow noopener noreferrer"`)
	assert.Contains(t, body, `<a href="/coin-specs" aria-current="page">`)
}

func TestResourceArticleInterpolatesTokens(t *testing.T) {
	ts := newTestSite(t, "american-eagle", livePrices)

	rec := ts.get(t, "/resources/premiums-explained")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "At current prices a 1 oz Gold Eagle costs roughly ~$2,580–$2,850")
	assert.Contains(t, body, `"@type":"Article"`)
	assert.Contains(t, body, `<meta property="og:type" content="article">`)
	assert.Contains(t, body, "index, follow")
}

func TestUnknownResourceRendersPlaceholder(t *testing.T) {
	ts := newTestSite(t, "american-eagle", livePrices)

	rec := ts.get(t, "/resources/gold-futures-basics")
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Gold Futures Basics</h1>")
	assert.Contains(t, body, "Content coming soon")
	assert.Contains(t, body, "This article is currently being developed.")
	assert.Contains(t, body, `<meta name="robots" content="noindex, follow">`)
	assert.Equal(t, 1, ts.fetches())
}

func TestResourceSlugIsCanonicalized(t *testing.T) {
	ts := newTestSite(t, "american-eagle", livePrices)

	rec := ts.get(t, "/resources/Premiums_Explained")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/resources/premiums-explained", rec.Header().Get("Location"))

	rec = ts.get(t, "/resources/bad..slug")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, ts.fetches())
}

func TestSpotEndpoint(t *testing.T) {
	ts := newTestSite(t, "american-eagle", livePrices)

	rec := ts.get(t, "/api/spot")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GBXSPOT", <-ts.symbols)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["available"])
	assert.Equal(t, "GBXSPOT", resp["symbol"])
	assert.Equal(t, 2650.75, resp["ask"])
	assert.Equal(t, "$2,650", resp["display"])
}

func TestSpotEndpointUnavailable(t *testing.T) {
	ts := newTestSite(t, "american-eagle", failingPrices)

	rec := ts.get(t, "/api/spot")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"available":false,"display":"~$2,700"}`, rec.Body.String())
}

func TestLLMsText(t *testing.T) {
	ts := newTestSite(t, "maple-leaf", livePrices)

	rec := ts.get(t, "/llms.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
	assert.Equal(t, ts.srv.Catalog().LLMs, rec.Body.String())
	assert.Equal(t, 0, ts.fetches())
}

func TestRobotsAndSitemap(t *testing.T) {
	ts := newTestSite(t, "american-eagle", livePrices)

	robots := ts.get(t, "/robots.txt").Body.String()
	assert.Contains(t, robots, "Sitemap: https://www.americaneaglegoldcoin.com/sitemap.xml")

	rec := ts.get(t, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<loc>https://www.americaneaglegoldcoin.com/resources/premiums-explained</loc>")
}

func TestHealthMetricsAndNotFound(t *testing.T) {
	ts := newTestSite(t, "american-eagle", livePrices)

	assert.JSONEq(t, `{"status":"ok"}`, ts.get(t, "/healthz").Body.String())

	ts.get(t, "/")
	metrics := ts.get(t, "/metrics").Body.String()
	assert.Contains(t, metrics, `bullionsite_price_fetch_total{outcome="ok",symbol="AE"} 1`)
	assert.Contains(t, metrics, "bullionsite_page_render_duration_seconds")

	assert.Equal(t, http.StatusNotFound, ts.get(t, "/nope").Code)

	rec := httptest.NewRecorder()
	ts.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestBreakerStopsFetchingAfterFailures(t *testing.T) {
	ts := newTestSite(t, "american-eagle", failingPrices, pricing.WithBreaker(2, time.Minute))

	for i := 0; i < 5; i++ {
		rec := ts.get(t, "/")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "~$2,700")
	}

	assert.Equal(t, 2, ts.fetches())
	assert.Equal(t, 3.0, testutil.ToFloat64(ts.metrics.Pricing.Fetches.WithLabelValues("AE", "breaker_open")))
	assert.Equal(t, 5.0, testutil.ToFloat64(ts.metrics.PriceFallbacks.WithLabelValues("home")))
}

func TestNewServerRejectsUnknownTokens(t *testing.T) {
	catalog, err := site.Load("american-eagle")
	require.NoError(t, err)
	catalog.Pages.Home.QA = append(catalog.Pages.Home.QA, site.QAItem{Question: "Q", Answer: "{{GOLD_OUNCES}}"})

	_, err = NewServer(catalog, pricing.NewClient("", catalog.Profile.Symbols()), zerolog.Nop(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{{GOLD_OUNCES}}")
}

func TestNewServerRejectsUnknownTokensInSectionHeadings(t *testing.T) {
	catalog, err := site.Load("american-eagle")
	require.NoError(t, err)
	catalog.Articles["premiums-explained"] = site.Article{
		Sections: []site.Section{{Heading: "Paying {{CAPITAL_REQUIRMENT}}"}},
	}

	_, err = NewServer(catalog, pricing.NewClient("", catalog.Profile.Symbols()), zerolog.Nop(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{{CAPITAL_REQUIRMENT}}")
}

func TestNewServerRejectsTokensInResourceTitles(t *testing.T) {
	catalog, err := site.Load("american-eagle")
	require.NoError(t, err)
	catalog.Resources[0].Title = "Eagles from {{CAPITAL_REQUIREMENT}}"

	_, err = NewServer(catalog, pricing.NewClient("", catalog.Profile.Symbols()), zerolog.Nop(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "never interpolated")
}

func TestExportWritesEveryRoute(t *testing.T) {
	ts := newTestSite(t, "american-eagle", livePrices)
	out := t.TempDir()

	result, err := ts.srv.Export(context.Background(), out, 3)
	require.NoError(t, err)

	pages := sitemap.Paths(ts.srv.Catalog())
	assert.Len(t, result.Files, len(pages)+len(staticFiles))
	assert.Equal(t, len(pages), ts.fetches())
	assert.Zero(t, result.Fallbacks)

	for _, rel := range []string{"index.html", "coin-specs/index.html", "resources/premiums-explained/index.html", "llms.txt", "sitemap.xml", "static/site.css"} {
		_, err := os.Stat(filepath.Join(out, rel))
		assert.NoError(t, err, rel)
	}

	home, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(home), "$2,710"))
}

func TestExportCountsFallbacks(t *testing.T) {
	ts := newTestSite(t, "maple-leaf", failingPrices)

	result, err := ts.srv.Export(context.Background(), t.TempDir(), 2)
	require.NoError(t, err)
	assert.Equal(t, len(sitemap.Paths(ts.srv.Catalog())), result.Fallbacks)
}

func TestExportQueuesOnDefaultRateLimit(t *testing.T) {
	ts := newTestSite(t, "american-eagle", livePrices,
		pricing.WithRateLimit(5, 10),
		pricing.WithBreaker(3, 30*time.Second),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := ts.srv.Export(ctx, t.TempDir(), 4)
	require.NoError(t, err)

	pages := sitemap.Paths(ts.srv.Catalog())
	require.Greater(t, len(pages), 10, "export should outrun the limiter burst")
	assert.Zero(t, result.Fallbacks)
	assert.Equal(t, len(pages), ts.fetches())
}

func TestPagesWaitBrieflyForRateLimit(t *testing.T) {
	ts := newTestSite(t, "american-eagle", livePrices,
		pricing.WithRateLimit(20, 1),
		pricing.WithRateWait(time.Second),
	)

	for i := 0; i < 3; i++ {
		rec := ts.get(t, "/coin-specs")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "live", rec.Header().Get(priceSourceHeader))
	}
}

func TestExportFile(t *testing.T) {
	assert.Equal(t, filepath.Join("dist", "index.html"), exportFile("dist", "/"))
	assert.Equal(t, filepath.Join("dist", "resources", "ira-eligibility", "index.html"), exportFile("dist", "/resources/ira-eligibility"))
	assert.Equal(t, filepath.Join("dist", "llms.txt"), exportFile("dist", "/llms.txt"))
}
