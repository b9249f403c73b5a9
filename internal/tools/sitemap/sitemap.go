// Package sitemap builds the sitemap.xml for a site catalog.
package sitemap

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"time"

	"bullionsite/internal/site"
)

const namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Page is a fixed route and its crawl hints.
type Page struct {
	Path       string
	ChangeFreq string
	Priority   float64
}

// Pages are the fixed routes in navigation order.
var Pages = []Page{
	{Path: "/", ChangeFreq: "daily", Priority: 1.0},
	{Path: "/coin-specs", ChangeFreq: "monthly", Priority: 0.8},
	{Path: "/design-history", ChangeFreq: "monthly", Priority: 0.7},
	{Path: "/live-gold-prices", ChangeFreq: "hourly", Priority: 0.9},
	{Path: "/resources", ChangeFreq: "weekly", Priority: 0.8},
}

const resourceChangeFreq = "monthly"
const resourcePriority = 0.6

// URL is one <url> entry.
type URL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

// URLSet is the sitemap document root.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Paths lists every path the site serves as a page: the fixed routes
// followed by one entry per catalog resource.
func Paths(c *site.Catalog) []string {
	out := make([]string, 0, len(Pages)+len(c.Resources))
	for _, p := range Pages {
		out = append(out, p.Path)
	}
	for _, r := range c.Resources {
		out = append(out, "/resources/"+r.Slug)
	}
	return out
}

// Build assembles the URL set for c. A zero lastMod omits <lastmod>.
func Build(c *site.Catalog, lastMod time.Time) URLSet {
	stamp := ""
	if !lastMod.IsZero() {
		stamp = lastMod.UTC().Format("2006-01-02")
	}

	set := URLSet{Xmlns: namespace, URLs: make([]URL, 0, len(Pages)+len(c.Resources))}
	for _, p := range Pages {
		set.URLs = append(set.URLs, URL{
			Loc:        c.Profile.URL(p.Path),
			LastMod:    stamp,
			ChangeFreq: p.ChangeFreq,
			Priority:   p.Priority,
		})
	}
	for _, r := range c.Resources {
		set.URLs = append(set.URLs, URL{
			Loc:        c.Profile.URL("/resources/" + r.Slug),
			LastMod:    stamp,
			ChangeFreq: resourceChangeFreq,
			Priority:   resourcePriority,
		})
	}
	return set
}

// Marshal encodes the set with the XML declaration.
func Marshal(set URLSet) ([]byte, error) {
	data, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(data, '\n')...), nil
}

// Export builds the sitemap for c, writes it to outPath when set, and
// returns the set.
func Export(c *site.Catalog, outPath string, lastMod time.Time) (URLSet, error) {
	set := Build(c, lastMod)
	if outPath == "" {
		return set, nil
	}

	data, err := Marshal(set)
	if err != nil {
		return URLSet{}, err
	}
	if err := write(outPath, data); err != nil {
		return URLSet{}, err
	}
	return set, nil
}

func write(outPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(outPath, data, 0o644)
}
