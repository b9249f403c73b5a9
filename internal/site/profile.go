// Package site holds the per-domain profile and the static content catalog
// that every page is rendered from.
package site

import (
	"fmt"
	"strings"

	"bullionsite/internal/pricing"
)

// Profile identifies one single-product site and the coin it covers.
type Profile struct {
	Name            string           `yaml:"-"`
	Domain          string           `yaml:"domain"`
	CanonicalDomain string           `yaml:"canonical_domain"`
	BrandName       string           `yaml:"brand_name"`
	PrimaryProduct  string           `yaml:"primary_product"`
	ProductName     string           `yaml:"product_name"`
	ShortName       string           `yaml:"short_name"`
	Metal           string           `yaml:"metal"`
	Form            string           `yaml:"form"`
	Size            string           `yaml:"size"`
	TroyOunces      float64          `yaml:"troy_ounces"`
	Mint            string           `yaml:"mint"`
	Angle           string           `yaml:"angle"`
	ProductSymbol   string           `yaml:"product_symbol"`
	SpotSymbol      string           `yaml:"spot_symbol"`
	CitationLinks   []string         `yaml:"citation_links"`
	Fallback        pricing.Fallback `yaml:"fallback"`
	Meta            Meta             `yaml:"meta"`
	Product         Product          `yaml:"product"`
}

// Meta is the site-wide metadata pages inherit unless they override it.
type Meta struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	OGImage     string   `yaml:"og_image"`
	OGImageAlt  string   `yaml:"og_image_alt"`
}

// Product describes the coin for structured data.
type Product struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Brand       string `yaml:"brand"`
	Category    string `yaml:"category"`
	Material    string `yaml:"material"`
}

// Symbols returns the pricing symbol pair bound to this site.
func (p Profile) Symbols() pricing.Symbols {
	return pricing.Symbols{Product: p.ProductSymbol, Spot: p.SpotSymbol}
}

// Formatter returns a price formatter carrying this site's fallbacks.
func (p Profile) Formatter() pricing.Formatter {
	return pricing.Formatter{Fallback: p.Fallback}
}

// URL joins a site path onto the canonical domain. The root path maps to
// the bare domain.
func (p Profile) URL(path string) string {
	base := strings.TrimSuffix(p.CanonicalDomain, "/")
	if path == "" || path == "/" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// AssetURL resolves a site-relative asset against the public domain.
func (p Profile) AssetURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(p.Domain, "/") + "/" + strings.TrimPrefix(path, "/")
}

// Title applies the "%s | brand" template. An empty page title yields the
// site default.
func (p Profile) Title(page string) string {
	if page == "" {
		return p.Meta.Title
	}
	return fmt.Sprintf("%s | %s", page, p.BrandName)
}

// Host returns the canonical domain without its scheme.
func (p Profile) Host() string {
	host := strings.TrimPrefix(p.CanonicalDomain, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimSuffix(host, "/")
}
