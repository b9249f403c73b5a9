package site

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"bullionsite/internal/pricing"
)

//go:embed profiles/*.yaml
var profileFS embed.FS

// ErrUnknownProfile signals a site name with no embedded profile.
var ErrUnknownProfile = errors.New("unknown site profile")

// Sites lists the embedded profile names.
func Sites() []string {
	entries, err := fs.ReadDir(profileFS, "profiles")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Load reads and validates the embedded profile called name.
func Load(name string) (*Catalog, error) {
	data, err := profileFS.ReadFile("profiles/" + name + ".yaml")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownProfile, name, strings.Join(Sites(), ", "))
		}
		return nil, fmt.Errorf("read profile %s: %w", name, err)
	}
	return Parse(name, data)
}

// Parse decodes a profile document. Unknown fields are rejected.
func Parse(name string, data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", name, err)
	}
	c.Profile.Name = name

	if c.Profile.CanonicalDomain == "" {
		c.Profile.CanonicalDomain = c.Profile.Domain
	}
	if c.Profile.Fallback == (pricing.Fallback{}) {
		c.Profile.Fallback = pricing.DefaultFallback
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", name, err)
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	p := c.Profile
	if p.BrandName == "" {
		return errors.New("brand_name is required")
	}
	for field, raw := range map[string]string{"domain": p.Domain, "canonical_domain": p.CanonicalDomain} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s %q must be an absolute http(s) url", field, raw)
		}
	}
	if p.ProductSymbol == "" || p.SpotSymbol == "" {
		return errors.New("product_symbol and spot_symbol are required")
	}
	if strings.EqualFold(p.ProductSymbol, p.SpotSymbol) {
		return fmt.Errorf("product_symbol and spot_symbol must differ, both are %q", p.ProductSymbol)
	}

	slugs := make(map[string]struct{}, len(c.Resources))
	for _, r := range c.Resources {
		normalized, err := NormalizeSlug(r.Slug)
		if err != nil || normalized != r.Slug {
			return fmt.Errorf("resource slug %q is not canonical", r.Slug)
		}
		if _, dup := slugs[r.Slug]; dup {
			return fmt.Errorf("duplicate resource slug %q", r.Slug)
		}
		slugs[r.Slug] = struct{}{}
		if r.Title == "" || r.Category == "" {
			return fmt.Errorf("resource %q needs a title and category", r.Slug)
		}
	}
	for slug := range c.Articles {
		if _, ok := slugs[slug]; !ok {
			return fmt.Errorf("article %q has no matching resource", slug)
		}
	}
	for slug := range c.ResourceQA {
		if _, ok := slugs[slug]; !ok {
			return fmt.Errorf("resource_qa %q has no matching resource", slug)
		}
	}
	return nil
}
