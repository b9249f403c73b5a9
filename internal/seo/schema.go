package seo

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"

	"bullionsite/internal/pricing"
	"bullionsite/internal/site"
)

const schemaContext = "https://schema.org"

// Organization is the schema.org publisher record.
type Organization struct {
	Context string `json:"@context,omitempty"`
	Type    string `json:"@type"`
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
}

// WebPage describes one fixed route.
type WebPage struct {
	Context     string        `json:"@context"`
	Type        string        `json:"@type"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url"`
	Publisher   *Organization `json:"publisher,omitempty"`
}

// Answer is the accepted answer of a FAQ question.
type Answer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

// Question is one FAQ entry.
type Question struct {
	Type           string `json:"@type"`
	Name           string `json:"name"`
	AcceptedAnswer Answer `json:"acceptedAnswer"`
}

// FAQPage mirrors the FAQ shown on the page.
type FAQPage struct {
	Context    string     `json:"@context"`
	Type       string     `json:"@type"`
	MainEntity []Question `json:"mainEntity"`
}

// Brand names the coin's issuer.
type Brand struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// QuantitativeValue is a measured amount with a UN/CEFACT unit code.
type QuantitativeValue struct {
	Type     string  `json:"@type"`
	Value    float64 `json:"value"`
	UnitCode string  `json:"unitCode"`
	UnitText string  `json:"unitText"`
}

// Offer is the live ask, present only when a quote was fetched.
type Offer struct {
	Type          string `json:"@type"`
	Price         string `json:"price"`
	PriceCurrency string `json:"priceCurrency"`
	URL           string `json:"url,omitempty"`
}

// Product describes the coin itself.
type Product struct {
	Context     string            `json:"@context"`
	Type        string            `json:"@type"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Brand       Brand             `json:"brand"`
	Category    string            `json:"category,omitempty"`
	Material    string            `json:"material,omitempty"`
	Weight      QuantitativeValue `json:"weight"`
	Offers      *Offer            `json:"offers,omitempty"`
}

// Article describes a resource page.
type Article struct {
	Context          string        `json:"@context"`
	Type             string        `json:"@type"`
	Headline         string        `json:"headline"`
	Description      string        `json:"description,omitempty"`
	URL              string        `json:"url"`
	MainEntityOfPage string        `json:"mainEntityOfPage"`
	Publisher        *Organization `json:"publisher,omitempty"`
}

// NewOrganization describes the site publisher.
func NewOrganization(p site.Profile) Organization {
	return Organization{
		Context: schemaContext,
		Type:    "Organization",
		Name:    p.BrandName,
		URL:     p.URL("/"),
	}
}

func publisher(p site.Profile) *Organization {
	org := NewOrganization(p)
	org.Context = ""
	return &org
}

// NewWebPage describes one route.
func NewWebPage(p site.Profile, path, name, description string) WebPage {
	return WebPage{
		Context:     schemaContext,
		Type:        "WebPage",
		Name:        name,
		Description: description,
		URL:         p.URL(path),
		Publisher:   publisher(p),
	}
}

// NewFAQPage builds an FAQPage from already interpolated items so the
// structured answers match the visible ones.
func NewFAQPage(items []site.QAItem) FAQPage {
	questions := make([]Question, len(items))
	for i, item := range items {
		questions[i] = Question{
			Type: "Question",
			Name: item.Question,
			AcceptedAnswer: Answer{
				Type: "Answer",
				Text: item.Answer,
			},
		}
	}
	return FAQPage{Context: schemaContext, Type: "FAQPage", MainEntity: questions}
}

// NewProduct describes the site's coin. A valid quote adds an offer at the
// current ask.
func NewProduct(p site.Profile, q *pricing.Quote) Product {
	product := Product{
		Context:     schemaContext,
		Type:        "Product",
		Name:        p.Product.Name,
		Description: p.Product.Description,
		Brand:       Brand{Type: "Brand", Name: p.Product.Brand},
		Category:    p.Product.Category,
		Material:    p.Product.Material,
		Weight: QuantitativeValue{
			Type:     "QuantitativeValue",
			Value:    p.TroyOunces,
			UnitCode: "ONT",
			UnitText: "troy ounce",
		},
	}
	if q.Valid() {
		product.Offers = &Offer{
			Type:          "Offer",
			Price:         strconv.FormatFloat(q.Ask, 'f', 2, 64),
			PriceCurrency: "USD",
			URL:           p.URL("/live-gold-prices"),
		}
	}
	return product
}

// NewArticle describes a resource page.
func NewArticle(p site.Profile, path string, r site.Resource) Article {
	url := p.URL(path)
	return Article{
		Context:          schemaContext,
		Type:             "Article",
		Headline:         r.Title,
		Description:      r.Description,
		URL:              url,
		MainEntityOfPage: url,
		Publisher:        publisher(p),
	}
}

// JSONLD encodes a schema object for a <script type="application/ld+json">
// body. encoding/json escapes <, > and & so the output cannot close the tag.
func JSONLD(v any) (template.JS, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode json-ld: %w", err)
	}
	return template.JS(data), nil
}
