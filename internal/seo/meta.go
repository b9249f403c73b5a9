// Package seo builds the head metadata and structured data for each page.
package seo

import (
	"bullionsite/internal/site"
)

const (
	robotsIndex   = "index, follow, max-video-preview:-1, max-image-preview:large, max-snippet:-1"
	robotsNoIndex = "noindex, follow"

	ogImageWidth  = 1200
	ogImageHeight = 630
)

// Image is the social preview image with its pixel dimensions.
type Image struct {
	URL    string
	Width  int
	Height int
	Alt    string
}

// OpenGraph holds the og:* properties.
type OpenGraph struct {
	Title       string
	Description string
	URL         string
	Type        string
	SiteName    string
	Locale      string
	Image       Image
}

// Twitter holds the twitter:* card properties.
type Twitter struct {
	Card        string
	Title       string
	Description string
	Image       string
}

// Meta is everything rendered into a page's <head>.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	Keywords    []string
	Robots      string
	Author      string
	OG          OpenGraph
	Twitter     Twitter
}

// Page describes one route for metadata purposes. Empty fields inherit the
// site defaults.
type Page struct {
	Path    string
	Meta    site.PageMeta
	Type    string
	NoIndex bool
}

// Build resolves page metadata against the site profile.
func Build(p site.Profile, page Page) Meta {
	title := p.Title(page.Meta.Title)

	description := page.Meta.Description
	if description == "" {
		description = p.Meta.Description
	}

	social := page.Meta.Social
	if social == "" {
		social = description
	}

	card := page.Meta.TwitterCard
	if card == "" {
		card = "summary_large_image"
	}

	ogType := page.Type
	if ogType == "" {
		ogType = "website"
	}

	socialTitle := page.Meta.Title
	if socialTitle == "" {
		socialTitle = p.Meta.Title
	}

	robots := robotsIndex
	if page.NoIndex {
		robots = robotsNoIndex
	}

	canonical := p.URL(page.Path)

	var image Image
	if p.Meta.OGImage != "" {
		image = Image{
			URL:    p.AssetURL(p.Meta.OGImage),
			Width:  ogImageWidth,
			Height: ogImageHeight,
			Alt:    p.Meta.OGImageAlt,
		}
	}

	return Meta{
		Title:       title,
		Description: description,
		Canonical:   canonical,
		Keywords:    p.Meta.Keywords,
		Robots:      robots,
		Author:      p.BrandName,
		OG: OpenGraph{
			Title:       socialTitle,
			Description: social,
			URL:         canonical,
			Type:        ogType,
			SiteName:    p.BrandName,
			Locale:      "en_US",
			Image:       image,
		},
		Twitter: Twitter{
			Card:        card,
			Title:       socialTitle,
			Description: social,
			Image:       image.URL,
		},
	}
}
