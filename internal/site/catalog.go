package site

// QAItem is one question and answer pair. Answers may carry price tokens.
type QAItem struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// Section is one headed part of an article. Content paragraphs render in
// order, followed by the optional subheading and its paragraphs.
type Section struct {
	Heading    string   `yaml:"heading"`
	Content    []string `yaml:"content"`
	Subheading string   `yaml:"subheading,omitempty"`
	Subcontent []string `yaml:"subcontent,omitempty"`
}

// Article is the long-form body of a resource.
type Article struct {
	KeyTakeaways []string  `yaml:"key_takeaways"`
	Sections     []Section `yaml:"sections"`
}

// Resource is an entry in the educational library, keyed by slug.
type Resource struct {
	Slug         string `yaml:"slug"`
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	Excerpt      string `yaml:"excerpt"`
	Category     string `yaml:"category"`
	ExternalLink string `yaml:"external_link"`
}

// ResourceGroup is the set of resources sharing a category.
type ResourceGroup struct {
	Category  string
	Resources []Resource
}

// Card is a titled blurb.
type Card struct {
	Title string `yaml:"title"`
	Text  string `yaml:"text"`
}

// Link is an outbound citation.
type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// Quotation is a pull quote with attribution.
type Quotation struct {
	Text string `yaml:"text"`
	Cite string `yaml:"cite"`
}

// Block is a generic content section. Every field is optional.
type Block struct {
	Heading string     `yaml:"heading"`
	Content []string   `yaml:"content"`
	Bullets []string   `yaml:"bullets"`
	Cards   []Card     `yaml:"cards"`
	Quote   *Quotation `yaml:"quote"`
	Note    string     `yaml:"note"`
	Link    *Link      `yaml:"link"`
}

// SpecRow is one line of the specification table.
type SpecRow struct {
	Label     string `yaml:"label"`
	Value     string `yaml:"value"`
	Highlight bool   `yaml:"highlight"`
}

// Comparison is a feature-by-coin table. The first column is this site's coin.
type Comparison struct {
	Heading string          `yaml:"heading"`
	Intro   string          `yaml:"intro"`
	Columns []string        `yaml:"columns"`
	Rows    []ComparisonRow `yaml:"rows"`
}

// ComparisonRow holds one feature's value for each column.
type ComparisonRow struct {
	Feature string   `yaml:"feature"`
	Values  []string `yaml:"values"`
}

// Milestone is a dated timeline entry.
type Milestone struct {
	Year  string `yaml:"year"`
	Event string `yaml:"event"`
}

// PageMeta overrides the site metadata for one page.
type PageMeta struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Social      string `yaml:"social"`
	TwitterCard string `yaml:"twitter_card"`
}

// Page is the static copy for one route.
type Page struct {
	Meta       PageMeta    `yaml:"meta"`
	Eyebrow    string      `yaml:"eyebrow"`
	Heading    string      `yaml:"heading"`
	Intro      string      `yaml:"intro"`
	Blocks     []Block     `yaml:"blocks"`
	Specs      []SpecRow   `yaml:"specs"`
	Comparison *Comparison `yaml:"comparison"`
	Timeline   []Milestone `yaml:"timeline"`
	QA         []QAItem    `yaml:"qa"`
}

// Pages groups the fixed routes' copy.
type Pages struct {
	Home          Page `yaml:"home"`
	CoinSpecs     Page `yaml:"coin_specs"`
	DesignHistory Page `yaml:"design_history"`
	LivePrices    Page `yaml:"live_prices"`
	Resources     Page `yaml:"resources"`
}

// Catalog is the immutable content set for one site.
type Catalog struct {
	Profile    Profile             `yaml:"site"`
	Pages      Pages               `yaml:"pages"`
	Resources  []Resource          `yaml:"resources"`
	Articles   map[string]Article  `yaml:"articles"`
	ResourceQA map[string][]QAItem `yaml:"resource_qa"`
	LLMs       string              `yaml:"llms"`
}

// ComingSoon is the article served for slugs without written content.
var ComingSoon = Article{
	KeyTakeaways: []string{"Content coming soon"},
	Sections: []Section{
		{
			Heading: "Coming Soon",
			Content: []string{"This article is currently being developed."},
		},
	},
}

// LookupResource finds a resource by slug.
func (c *Catalog) LookupResource(slug string) (Resource, bool) {
	for _, r := range c.Resources {
		if r.Slug == slug {
			return r, true
		}
	}
	return Resource{}, false
}

// Resource returns the resource for slug, or a placeholder titled from the
// slug when the catalog has none.
func (c *Catalog) Resource(slug string) Resource {
	if r, ok := c.LookupResource(slug); ok {
		return r
	}
	return Resource{
		Slug:        slug,
		Title:       SlugTitle(slug),
		Description: "This article is currently being developed.",
		Excerpt:     "Content coming soon",
	}
}

// Article returns the written article for slug, or ComingSoon.
func (c *Catalog) Article(slug string) Article {
	if a, ok := c.Articles[slug]; ok {
		return a
	}
	return ComingSoon
}

// Categories lists resource categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{}, len(c.Resources))
	var out []string
	for _, r := range c.Resources {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	return out
}

// Groups buckets resources by category, preserving catalog order inside
// each bucket.
func (c *Catalog) Groups() []ResourceGroup {
	categories := c.Categories()
	groups := make([]ResourceGroup, len(categories))
	index := make(map[string]int, len(categories))
	for i, name := range categories {
		groups[i].Category = name
		index[name] = i
	}
	for _, r := range c.Resources {
		i := index[r.Category]
		groups[i].Resources = append(groups[i].Resources, r)
	}
	return groups
}

// QAFor returns the FAQ set for a resource slug, or nil.
func (c *Catalog) QAFor(slug string) []QAItem {
	return c.ResourceQA[slug]
}

// Texts returns every piece of page, article and FAQ copy. All of it is
// interpolated at render time, so any of it may carry price tokens.
func (c *Catalog) Texts() []string {
	var out []string
	addQA := func(items []QAItem) {
		for _, item := range items {
			out = append(out, item.Question, item.Answer)
		}
	}
	for _, p := range []Page{c.Pages.Home, c.Pages.CoinSpecs, c.Pages.DesignHistory, c.Pages.LivePrices, c.Pages.Resources} {
		out = append(out, p.Eyebrow, p.Heading, p.Intro)
		for _, b := range p.Blocks {
			out = append(out, b.Heading)
			out = append(out, b.Content...)
			out = append(out, b.Bullets...)
			out = append(out, b.Note)
			for _, card := range b.Cards {
				out = append(out, card.Title, card.Text)
			}
			if b.Quote != nil {
				out = append(out, b.Quote.Text)
			}
		}
		for _, row := range p.Specs {
			out = append(out, row.Value)
		}
		if p.Comparison != nil {
			out = append(out, p.Comparison.Heading, p.Comparison.Intro)
			for _, row := range p.Comparison.Rows {
				out = append(out, row.Values...)
			}
		}
		for _, m := range p.Timeline {
			out = append(out, m.Event)
		}
		addQA(p.QA)
	}
	for _, items := range c.ResourceQA {
		addQA(items)
	}
	for _, a := range c.Articles {
		out = append(out, a.KeyTakeaways...)
		for _, s := range a.Sections {
			out = append(out, s.Heading, s.Subheading)
			out = append(out, s.Content...)
			out = append(out, s.Subcontent...)
		}
	}
	return out
}

// FixedTexts returns copy that is never interpolated: page metadata, resource
// listings and labels. It must carry no tokens.
func (c *Catalog) FixedTexts() []string {
	var out []string
	for _, p := range []Page{c.Pages.Home, c.Pages.CoinSpecs, c.Pages.DesignHistory, c.Pages.LivePrices, c.Pages.Resources} {
		out = append(out, p.Meta.Title, p.Meta.Description, p.Meta.Social)
		for _, b := range p.Blocks {
			if b.Quote != nil {
				out = append(out, b.Quote.Cite)
			}
			if b.Link != nil {
				out = append(out, b.Link.Label)
			}
		}
		for _, row := range p.Specs {
			out = append(out, row.Label)
		}
		if p.Comparison != nil {
			out = append(out, p.Comparison.Columns...)
			for _, row := range p.Comparison.Rows {
				out = append(out, row.Feature)
			}
		}
		for _, m := range p.Timeline {
			out = append(out, m.Year)
		}
	}
	for _, r := range c.Resources {
		out = append(out, r.Title, r.Description, r.Excerpt, r.Category)
	}
	return out
}
