// Package tokens substitutes live-price strings into static copy.
package tokens

import (
	"regexp"
	"sort"
	"strings"

	"bullionsite/internal/pricing"
	"bullionsite/internal/site"
)

// Token is a placeholder recognised in page copy.
type Token string

// The price tokens. The plus and liquidity forms render the same string.
const (
	CapitalRequirement      Token = "{{CAPITAL_REQUIREMENT}}"
	CapitalRequirementRange Token = "{{CAPITAL_REQUIREMENT_RANGE}}"
	CapitalRequirementPlus  Token = "{{CAPITAL_REQUIREMENT_PLUS}}"
	LiquidityThreshold      Token = "{{LIQUIDITY_THRESHOLD}}"
)

var vocabulary = []Token{
	CapitalRequirement,
	CapitalRequirementRange,
	CapitalRequirementPlus,
	LiquidityThreshold,
}

var tokenPattern = regexp.MustCompile(`\{\{[A-Z0-9_]+\}\}`)

// All returns the closed token set.
func All() []Token {
	out := make([]Token, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// Known reports whether tok belongs to the vocabulary.
func Known(tok Token) bool {
	for _, v := range vocabulary {
		if v == tok {
			return true
		}
	}
	return false
}

// Find returns every token-shaped placeholder in text, known or not, in
// order of appearance.
func Find(text string) []Token {
	matches := tokenPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]Token, len(matches))
	for i, m := range matches {
		out[i] = Token(m)
	}
	return out
}

// Unknown lists the distinct placeholders in texts that are not part of the
// vocabulary, sorted.
func Unknown(texts ...string) []Token {
	seen := make(map[Token]struct{})
	for _, text := range texts {
		for _, tok := range Find(text) {
			if !Known(tok) {
				seen[tok] = struct{}{}
			}
		}
	}
	out := make([]Token, 0, len(seen))
	for tok := range seen {
		out = append(out, tok)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Values holds the resolved string for each token, computed once from a
// single quote.
type Values struct {
	values   map[Token]string
	replacer *strings.Replacer
}

// Resolve computes every token's display string from q. A nil quote yields
// the formatter's fallbacks.
func Resolve(f pricing.Formatter, q *pricing.Quote) Values {
	plus := f.Plus(q)
	values := map[Token]string{
		CapitalRequirement:      f.Approx(q),
		CapitalRequirementRange: f.Range(q),
		CapitalRequirementPlus:  plus,
		LiquidityThreshold:      plus,
	}

	pairs := make([]string, 0, 2*len(vocabulary))
	for _, tok := range vocabulary {
		pairs = append(pairs, string(tok), values[tok])
	}

	return Values{values: values, replacer: strings.NewReplacer(pairs...)}
}

// Get returns the resolved string for tok.
func (v Values) Get(tok Token) (string, bool) {
	s, ok := v.values[tok]
	return s, ok
}

// Interpolate replaces every known token in text in a single pass.
// Unknown placeholders are left as written.
func (v Values) Interpolate(text string) string {
	if v.replacer == nil || !strings.Contains(text, "{{") {
		return text
	}
	return v.replacer.Replace(text)
}

// QA returns a copy of items with questions and answers interpolated.
func (v Values) QA(items []site.QAItem) []site.QAItem {
	if items == nil {
		return nil
	}
	out := make([]site.QAItem, len(items))
	for i, item := range items {
		out[i] = site.QAItem{
			Question: v.Interpolate(item.Question),
			Answer:   v.Interpolate(item.Answer),
		}
	}
	return out
}

// Article returns a copy of a with every paragraph interpolated.
func (v Values) Article(a site.Article) site.Article {
	out := site.Article{
		KeyTakeaways: v.each(a.KeyTakeaways),
		Sections:     make([]site.Section, len(a.Sections)),
	}
	for i, s := range a.Sections {
		out.Sections[i] = site.Section{
			Heading:    v.Interpolate(s.Heading),
			Content:    v.each(s.Content),
			Subheading: v.Interpolate(s.Subheading),
			Subcontent: v.each(s.Subcontent),
		}
	}
	return out
}

// Blocks returns a copy of blocks with their prose interpolated.
func (v Values) Blocks(blocks []site.Block) []site.Block {
	if blocks == nil {
		return nil
	}
	out := make([]site.Block, len(blocks))
	for i, b := range blocks {
		b.Heading = v.Interpolate(b.Heading)
		b.Content = v.each(b.Content)
		b.Bullets = v.each(b.Bullets)
		b.Note = v.Interpolate(b.Note)
		if b.Cards != nil {
			cards := make([]site.Card, len(b.Cards))
			for j, c := range b.Cards {
				cards[j] = site.Card{Title: v.Interpolate(c.Title), Text: v.Interpolate(c.Text)}
			}
			b.Cards = cards
		}
		if b.Quote != nil {
			b.Quote = &site.Quotation{Text: v.Interpolate(b.Quote.Text), Cite: b.Quote.Cite}
		}
		out[i] = b
	}
	return out
}

// Page returns a copy of p with all of its display copy interpolated.
// Metadata and labels are left as written.
func (v Values) Page(p site.Page) site.Page {
	p.Eyebrow = v.Interpolate(p.Eyebrow)
	p.Heading = v.Interpolate(p.Heading)
	p.Intro = v.Interpolate(p.Intro)
	p.Blocks = v.Blocks(p.Blocks)
	p.QA = v.QA(p.QA)

	if p.Specs != nil {
		specs := make([]site.SpecRow, len(p.Specs))
		for i, row := range p.Specs {
			row.Value = v.Interpolate(row.Value)
			specs[i] = row
		}
		p.Specs = specs
	}

	if p.Comparison != nil {
		cmp := *p.Comparison
		cmp.Heading = v.Interpolate(cmp.Heading)
		cmp.Intro = v.Interpolate(cmp.Intro)
		cmp.Rows = make([]site.ComparisonRow, len(p.Comparison.Rows))
		for i, row := range p.Comparison.Rows {
			cmp.Rows[i] = site.ComparisonRow{Feature: row.Feature, Values: v.each(row.Values)}
		}
		p.Comparison = &cmp
	}

	if p.Timeline != nil {
		timeline := make([]site.Milestone, len(p.Timeline))
		for i, m := range p.Timeline {
			timeline[i] = site.Milestone{Year: m.Year, Event: v.Interpolate(m.Event)}
		}
		p.Timeline = timeline
	}

	return p
}

func (v Values) each(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = v.Interpolate(s)
	}
	return out
}
