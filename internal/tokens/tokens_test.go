package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bullionsite/internal/pricing"
	"bullionsite/internal/site"
)

var liveQuote = &pricing.Quote{Symbol: "AE", Bid: 2690.10, Ask: 2713.40}

func TestResolveLiveQuote(t *testing.T) {
	v := Resolve(pricing.Formatter{}, liveQuote)

	got, ok := v.Get(CapitalRequirement)
	require.True(t, ok)
	assert.Equal(t, "$2,710", got)

	got, _ = v.Get(CapitalRequirementRange)
	assert.Equal(t, "~$2,580–$2,850", got)

	got, _ = v.Get(CapitalRequirementPlus)
	assert.Equal(t, "$2,710+", got)

	got, _ = v.Get(LiquidityThreshold)
	assert.Equal(t, "$2,710+", got)
}

func TestResolveWithoutQuoteUsesFallbacks(t *testing.T) {
	v := Resolve(pricing.Formatter{}, nil)

	text := "{{CAPITAL_REQUIREMENT}} | {{CAPITAL_REQUIREMENT_RANGE}} | {{CAPITAL_REQUIREMENT_PLUS}} | {{LIQUIDITY_THRESHOLD}}"
	assert.Equal(t, "~$2,700 | ~$2,600–$2,800 | ~$2,700+ | ~$2,700+", v.Interpolate(text))
}

func TestInterpolateReplacesEveryOccurrence(t *testing.T) {
	v := Resolve(pricing.Formatter{}, liveQuote)

	for n := 1; n <= 5; n++ {
		text := strings.Repeat("cost {{CAPITAL_REQUIREMENT}}; ", n)
		out := v.Interpolate(text)
		assert.Equal(t, n, strings.Count(out, "$2,710"), "n=%d", n)
		assert.NotContains(t, out, "{{")
	}
}

func TestInterpolateLeavesUnknownTokens(t *testing.T) {
	v := Resolve(pricing.Formatter{}, liveQuote)

	text := "{{CAPITAL_REQUIREMENT}} and {{SILVER_PRICE}} and {{CAPITAL_REQUIREMENT and {{}}"
	assert.Equal(t, "$2,710 and {{SILVER_PRICE}} and {{CAPITAL_REQUIREMENT and {{}}", v.Interpolate(text))
}

func TestInterpolateDoesNotConfuseOverlappingNames(t *testing.T) {
	v := Resolve(pricing.Formatter{}, liveQuote)
	assert.Equal(t, "~$2,580–$2,850 / $2,710", v.Interpolate("{{CAPITAL_REQUIREMENT_RANGE}} / {{CAPITAL_REQUIREMENT}}"))
}

func TestZeroValuesPassThrough(t *testing.T) {
	var v Values
	assert.Equal(t, "{{CAPITAL_REQUIREMENT}}", v.Interpolate("{{CAPITAL_REQUIREMENT}}"))
}

func TestFindAndUnknown(t *testing.T) {
	text := "a {{CAPITAL_REQUIREMENT}} b {{GOLD_OUNCES}} c {{CAPITAL_REQUIREMENT}}"
	assert.Equal(t, []Token{CapitalRequirement, "{{GOLD_OUNCES}}", CapitalRequirement}, Find(text))
	assert.Nil(t, Find("plain copy"))

	assert.Equal(t, []Token{"{{GOLD_OUNCES}}", "{{ZINC}}"}, Unknown(text, "{{ZINC}}", "{{GOLD_OUNCES}}"))
	assert.Empty(t, Unknown("{{LIQUIDITY_THRESHOLD}}"))
}

func TestAllIsClosedSet(t *testing.T) {
	all := All()
	assert.Len(t, all, 4)
	for _, tok := range all {
		assert.True(t, Known(tok))
	}
	all[0] = "{{MUTATED}}"
	assert.Equal(t, CapitalRequirement, All()[0])
}

func TestQAAndArticleCopyOnWrite(t *testing.T) {
	v := Resolve(pricing.Formatter{}, liveQuote)

	items := []site.QAItem{{Question: "How much?", Answer: "About {{CAPITAL_REQUIREMENT_RANGE}}."}}
	out := v.QA(items)
	assert.Equal(t, "About ~$2,580–$2,850.", out[0].Answer)
	assert.Equal(t, "About {{CAPITAL_REQUIREMENT_RANGE}}.", items[0].Answer)

	article := site.Article{
		KeyTakeaways: []string{"From {{CAPITAL_REQUIREMENT_PLUS}}"},
		Sections: []site.Section{{
			Heading:    "Costs",
			Content:    []string{"{{CAPITAL_REQUIREMENT}}"},
			Subcontent: []string{"{{LIQUIDITY_THRESHOLD}}"},
		}},
	}
	a := v.Article(article)
	assert.Equal(t, "From $2,710+", a.KeyTakeaways[0])
	assert.Equal(t, "$2,710", a.Sections[0].Content[0])
	assert.Equal(t, "$2,710+", a.Sections[0].Subcontent[0])
	assert.Equal(t, "{{CAPITAL_REQUIREMENT}}", article.Sections[0].Content[0])
}

func TestBlocksInterpolateCards(t *testing.T) {
	v := Resolve(pricing.Formatter{}, nil)
	blocks := []site.Block{{
		Heading: "Entry point",
		Cards:   []site.Card{{Title: "Cost", Text: "{{CAPITAL_REQUIREMENT}}"}},
		Note:    "{{CAPITAL_REQUIREMENT_PLUS}}",
	}}

	out := v.Blocks(blocks)
	assert.Equal(t, "~$2,700", out[0].Cards[0].Text)
	assert.Equal(t, "~$2,700+", out[0].Note)
	assert.Equal(t, "{{CAPITAL_REQUIREMENT}}", blocks[0].Cards[0].Text)
}

func TestPageInterpolatesEveryDisplayField(t *testing.T) {
	v := Resolve(pricing.Formatter{}, &pricing.Quote{Symbol: "AE", Ask: 2713.40})
	page := site.Page{
		Meta:     site.PageMeta{Title: "Prices"},
		Eyebrow:  "From {{CAPITAL_REQUIREMENT}}",
		Blocks:   []site.Block{{Heading: "Budget {{CAPITAL_REQUIREMENT_PLUS}}", Quote: &site.Quotation{Text: "{{CAPITAL_REQUIREMENT}}", Cite: "Desk"}}},
		Specs:    []site.SpecRow{{Label: "Price", Value: "{{CAPITAL_REQUIREMENT_RANGE}}"}},
		Timeline: []site.Milestone{{Year: "2026", Event: "Trades near {{CAPITAL_REQUIREMENT}}"}},
		Comparison: &site.Comparison{
			Heading: "Compare",
			Rows:    []site.ComparisonRow{{Feature: "Cost", Values: []string{"{{LIQUIDITY_THRESHOLD}}", "varies"}}},
		},
	}

	out := v.Page(page)
	assert.Equal(t, "From $2,710", out.Eyebrow)
	assert.Equal(t, "Budget $2,710+", out.Blocks[0].Heading)
	assert.Equal(t, "$2,710", out.Blocks[0].Quote.Text)
	assert.Equal(t, "Desk", out.Blocks[0].Quote.Cite)
	assert.Equal(t, "~$2,580–$2,850", out.Specs[0].Value)
	assert.Equal(t, "Trades near $2,710", out.Timeline[0].Event)
	assert.Equal(t, []string{"$2,710+", "varies"}, out.Comparison.Rows[0].Values)
	assert.Equal(t, "Prices", out.Meta.Title)

	assert.Equal(t, "From {{CAPITAL_REQUIREMENT}}", page.Eyebrow)
	assert.Equal(t, "{{CAPITAL_REQUIREMENT}}", page.Blocks[0].Quote.Text)
	assert.Equal(t, "{{CAPITAL_REQUIREMENT_RANGE}}", page.Specs[0].Value)
	assert.Equal(t, "{{LIQUIDITY_THRESHOLD}}", page.Comparison.Rows[0].Values[0])
}

func TestEmbeddedCatalogsUseOnlyKnownTokens(t *testing.T) {
	for _, name := range site.Sites() {
		c, err := site.Load(name)
		require.NoError(t, err)
		assert.Empty(t, Unknown(c.Texts()...), name)
		for _, text := range c.FixedTexts() {
			assert.Empty(t, Find(text), "%s: %q", name, text)
		}
	}
}
