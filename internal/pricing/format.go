package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Fallback holds the static display strings used when no quote is available.
type Fallback struct {
	Approx string `yaml:"approx"`
	Range  string `yaml:"range"`
	Plus   string `yaml:"plus"`
}

// DefaultFallback matches the approximate coin price hard-coded in the site copy.
var DefaultFallback = Fallback{
	Approx: "~$2,700",
	Range:  "~$2,600–$2,800",
	Plus:   "~$2,700+",
}

var (
	roundStep = decimal.NewFromInt(10)
	bandWidth = decimal.RequireFromString("0.05")
	one       = decimal.NewFromInt(1)
)

// Formatter renders quotes as display strings. The zero value uses DefaultFallback.
type Formatter struct {
	Fallback Fallback
}

func (f Formatter) fallback() Fallback {
	fb := f.Fallback
	if fb.Approx == "" {
		fb.Approx = DefaultFallback.Approx
	}
	if fb.Range == "" {
		fb.Range = DefaultFallback.Range
	}
	if fb.Plus == "" {
		fb.Plus = DefaultFallback.Plus
	}
	return fb
}

// Bounds returns the ask rounded to the nearest $10 together with the ±5%
// band rounded the same way, with lo < mid < hi. Asks that round below $20
// leave no room for a positive lower bound and report ok=false.
func (f Formatter) Bounds(q *Quote) (lo, mid, hi int64, ok bool) {
	if !q.Valid() {
		return 0, 0, 0, false
	}

	ask := decimal.NewFromFloat(q.Ask)
	mid = roundToStep(ask)
	step := roundStep.IntPart()
	if mid < 2*step {
		return 0, 0, 0, false
	}
	lo = roundToStep(ask.Mul(one.Sub(bandWidth)))
	hi = roundToStep(ask.Mul(one.Add(bandWidth)))

	if lo >= mid {
		lo = mid - step
	}
	if hi <= mid {
		hi = mid + step
	}

	return lo, mid, hi, true
}

// Approx renders the ask rounded to the nearest $10, e.g. "$2,710".
func (f Formatter) Approx(q *Quote) string {
	_, mid, _, ok := f.Bounds(q)
	if !ok {
		return f.fallback().Approx
	}
	return usd(mid)
}

// Range renders the ±5% band around the ask, e.g. "~$2,580–$2,850".
func (f Formatter) Range(q *Quote) string {
	lo, _, hi, ok := f.Bounds(q)
	if !ok {
		return f.fallback().Range
	}
	return "~" + usd(lo) + "–" + usd(hi)
}

// Plus renders the approximate price with a trailing "+", e.g. "$2,710+".
func (f Formatter) Plus(q *Quote) string {
	_, mid, _, ok := f.Bounds(q)
	if !ok {
		return f.fallback().Plus
	}
	return usd(mid) + "+"
}

// Dollars renders an exact amount with cents, e.g. "$2,713.40".
func Dollars(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	whole := d.Truncate(0)
	cents := d.Sub(whole).Abs().Shift(2).IntPart()
	sign := ""
	if d.IsNegative() {
		sign = "-"
		whole = whole.Abs()
	}
	return sign + usd(whole.IntPart()) + fmt.Sprintf(".%02d", cents)
}

func roundToStep(d decimal.Decimal) int64 {
	return d.Div(roundStep).Round(0).Mul(roundStep).IntPart()
}

func usd(n int64) string {
	p := message.NewPrinter(language.AmericanEnglish)
	return p.Sprintf("$%d", n)
}
