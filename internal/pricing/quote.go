// Package pricing fetches bid/ask summaries from the Monex spot API and turns
// them into the display strings used across the site.
package pricing

import (
	"math"
	"time"
)

// Quote is the bid/ask summary for one symbol. A quote lives for a single
// render and is never stored.
type Quote struct {
	Symbol        string
	Bid           float64
	Ask           float64
	Change        float64
	ChangePercent float64
	FetchedAt     time.Time
}

// Valid reports whether the quote carries a usable ask.
func (q *Quote) Valid() bool {
	if q == nil {
		return false
	}
	return q.Ask > 0 && !math.IsInf(q.Ask, 0) && !math.IsNaN(q.Ask)
}

// Symbols binds the two Monex symbols a site is allowed to request.
// Product is used only for coin pricing (cards, FAQ tokens); Spot only for the
// generic market reference.
type Symbols struct {
	Product string
	Spot    string
}
