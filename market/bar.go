package market

import (
	"sort"
	"time"
)

// Bar represents one OHLCV price bar for a single symbol.
type Bar struct {
	Symbol       string
	Time         time.Time
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       float64
	OpenInterest float64
}

// Range returns High - Low.
func (b Bar) Range() float64 {
	return b.High - b.Low
}

// Bars is the set of bars that share one timestamp, keyed by symbol.
type Bars struct {
	Time     time.Time
	bySymbol map[string]Bar
}

// NewBars groups the given bars under t. Bars for other timestamps are
// still accepted; the caller owns that invariant.
func NewBars(t time.Time, bars ...Bar) Bars {
	m := make(map[string]Bar, len(bars))
	for _, b := range bars {
		m[b.Symbol] = b
	}
	return Bars{Time: t, bySymbol: m}
}

// Get returns the bar for symbol, if present at this timestamp.
func (b Bars) Get(symbol string) (Bar, bool) {
	bar, ok := b.bySymbol[symbol]
	return bar, ok
}

// Len returns the number of symbols with a bar at this timestamp.
func (b Bars) Len() int { return len(b.bySymbol) }

// Symbols returns the symbols in lexical order.
func (b Bars) Symbols() []string {
	out := make([]string, 0, len(b.bySymbol))
	for s := range b.bySymbol {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
