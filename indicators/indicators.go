// Package indicators provides streaming technical indicators over daily bars.
package indicators

import "github.com/rustyeddy/sectortrader/market"

// Indicator computes a single streaming value from bars.
// It is deterministic and safe to use in backtests and replays.
type Indicator interface {
	// Name returns a stable identifier like "ATR(100)" or "MA(50)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next closed bar.
	Update(b market.Bar)

	// Ready reports whether Value() is meaningful.
	Ready() bool

	// Value returns the current value, 0 until Ready.
	Value() float64
}
