package sim

import (
	"github.com/rustyeddy/sectortrader/broker"
	"github.com/rustyeddy/sectortrader/market"
)

// stopFill reports whether bar reaches the resting stop of p and the
// price it fills at. A gap through the stop fills at the open.
func stopFill(p broker.Position, bar market.Bar) (float64, bool) {
	if !p.StopHit(bar.Low, bar.High) {
		return 0, false
	}
	fill := p.Stop
	if p.IsLong() && bar.Open < fill {
		fill = bar.Open
	}
	if !p.IsLong() && bar.Open > fill {
		fill = bar.Open
	}
	return fill, true
}
