package sim

import "github.com/rustyeddy/sectortrader/broker"

// UnrealizedPL sums the open profit of positions at marks. Positions
// without a mark contribute nothing.
func UnrealizedPL(positions map[string]*broker.Position, marks map[string]float64) float64 {
	var pl float64
	for sym, p := range positions {
		if mark, ok := marks[sym]; ok {
			pl += p.OpenPL(mark)
		}
	}
	return pl
}
