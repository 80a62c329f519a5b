package sim

import "github.com/rustyeddy/sectortrader/market"

// TradeMargin is the initial margin held for units contracts.
func TradeMargin(units float64, inst market.Instrument) float64 {
	return abs(units) * inst.Margin
}

// Commission is the per-side cost of trading units contracts.
func Commission(units float64, inst market.Instrument) float64 {
	return abs(units) * inst.Commission
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
