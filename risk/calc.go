package risk

import "math"

// PlannedRisk is the money lost if a position of units contracts entered
// at entry is stopped out at stop.
func PlannedRisk(units, entry, stop, pointValue float64) float64 {
	return math.Abs(units) * math.Abs(entry-stop) * pointValue
}

// RiskPct is planned risk as a fraction of equity.
func RiskPct(plannedRisk, equity float64) float64 {
	if equity <= 0 {
		return math.Inf(1)
	}
	return plannedRisk / equity
}
