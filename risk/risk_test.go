package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Inputs
		want float64
	}{
		{"crude", Inputs{Equity: 1000000, RiskFactor: 0.002, ATR: 1.5, PointValue: 1000}, 1},
		{"rounds down", Inputs{Equity: 1000000, RiskFactor: 0.002, ATR: 12, PointValue: 50}, 3},
		{"no atr", Inputs{Equity: 1000000, RiskFactor: 0.002, ATR: 0, PointValue: 50}, 0},
		{"no equity", Inputs{Equity: -5, RiskFactor: 0.002, ATR: 1, PointValue: 50}, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Calculate(tt.in).Units)
		})
	}
}

func TestPlannedRisk(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1500.0, PlannedRisk(-3, 110, 110.5, 1000))
	assert.Equal(t, 0.015, RiskPct(1500, 100000))
	assert.True(t, math.IsInf(RiskPct(1, 0), 1))
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	intent := TradeIntent{Symbol: "ES", Units: 2, Entry: 4700, Stop: 4650, PointValue: 50, Margin: 12000}

	d := Evaluate(Policy{}, intent, AccountSnapshot{Equity: 100000})
	assert.True(t, d.Allowed)
	assert.Equal(t, 5000.0, d.PlannedRisk)
	assert.InDelta(t, 0.05, d.PlannedRiskPct, 1e-12)

	d = Evaluate(Policy{MaxMarginPct: 0.2}, intent, AccountSnapshot{Equity: 100000})
	assert.False(t, d.Allowed)
	assert.Equal(t, "MARGIN_TOO_HIGH", d.Violations[0].Code)

	d = Evaluate(Policy{MaxOpenPositions: 1}, intent, AccountSnapshot{Equity: 100000, Open: 1})
	assert.False(t, d.Allowed)
	assert.Equal(t, "TOO_MANY_OPEN_POSITIONS", d.Violations[0].Code)

	intent.Units = 0
	d = Evaluate(Policy{}, intent, AccountSnapshot{Equity: 100000})
	assert.False(t, d.Allowed)
}
