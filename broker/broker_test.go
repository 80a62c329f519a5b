package broker

import (
	"math"
	"testing"
)

func TestPositionOpenPL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pos      Position
		mark     float64
		expected float64
	}{
		{"long profit", Position{Units: 2, EntryPrice: 75, PointValue: 1000}, 75.5, 1000},
		{"long loss", Position{Units: 1, EntryPrice: 2000, PointValue: 100}, 1990, -1000},
		{"short profit", Position{Units: -3, EntryPrice: 110, PointValue: 1000}, 109.5, 1500},
		{"short loss", Position{Units: -1, EntryPrice: 4, PointValue: 10000}, 4.1, -1000},
		{"flat", Position{EntryPrice: 10, PointValue: 50}, 20, 0},
	}

	const tol = 1e-6

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.pos.OpenPL(tt.mark)
			if math.Abs(got-tt.expected) > tol {
				t.Fatalf("OpenPL() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestPositionSideAndStop(t *testing.T) {
	t.Parallel()

	long := Position{Units: 1, Stop: 95}
	short := Position{Units: -1, Stop: 105}

	if !long.IsLong() || long.Side() != Long || long.Side().String() != "long" {
		t.Fatalf("long position reported side %v", long.Side())
	}
	if short.IsLong() || short.Side() != Short || short.Side().String() != "short" {
		t.Fatalf("short position reported side %v", short.Side())
	}
	if Side(0).String() != "flat" {
		t.Fatalf("Side(0) = %q", Side(0).String())
	}

	if !long.StopHit(94, 100) || long.StopHit(96, 110) {
		t.Fatal("long stop should trigger on lows at or below 95 only")
	}
	if !short.StopHit(100, 105) || short.StopHit(90, 104) {
		t.Fatal("short stop should trigger on highs at or above 105 only")
	}
	if (Position{Units: 1}).StopHit(0, 1000) {
		t.Fatal("a position without a stop never triggers")
	}
}

func TestAccountFreeMargin(t *testing.T) {
	t.Parallel()

	a := Account{Cash: 100000, Equity: 101500, MarginUsed: 12000}
	if got := a.FreeMargin(); got != 89500 {
		t.Fatalf("FreeMargin() = %v, expected 89500", got)
	}
}
