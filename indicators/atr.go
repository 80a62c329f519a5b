package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/sectortrader/market"
)

// ATR is a streaming Average True Range indicator.
type ATR struct {
	period    int
	atr       float64
	count     int
	warmupSum float64
	prevClose float64
	hasPrev   bool
}

func NewATR(period int) *ATR {
	return &ATR{period: period}
}

func (a *ATR) Name() string {
	return fmt.Sprintf("ATR(%d)", a.period)
}

// Warmup is period+1: the first bar only supplies a previous close.
func (a *ATR) Warmup() int { return a.period + 1 }

func (a *ATR) Reset() {
	*a = ATR{period: a.period}
}

func (a *ATR) Update(b market.Bar) {
	if !a.hasPrev {
		a.prevClose = b.Close
		a.hasPrev = true
		return
	}

	tr := trueRange(b, a.prevClose)
	if a.count < a.period {
		a.warmupSum += tr
		a.count++
		if a.count == a.period {
			a.atr = a.warmupSum / float64(a.period)
		}
	} else {
		a.atr = (a.atr*float64(a.period-1) + tr) / float64(a.period)
	}
	a.prevClose = b.Close
}

func (a *ATR) Ready() bool {
	return a.count >= a.period
}

func (a *ATR) Value() float64 {
	if !a.Ready() {
		return 0
	}
	return a.atr
}

func trueRange(b market.Bar, prevClose float64) float64 {
	highLow := b.High - b.Low
	highClose := math.Abs(b.High - prevClose)
	lowClose := math.Abs(b.Low - prevClose)
	return math.Max(highLow, math.Max(highClose, lowClose))
}
