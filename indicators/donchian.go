package indicators

import (
	"fmt"

	"github.com/rustyeddy/sectortrader/market"
)

// Donchian tracks the highest close and lowest close of the last period
// bars. Value is the channel midpoint.
type Donchian struct {
	period int
	closes []float64
}

func NewDonchian(period int) *Donchian {
	return &Donchian{
		period: period,
		closes: make([]float64, 0, period+1),
	}
}

func (d *Donchian) Name() string {
	return fmt.Sprintf("Donchian(%d)", d.period)
}

func (d *Donchian) Warmup() int { return d.period }

func (d *Donchian) Reset() { d.closes = d.closes[:0] }

func (d *Donchian) Update(b market.Bar) {
	d.closes = append(d.closes, b.Close)
	if len(d.closes) > d.period {
		d.closes = d.closes[1:]
	}
}

func (d *Donchian) Ready() bool { return len(d.closes) >= d.period }

// Upper is the highest close in the window.
func (d *Donchian) Upper() float64 {
	if !d.Ready() {
		return 0
	}
	hi := d.closes[0]
	for _, c := range d.closes[1:] {
		if c > hi {
			hi = c
		}
	}
	return hi
}

// Lower is the lowest close in the window.
func (d *Donchian) Lower() float64 {
	if !d.Ready() {
		return 0
	}
	lo := d.closes[0]
	for _, c := range d.closes[1:] {
		if c < lo {
			lo = c
		}
	}
	return lo
}

func (d *Donchian) Value() float64 {
	if !d.Ready() {
		return 0
	}
	return (d.Upper() + d.Lower()) / 2
}
