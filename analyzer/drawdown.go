package analyzer

// EquitySource is anything with a current equity figure, typically the
// backtest controller's consolidated account.
type EquitySource interface {
	Equity() float64
}

// DrawDown tracks the peak-to-trough decline of an equity curve sampled
// once per BeforeOnBars call.
type DrawDown struct {
	peak     float64
	current  float64
	max      float64
	maxPct   float64
	duration int
	longest  int
	samples  int
}

// Attached seeds the peak with the source's equity and clears history.
func (d *DrawDown) Attached(src EquitySource) {
	*d = DrawDown{peak: src.Equity()}
}

// BeforeOnBars samples the source's equity.
func (d *DrawDown) BeforeOnBars(src EquitySource) {
	eq := src.Equity()
	d.samples++

	if eq >= d.peak {
		d.peak = eq
		d.current = 0
		d.duration = 0
		return
	}

	d.current = d.peak - eq
	d.duration++
	if d.current > d.max {
		d.max = d.current
	}
	if d.peak > 0 {
		if pct := d.current / d.peak * 100; pct > d.maxPct {
			d.maxPct = pct
		}
	}
	if d.duration > d.longest {
		d.longest = d.duration
	}
}

// Peak is the highest equity seen.
func (d *DrawDown) Peak() float64 { return d.peak }

// Current is the decline from the peak at the last sample.
func (d *DrawDown) Current() float64 { return d.current }

// Max is the largest decline from a peak, in money.
func (d *DrawDown) Max() float64 { return d.max }

// MaxPercent is the largest decline as a percentage of its peak.
func (d *DrawDown) MaxPercent() float64 { return d.maxPct }

// LongestDuration is the longest run of samples spent below a peak.
func (d *DrawDown) LongestDuration() int { return d.longest }

// Samples is the number of BeforeOnBars calls since Attached.
func (d *DrawDown) Samples() int { return d.samples }
