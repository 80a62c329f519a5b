package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/sectortrader/market"
)

func closes(vals ...float64) []market.Bar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Bar, len(vals))
	for i, v := range vals {
		out[i] = market.Bar{Time: base.AddDate(0, 0, i), Open: v, High: v, Low: v, Close: v}
	}
	return out
}

var _ Indicator = (*SimpleMA)(nil)
var _ Indicator = (*ExponentialMA)(nil)
var _ Indicator = (*ATR)(nil)
var _ Indicator = (*Donchian)(nil)

func TestSimpleMAStreaming(t *testing.T) {
	bars := closes(102, 105, 106, 108, 110)

	t.Run("basic functionality", func(t *testing.T) {
		ma := NewMA(3)
		assert.Equal(t, "MA(3)", ma.Name())
		assert.Equal(t, 3, ma.Warmup())
		assert.False(t, ma.Ready())
		assert.Equal(t, 0.0, ma.Value())

		ma.Update(bars[0])
		ma.Update(bars[1])
		assert.False(t, ma.Ready())

		ma.Update(bars[2])
		assert.True(t, ma.Ready())
		assert.InDelta(t, (102.0+105.0+106.0)/3.0, ma.Value(), 0.001)

		ma.Update(bars[3])
		assert.InDelta(t, (105.0+106.0+108.0)/3.0, ma.Value(), 0.001)
	})

	t.Run("reset functionality", func(t *testing.T) {
		ma := NewMA(2)
		ma.Update(bars[0])
		ma.Update(bars[1])
		assert.True(t, ma.Ready())

		ma.Reset()
		assert.False(t, ma.Ready())
		assert.Equal(t, 0.0, ma.Value())
	})
}

func TestExponentialMAStreaming(t *testing.T) {
	bars := closes(102, 105, 106, 108, 110, 111)

	ema := NewEMA(3)
	assert.Equal(t, "EMA(3)", ema.Name())
	assert.Equal(t, 3, ema.Warmup())

	ema.Update(bars[0])
	ema.Update(bars[1])
	assert.False(t, ema.Ready())
	assert.Equal(t, 0.0, ema.Value())

	// seeded with the SMA of the first three closes
	ema.Update(bars[2])
	require.True(t, ema.Ready())
	assert.InDelta(t, 313.0/3.0, ema.Value(), 1e-9)

	want := 313.0 / 3.0
	for _, b := range bars[3:] {
		ema.Update(b)
		want += (b.Close - want) * 0.5
	}
	assert.InDelta(t, want, ema.Value(), 1e-9)
	assert.InDelta(t, 109.5417, ema.Value(), 0.001)

	ema.Reset()
	assert.False(t, ema.Ready())
}

func TestATR(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := []market.Bar{
		{Time: base, High: 10, Low: 10, Close: 10},
		{Time: base.AddDate(0, 0, 1), High: 12, Low: 9, Close: 11},
		{Time: base.AddDate(0, 0, 2), High: 13, Low: 10, Close: 12},
		{Time: base.AddDate(0, 0, 3), High: 15, Low: 11, Close: 14},
	}

	a := NewATR(2)
	assert.Equal(t, "ATR(2)", a.Name())
	assert.Equal(t, 3, a.Warmup())

	a.Update(bars[0])
	a.Update(bars[1])
	assert.False(t, a.Ready())

	a.Update(bars[2])
	require.True(t, a.Ready())
	assert.InDelta(t, 3.0, a.Value(), 1e-9)

	a.Update(bars[3])
	assert.InDelta(t, 3.5, a.Value(), 1e-9)

	a.Reset()
	assert.False(t, a.Ready())
	assert.Equal(t, 0.0, a.Value())
}

func TestDonchian(t *testing.T) {
	d := NewDonchian(3)
	for _, b := range closes(5, 9, 7) {
		d.Update(b)
	}
	require.True(t, d.Ready())
	assert.Equal(t, 9.0, d.Upper())
	assert.Equal(t, 5.0, d.Lower())
	assert.Equal(t, 7.0, d.Value())

	d.Update(closes(3)[0])
	assert.Equal(t, 9.0, d.Upper())
	assert.Equal(t, 3.0, d.Lower())
}
