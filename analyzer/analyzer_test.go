package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/sectortrader/broker"
	"github.com/rustyeddy/sectortrader/journal"
)

type fixedEquity float64

func (f fixedEquity) Equity() float64 { return float64(f) }

func TestTradesRecordsClosedWithSector(t *testing.T) {
	t.Parallel()

	a := NewTrades("rates")
	a.PositionOpened(broker.Position{Symbol: "TY", Units: 1, Commission: 1.5})
	assert.Equal(t, 1, a.OpenCount())

	a.TradeClosed(journal.TradeRecord{Symbol: "TY", Units: 1})
	recs := a.TradeRecords()
	assert.Len(t, recs, 1)
	assert.Equal(t, "rates", recs[0].Sector)
	assert.Equal(t, 0, a.OpenCount())
}

func TestTradesResetWhenFlat(t *testing.T) {
	t.Parallel()

	a := NewTrades("metals")
	a.PositionOpened(broker.Position{Symbol: "GC", Units: 1, Commission: 2.5})
	a.TradeClosed(journal.TradeRecord{Symbol: "GC", Units: 1})

	assert.Equal(t, 0.0, a.Reset(0))
	assert.Empty(t, a.TradeRecords())
}

func TestTradesResetReturnsOpenEntryCommission(t *testing.T) {
	t.Parallel()

	a := NewTrades("equity")
	a.PositionOpened(broker.Position{Symbol: "ES", Units: 2, Commission: 4})
	a.PositionOpened(broker.Position{Symbol: "NQ", Units: -1, Commission: 2})
	a.PositionOpened(broker.Position{Symbol: "YM", Units: 1, Commission: 1})
	a.TradeClosed(journal.TradeRecord{Symbol: "YM", Units: 1, ExitTime: time.Now()})

	assert.Equal(t, 6.0, a.Reset(1250))
	assert.Equal(t, 1250.0, a.CarriedMarkToMarket())
	assert.Empty(t, a.TradeRecords())
	assert.Equal(t, 2, a.OpenCount())
}

func TestDrawDown(t *testing.T) {
	t.Parallel()

	var dd DrawDown
	dd.Attached(fixedEquity(1000))
	assert.Equal(t, 1000.0, dd.Peak())

	for _, eq := range []float64{1100, 990, 1045, 1200, 1150} {
		dd.BeforeOnBars(fixedEquity(eq))
	}

	assert.Equal(t, 1200.0, dd.Peak())
	assert.Equal(t, 110.0, dd.Max())
	assert.InDelta(t, 10.0, dd.MaxPercent(), 1e-9)
	assert.Equal(t, 50.0, dd.Current())
	assert.Equal(t, 2, dd.LongestDuration())
	assert.Equal(t, 5, dd.Samples())

	dd.Attached(fixedEquity(500))
	assert.Equal(t, 0.0, dd.Max())
	assert.Equal(t, 0, dd.Samples())
}
