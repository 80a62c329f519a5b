package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/sectortrader/journal"
	"github.com/rustyeddy/sectortrader/market"
)

type buffer struct {
	bytes.Buffer
	closes int
}

func (b *buffer) Close() error {
	b.closes++
	return nil
}

func lines(b *buffer) []string {
	return strings.Split(strings.TrimSpace(b.String()), "\n")
}

var t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func TestEmitterPositions(t *testing.T) {
	pos, eq, ret := &buffer{}, &buffer{}, &buffer{}
	e := NewEmitter([]string{"rates", "energy"}, pos, eq, ret)
	assert.Equal(t, []string{"energy", "rates"}, e.Sectors())

	require.NoError(t, e.Positions(t0, map[string]Counts{
		"energy": {Long: 1, Short: 2},
		"rates":  {Long: 3},
	}))
	require.NoError(t, e.Positions(t0.AddDate(0, 0, 1), nil))

	assert.Equal(t, []string{
		"Datetime,energy-Long,energy-Short,rates-Long,rates-Short,Total-Long,Total-Short",
		"2024-01-02 00:00:00,1,2,3,0,4,2",
		"2024-01-03 00:00:00,0,0,0,0,0,0",
	}, lines(pos))
	assert.Empty(t, eq.String())
}

func TestEmitterEquityAndReturns(t *testing.T) {
	pos, eq, ret := &buffer{}, &buffer{}, &buffer{}
	e := NewEmitter([]string{"b", "a"}, pos, eq, ret)

	require.NoError(t, e.Equity(t0, map[string]Value{
		"a": {Equity: 1000000, Margin: 2500.5},
		"b": {Equity: 999990.126, Margin: 0},
	}, Value{Equity: 999990.126, Margin: 2500.5}))

	require.NoError(t, e.Returns(map[string]Return{
		"a": {Long: 1.26, Short: -0.54, Total: 0.72},
		"b": {Long: 0, Short: 0, Total: 0},
	}, Return{Long: 1.26, Short: -0.54, Total: 0.72}))

	assert.Equal(t, []string{
		"Datetime,a-Equity,a-Margin,b-Equity,b-Margin,Total-Equity,Total-Margin",
		"2024-01-02 00:00:00,1000000.00,2500.50,999990.13,0.00,999990.13,2500.50",
	}, lines(eq))
	assert.Equal(t, []string{
		"a-Long%,a-Short%,a-Total%,b-Long%,b-Short%,b-Total%,Total-Long%,Total-Short%,Total%",
		"1.3,-0.5,0.7,0.0,0.0,0.0,1.3,-0.5,0.7",
	}, lines(ret))
}

func TestEmitterCloseOnce(t *testing.T) {
	pos, eq, ret := &buffer{}, &buffer{}, &buffer{}
	e := NewEmitter([]string{"a"}, pos, eq, ret)

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	assert.True(t, e.closed)
	assert.Equal(t, 1, pos.closes)
	assert.Equal(t, 1, eq.closes)
	assert.Equal(t, 1, ret.closes)

	assert.ErrorIs(t, e.Positions(t0, nil), ErrClosed)
	assert.ErrorIs(t, e.Equity(t0, nil, Value{}), ErrClosed)
	assert.ErrorIs(t, e.Returns(nil, Return{}), ErrClosed)
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	e, err := Create([]string{"x"}, Paths{
		Positions: filepath.Join(dir, "pos.csv"),
		Equity:    filepath.Join(dir, "eq.csv"),
	})
	require.NoError(t, err)
	require.NoError(t, e.Positions(t0, map[string]Counts{"x": {Long: 1}}))
	require.NoError(t, e.Returns(nil, Return{}))
	require.NoError(t, e.Close())

	data, err := os.ReadFile(filepath.Join(dir, "pos.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "x-Long,x-Short")

	_, err = os.Stat(filepath.Join(dir, "eq.csv"))
	assert.NoError(t, err)

	_, err = Create(nil, Paths{Positions: filepath.Join(dir, "missing", "pos.csv")})
	assert.Error(t, err)
}

func TestLedgerSortsStableAndTotals(t *testing.T) {
	db, err := market.NewInstrumentDB(
		market.Instrument{Symbol: "CL", Description: "Crude Oil", PointValue: 1000},
		market.Instrument{Symbol: "GC", Description: "Gold", PointValue: 100},
	)
	require.NoError(t, err)

	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	trades := []journal.TradeRecord{
		{Symbol: "GC", Units: 1, EntryTime: d2, EntryPrice: 2000, ExitTime: d2.AddDate(0, 0, 5), ExitPrice: 2010, Commissions: 5, PointValue: 100},
		{Symbol: "CL", Units: -2, EntryTime: d1, EntryPrice: 75.5, ExitTime: d2, ExitPrice: 75, Commissions: 10, PointValue: 1000},
		{Symbol: "ZZ", Units: 1, EntryTime: d2, EntryPrice: 10, ExitTime: d2.AddDate(0, 0, 1), ExitPrice: 9, Commissions: 0, PointValue: 1},
	}

	var buf bytes.Buffer
	total, err := Ledger{Instruments: db}.Write(&buf, trades)
	require.NoError(t, err)

	// CL: 2*0.5*1000-10 = 990, GC: 10*100-5 = 995, ZZ: -1
	assert.True(t, decimal.NewFromInt(1984).Equal(total), total.String())

	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, got, 4)
	assert.Equal(t, "description,symbol,units,entryDate,entryPrice,exitDate,exitPrice,commissions,netProfitLoss", got[0])
	assert.Equal(t, "Crude Oil,CL,-2,2024-01-01 00:00:00,75.500000,2024-01-02 00:00:00,75.000000,10.00,990.00", got[1])
	assert.True(t, strings.HasPrefix(got[2], "Gold,GC,1,"))
	assert.True(t, strings.HasPrefix(got[3], "ZZ,ZZ,1,"))

	// input is left untouched
	assert.Equal(t, "GC", trades[0].Symbol)
}

func TestLedgerFinancing(t *testing.T) {
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	held := d1.AddDate(0, 0, 73)
	trades := []journal.TradeRecord{
		{Symbol: "GC", Units: 1, EntryTime: d1, EntryPrice: 2000, ExitTime: held, ExitPrice: 2010, Commissions: 5, PointValue: 100},
		{Symbol: "CL", Units: -2, EntryTime: d1, EntryPrice: 75.5, ExitTime: held, ExitPrice: 75, Commissions: 10, PointValue: 1000},
	}

	var buf bytes.Buffer
	total, err := Ledger{YearlyAdjustment: 0.05}.Write(&buf, trades)
	require.NoError(t, err)

	// 73 days is a fifth of a year
	// GC: 995 - 200000*0.05/5 = -1005, CL: 990 - 151000*0.05/5 = -520
	assert.InDelta(t, -1525.0, total.InexactFloat64(), 1e-6)

	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, got, 3)
	assert.True(t, strings.HasSuffix(got[1], ",5.00,-1005.00"), got[1])
	assert.True(t, strings.HasSuffix(got[2], ",10.00,-520.00"), got[2])

	assert.True(t, decimal.NewFromInt(1985).Equal(TradeProfit(trades)))
}

func TestTotals(t *testing.T) {
	var tot Totals
	assert.False(t, tot.LedgerWritten())

	tot.SetNetProfit(1984.004)
	tot.SetTradeProfit(decimal.NewFromInt(1984))
	assert.True(t, tot.LedgerWritten())
	assert.True(t, tot.Reconciled())
	assert.InDelta(t, -0.004, tot.Drift(), 1e-9)

	tot.SetTradeProfit(decimal.NewFromInt(1990))
	assert.False(t, tot.Reconciled())
}
