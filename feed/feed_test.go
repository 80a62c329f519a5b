package feed

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/rustyeddy/sectortrader/market"
)

func day(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func series(t *testing.T, symbol string, days ...int) *Series {
	t.Helper()
	bars := make([]market.Bar, len(days))
	for i, d := range days {
		px := float64(100 + d)
		bars[i] = market.Bar{Time: day(d), Open: px, High: px + 1, Low: px - 1, Close: px}
	}
	s, err := NewSeries(symbol, bars)
	require.NoError(t, err)
	return s
}

type recorder struct {
	groups []market.Bars
	err    error
}

func (r *recorder) OnBars(b market.Bars) error {
	r.groups = append(r.groups, b)
	return r.err
}

func TestNewSeriesRejectsOutOfOrder(t *testing.T) {
	t.Parallel()

	_, err := NewSeries("ES", []market.Bar{{Time: day(2)}, {Time: day(1)}})
	require.Error(t, err)

	_, err = NewSeries("ES", []market.Bar{{Time: day(2)}, {Time: day(2)}})
	require.Error(t, err)

	_, err = NewSeries("", nil)
	require.Error(t, err)
}

func TestMultiFeedNextBarsDateIsMinimum(t *testing.T) {
	t.Parallel()

	f, err := NewMultiFeed(series(t, "ES", 2, 4), series(t, "NQ", 1, 4))
	require.NoError(t, err)

	next, ok := f.NextBarsDate()
	require.True(t, ok)
	assert.Equal(t, day(1), next)

	// repeated calls do not move the cursor
	again, ok := f.NextBarsDate()
	require.True(t, ok)
	assert.Equal(t, next, again)
}

func TestMultiFeedStartEmitsGroupsUpToLast(t *testing.T) {
	t.Parallel()

	f, err := NewMultiFeed(series(t, "ES", 1, 2, 3), series(t, "NQ", 2, 3, 5))
	require.NoError(t, err)
	rec := &recorder{}
	f.Subscribe(rec)

	require.NoError(t, f.Start(day(2)))
	require.Len(t, rec.groups, 2)
	assert.Equal(t, []string{"ES"}, rec.groups[0].Symbols())
	assert.Equal(t, []string{"ES", "NQ"}, rec.groups[1].Symbols())
	assert.Equal(t, day(2), rec.groups[1].Time)

	next, ok := f.NextBarsDate()
	require.True(t, ok)
	assert.Equal(t, day(3), next)

	require.NoError(t, f.Start(day(10)))
	require.Len(t, rec.groups, 4)
	_, ok = f.NextBarsDate()
	assert.False(t, ok)
}

func TestMultiFeedSetCursorSkipsEarlierBars(t *testing.T) {
	t.Parallel()

	f, err := NewMultiFeed(series(t, "ES", 1, 2, 3, 4))
	require.NoError(t, err)
	f.SetCursor(day(3))

	next, ok := f.NextBarsDate()
	require.True(t, ok)
	assert.Equal(t, day(3), next)
}

func TestMultiFeedHandlersRunInOrderAndPropagateErrors(t *testing.T) {
	t.Parallel()

	f, err := NewMultiFeed(series(t, "ES", 1))
	require.NoError(t, err)

	var order []string
	f.Subscribe(HandlerFunc(func(market.Bars) error { order = append(order, "broker"); return nil }))
	f.Subscribe(HandlerFunc(func(market.Bars) error { order = append(order, "strategy"); return nil }))
	require.NoError(t, f.Start(day(1)))
	assert.Equal(t, []string{"broker", "strategy"}, order)

	g, err := NewMultiFeed(series(t, "ES", 1))
	require.NoError(t, err)
	boom := errors.New("boom")
	g.Subscribe(&recorder{err: boom})
	err = g.Start(day(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestMultiFeedDuplicateSymbol(t *testing.T) {
	t.Parallel()

	_, err := NewMultiFeed(series(t, "ES", 1), series(t, "ES", 2))
	assert.ErrorIs(t, err, ErrDuplicateSymbol)
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	data := `Date,Open,High,Low,Close,Volume,OpenInterest
2024-01-03,11,12,10,11.5,200,5
2024-01-02,10,11,9,10.5,100,4
`
	bars, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, day(2), bars[0].Time)
	assert.Equal(t, 10.5, bars[0].Close)
	assert.Equal(t, 4.0, bars[0].OpenInterest)
	assert.Equal(t, day(3), bars[1].Time)
}

func TestReadCSVErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "short row", data: "2024-01-02,1,2,3\n"},
		{name: "bad time", data: "yesterday,1,2,0,1\n"},
		{name: "bad number", data: "2024-01-02,1,x,0,1\n"},
		{name: "high below low", data: "2024-01-02,1,1,2,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadSeriesFormats(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rows := "date,open,high,low,close,volume\n2024-01-02,1,2,0.5,1.5,10\n2024-01-03,1.5,2.5,1,2,10\n"

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ES.csv"), []byte(rows), 0o644))

	xzf, err := os.Create(filepath.Join(dir, "NQ.csv.xz"))
	require.NoError(t, err)
	xw, err := xz.NewWriter(xzf)
	require.NoError(t, err)
	_, err = xw.Write([]byte(rows))
	require.NoError(t, err)
	require.NoError(t, xw.Close())
	require.NoError(t, xzf.Close())

	pqBars := []market.Bar{
		{Symbol: "GC", Time: day(2), Open: 1, High: 2, Low: 0.5, Close: 1.5},
		{Symbol: "GC", Time: day(3), Open: 1.5, High: 2.5, Low: 1, Close: 2},
	}
	require.NoError(t, WriteParquet(filepath.Join(dir, "GC.parquet"), pqBars))

	for _, sym := range []string{"ES", "NQ", "GC"} {
		s, err := LoadSeries(dir, sym, FormatAuto)
		require.NoError(t, err, sym)
		assert.Equal(t, 2, s.Len(), sym)
		first, ok := s.Peek()
		require.True(t, ok)
		assert.Equal(t, day(2), first, sym)
	}

	_, err = LoadSeries(dir, "CL", FormatAuto)
	assert.Error(t, err)
	_, err = LoadSeries(dir, "ES", "xlsx")
	assert.Error(t, err)
}

func TestLoadMultiFeed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rows := "2024-01-02,1,2,0.5,1.5,10\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ES.csv"), []byte(rows), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "NQ.csv"), []byte(rows), 0o644))

	f, err := LoadMultiFeed(dir, []string{"ES", "NQ"}, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"ES", "NQ"}, f.Symbols())
}
