package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/rustyeddy/sectortrader/market"
)

// BarRecord is the Parquet schema for daily bar data.
type BarRecord struct {
	Symbol       string  `parquet:"symbol"`
	Timestamp    int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open         float64 `parquet:"open"`
	High         float64 `parquet:"high"`
	Low          float64 `parquet:"low"`
	Close        float64 `parquet:"close"`
	Volume       float64 `parquet:"volume"`
	OpenInterest float64 `parquet:"open_interest"`
}

// LoadParquet reads the bars for symbol from a Parquet file. Records with
// an empty symbol column are taken as belonging to symbol.
func LoadParquet(path, symbol string) (*Series, error) {
	records, err := parquet.ReadFile[BarRecord](path)
	if err != nil {
		return nil, fmt.Errorf("feed: parquet %s: %w", path, err)
	}

	bars := make([]market.Bar, 0, len(records))
	for _, r := range records {
		if r.Symbol != "" && r.Symbol != symbol {
			continue
		}
		bars = append(bars, market.Bar{
			Symbol:       symbol,
			Time:         time.UnixMilli(r.Timestamp).UTC(),
			Open:         r.Open,
			High:         r.High,
			Low:          r.Low,
			Close:        r.Close,
			Volume:       r.Volume,
			OpenInterest: r.OpenInterest,
		})
	}
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})
	return NewSeries(symbol, bars)
}

// WriteParquet writes bars to path, creating parent directories.
func WriteParquet(path string, bars []market.Bar) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	records := make([]BarRecord, len(bars))
	for i, b := range bars {
		records[i] = BarRecord{
			Symbol:       b.Symbol,
			Timestamp:    b.Time.UnixMilli(),
			Open:         b.Open,
			High:         b.High,
			Low:          b.Low,
			Close:        b.Close,
			Volume:       b.Volume,
			OpenInterest: b.OpenInterest,
		}
	}
	return parquet.WriteFile(path, records)
}
