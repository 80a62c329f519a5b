package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/sectortrader/market"
	"github.com/ulikunitz/xz"
)

var barTimeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"20060102",
}

// LoadCSV reads daily bars from a CSV file:
//
//	date,open,high,low,close,volume[,open_interest]
//
// A header row is allowed. Files ending in .xz are decompressed on the
// fly. Rows are sorted by time before the series is built.
func LoadCSV(path, symbol string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("feed: xz %s: %w", path, err)
		}
		r = xr
	}

	bars, err := ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("feed: %s: %w", path, err)
	}
	return NewSeries(symbol, bars)
}

// ReadCSV parses bar rows from r and returns them sorted by time.
func ReadCSV(r io.Reader) ([]market.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		bars     []market.Bar
		sawFirst bool
		line     int
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		// Allow a single header row
		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "date") ||
				strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		b, err := parseBarRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, b)
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})
	return bars, nil
}

func parseBarRow(row []string) (market.Bar, error) {
	if len(row) < 5 {
		return market.Bar{}, fmt.Errorf("bad row (need at least date,open,high,low,close): %v", row)
	}

	t, err := parseBarTime(strings.TrimSpace(row[0]))
	if err != nil {
		return market.Bar{}, err
	}

	vals := make([]float64, 0, 6)
	for i := 1; i < len(row) && i <= 6; i++ {
		s := strings.TrimSpace(row[i])
		if s == "" {
			vals = append(vals, 0)
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return market.Bar{}, fmt.Errorf("bad number %q: %w", row[i], err)
		}
		vals = append(vals, v)
	}
	for len(vals) < 6 {
		vals = append(vals, 0)
	}

	b := market.Bar{
		Time:         t,
		Open:         vals[0],
		High:         vals[1],
		Low:          vals[2],
		Close:        vals[3],
		Volume:       vals[4],
		OpenInterest: vals[5],
	}
	if b.High < b.Low {
		return market.Bar{}, fmt.Errorf("high %f below low %f at %s", b.High, b.Low, row[0])
	}
	return b, nil
}

func parseBarTime(s string) (time.Time, error) {
	for _, layout := range barTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad time %q", s)
}
