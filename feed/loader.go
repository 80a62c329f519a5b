package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Data file formats accepted by LoadSeries.
const (
	FormatAuto    = "auto"
	FormatCSV     = "csv"
	FormatCSVXZ   = "csv.xz"
	FormatParquet = "parquet"
)

var autoOrder = []string{FormatParquet, FormatCSV, FormatCSVXZ}

// LoadSeries loads <dir>/<symbol>.<format>. With FormatAuto (or an empty
// format) the first existing file among parquet, csv and csv.xz wins.
func LoadSeries(dir, symbol, format string) (*Series, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" || format == FormatAuto {
		for _, f := range autoOrder {
			path := seriesPath(dir, symbol, f)
			if _, err := os.Stat(path); err == nil {
				return loadFormat(path, symbol, f)
			}
		}
		return nil, fmt.Errorf("feed: no data file for %s in %s", symbol, dir)
	}
	return loadFormat(seriesPath(dir, symbol, format), symbol, format)
}

func loadFormat(path, symbol, format string) (*Series, error) {
	switch format {
	case FormatCSV, FormatCSVXZ:
		return LoadCSV(path, symbol)
	case FormatParquet:
		return LoadParquet(path, symbol)
	default:
		return nil, fmt.Errorf("feed: unknown data format %q (supported: csv, csv.xz, parquet)", format)
	}
}

func seriesPath(dir, symbol, format string) string {
	return filepath.Join(dir, symbol+"."+format)
}

// LoadMultiFeed builds one sector's feed from the data files of symbols.
func LoadMultiFeed(dir string, symbols []string, format string) (*MultiFeed, error) {
	f := &MultiFeed{}
	for _, sym := range symbols {
		s, err := LoadSeries(dir, sym, format)
		if err != nil {
			return nil, err
		}
		if err := f.Register(s); err != nil {
			return nil, err
		}
	}
	return f, nil
}
