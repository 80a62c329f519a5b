package backtest

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/rustyeddy/sectortrader/analyzer"
	"github.com/rustyeddy/sectortrader/feed"
	"github.com/rustyeddy/sectortrader/market"
	"github.com/rustyeddy/sectortrader/sim"
	"github.com/rustyeddy/sectortrader/strategy"
)

// SetupOptions describes the sectors to build and where their data lives.
type SetupOptions struct {
	Sectors      map[string][]string
	DataDir      string
	DataFormat   string
	Instruments  *market.InstrumentDB
	StartingCash float64
	Strategy     strategy.Config
	Logger       *slog.Logger
}

// Setup builds one run group per sector: a feed over the sector's symbols,
// a sim broker with a full starting cash allocation, the trade analyzer
// observing that broker, and a breakout strategy.
func Setup(opts SetupOptions) ([]*RunGroup, error) {
	if opts.Instruments == nil {
		return nil, fmt.Errorf("backtest: setup needs instruments")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	sectors := make([]string, 0, len(opts.Sectors))
	for sec := range opts.Sectors {
		sectors = append(sectors, sec)
	}
	sort.Strings(sectors)

	groups := make([]*RunGroup, 0, len(sectors))
	for _, sec := range sectors {
		symbols := opts.Sectors[sec]
		for _, sym := range symbols {
			if _, err := opts.Instruments.Get(sym); err != nil {
				return nil, fmt.Errorf("sector %s: %w", sec, err)
			}
		}

		mf, err := feed.LoadMultiFeed(opts.DataDir, symbols, opts.DataFormat)
		if err != nil {
			return nil, fmt.Errorf("sector %s: %w", sec, err)
		}

		engine := sim.NewEngine(opts.StartingCash, opts.Instruments)
		trades := analyzer.NewTrades(sec)
		engine.Observe(trades)

		strat, err := strategy.NewBreakout(opts.Strategy, engine, opts.Instruments, log.With("sector", sec))
		if err != nil {
			return nil, err
		}
		strat.Attach(mf)

		log.Debug("sector ready", "sector", sec, "symbols", symbols, "variant", opts.Strategy.Variant())
		groups = append(groups, &RunGroup{
			Sector:   sec,
			Feed:     mf,
			Strategy: strat,
			Analyzer: trades,
		})
	}
	return groups, nil
}
