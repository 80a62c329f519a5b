// Package backtest drives several sector run groups through one shared
// clock, consolidates their accounts and writes the run's reports.
package backtest

import (
	"errors"
	"time"

	"github.com/rustyeddy/sectortrader/analyzer"
	"github.com/rustyeddy/sectortrader/broker"
	"github.com/rustyeddy/sectortrader/journal"
	"github.com/rustyeddy/sectortrader/market"
)

var (
	ErrInvalidWindow   = errors.New("backtest: feed start <= trade start <= trade end required")
	ErrInvalidCash     = errors.New("backtest: starting cash must be positive")
	ErrNilGroup        = errors.New("backtest: nil run group")
	ErrDuplicateSector = errors.New("backtest: duplicate sector")
	ErrAlreadyRun      = errors.New("backtest: controller already ran")
)

// Feed is a sector's merged bar stream.
type Feed interface {
	SetCursor(t time.Time)
	NextBarsDate() (time.Time, bool)
	Start(last time.Time) error
}

type Broker = broker.Broker

// Strategy trades one sector through its own broker.
type Strategy interface {
	Broker() broker.Broker
	Result() float64
	Positions() map[string]broker.Position
	ExitPositions() error
}

// TradeAnalyzer keeps a sector's closed trades.
type TradeAnalyzer interface {
	Reset(markToMarket float64) float64
	TradeRecords() []journal.TradeRecord
}

type EquitySource = analyzer.EquitySource

type DrawDownTracker interface {
	Attached(src EquitySource)
	BeforeOnBars(src EquitySource)
}

type InstrumentDB interface {
	Get(symbol string) (market.Instrument, error)
}

// RunGroup is one sector's feed, strategy and trade analyzer.
type RunGroup struct {
	Sector   string
	Feed     Feed
	Strategy Strategy
	Analyzer TradeAnalyzer
}
