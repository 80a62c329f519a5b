package sim

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rustyeddy/sectortrader/broker"
	"github.com/rustyeddy/sectortrader/journal"
	"github.com/rustyeddy/sectortrader/market"
	"github.com/rustyeddy/sectortrader/pkg/id"
)

var (
	ErrNoPrice        = errors.New("sim: no price")
	ErrPositionExists = errors.New("sim: position already open")
	ErrNoPosition     = errors.New("sim: no open position")
	ErrZeroUnits      = errors.New("sim: units must be non-zero")
)

// Close reasons recorded on trades.
const (
	ReasonStopLoss  = "StopLoss"
	ReasonExit      = "Exit"
	ReasonEndOfTest = "EndOfTest"
)

// Instruments resolves contract metadata.
type Instruments interface {
	Get(symbol string) (market.Instrument, error)
}

// Observer is notified when positions open and trades close.
type Observer interface {
	PositionOpened(p broker.Position)
	TradeClosed(rec journal.TradeRecord)
}

// Engine is a simulated futures broker for one sector. It fills market
// orders at the last close, triggers resting stops against each bar's
// range and marks open positions to the last close.
//
// Engine is not safe for concurrent use; the backtest drives it from a
// single goroutine.
type Engine struct {
	insts     Instruments
	cash      float64
	positions map[string]*broker.Position
	marks     map[string]float64
	now       time.Time
	observers []Observer
}

var _ broker.Broker = (*Engine)(nil)

func NewEngine(cash float64, insts Instruments) *Engine {
	return &Engine{
		insts:     insts,
		cash:      cash,
		positions: make(map[string]*broker.Position),
		marks:     make(map[string]float64),
	}
}

// Observe registers an observer for opens and closes.
func (e *Engine) Observe(o Observer) {
	e.observers = append(e.observers, o)
}

// OnBars triggers resting stops hit by the bars, then marks every symbol
// to its close. It satisfies feed.Handler and must be subscribed ahead of
// the strategy that trades through this engine.
func (e *Engine) OnBars(bars market.Bars) error {
	e.now = bars.Time
	for _, sym := range bars.Symbols() {
		bar, _ := bars.Get(sym)

		if p, ok := e.positions[sym]; ok {
			if fill, hit := stopFill(*p, bar); hit {
				if err := e.closeAt(p, fill, bar.Time, ReasonStopLoss); err != nil {
					return err
				}
			}
		}
		e.marks[sym] = bar.Close
	}
	return nil
}

// Now is the time of the last bars seen.
func (e *Engine) Now() time.Time { return e.now }

// Mark returns the last close seen for symbol.
func (e *Engine) Mark(symbol string) (float64, bool) {
	m, ok := e.marks[symbol]
	return m, ok
}

// Open enters a new position at the last mark. stop may be 0.
func (e *Engine) Open(symbol string, units, stop float64) (broker.Position, error) {
	if units == 0 || math.IsNaN(units) {
		return broker.Position{}, ErrZeroUnits
	}
	if _, ok := e.positions[symbol]; ok {
		return broker.Position{}, fmt.Errorf("%w: %s", ErrPositionExists, symbol)
	}
	mark, ok := e.marks[symbol]
	if !ok {
		return broker.Position{}, fmt.Errorf("%w: %s", ErrNoPrice, symbol)
	}
	inst, err := e.insts.Get(symbol)
	if err != nil {
		return broker.Position{}, err
	}

	commission := Commission(units, inst)
	p := &broker.Position{
		TradeID:    id.NewAt(e.now),
		Symbol:     symbol,
		Units:      units,
		EntryPrice: mark,
		EntryTime:  e.now,
		Stop:       stop,
		Commission: commission,
		PointValue: inst.PointValue,
	}
	e.positions[symbol] = p
	e.cash -= commission

	for _, o := range e.observers {
		o.PositionOpened(*p)
	}
	return *p, nil
}

// SetStop moves the resting stop of an open position. 0 removes it.
func (e *Engine) SetStop(symbol string, stop float64) error {
	p, ok := e.positions[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPosition, symbol)
	}
	p.Stop = stop
	return nil
}

// Close exits the position in symbol at the last mark.
func (e *Engine) Close(symbol, reason string) error {
	p, ok := e.positions[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPosition, symbol)
	}
	mark, ok := e.marks[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPrice, symbol)
	}
	return e.closeAt(p, mark, e.now, reason)
}

// CloseAll exits every open position at the last marks, in symbol order.
func (e *Engine) CloseAll(reason string) error {
	for _, sym := range e.openSymbols() {
		if err := e.Close(sym, reason); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) closeAt(p *broker.Position, price float64, at time.Time, reason string) error {
	inst, err := e.insts.Get(p.Symbol)
	if err != nil {
		return err
	}

	exitCommission := Commission(p.Units, inst)
	rec := journal.TradeRecord{
		TradeID:     p.TradeID,
		Symbol:      p.Symbol,
		Units:       p.Units,
		EntryTime:   p.EntryTime,
		EntryPrice:  p.EntryPrice,
		ExitTime:    at,
		ExitPrice:   price,
		Commissions: p.Commission + exitCommission,
		PointValue:  p.PointValue,
		Reason:      reason,
	}

	e.cash += rec.GrossProfit() - exitCommission
	delete(e.positions, p.Symbol)

	for _, o := range e.observers {
		o.TradeClosed(rec)
	}
	return nil
}

// Position returns a copy of the open position in symbol.
func (e *Engine) Position(symbol string) (broker.Position, bool) {
	p, ok := e.positions[symbol]
	if !ok {
		return broker.Position{}, false
	}
	return *p, true
}

// Positions returns copies of all open positions keyed by symbol.
func (e *Engine) Positions() map[string]broker.Position {
	out := make(map[string]broker.Position, len(e.positions))
	for sym, p := range e.positions {
		out[sym] = *p
	}
	return out
}

func (e *Engine) Cash() float64 { return e.cash }

func (e *Engine) SetCash(amount float64) { e.cash = amount }

// LastMarkToMarket is the open profit of all positions at the last marks.
func (e *Engine) LastMarkToMarket() float64 {
	return UnrealizedPL(e.positions, e.marks)
}

// Equity is cash plus open profit.
func (e *Engine) Equity() float64 {
	return e.cash + e.LastMarkToMarket()
}

// Margin is the initial margin held against open positions.
func (e *Engine) Margin() float64 {
	var used float64
	for sym, p := range e.positions {
		inst, err := e.insts.Get(sym)
		if err != nil {
			continue
		}
		used += TradeMargin(p.Units, inst)
	}
	return used
}

func (e *Engine) Account() broker.Account {
	return broker.Account{
		Cash:         e.cash,
		Equity:       e.Equity(),
		MarginUsed:   e.Margin(),
		MarkToMarket: e.LastMarkToMarket(),
		Open:         len(e.positions),
	}
}

func (e *Engine) openSymbols() []string {
	out := make([]string, 0, len(e.positions))
	for sym := range e.positions {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
