// Package analyzer holds the per-sector trade analyzer and the drawdown
// tracker the backtest controller reports from.
package analyzer

import (
	"sort"

	"github.com/rustyeddy/sectortrader/broker"
	"github.com/rustyeddy/sectortrader/journal"
)

// Trades records the round trips of one sector's broker. It is attached
// to the broker as an observer.
type Trades struct {
	Sector string

	open    map[string]broker.Position
	closed  []journal.TradeRecord
	carried float64
}

func NewTrades(sector string) *Trades {
	return &Trades{
		Sector: sector,
		open:   make(map[string]broker.Position),
	}
}

func (a *Trades) PositionOpened(p broker.Position) {
	a.open[p.Symbol] = p
}

func (a *Trades) TradeClosed(rec journal.TradeRecord) {
	delete(a.open, rec.Symbol)
	rec.Sector = a.Sector
	a.closed = append(a.closed, rec)
}

// Reset starts the ledger over at the beginning of trading. Trades closed
// during warm-up are dropped; positions still open stay on the books and
// will be reported whole when they close. The returned amount is the entry
// commission already paid on those open positions, zero when flat.
// markToMarket is the broker's open profit at the reset point and is kept
// as CarriedMarkToMarket.
func (a *Trades) Reset(markToMarket float64) float64 {
	a.closed = nil
	a.carried = markToMarket

	var commission float64
	for _, sym := range a.openSymbols() {
		commission += a.open[sym].Commission
	}
	return commission
}

// CarriedMarkToMarket is the open profit that was already on the books
// when trading started.
func (a *Trades) CarriedMarkToMarket() float64 { return a.carried }

// TradeRecords returns the closed trades in close order.
func (a *Trades) TradeRecords() []journal.TradeRecord {
	out := make([]journal.TradeRecord, len(a.closed))
	copy(out, a.closed)
	return out
}

// OpenCount is the number of positions opened and not yet closed.
func (a *Trades) OpenCount() int { return len(a.open) }

func (a *Trades) openSymbols() []string {
	out := make([]string, 0, len(a.open))
	for s := range a.open {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
