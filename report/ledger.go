package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/sectortrader/journal"
	"github.com/rustyeddy/sectortrader/market"
)

var ledgerHeader = []string{
	"description", "symbol", "units",
	"entryDate", "entryPrice", "exitDate", "exitPrice",
	"commissions", "netProfitLoss",
}

// Describer looks up an instrument's description for the ledger.
type Describer interface {
	Get(symbol string) (market.Instrument, error)
}

// Ledger writes closed trades as CSV.
type Ledger struct {
	Instruments Describer

	// YearlyAdjustment is an annual financing rate charged on each trade's
	// entry notional in the netProfitLoss column.
	YearlyAdjustment float64
}

// SortByEntry orders trades by entry time, keeping the input order of
// trades entered at the same time.
func SortByEntry(trades []journal.TradeRecord) {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].EntryTime.Before(trades[j].EntryTime)
	})
}

// TradeProfit is the exact sum of the trades' net profit before financing.
// It is the figure that reconciles with equity.
func TradeProfit(trades []journal.TradeRecord) decimal.Decimal {
	total := decimal.Zero
	for _, t := range trades {
		total = total.Add(decimal.NewFromFloat(t.NetProfit(0)))
	}
	return total
}

// Write sorts trades by entry and writes them to w. It returns the exact
// sum of the net profit column.
func (l Ledger) Write(w io.Writer, trades []journal.TradeRecord) (decimal.Decimal, error) {
	sorted := append([]journal.TradeRecord(nil), trades...)
	SortByEntry(sorted)

	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeader); err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, t := range sorted {
		net := t.NetProfit(l.YearlyAdjustment)
		total = total.Add(decimal.NewFromFloat(net))

		if err := cw.Write([]string{
			l.describe(t.Symbol),
			t.Symbol,
			fmt.Sprintf("%d", int64(t.Units)),
			t.EntryTime.Format(DateTimeFormat),
			fmt.Sprintf("%f", t.EntryPrice),
			t.ExitTime.Format(DateTimeFormat),
			fmt.Sprintf("%f", t.ExitPrice),
			money(t.Commissions),
			money(net),
		}); err != nil {
			return total, err
		}
	}
	cw.Flush()
	return total, cw.Error()
}

func (l Ledger) describe(symbol string) string {
	if l.Instruments == nil {
		return symbol
	}
	inst, err := l.Instruments.Get(symbol)
	if err != nil || inst.Description == "" {
		return symbol
	}
	return inst.Description
}
