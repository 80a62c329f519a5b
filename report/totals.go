package report

import "github.com/shopspring/decimal"

// DriftTolerance is the largest difference between ledger profit and
// equity profit that still counts as reconciled.
const DriftTolerance = 0.01

// Totals holds the two independently derived profit figures of a run.
// NetProfit comes from sector equity, TradeProfit from the trade ledger.
type Totals struct {
	NetProfit   decimal.Decimal
	TradeProfit decimal.Decimal
	hasTrades   bool
}

func (t *Totals) SetNetProfit(v float64) {
	t.NetProfit = decimal.NewFromFloat(v)
}

func (t *Totals) SetTradeProfit(v decimal.Decimal) {
	t.TradeProfit = v
	t.hasTrades = true
}

// LedgerWritten reports whether TradeProfit has been set.
func (t *Totals) LedgerWritten() bool { return t.hasTrades }

// Drift is TradeProfit minus NetProfit.
func (t *Totals) Drift() float64 {
	return t.TradeProfit.Sub(t.NetProfit).InexactFloat64()
}

// Reconciled reports whether the drift is within DriftTolerance.
func (t *Totals) Reconciled() bool {
	return t.TradeProfit.Sub(t.NetProfit).Abs().LessThanOrEqual(decimal.NewFromFloat(DriftTolerance))
}
