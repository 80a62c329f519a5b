// Package journal defines the closed trade record and archives backtest
// runs, their trades and their equity curves.
package journal

import (
	"math"
	"time"
)

const daysPerYear = 365.0

// TradeRecord is one closed round-trip trade.
type TradeRecord struct {
	RunID       string
	TradeID     string
	Sector      string
	Symbol      string
	Units       float64 // signed, positive is long
	EntryTime   time.Time
	EntryPrice  float64
	ExitTime    time.Time
	ExitPrice   float64
	Commissions float64 // entry and exit
	PointValue  float64
	Reason      string
}

func (t TradeRecord) IsLong() bool { return t.Units > 0 }

// GrossProfit is the price move times size, before costs.
func (t TradeRecord) GrossProfit() float64 {
	return t.Units * (t.ExitPrice - t.EntryPrice) * t.PointValue
}

// NetProfit is gross profit less commissions and a financing charge of
// yearlyAdjustment (an annual rate) on the entry notional, pro-rated over
// the holding period. NetProfit(0) is gross less commissions.
func (t TradeRecord) NetProfit(yearlyAdjustment float64) float64 {
	net := t.GrossProfit() - t.Commissions
	if yearlyAdjustment == 0 {
		return net
	}
	notional := math.Abs(t.Units) * t.EntryPrice * t.PointValue
	return net - notional*yearlyAdjustment*t.HeldDays()/daysPerYear
}

// HeldDays is the holding period in fractional days.
func (t TradeRecord) HeldDays() float64 {
	return t.ExitTime.Sub(t.EntryTime).Hours() / 24
}

// EquitySnapshot is one consolidated equity row.
type EquitySnapshot struct {
	RunID       string
	Time        time.Time
	Equity      float64
	MarginUsed  float64
	FreeMargin  float64
	MarginLevel float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}
