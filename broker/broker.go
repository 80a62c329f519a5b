package broker

import (
	"time"
)

// Side: +1 long, -1 short
type Side int8

const (
	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	}
	return "flat"
}

// Broker is the accounting view of one sector's broker.
type Broker interface {
	Cash() float64
	SetCash(amount float64)
	Equity() float64
	Margin() float64
	LastMarkToMarket() float64
}

// Account summarizes a broker at its last mark.
type Account struct {
	Cash         float64
	Equity       float64
	MarginUsed   float64
	MarkToMarket float64
	Open         int
}

// FreeMargin is equity not tied up as margin.
func (a Account) FreeMargin() float64 {
	return a.Equity - a.MarginUsed
}

// Position is an open futures position. Units are signed: positive is
// long, negative is short.
type Position struct {
	TradeID    string
	Symbol     string
	Units      float64
	EntryPrice float64
	EntryTime  time.Time
	Stop       float64 // 0 means none
	Commission float64 // paid on entry
	PointValue float64
}

func (p Position) IsLong() bool { return p.Units > 0 }

func (p Position) Side() Side {
	if p.Units < 0 {
		return Short
	}
	return Long
}

// OpenPL is the unrealized profit of the position at mark.
func (p Position) OpenPL(mark float64) float64 {
	return p.Units * (mark - p.EntryPrice) * p.PointValue
}

// StopHit reports whether a bar trading between low and high reaches the
// resting stop.
func (p Position) StopHit(low, high float64) bool {
	if p.Stop == 0 {
		return false
	}
	if p.IsLong() {
		return low <= p.Stop
	}
	return high >= p.Stop
}
