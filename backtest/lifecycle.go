package backtest

import (
	"fmt"
)

type State int

const (
	Idle State = iota
	Trading
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Trading:
		return "trading"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Lifecycle moves one way through Idle, Trading and Closed.
type Lifecycle struct {
	state          State
	startingCash   float64
	startingEquity map[string]float64
}

func NewLifecycle(startingCash float64) *Lifecycle {
	return &Lifecycle{startingCash: startingCash}
}

func (l *Lifecycle) State() State { return l.state }

// StartTrading resets each group's broker to the starting cash less the
// entry commission of positions carried in from warm-up, and records the
// starting equity of each sector.
func (l *Lifecycle) StartTrading(groups []*RunGroup) error {
	if l.state != Idle {
		return fmt.Errorf("backtest: start trading from %s", l.state)
	}
	l.startingEquity = make(map[string]float64, len(groups))
	for _, g := range groups {
		b := g.Strategy.Broker()
		commission := g.Analyzer.Reset(b.LastMarkToMarket())
		b.SetCash(l.startingCash - commission)
		l.startingEquity[g.Sector] = l.startingCash
	}
	l.state = Trading
	return nil
}

// Close ends the lifecycle from either Idle or Trading.
func (l *Lifecycle) Close() {
	l.state = Closed
}

// StartingEquity is the sector's equity when trading began.
func (l *Lifecycle) StartingEquity(sector string) float64 {
	return l.startingEquity[sector]
}
