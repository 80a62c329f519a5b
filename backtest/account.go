package backtest

// Account is the consolidated view of every sector's broker.
type Account struct {
	TotalEquity  float64
	TotalMargin  float64
	SectorEquity map[string]float64
	SectorMargin map[string]float64
}

// Consolidator sums sector accounts into one. Each sector broker holds a
// full starting cash allocation so that position sizing sees the whole
// account; only one of those allocations is counted.
type Consolidator struct {
	groups       []*RunGroup
	startingCash float64
}

func (c Consolidator) Equity() float64 {
	var total float64
	for _, g := range c.groups {
		total += g.Strategy.Result()
	}
	if n := len(c.groups); n > 1 {
		total -= float64(n-1) * c.startingCash
	}
	return total
}

func (c Consolidator) Margin() float64 {
	var total float64
	for _, g := range c.groups {
		total += g.Strategy.Broker().Margin()
	}
	return total
}

func (c Consolidator) Snapshot() Account {
	a := Account{
		TotalEquity:  c.Equity(),
		TotalMargin:  c.Margin(),
		SectorEquity: make(map[string]float64, len(c.groups)),
		SectorMargin: make(map[string]float64, len(c.groups)),
	}
	for _, g := range c.groups {
		a.SectorEquity[g.Sector] = g.Strategy.Result()
		a.SectorMargin[g.Sector] = g.Strategy.Broker().Margin()
	}
	return a
}
