package risk

// Policy bounds the exposure a sector strategy may take on.
// Zero values disable a limit.
type Policy struct {
	MaxMarginPct     float64 // margin used / equity, e.g. 0.5
	MaxOpenPositions int
}

type TradeIntent struct {
	Symbol     string
	Units      float64
	Entry      float64
	Stop       float64
	PointValue float64
	Margin     float64 // initial margin per contract
}

type AccountSnapshot struct {
	Equity     float64
	MarginUsed float64
	Open       int
}
