package risk

import "math"

// Inputs for volatility position sizing.
type Inputs struct {
	Equity     float64
	RiskFactor float64 // fraction of equity per ATR move, e.g. 0.002
	ATR        float64
	PointValue float64
}

type Result struct {
	Units           float64
	RiskAmount      float64
	RiskPerContract float64
}

// Calculate sizes a position so that one ATR move costs RiskFactor of
// equity: floor(equity*risk / (ATR*pointValue)). Units is zero when the
// inputs can not produce a size.
func Calculate(in Inputs) Result {
	riskAmt := in.Equity * in.RiskFactor
	perContract := in.ATR * in.PointValue
	if riskAmt <= 0 || perContract <= 0 {
		return Result{RiskAmount: math.Max(riskAmt, 0), RiskPerContract: perContract}
	}
	return Result{
		Units:           math.Floor(riskAmt / perContract),
		RiskAmount:      riskAmt,
		RiskPerContract: perContract,
	}
}
