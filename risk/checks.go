package risk

import (
	"fmt"
	"math"
)

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Allowed    bool
	Violations []Violation

	PlannedRisk    float64
	PlannedRiskPct float64
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Evaluate checks a new entry against the policy.
func Evaluate(p Policy, intent TradeIntent, acct AccountSnapshot) Decision {
	d := Decision{Allowed: true}

	if intent.Units == 0 {
		d.add("NO_UNITS", "units must be non-zero")
		return d
	}

	if intent.Stop != 0 {
		d.PlannedRisk = PlannedRisk(intent.Units, intent.Entry, intent.Stop, intent.PointValue)
		d.PlannedRiskPct = RiskPct(d.PlannedRisk, acct.Equity)
	}

	if p.MaxOpenPositions > 0 && acct.Open >= p.MaxOpenPositions {
		d.add("TOO_MANY_OPEN_POSITIONS",
			fmt.Sprintf("open positions %d >= max %d", acct.Open, p.MaxOpenPositions))
	}

	if p.MaxMarginPct > 0 {
		after := acct.MarginUsed + math.Abs(intent.Units)*intent.Margin
		if acct.Equity <= 0 || after/acct.Equity > p.MaxMarginPct {
			d.add("MARGIN_TOO_HIGH",
				fmt.Sprintf("margin %.2f on equity %.2f exceeds max %.2f%%",
					after, acct.Equity, 100*p.MaxMarginPct))
		}
	}
	return d
}
