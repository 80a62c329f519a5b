package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatTradeOrg renders a TradeRecord as an Org-mode block. Structured
// facts go in the PROPERTIES drawer; the Review heading is left empty.
func FormatTradeOrg(t TradeRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Trade: %s %s (%s)\n", t.Sector, t.Symbol, shortID(t.TradeID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":TRADE_ID: %s\n", t.TradeID)
	fmt.Fprintf(&b, ":RUN_ID: %s\n", t.RunID)
	fmt.Fprintf(&b, ":SECTOR: %s\n", t.Sector)
	fmt.Fprintf(&b, ":SYMBOL: %s\n", t.Symbol)
	fmt.Fprintf(&b, ":UNITS: %.0f\n", t.Units)
	fmt.Fprintf(&b, ":ENTRY_PRICE: %f\n", t.EntryPrice)
	fmt.Fprintf(&b, ":EXIT_PRICE: %f\n", t.ExitPrice)
	fmt.Fprintf(&b, ":ENTRY_TIME: %s\n", t.EntryTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":EXIT_TIME: %s\n", t.ExitTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":COMMISSIONS: %.2f\n", t.Commissions)
	fmt.Fprintf(&b, ":NET_PROFIT: %.2f\n", t.NetProfit(0))
	fmt.Fprintf(&b, ":REASON: %s\n", t.Reason)
	b.WriteString(":END:\n\n")
	b.WriteString("*** Review\n- \n")
	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
