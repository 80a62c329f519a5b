package backtest

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rustyeddy/sectortrader/journal"
)

type drawDownStats interface {
	Max() float64
	MaxPercent() float64
}

// Summary collects the run's results for the journal archive.
func (c *Controller) Summary(strategy, variant string, config []byte) journal.BacktestRun {
	r := journal.BacktestRun{
		RunID:        c.runID,
		Created:      time.Now().UTC(),
		Strategy:     strategy,
		Variant:      variant,
		Sectors:      c.Sectors(),
		Config:       config,
		FeedStart:    c.feedStart,
		TradeStart:   c.tradeStart,
		TradeEnd:     c.tradeEnd,
		StartingCash: c.startingCash,
		EndingEquity: c.Equity(),
		NetProfit:    c.netProfit,
		TradeProfit:  c.TradeProfit(),
		Drift:        c.Drift(),
		ReturnPct:    c.NetReturn() * 100,
	}
	if dd, ok := c.dd.(drawDownStats); ok {
		r.MaxDD = dd.Max()
		r.MaxDDPct = dd.MaxPercent()
	}
	for _, t := range c.AllTrades() {
		r.Trades++
		switch net := t.NetProfit(0); {
		case net > 0:
			r.Wins++
		case net < 0:
			r.Losses++
		}
	}
	return r
}

func PrintSummary(w io.Writer, r journal.BacktestRun) {
	rule := strings.Repeat("-", 50)
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, strings.Repeat("=", 50))

	fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	fmt.Fprintf(w, "Strategy:      %s (%s)\n", r.Strategy, r.Variant)
	fmt.Fprintf(w, "Sectors:       %s\n", strings.Join(r.Sectors, ", "))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Feed Start:    %s\n", r.FeedStart.Format(time.DateOnly))
	fmt.Fprintf(w, "Trade Start:   %s\n", r.TradeStart.Format(time.DateOnly))
	fmt.Fprintf(w, "Trade End:     %s\n", r.TradeEnd.Format(time.DateOnly))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Trades:        %d\n", r.Trades)
	fmt.Fprintf(w, "Wins:          %d\n", r.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", r.Losses)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", r.WinRate()*100)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Start Cash:    %.2f\n", r.StartingCash)
	fmt.Fprintf(w, "End Equity:    %.2f\n", r.EndingEquity)
	fmt.Fprintf(w, "Net Profit:    %.2f\n", r.NetProfit)
	fmt.Fprintf(w, "Trade Profit:  %.2f\n", r.TradeProfit)
	fmt.Fprintf(w, "Return:        %.2f%%\n", r.ReturnPct)
	if r.MaxDDPct > 0 {
		fmt.Fprintf(w, "Max Drawdown:  %.2f (%.2f%%)\n", r.MaxDD, r.MaxDDPct)
	}
	if r.Drift != 0 {
		fmt.Fprintf(w, "Drift:         %.4f\n", r.Drift)
	}
	fmt.Fprintln(w)
}
