package journal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"
)

// BacktestRun mirrors the runs table.
type BacktestRun struct {
	RunID    string
	Created  time.Time
	Strategy string
	Variant  string
	Sectors  []string
	Config   []byte

	FeedStart  time.Time
	TradeStart time.Time
	TradeEnd   time.Time

	StartingCash float64
	EndingEquity float64
	NetProfit    float64
	TradeProfit  float64
	Drift        float64
	ReturnPct    float64
	MaxDD        float64
	MaxDDPct     float64

	Trades int
	Wins   int
	Losses int
}

// WinRate is wins over trades, 0 with no trades.
func (r BacktestRun) WinRate() float64 {
	if r.Trades == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.Trades)
}

var runOrgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"join":   strings.Join,
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var runOrgTmpl = template.Must(template.New("run").Funcs(runOrgFuncs).Parse(RunOrgTemplate))

// FormatRunOrg renders the run as an Org-mode heading.
func FormatRunOrg(w io.Writer, r BacktestRun) error {
	return runOrgTmpl.Execute(w, r)
}

// WriteRunOrg writes the Org rendering of r to path.
func WriteRunOrg(path string, r BacktestRun) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := FormatRunOrg(f, r); err != nil {
		f.Close()
		return fmt.Errorf("journal: org: %w", err)
	}
	return f.Close()
}

const RunOrgTemplate = `* BACKTEST: {{.Strategy}} ({{.Variant}}) {{join .Sectors ", "}}
:PROPERTIES:
:RUN_ID:       {{.RunID}}
:STRATEGY:     {{.Strategy}}
:VARIANT:      {{.Variant}}
:SECTORS:      {{join .Sectors ","}}
:FEED_START:   {{.FeedStart.Format "2006-01-02"}}
:TRADE_START:  {{.TradeStart.Format "2006-01-02"}}
:TRADE_END:    {{.TradeEnd.Format "2006-01-02"}}
:START_CASH:   {{printf "%.2f" .StartingCash}}
:END_EQUITY:   {{printf "%.2f" .EndingEquity}}
:NET_PROFIT:   {{printf "%.2f" .NetProfit}}
:TRADE_PROFIT: {{printf "%.2f" .TradeProfit}}
:DRIFT:        {{printf "%.4f" .Drift}}
:RETURN_PCT:   {{printf "%.2f" .ReturnPct}}
:MAX_DD:       {{printf "%.2f" .MaxDD}}
:MAX_DD_PCT:   {{printf "%.2f" .MaxDDPct}}
:TRADES:       {{.Trades}}
:WINS:         {{.Wins}}
:LOSSES:       {{.Losses}}
:CREATED:      [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Net Profit:    *{{printf "%.2f" .NetProfit}}*
- Return:        *{{printf "%.2f" .ReturnPct}}%*
- Max Drawdown:  *{{printf "%.2f" .MaxDDPct}}%*
- Win Rate:      *{{printf "%.2f" (mul100 .WinRate)}}%*
{{- if .Config }}

** Configuration
#+begin_src yaml
{{printf "%s" .Config}}
#+end_src
{{- end }}
`
