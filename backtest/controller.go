package backtest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/rustyeddy/sectortrader/analyzer"
	"github.com/rustyeddy/sectortrader/broker"
	"github.com/rustyeddy/sectortrader/journal"
	"github.com/rustyeddy/sectortrader/report"
)

// Options configures a Controller. Only StartingCash is required.
type Options struct {
	StartingCash float64

	// Emitter receives the positions, equity and returns rows. nil
	// discards them.
	Emitter *report.Emitter

	// Instruments describes symbols in the trade ledger.
	Instruments InstrumentDB

	// YearlyAdjustment is the annual financing rate charged in the ledger's
	// net profit column. Trade profit is reconciled before financing.
	YearlyAdjustment float64

	// DrawDown defaults to an analyzer.DrawDown.
	DrawDown DrawDownTracker

	// Journal, when set, archives equity rows and ledger trades under RunID.
	Journal journal.Journal
	RunID   string

	Logger *slog.Logger
}

// Controller runs sector groups through the trading lifecycle and owns
// the run's reports.
type Controller struct {
	groups       []*RunGroup
	startingCash float64

	clock     Clock
	lifecycle *Lifecycle
	account   Consolidator
	emitter   *report.Emitter
	dd        DrawDownTracker
	insts     InstrumentDB
	financing float64
	journal   journal.Journal
	runID     string
	log       *slog.Logger

	ran        bool
	feedStart  time.Time
	tradeStart time.Time
	tradeEnd   time.Time
	netProfit  float64
	totals     report.Totals
}

func NewController(groups []*RunGroup, opts Options) (*Controller, error) {
	if opts.StartingCash <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCash, opts.StartingCash)
	}

	sorted := make([]*RunGroup, 0, len(groups))
	seen := make(map[string]bool, len(groups))
	for i, g := range groups {
		if g == nil || g.Feed == nil || g.Strategy == nil || g.Analyzer == nil {
			return nil, fmt.Errorf("%w: index %d", ErrNilGroup, i)
		}
		if seen[g.Sector] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSector, g.Sector)
		}
		seen[g.Sector] = true
		sorted = append(sorted, g)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sector < sorted[j].Sector })

	sectors := make([]string, len(sorted))
	for i, g := range sorted {
		sectors[i] = g.Sector
	}

	c := &Controller{
		groups:       sorted,
		startingCash: opts.StartingCash,
		clock:        Clock{groups: sorted},
		lifecycle:    NewLifecycle(opts.StartingCash),
		account:      Consolidator{groups: sorted, startingCash: opts.StartingCash},
		emitter:      opts.Emitter,
		dd:           opts.DrawDown,
		insts:        opts.Instruments,
		financing:    opts.YearlyAdjustment,
		journal:      opts.Journal,
		runID:        opts.RunID,
		log:          opts.Logger,
	}
	if c.emitter == nil {
		c.emitter = report.NewEmitter(sectors, nil, nil, nil)
	}
	if c.dd == nil {
		c.dd = &analyzer.DrawDown{}
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	c.dd.Attached(c)
	return c, nil
}

// Run steps every group from feedStart until tradeEnd. Trading starts at
// the first tick at or after tradeStart. The report outputs are closed on
// every return once the window has been validated.
func (c *Controller) Run(feedStart, tradeStart, tradeEnd time.Time) (err error) {
	if feedStart.After(tradeStart) || tradeStart.After(tradeEnd) {
		return fmt.Errorf("%w: feed %s trade %s end %s", ErrInvalidWindow,
			feedStart.Format(time.DateOnly), tradeStart.Format(time.DateOnly), tradeEnd.Format(time.DateOnly))
	}
	if c.ran {
		return ErrAlreadyRun
	}
	c.ran = true
	c.feedStart, c.tradeStart, c.tradeEnd = feedStart, tradeStart, tradeEnd

	defer func() {
		if cerr := c.emitter.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("backtest: close reports: %w", cerr)
		}
	}()

	c.log.Info("run starting",
		"sectors", len(c.groups),
		"feed_start", feedStart.Format(time.DateOnly),
		"trade_start", tradeStart.Format(time.DateOnly),
		"trade_end", tradeEnd.Format(time.DateOnly))

	if len(c.groups) == 0 {
		c.lifecycle.Close()
		return nil
	}

	c.clock.SetCursor(feedStart)

	var last time.Time
	tick, ok := c.clock.NextTick()
	for ok && tick.Before(tradeEnd) {
		if c.lifecycle.State() == Idle && !tick.Before(tradeStart) {
			if err := c.startTrading(tick); err != nil {
				return err
			}
		}

		if err := c.clock.AdvanceAll(tick); err != nil {
			return err
		}
		last = tick

		tick, ok = c.clock.NextTick()
		if c.lifecycle.State() == Trading && ok && tick.Before(tradeEnd) {
			if err := c.writeEquity(last); err != nil {
				return err
			}
			if err := c.writePositions(last); err != nil {
				return err
			}
			c.dd.BeforeOnBars(c)
		}
	}

	return c.finish(last)
}

// carrier is a TradeAnalyzer that keeps the open profit it was reset with.
type carrier interface {
	CarriedMarkToMarket() float64
}

func (c *Controller) startTrading(tick time.Time) error {
	if err := c.lifecycle.StartTrading(c.groups); err != nil {
		return err
	}
	for _, g := range c.groups {
		if a, ok := g.Analyzer.(carrier); ok && a.CarriedMarkToMarket() != 0 {
			c.log.Info("open profit carried into trading",
				"sector", g.Sector,
				"mark_to_market", a.CarriedMarkToMarket())
		}
	}
	c.log.Info("trading started", "tick", tick.Format(report.DateTimeFormat), "equity", c.Equity())
	return c.writePositions(tick)
}

func (c *Controller) finish(last time.Time) error {
	if c.lifecycle.State() == Idle {
		c.lifecycle.Close()
		c.log.Warn("run ended before trade start", "last_tick", last.Format(report.DateTimeFormat))
		return nil
	}

	if err := c.writePositions(last); err != nil {
		return err
	}
	for _, g := range c.groups {
		if err := g.Strategy.ExitPositions(); err != nil {
			return fmt.Errorf("sector %s: exit positions: %w", g.Sector, err)
		}
	}
	c.dd.BeforeOnBars(c)
	if err := c.writeEquity(last); err != nil {
		return err
	}
	if err := c.writeReturns(); err != nil {
		return err
	}
	c.lifecycle.Close()

	c.log.Info("trading closed",
		"tick", last.Format(report.DateTimeFormat),
		"equity", c.Equity(),
		"net_profit", c.netProfit)
	return nil
}

func (c *Controller) writePositions(t time.Time) error {
	counts := make(map[string]report.Counts, len(c.groups))
	for _, g := range c.groups {
		var n report.Counts
		for _, p := range g.Strategy.Positions() {
			if p.IsLong() {
				n.Long++
			} else {
				n.Short++
			}
		}
		counts[g.Sector] = n
	}
	return c.emitter.Positions(t, counts)
}

func (c *Controller) writeEquity(t time.Time) error {
	acct := c.account.Snapshot()
	sectors := make(map[string]report.Value, len(c.groups))
	for _, g := range c.groups {
		sectors[g.Sector] = report.Value{
			Equity: acct.SectorEquity[g.Sector],
			Margin: acct.SectorMargin[g.Sector],
		}
	}
	if err := c.emitter.Equity(t, sectors, report.Value{Equity: acct.TotalEquity, Margin: acct.TotalMargin}); err != nil {
		return err
	}

	if c.journal == nil {
		return nil
	}
	snap := journal.EquitySnapshot{
		RunID:      c.runID,
		Time:       t,
		Equity:     acct.TotalEquity,
		MarginUsed: acct.TotalMargin,
		FreeMargin: acct.TotalEquity - acct.TotalMargin,
	}
	if acct.TotalMargin > 0 {
		snap.MarginLevel = acct.TotalEquity / acct.TotalMargin * 100
	}
	if err := c.journal.RecordEquity(snap); err != nil {
		return fmt.Errorf("backtest: journal equity: %w", err)
	}
	return nil
}

func (c *Controller) writeReturns() error {
	sectors := make(map[string]report.Return, len(c.groups))
	var totalLong, totalProfit float64
	for _, g := range c.groups {
		start := c.lifecycle.StartingEquity(g.Sector)
		profit := g.Strategy.Result() - start

		var long float64
		for _, t := range g.Analyzer.TradeRecords() {
			if t.IsLong() {
				long += t.NetProfit(0)
			}
		}
		sectors[g.Sector] = report.Return{
			Long:  long / start * 100,
			Short: (profit - long) / start * 100,
			Total: profit / start * 100,
		}
		totalLong += long
		totalProfit += profit
	}

	c.netProfit = totalProfit
	c.totals.SetNetProfit(totalProfit)

	return c.emitter.Returns(sectors, report.Return{
		Long:  totalLong / c.startingCash * 100,
		Short: (totalProfit - totalLong) / c.startingCash * 100,
		Total: totalProfit / c.startingCash * 100,
	})
}

// AllTrades returns every group's closed trades sorted by entry time.
// Trades entered at the same time keep sector order.
func (c *Controller) AllTrades() []journal.TradeRecord {
	var all []journal.TradeRecord
	for _, g := range c.groups {
		all = append(all, g.Analyzer.TradeRecords()...)
	}
	report.SortByEntry(all)
	return all
}

// WriteTrades writes the trade ledger to w and records the trades' net
// profit before financing as the trade profit.
func (c *Controller) WriteTrades(w io.Writer) error {
	trades := c.AllTrades()
	ledger := report.Ledger{Instruments: c.insts, YearlyAdjustment: c.financing}
	financed, err := ledger.Write(w, trades)
	if err != nil {
		return fmt.Errorf("backtest: write ledger: %w", err)
	}
	c.totals.SetTradeProfit(report.TradeProfit(trades))
	if c.financing != 0 {
		c.log.Info("ledger financing applied",
			"yearly_adjustment", c.financing,
			"financed_profit", financed.InexactFloat64(),
			"trade_profit", c.TradeProfit())
	}

	if c.journal != nil {
		for _, t := range trades {
			t.RunID = c.runID
			if err := c.journal.RecordTrade(t); err != nil {
				return fmt.Errorf("backtest: journal trade %s: %w", t.TradeID, err)
			}
		}
	}

	if !c.totals.Reconciled() {
		c.log.Warn("trade profit does not match net profit",
			"trade_profit", c.TradeProfit(),
			"net_profit", c.netProfit,
			"drift", c.Drift())
	}
	return nil
}

// WriteAllTrades writes the trade ledger to path.
func (c *Controller) WriteAllTrades(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}
	return errors.Join(c.WriteTrades(f), f.Close())
}

// Equity is the consolidated account equity.
func (c *Controller) Equity() float64 { return c.account.Equity() }

func (c *Controller) Account() Account { return c.account.Snapshot() }

func (c *Controller) State() State { return c.lifecycle.State() }

// NetProfit is the equity derived profit, set when trading closes.
func (c *Controller) NetProfit() float64 { return c.netProfit }

// NetReturn is NetProfit as a fraction of starting cash.
func (c *Controller) NetReturn() float64 { return c.netProfit / c.startingCash }

// TradeProfit is the ledger total, set by WriteTrades.
func (c *Controller) TradeProfit() float64 { return c.totals.TradeProfit.InexactFloat64() }

// Drift is TradeProfit minus NetProfit.
// Drift is trade profit minus net profit, 0 until the ledger is written.
func (c *Controller) Drift() float64 {
	if !c.totals.LedgerWritten() {
		return 0
	}
	return c.totals.Drift()
}

func (c *Controller) DrawDown() DrawDownTracker { return c.dd }

// Brokers returns each sector's broker in sector order.
func (c *Controller) Brokers() []broker.Broker {
	out := make([]broker.Broker, len(c.groups))
	for i, g := range c.groups {
		out[i] = g.Strategy.Broker()
	}
	return out
}

func (c *Controller) Sectors() []string {
	out := make([]string, len(c.groups))
	for i, g := range c.groups {
		out[i] = g.Sector
	}
	return out
}

func (c *Controller) StartingCash() float64 { return c.startingCash }

func (c *Controller) RunID() string { return c.runID }
