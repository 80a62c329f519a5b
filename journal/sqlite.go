package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite archives runs, their trades and their equity curve.
type SQLite struct {
	db *sql.DB
}

var _ Journal = (*SQLite)(nil)

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, trade_id, sector, symbol, units, entry_time, entry_price, exit_time, exit_price, commissions, point_value, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.TradeID, t.Sector, t.Symbol, t.Units,
		t.EntryTime.UTC(), t.EntryPrice, t.ExitTime.UTC(), t.ExitPrice,
		t.Commissions, t.PointValue, t.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, time, equity, margin_used, free_margin, margin_level)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Time.UTC(), e.Equity, e.MarginUsed, e.FreeMargin, e.MarginLevel,
	)
	return err
}

// RecordRun stores the run summary, replacing an earlier one with the same ID.
func (j *SQLite) RecordRun(ctx context.Context, r BacktestRun) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
		(run_id, created, strategy, variant, sectors, feed_start, trade_start, trade_end,
		 starting_cash, ending_equity, net_profit, trade_profit, drift, return_pct,
		 max_dd, max_dd_pct, trades, wins, losses, config)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created.UTC(), r.Strategy, r.Variant, strings.Join(r.Sectors, ","),
		r.FeedStart.UTC(), r.TradeStart.UTC(), r.TradeEnd.UTC(),
		r.StartingCash, r.EndingEquity, r.NetProfit, r.TradeProfit, r.Drift, r.ReturnPct,
		r.MaxDD, r.MaxDDPct, r.Trades, r.Wins, r.Losses, string(r.Config),
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
