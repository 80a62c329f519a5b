package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("journal: not found")

const runColumns = `run_id, created, strategy, variant, sectors, feed_start, trade_start, trade_end,
	starting_cash, ending_equity, net_profit, trade_profit, drift, return_pct,
	max_dd, max_dd_pct, trades, wins, losses, config`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (BacktestRun, error) {
	var (
		r       BacktestRun
		sectors string
		config  string
	)
	err := s.Scan(
		&r.RunID, &r.Created, &r.Strategy, &r.Variant, &sectors,
		&r.FeedStart, &r.TradeStart, &r.TradeEnd,
		&r.StartingCash, &r.EndingEquity, &r.NetProfit, &r.TradeProfit, &r.Drift, &r.ReturnPct,
		&r.MaxDD, &r.MaxDDPct, &r.Trades, &r.Wins, &r.Losses, &config,
	)
	if err != nil {
		return BacktestRun{}, err
	}
	if sectors != "" {
		r.Sectors = strings.Split(sectors, ",")
	}
	if config != "" {
		r.Config = []byte(config)
	}
	return r, nil
}

// GetRun returns the summary of one run.
func (j *SQLite) GetRun(ctx context.Context, runID string) (BacktestRun, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return BacktestRun{}, fmt.Errorf("%w: run %q", ErrNotFound, runID)
	}
	return r, err
}

// ListRuns returns up to limit runs, newest first. limit <= 0 returns all.
func (j *SQLite) ListRuns(ctx context.Context, limit int) ([]BacktestRun, error) {
	q := `SELECT ` + runColumns + ` FROM runs ORDER BY created DESC, run_id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BacktestRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListTradesByRun returns a run's trades ordered by entry time.
func (j *SQLite) ListTradesByRun(ctx context.Context, runID string) ([]TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, trade_id, sector, symbol, units, entry_time, entry_price,
		       exit_time, exit_price, commissions, point_value, reason
		FROM trades
		WHERE run_id = ?
		ORDER BY entry_time ASC, rowid ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.TradeID,
			&rec.Sector,
			&rec.Symbol,
			&rec.Units,
			&rec.EntryTime,
			&rec.EntryPrice,
			&rec.ExitTime,
			&rec.ExitPrice,
			&rec.Commissions,
			&rec.PointValue,
			&rec.Reason,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEquityByRun returns a run's equity curve in time order.
func (j *SQLite) ListEquityByRun(ctx context.Context, runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, time, equity, margin_used, free_margin, margin_level
		FROM equity
		WHERE run_id = ?
		ORDER BY time ASC, rowid ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Time, &e.Equity, &e.MarginUsed, &e.FreeMargin, &e.MarginLevel); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
