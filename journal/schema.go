package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	strategy TEXT NOT NULL,
	variant TEXT NOT NULL,
	sectors TEXT NOT NULL,
	feed_start DATETIME NOT NULL,
	trade_start DATETIME NOT NULL,
	trade_end DATETIME NOT NULL,
	starting_cash REAL NOT NULL,
	ending_equity REAL NOT NULL,
	net_profit REAL NOT NULL,
	trade_profit REAL NOT NULL,
	drift REAL NOT NULL,
	return_pct REAL NOT NULL,
	max_dd REAL NOT NULL,
	max_dd_pct REAL NOT NULL,
	trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	config TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL,
	trade_id TEXT NOT NULL,
	sector TEXT NOT NULL,
	symbol TEXT NOT NULL,
	units REAL NOT NULL,
	entry_time DATETIME NOT NULL,
	entry_price REAL NOT NULL,
	exit_time DATETIME NOT NULL,
	exit_price REAL NOT NULL,
	commissions REAL NOT NULL,
	point_value REAL NOT NULL,
	reason TEXT NOT NULL,
	PRIMARY KEY (run_id, trade_id)
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	equity REAL NOT NULL,
	margin_used REAL NOT NULL,
	free_margin REAL NOT NULL,
	margin_level REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id, entry_time);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, time);
`
