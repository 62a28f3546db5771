// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS decisions (
	decision_id TEXT PRIMARY KEY,
	account TEXT NOT NULL,
	symbol TEXT NOT NULL,
	at DATETIME NOT NULL,
	approved INTEGER NOT NULL,
	reason TEXT NOT NULL,
	message TEXT NOT NULL,
	proposed_risk_r REAL NOT NULL,
	effective_risk_r REAL NOT NULL,
	commitment_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS closes (
	commitment_id TEXT PRIMARY KEY,
	account TEXT NOT NULL,
	symbol TEXT NOT NULL,
	risk_r REAL NOT NULL,
	opened_at DATETIME NOT NULL,
	closed_at DATETIME NOT NULL,
	pnl_r REAL NOT NULL,
	pnl_dollars REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS risk_snapshots (
	at DATETIME NOT NULL,
	account TEXT NOT NULL,
	daily_pnl_r REAL NOT NULL,
	daily_pnl_dollars REAL NOT NULL,
	trade_count INTEGER NOT NULL,
	active_trades INTEGER NOT NULL,
	active_risk_r REAL NOT NULL,
	risk_utilization REAL NOT NULL,
	drawdown_r REAL NOT NULL,
	risk_reduction_active INTEGER NOT NULL,
	can_trade INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_at ON decisions(at);
CREATE INDEX IF NOT EXISTS idx_closes_closed_at ON closes(closed_at);
CREATE INDEX IF NOT EXISTS idx_risk_snapshots_at ON risk_snapshots(at);
`
