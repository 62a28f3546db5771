package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordDecision(d DecisionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO decisions
		(decision_id, account, symbol, at, approved, reason, message, proposed_risk_r, effective_risk_r, commitment_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Account, d.Symbol, d.At, d.Approved, d.Reason, d.Message,
		d.ProposedRiskR, d.EffectiveRiskR, d.CommitmentID,
	)
	return err
}

func (j *SQLite) RecordClose(c CloseRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO closes
		(commitment_id, account, symbol, risk_r, opened_at, closed_at, pnl_r, pnl_dollars)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.CommitmentID, c.Account, c.Symbol, c.RiskR,
		c.OpenedAt, c.ClosedAt, c.PnLR, c.PnLDollars,
	)
	return err
}

func (j *SQLite) RecordRisk(s RiskSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO risk_snapshots
		(at, account, daily_pnl_r, daily_pnl_dollars, trade_count, active_trades, active_risk_r, risk_utilization, drawdown_r, risk_reduction_active, can_trade)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.At, s.Account, s.DailyPnLR, s.DailyPnLDollars, s.TradeCount, s.ActiveTrades,
		s.ActiveRiskR, s.RiskUtilization, s.DrawdownR, s.RiskReductionActive, s.CanTrade,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
