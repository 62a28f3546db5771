package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// Stats summarizes closed trades the way the monitoring layer renders them.
type Stats struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64 // fraction, 0..1
	ProfitFactor  float64 // gross wins / gross losses in R
	TotalPnLR     float64
	ExpectancyR   float64 // mean pnl per trade in R
}

// GetDecision returns a single admission decision by ID.
func (j *SQLite) GetDecision(decisionID string) (DecisionRecord, error) {
	var rec DecisionRecord

	row := j.db.QueryRow(`
		SELECT decision_id, account, symbol, at, approved, reason, message, proposed_risk_r, effective_risk_r, commitment_id
		FROM decisions
		WHERE decision_id = ?`, decisionID)

	err := row.Scan(
		&rec.ID,
		&rec.Account,
		&rec.Symbol,
		&rec.At,
		&rec.Approved,
		&rec.Reason,
		&rec.Message,
		&rec.ProposedRiskR,
		&rec.EffectiveRiskR,
		&rec.CommitmentID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return DecisionRecord{}, fmt.Errorf("decision %q not found", decisionID)
		}
		return DecisionRecord{}, err
	}
	return rec, nil
}

// ListClosesBetween returns closed trades with closed_at within [start, end).
func (j *SQLite) ListClosesBetween(account string, start, end time.Time) ([]CloseRecord, error) {
	rows, err := j.db.Query(`
		SELECT commitment_id, account, symbol, risk_r, opened_at, closed_at, pnl_r, pnl_dollars
		FROM closes
		WHERE account = ? AND closed_at >= ? AND closed_at < ?
		ORDER BY closed_at ASC`, account, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CloseRecord
	for rows.Next() {
		var rec CloseRecord
		if err := rows.Scan(
			&rec.CommitmentID,
			&rec.Account,
			&rec.Symbol,
			&rec.RiskR,
			&rec.OpenedAt,
			&rec.ClosedAt,
			&rec.PnLR,
			&rec.PnLDollars,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// AccountStats aggregates closed trades for the account in [start, end).
func (j *SQLite) AccountStats(account string, start, end time.Time) (Stats, error) {
	closes, err := j.ListClosesBetween(account, start, end)
	if err != nil {
		return Stats{}, err
	}
	return computeStats(closes), nil
}

func computeStats(closes []CloseRecord) Stats {
	var s Stats
	var grossWinR, grossLossR float64

	for _, c := range closes {
		s.TotalTrades++
		s.TotalPnLR += c.PnLR
		if c.PnLR > 0 {
			s.WinningTrades++
			grossWinR += c.PnLR
		} else if c.PnLR < 0 {
			s.LosingTrades++
			grossLossR += -c.PnLR
		}
	}

	if s.TotalTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades)
		s.ExpectancyR = s.TotalPnLR / float64(s.TotalTrades)
	}
	if grossLossR > 0 {
		s.ProfitFactor = grossWinR / grossLossR
	}
	return s
}
