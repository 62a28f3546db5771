// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	decisions  *csv.Writer
	closes     *csv.Writer
	risk       *csv.Writer
	df, cf, rf *os.File
}

func NewCSV(decisionsPath, closesPath, riskPath string) (*CSVJournal, error) {
	df, err := os.Create(decisionsPath)
	if err != nil {
		return nil, err
	}
	cf, err := os.Create(closesPath)
	if err != nil {
		df.Close()
		return nil, err
	}
	rf, err := os.Create(riskPath)
	if err != nil {
		df.Close()
		cf.Close()
		return nil, err
	}

	dw := csv.NewWriter(df)
	cw := csv.NewWriter(cf)
	rw := csv.NewWriter(rf)

	dw.Write([]string{"decision_id", "account", "symbol", "at", "approved", "reason", "message", "proposed_risk_r", "effective_risk_r", "commitment_id"})
	cw.Write([]string{"commitment_id", "account", "symbol", "risk_r", "opened_at", "closed_at", "pnl_r", "pnl_dollars"})
	rw.Write([]string{"at", "account", "daily_pnl_r", "daily_pnl_dollars", "trade_count", "active_trades", "active_risk_r", "risk_utilization", "drawdown_r", "risk_reduction_active", "can_trade"})

	for _, w := range []*csv.Writer{dw, cw, rw} {
		w.Flush()
		if err := w.Error(); err != nil {
			df.Close()
			cf.Close()
			rf.Close()
			return nil, err
		}
	}

	return &CSVJournal{decisions: dw, closes: cw, risk: rw, df: df, cf: cf, rf: rf}, nil
}

func (j *CSVJournal) RecordDecision(d DecisionRecord) error {
	j.decisions.Write([]string{
		d.ID,
		d.Account,
		d.Symbol,
		d.At.Format(time.RFC3339),
		strconv.FormatBool(d.Approved),
		d.Reason,
		d.Message,
		f(d.ProposedRiskR),
		f(d.EffectiveRiskR),
		d.CommitmentID,
	})
	j.decisions.Flush()
	return j.decisions.Error()
}

func (j *CSVJournal) RecordClose(c CloseRecord) error {
	j.closes.Write([]string{
		c.CommitmentID,
		c.Account,
		c.Symbol,
		f(c.RiskR),
		c.OpenedAt.Format(time.RFC3339),
		c.ClosedAt.Format(time.RFC3339),
		f(c.PnLR),
		f(c.PnLDollars),
	})
	j.closes.Flush()
	return j.closes.Error()
}

func (j *CSVJournal) RecordRisk(s RiskSnapshot) error {
	j.risk.Write([]string{
		s.At.Format(time.RFC3339),
		s.Account,
		f(s.DailyPnLR),
		f(s.DailyPnLDollars),
		strconv.Itoa(s.TradeCount),
		strconv.Itoa(s.ActiveTrades),
		f(s.ActiveRiskR),
		f(s.RiskUtilization),
		f(s.DrawdownR),
		strconv.FormatBool(s.RiskReductionActive),
		strconv.FormatBool(s.CanTrade),
	})
	j.risk.Flush()
	return j.risk.Error()
}

func (j *CSVJournal) Close() error {
	for _, w := range []*csv.Writer{j.decisions, j.closes, j.risk} {
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
	}
	for _, file := range []*os.File{j.df, j.cf, j.rf} {
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
