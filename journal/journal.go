package journal

import "time"

// DecisionRecord is one admission decision, approved or rejected.
type DecisionRecord struct {
	ID             string
	Account        string
	Symbol         string
	At             time.Time
	Approved       bool
	Reason         string // empty when approved
	Message        string
	ProposedRiskR  float64
	EffectiveRiskR float64
	CommitmentID   string // empty when rejected
}

// CloseRecord is one completed trade released from the ledger.
type CloseRecord struct {
	CommitmentID string
	Account      string
	Symbol       string
	RiskR        float64
	OpenedAt     time.Time
	ClosedAt     time.Time
	PnLR         float64
	PnLDollars   float64
}

// RiskSnapshot is a point-in-time view of an account's risk state.
type RiskSnapshot struct {
	At                  time.Time
	Account             string
	DailyPnLR           float64
	DailyPnLDollars     float64
	TradeCount          int
	ActiveTrades        int
	ActiveRiskR         float64
	RiskUtilization     float64
	DrawdownR           float64
	RiskReductionActive bool
	CanTrade            bool
}

type Journal interface {
	RecordDecision(DecisionRecord) error
	RecordClose(CloseRecord) error
	RecordRisk(RiskSnapshot) error
	Close() error
}

// Nop discards every record. Used when journaling is disabled.
type Nop struct{}

func (Nop) RecordDecision(DecisionRecord) error { return nil }
func (Nop) RecordClose(CloseRecord) error       { return nil }
func (Nop) RecordRisk(RiskSnapshot) error       { return nil }
func (Nop) Close() error                        { return nil }
