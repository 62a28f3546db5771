package admission

import "time"

// Reason is a machine-readable rejection code surfaced to callers alongside
// a human-readable message. The risk codes match the risk gate's denial
// codes byte for byte.
type Reason string

const (
	ReasonOutsideSessionWindow   Reason = "OutsideSessionWindow"
	ReasonNewsBlackout           Reason = "NewsBlackout"
	ReasonVolatilityRegime       Reason = "VolatilityRegime"
	ReasonDailyStopHit           Reason = "DailyStopHit"
	ReasonConcurrentRiskExceeded Reason = "ConcurrentRiskExceeded"
	ReasonDailyRiskExceeded      Reason = "DailyRiskExceeded"
)

// Signal is a candidate trade as delivered by the signal source.
type Signal struct {
	Account       string
	Symbol        string
	Timestamp     time.Time // UTC instant the signal fired
	ProposedRiskR float64

	// ATRPercentile is optional context for the volatility regime filter;
	// nil skips that gate.
	ATRPercentile *float64
}

// TradeClose is a completed trade ready to release its budget.
type TradeClose struct {
	Account            string
	CommitmentID       string
	RealizedPnLR       float64
	RealizedPnLDollars float64
	ClosedAt           time.Time
}

// Decision is the admission outcome for one signal.
type Decision struct {
	ID             string // decision id, journal key
	Approved       bool
	Reason         Reason // empty when approved
	Message        string
	EffectiveRiskR float64 // possibly throttled; zero when rejected
	CommitmentID   string  // set when approved
	EvaluatedAt    time.Time
}

func rejected(id string, at time.Time, reason Reason, msg string) Decision {
	return Decision{
		ID:          id,
		Reason:      reason,
		Message:     msg,
		EvaluatedAt: at,
	}
}
