package risk

import "fmt"

// ThrottleFactor halves newly approved risk while the drawdown throttle is
// engaged. Soft degradation: trades keep flowing at reduced size instead of
// stopping outright.
const ThrottleFactor = 0.5

// Denial codes, stable for machine consumption.
const (
	CodeDailyStopHit           = "DailyStopHit"
	CodeConcurrentRiskExceeded = "ConcurrentRiskExceeded"
	CodeDailyRiskExceeded      = "DailyRiskExceeded"
)

// GateDecision is the outcome of evaluating a proposed trade against a
// ledger view. Denials are decision values, not errors.
type GateDecision struct {
	Allowed        bool
	Code           string // denial code, empty when allowed
	Message        string
	ProposedRiskR  float64
	EffectiveRiskR float64 // possibly throttled; zero when denied
	ThrottleActive bool
}

func (d *GateDecision) deny(code, msg string) {
	d.Allowed = false
	d.Code = code
	d.Message = msg
	d.EffectiveRiskR = 0
}

// Evaluate runs the risk gate against a consistent snapshot. Pure function:
// the throttle state is read from the same view, so it engages and
// disengages with the trailing window and needs no manual reset.
func Evaluate(v View, proposedRiskR float64) GateDecision {
	d := GateDecision{
		Allowed:        true,
		ProposedRiskR:  proposedRiskR,
		ThrottleActive: v.RiskReductionActive,
	}

	d.EffectiveRiskR = proposedRiskR
	if v.RiskReductionActive {
		d.EffectiveRiskR = proposedRiskR * ThrottleFactor
	}

	if !v.CanTrade {
		d.deny(CodeDailyStopHit,
			fmt.Sprintf("daily realized %.2fR at or below stop %.2fR", v.DailyPnLR, v.DailyStopR))
		return d
	}
	if v.ActiveRiskR+d.EffectiveRiskR > v.MaxConcurrentR {
		d.deny(CodeConcurrentRiskExceeded,
			fmt.Sprintf("open risk %.2fR + %.2fR exceeds max concurrent %.2fR",
				v.ActiveRiskR, d.EffectiveRiskR, v.MaxConcurrentR))
		return d
	}
	if v.DailyRiskUsedR+d.EffectiveRiskR > v.DailyBudgetR {
		d.deny(CodeDailyRiskExceeded,
			fmt.Sprintf("daily risk used %.2fR + %.2fR exceeds daily budget %.2fR",
				v.DailyRiskUsedR, d.EffectiveRiskR, v.DailyBudgetR))
		return d
	}

	return d
}
