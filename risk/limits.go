package risk

import (
	"fmt"
	"time"
)

// Limits is the account's configured risk budget. Immutable per evaluation;
// a hot reload swaps the whole struct between evaluations.
type Limits struct {
	MaxRiskPerTradePct float64       // fraction of equity risked at 1R, e.g. 0.02
	MaxDailyRiskPct    float64       // fraction of equity allowed at risk per day, e.g. 0.05
	DailyStopR         float64       // realized pnl floor in R, negative, e.g. -3.0
	MaxConcurrentR     float64       // cap on summed open risk in R
	DrawdownThresholdR float64       // trailing loss that engages the throttle; 0 disables
	DrawdownLookback   time.Duration // horizon of the trailing pnl window
}

// DailyBudgetR converts the percentage daily budget into R units: one R of
// realized loss consumes one per-trade risk unit of the daily percentage.
func (l Limits) DailyBudgetR() float64 {
	if l.MaxRiskPerTradePct <= 0 {
		return 0
	}
	return l.MaxDailyRiskPct / l.MaxRiskPerTradePct
}

func (l Limits) Validate() error {
	if l.MaxRiskPerTradePct <= 0 || l.MaxRiskPerTradePct > 1 {
		return fmt.Errorf("max_risk_per_trade_pct must be in (0, 1], got %v", l.MaxRiskPerTradePct)
	}
	if l.MaxDailyRiskPct < l.MaxRiskPerTradePct || l.MaxDailyRiskPct > 1 {
		return fmt.Errorf("max_daily_risk_pct must be in [max_risk_per_trade_pct, 1], got %v", l.MaxDailyRiskPct)
	}
	if l.DailyStopR >= 0 {
		return fmt.Errorf("daily_stop_r is a floor and must be negative, got %v", l.DailyStopR)
	}
	if l.MaxConcurrentR <= 0 {
		return fmt.Errorf("max_concurrent_r must be positive, got %v", l.MaxConcurrentR)
	}
	if l.DrawdownThresholdR < 0 {
		return fmt.Errorf("drawdown_threshold_r must be non-negative, got %v", l.DrawdownThresholdR)
	}
	if l.DrawdownThresholdR > 0 && l.DrawdownLookback <= 0 {
		return fmt.Errorf("drawdown_lookback is required when drawdown_threshold_r is set")
	}
	return nil
}

// DefaultLimits mirrors the production account setup.
func DefaultLimits() Limits {
	return Limits{
		MaxRiskPerTradePct: 0.02,
		MaxDailyRiskPct:    0.05,
		DailyStopR:         -3.0,
		MaxConcurrentR:     2.0,
		DrawdownThresholdR: 6.0,
		DrawdownLookback:   7 * 24 * time.Hour,
	}
}
