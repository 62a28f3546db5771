package risk

// PositionSize converts an account risk fraction into position units given
// the stop distance in price terms:
//
//	units = balance * riskPct / stopDistance
//
// A zero stop distance sizes to zero rather than dividing.
func PositionSize(balance, riskPct, stopDistance float64) float64 {
	if balance <= 0 || riskPct <= 0 || stopDistance <= 0 {
		return 0
	}
	return balance * riskPct / stopDistance
}

// RiskAmount is the account currency at risk for one trade at 1R.
func RiskAmount(balance, riskPct float64) float64 {
	if balance <= 0 || riskPct <= 0 {
		return 0
	}
	return balance * riskPct
}
