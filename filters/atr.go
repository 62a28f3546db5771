package filters

import "fmt"

// ATRRegimeConfig bounds the acceptable volatility regime as an ATR
// percentile band. Signals outside the band are not worth taking: too quiet
// and targets do not get hit, too wild and stops get swept.
type ATRRegimeConfig struct {
	Enabled       bool
	MinPercentile float64
	MaxPercentile float64
}

// ATRRegime gates on the percentile of the signal's ATR versus recent
// history. Stateless; the percentile arrives on the signal.
type ATRRegime struct {
	cfg ATRRegimeConfig
}

func NewATRRegime(cfg ATRRegimeConfig) *ATRRegime {
	return &ATRRegime{cfg: cfg}
}

// Check reports whether the percentile sits inside the configured band.
func (f *ATRRegime) Check(percentile float64) (bool, string) {
	if !f.cfg.Enabled {
		return true, ""
	}
	if percentile < f.cfg.MinPercentile {
		return false, fmt.Sprintf("ATR too low: %.1fth percentile (min %.0f)", percentile, f.cfg.MinPercentile)
	}
	if percentile > f.cfg.MaxPercentile {
		return false, fmt.Sprintf("ATR too high: %.1fth percentile (max %.0f)", percentile, f.cfg.MaxPercentile)
	}
	return true, ""
}
