package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/giftchaps/phoenix-ea/filters"
	"github.com/giftchaps/phoenix-ea/risk"
	"github.com/giftchaps/phoenix-ea/session"
)

// Config is the complete engine configuration.
type Config struct {
	Account  AccountConfig             `json:"account" yaml:"account"`
	Limits   LimitsConfig              `json:"limits" yaml:"limits"`
	Sessions map[string][]WindowConfig `json:"sessions" yaml:"sessions"`
	Filters  FiltersConfig             `json:"filters,omitempty" yaml:"filters,omitempty"`
	Journal  JournalConfig             `json:"journal" yaml:"journal"`
	Metrics  MetricsConfig             `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// AccountConfig identifies the account and its reference timezone, which
// anchors the daily rollover boundary.
type AccountConfig struct {
	ID       string  `json:"id" yaml:"id"`
	Timezone string  `json:"timezone" yaml:"timezone"`
	Balance  float64 `json:"balance" yaml:"balance"`
}

// LimitsConfig is the risk budget in config form.
type LimitsConfig struct {
	MaxRiskPerTradePct float64 `json:"max_risk_per_trade_pct" yaml:"max_risk_per_trade_pct"`
	MaxDailyRiskPct    float64 `json:"max_daily_risk_pct" yaml:"max_daily_risk_pct"`
	DailyStopR         float64 `json:"daily_stop_r" yaml:"daily_stop_r"`
	MaxConcurrentR     float64 `json:"max_concurrent_r" yaml:"max_concurrent_r"`
	DrawdownThresholdR float64 `json:"drawdown_threshold_r" yaml:"drawdown_threshold_r"`
	DrawdownLookback   string  `json:"drawdown_lookback" yaml:"drawdown_lookback"` // e.g. "168h"
}

// WindowConfig is one trading session window in config form.
type WindowConfig struct {
	Name     string `json:"name" yaml:"name"`
	Start    string `json:"start" yaml:"start"` // "08:00"
	End      string `json:"end" yaml:"end"`     // "16:00"
	Timezone string `json:"timezone" yaml:"timezone"`
}

type FiltersConfig struct {
	NewsGuard NewsGuardConfig `json:"news_guard,omitempty" yaml:"news_guard,omitempty"`
	ATRRegime ATRRegimeConfig `json:"atr_regime,omitempty" yaml:"atr_regime,omitempty"`
}

type NewsGuardConfig struct {
	Enabled            bool     `json:"enabled" yaml:"enabled"`
	BlockMinutesBefore int      `json:"block_minutes_before" yaml:"block_minutes_before"`
	BlockMinutesAfter  int      `json:"block_minutes_after" yaml:"block_minutes_after"`
	Events             []string `json:"events,omitempty" yaml:"events,omitempty"`
	CalendarFile       string   `json:"calendar_file,omitempty" yaml:"calendar_file,omitempty"`
}

type ATRRegimeConfig struct {
	Enabled       bool    `json:"enabled" yaml:"enabled"`
	MinPercentile float64 `json:"min_percentile" yaml:"min_percentile"`
	MaxPercentile float64 `json:"max_percentile" yaml:"max_percentile"`
}

// JournalConfig selects the journal backend.
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	DecisionsFile string `json:"decisions_file,omitempty" yaml:"decisions_file,omitempty"`
	ClosesFile    string `json:"closes_file,omitempty" yaml:"closes_file,omitempty"`
	RiskFile      string `json:"risk_file,omitempty" yaml:"risk_file,omitempty"`
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr,omitempty" yaml:"addr,omitempty"` // ":9090"
}

// LoadFromFile loads configuration from a file (YAML or JSON based on
// content) and validates it. Configuration errors fail here, at load time.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves the configuration (YAML by extension, else JSON).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks every section. Windows and zones are built for real so a
// malformed window or unknown IANA name cannot survive to runtime.
func (c *Config) Validate() error {
	if c.Account.ID == "" {
		return fmt.Errorf("account.id is required")
	}
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if _, err := c.AccountZone(); err != nil {
		return err
	}
	if _, err := c.RiskLimits(); err != nil {
		return err
	}
	if _, err := c.SessionWindows(); err != nil {
		return err
	}
	if c.Filters.ATRRegime.Enabled {
		a := c.Filters.ATRRegime
		if a.MinPercentile < 0 || a.MaxPercentile > 100 || a.MinPercentile >= a.MaxPercentile {
			return fmt.Errorf("atr_regime percentiles must satisfy 0 <= min < max <= 100")
		}
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.DecisionsFile == "" || c.Journal.ClosesFile == "" || c.Journal.RiskFile == "" {
			return fmt.Errorf("journal decisions_file, closes_file and risk_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr required when metrics enabled")
	}
	return nil
}

// AccountZone loads the account's reference timezone.
func (c *Config) AccountZone() (*time.Location, error) {
	if c.Account.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Account.Timezone)
	if err != nil {
		return nil, fmt.Errorf("account.timezone: %w", err)
	}
	return loc, nil
}

// RiskLimits builds and validates the risk limit set.
func (c *Config) RiskLimits() (risk.Limits, error) {
	lookback, err := parseLookback(c.Limits.DrawdownLookback)
	if err != nil {
		return risk.Limits{}, err
	}
	l := risk.Limits{
		MaxRiskPerTradePct: c.Limits.MaxRiskPerTradePct,
		MaxDailyRiskPct:    c.Limits.MaxDailyRiskPct,
		DailyStopR:         c.Limits.DailyStopR,
		MaxConcurrentR:     c.Limits.MaxConcurrentR,
		DrawdownThresholdR: c.Limits.DrawdownThresholdR,
		DrawdownLookback:   lookback,
	}
	if err := l.Validate(); err != nil {
		return risk.Limits{}, fmt.Errorf("limits: %w", err)
	}
	return l, nil
}

func parseLookback(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("limits.drawdown_lookback: %w", err)
	}
	return d, nil
}

// SessionWindows builds the per-symbol window lists.
func (c *Config) SessionWindows() (map[string][]session.TimeWindow, error) {
	out := make(map[string][]session.TimeWindow, len(c.Sessions))
	for sym, wcs := range c.Sessions {
		for _, wc := range wcs {
			w, err := session.NewWindow(wc.Name, wc.Start, wc.End, wc.Timezone)
			if err != nil {
				return nil, fmt.Errorf("sessions[%s]: %w", sym, err)
			}
			out[sym] = append(out[sym], w)
		}
	}
	return out, nil
}

// NewsGuard builds the news guard config.
func (c *Config) NewsGuard() filters.NewsGuardConfig {
	ng := c.Filters.NewsGuard
	return filters.NewsGuardConfig{
		Enabled:       ng.Enabled,
		BlockBefore:   time.Duration(ng.BlockMinutesBefore) * time.Minute,
		BlockAfter:    time.Duration(ng.BlockMinutesAfter) * time.Minute,
		WatchedEvents: ng.Events,
	}
}

// ATRRegime builds the volatility regime config.
func (c *Config) ATRRegime() filters.ATRRegimeConfig {
	a := c.Filters.ATRRegime
	return filters.ATRRegimeConfig{
		Enabled:       a.Enabled,
		MinPercentile: a.MinPercentile,
		MaxPercentile: a.MaxPercentile,
	}
}

// Default returns a configuration with the production XAUUSD dual-session
// setup and the standard limit set.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:       "PHX-001",
			Timezone: "UTC",
			Balance:  10000,
		},
		Limits: LimitsConfig{
			MaxRiskPerTradePct: 0.02,
			MaxDailyRiskPct:    0.05,
			DailyStopR:         -3.0,
			MaxConcurrentR:     2.0,
			DrawdownThresholdR: 6.0,
			DrawdownLookback:   "168h",
		},
		Sessions: map[string][]WindowConfig{
			"XAUUSD": {
				{Name: "london", Start: "08:00", End: "16:00", Timezone: "Europe/London"},
				{Name: "new_york", Start: "08:00", End: "17:00", Timezone: "America/New_York"},
			},
		},
		Filters: FiltersConfig{
			NewsGuard: NewsGuardConfig{
				Enabled:            true,
				BlockMinutesBefore: 15,
				BlockMinutesAfter:  15,
				Events:             []string{"NFP", "CPI", "FOMC"},
			},
			ATRRegime: ATRRegimeConfig{
				Enabled:       false,
				MinPercentile: 40,
				MaxPercentile: 85,
			},
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./phoenix.db",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
	}
}
