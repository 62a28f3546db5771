package cmd

import (
	"fmt"
	"os"

	"github.com/giftchaps/phoenix-ea/admission"
	"github.com/giftchaps/phoenix-ea/config"
	"github.com/giftchaps/phoenix-ea/filters"
	"github.com/giftchaps/phoenix-ea/journal"
	"github.com/giftchaps/phoenix-ea/risk"
	"github.com/giftchaps/phoenix-ea/session"
)

// configPath resolves -f/--config, falling back to PHOENIX_CONFIG.
func configPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("PHOENIX_CONFIG"); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("no config file: pass --config or set PHOENIX_CONFIG")
}

// buildJournal opens the configured journal backend.
func buildJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.DecisionsFile, cfg.Journal.ClosesFile, cfg.Journal.RiskFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.Nop{}, nil
	}
}

// buildService wires the admission service from a validated config. All
// accounts share the session gate and filters; each gets its own ledger.
func buildService(cfg *config.Config, j journal.Journal) (*admission.Service, error) {
	windows, err := cfg.SessionWindows()
	if err != nil {
		return nil, err
	}
	limits, err := cfg.RiskLimits()
	if err != nil {
		return nil, err
	}
	zone, err := cfg.AccountZone()
	if err != nil {
		return nil, err
	}

	sessions := session.NewGate(windows)

	var news *filters.NewsGuard
	if ngCfg := cfg.NewsGuard(); ngCfg.Enabled {
		news = filters.NewNewsGuard(ngCfg)
		if file := cfg.Filters.NewsGuard.CalendarFile; file != "" {
			events, err := filters.ReadCalendarFile(file)
			if err != nil {
				return nil, err
			}
			news.LoadCalendar(events)
		}
	}
	var atr *filters.ATRRegime
	if atrCfg := cfg.ATRRegime(); atrCfg.Enabled {
		atr = filters.NewATRRegime(atrCfg)
	}

	factory := func(account string) (*admission.Controller, error) {
		return admission.NewController(admission.ControllerConfig{
			Account:  account,
			Sessions: sessions,
			Ledger:   risk.NewLedger(limits, zone),
			News:     news,
			ATR:      atr,
			Journal:  j,
		})
	}

	return admission.NewService(cfg.Account.ID, factory), nil
}

func printDecision(dec admission.Decision) {
	if dec.Approved {
		fmt.Printf("✓ APPROVED  risk=%.2fR  commitment=%s\n", dec.EffectiveRiskR, dec.CommitmentID)
		return
	}
	fmt.Printf("✗ REJECTED  [%s] %s\n", dec.Reason, dec.Message)
}

func printView(v risk.View) {
	fmt.Printf("  Daily PnL: %.2fR ($%.2f)  Trades: %d  Active: %d (%.2fR)\n",
		v.DailyPnLR, v.DailyPnLDollars, v.TradeCount, v.ActiveTrades, v.ActiveRiskR)
	fmt.Printf("  Utilization: %.0f%%  Drawdown: %.2fR  Throttle: %v  CanTrade: %v\n",
		v.RiskUtilization*100, v.DrawdownR, v.RiskReductionActive, v.CanTrade)
}
