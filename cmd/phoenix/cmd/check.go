package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/giftchaps/phoenix-ea/admission"
	"github.com/giftchaps/phoenix-ea/config"
	"github.com/giftchaps/phoenix-ea/journal"
	"github.com/giftchaps/phoenix-ea/risk"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate a single signal against the configured gates",
	Long: `Evaluate one candidate signal and print the decision, the ledger
view after it, and the position size the approved risk implies. The
evaluation reserves risk in a fresh in-memory ledger and journals
nothing, so it never touches live state.

Example:
  phoenix check -f phoenix.yaml --symbol XAUUSD --risk 1.0 --at 2026-03-09T14:30:00Z`,
	RunE: runCheck,
}

var (
	checkConfigFlag string
	checkSymbol     string
	checkRiskR      float64
	checkAt         string
	checkATRPctl    float64
	checkStopDist   float64
)

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkConfigFlag, "config", "f", "", "path to config file (YAML or JSON)")
	checkCmd.Flags().StringVar(&checkSymbol, "symbol", "XAUUSD", "symbol to evaluate")
	checkCmd.Flags().Float64Var(&checkRiskR, "risk", 1.0, "proposed risk in R")
	checkCmd.Flags().StringVar(&checkAt, "at", "", "evaluation instant, RFC3339 (default now)")
	checkCmd.Flags().Float64Var(&checkATRPctl, "atr-percentile", -1, "current ATR percentile, if known")
	checkCmd.Flags().Float64Var(&checkStopDist, "stop-distance", 0, "stop distance in price units, for sizing")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path, err := configPath(checkConfigFlag)
	if err != nil {
		return err
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	at := time.Now().UTC()
	if checkAt != "" {
		at, err = time.Parse(time.RFC3339, checkAt)
		if err != nil {
			return fmt.Errorf("parse --at: %w", err)
		}
	}

	svc, err := buildService(cfg, journal.Nop{})
	if err != nil {
		return err
	}

	sig := admission.Signal{
		Account:       cfg.Account.ID,
		Symbol:        checkSymbol,
		Timestamp:     at,
		ProposedRiskR: checkRiskR,
	}
	if checkATRPctl >= 0 {
		sig.ATRPercentile = &checkATRPctl
	}

	dec, err := svc.Evaluate(sig)
	if err != nil {
		return err
	}

	fmt.Printf("Signal %s %.2fR at %s\n", checkSymbol, checkRiskR, at.Format(time.RFC3339))
	fmt.Printf("Decision: ")
	printDecision(dec)

	c, err := svc.Controller(cfg.Account.ID)
	if err != nil {
		return err
	}
	fmt.Println("\nLedger view after evaluation:")
	printView(c.SnapshotAt(at))

	if dec.Approved && checkStopDist > 0 {
		riskPct := cfg.Limits.MaxRiskPerTradePct * dec.EffectiveRiskR
		units := risk.PositionSize(cfg.Account.Balance, riskPct, checkStopDist)
		fmt.Printf("\nSizing: %.2f units risks $%.2f over a %.2f stop\n",
			units, risk.RiskAmount(cfg.Account.Balance, riskPct), checkStopDist)
	}
	return nil
}
