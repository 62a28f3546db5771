package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "phoenix",
	Short: "Trading admission control engine",
	Long: `Phoenix is the admission control engine for the Phoenix EA trading system.

It decides, for every candidate trading signal, whether it may execute right
now, given:
  - Time-of-day session windows per symbol (DST-aware, per-window timezone)
  - News blackout periods around high-impact economic events
  - The account's live risk budget in R-multiples: daily stop, concurrent
    risk cap, daily budget, and an automatic drawdown throttle

Trade closes flow back into the risk ledger and every decision is journaled.`,
}

// Execute runs the CLI. A .env file, when present, seeds the environment
// (PHOENIX_CONFIG, PHOENIX_METRICS_ADDR) before flags are parsed.
func Execute() error {
	_ = godotenv.Load()
	return rootCmd.Execute()
}
