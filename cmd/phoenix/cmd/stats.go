package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/giftchaps/phoenix-ea/config"
	"github.com/giftchaps/phoenix-ea/journal"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print trade statistics from the journal",
	Long: `Print win rate, profit factor and expectancy from closed trades in
the SQLite journal. Requires a config with journal type "sqlite".`,
	RunE: runStats,
}

var (
	statsConfigFlag string
	statsDays       int
)

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVarP(&statsConfigFlag, "config", "f", "", "path to config file (YAML or JSON)")
	statsCmd.Flags().IntVar(&statsDays, "days", 30, "lookback window in days")
}

func runStats(cmd *cobra.Command, args []string) error {
	path, err := configPath(statsConfigFlag)
	if err != nil {
		return err
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Journal.Type != "sqlite" {
		return fmt.Errorf("stats needs a sqlite journal, config has %q", cfg.Journal.Type)
	}

	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -statsDays)
	stats, err := j.AccountStats(cfg.Account.ID, start, end)
	if err != nil {
		return fmt.Errorf("query stats: %w", err)
	}

	fmt.Printf("Account %s, last %d days\n", cfg.Account.ID, statsDays)
	fmt.Printf("  Trades:        %d (%d won, %d lost)\n", stats.TotalTrades, stats.WinningTrades, stats.LosingTrades)
	if stats.TotalTrades == 0 {
		return nil
	}
	fmt.Printf("  Win rate:      %.1f%%\n", stats.WinRate*100)
	fmt.Printf("  Profit factor: %.2f\n", stats.ProfitFactor)
	fmt.Printf("  Total P&L:     %+.2fR\n", stats.TotalPnLR)
	fmt.Printf("  Expectancy:    %+.2fR per trade\n", stats.ExpectancyR)
	return nil
}
