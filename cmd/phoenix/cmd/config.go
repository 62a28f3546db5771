package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/giftchaps/phoenix-ea/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage engine configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Long: `Write a default configuration file. Refuses to overwrite an
existing file. The default path is phoenix.yaml in the current
directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE:  runConfigValidate,
}

var configValidateFlag string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configValidateCmd.Flags().StringVarP(&configValidateFlag, "config", "f", "", "path to config file (YAML or JSON)")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := "phoenix.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, not overwriting", path)
	}

	cfg := config.Default()
	if err := cfg.SaveToFile(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path, err := configPath(configValidateFlag)
	if err != nil {
		return err
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return err
	}

	limits, err := cfg.RiskLimits()
	if err != nil {
		return err
	}
	windows, err := cfg.SessionWindows()
	if err != nil {
		return err
	}

	fmt.Printf("%s is valid\n", path)
	fmt.Printf("  Account %s, balance $%.2f, timezone %s\n", cfg.Account.ID, cfg.Account.Balance, cfg.Account.Timezone)
	fmt.Printf("  Daily budget %.2fR, daily stop %.1fR, concurrent cap %.2fR\n",
		limits.DailyBudgetR(), limits.DailyStopR, limits.MaxConcurrentR)
	for symbol, ws := range windows {
		fmt.Printf("  %s: %d session window(s)\n", symbol, len(ws))
	}
	return nil
}
