package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/giftchaps/phoenix-ea/admission"
	"github.com/giftchaps/phoenix-ea/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the admission engine",
	Long: `Run the admission engine from a configuration file.

With --signals, candidate signals are replayed from a CSV file
(columns: account,symbol,timestamp,risk_r[,atr_percentile]) and each
decision is printed. Without it, a short scripted scenario demonstrates
the session, news and risk gates.

When metrics are enabled in the config, /metrics is served until SIGINT.

Example:
  phoenix run -f phoenix.yaml --signals signals.csv`,
	RunE: runRun,
}

var (
	runConfigFlag  string
	runSignalsPath string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigFlag, "config", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().StringVar(&runSignalsPath, "signals", "", "CSV file of signals to replay")
}

func runRun(cmd *cobra.Command, args []string) error {
	path, err := configPath(runConfigFlag)
	if err != nil {
		return err
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	j, err := buildJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	svc, err := buildService(cfg, j)
	if err != nil {
		return err
	}

	fmt.Printf("Phoenix admission engine\n")
	fmt.Printf("  Account: %s (%s, $%.2f)\n", cfg.Account.ID, cfg.Account.Timezone, cfg.Account.Balance)
	fmt.Printf("  Symbols with sessions: %d  Journal: %s\n\n", len(cfg.Sessions), cfg.Journal.Type)

	if addr := metricsAddr(cfg); addr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			log.Printf("metrics listening on %s", addr)
			if err := http.ListenAndServe(addr, nil); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	if runSignalsPath != "" {
		if err := replaySignals(svc, cfg.Account.ID, runSignalsPath); err != nil {
			return err
		}
	} else {
		if err := demoScenario(svc, cfg.Account.ID); err != nil {
			return err
		}
	}

	if metricsAddr(cfg) != "" {
		fmt.Println("\nServing metrics; Ctrl-C to stop.")
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
	}
	return nil
}

func metricsAddr(cfg *config.Config) string {
	if !cfg.Metrics.Enabled {
		return ""
	}
	if env := os.Getenv("PHOENIX_METRICS_ADDR"); env != "" {
		return env
	}
	return cfg.Metrics.Addr
}

// replaySignals feeds a CSV of candidate signals through the service.
func replaySignals(svc *admission.Service, defaultAccount, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open signals file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read signals file: %w", err)
		}
		line++
		if line == 1 && rec[0] == "account" {
			continue // header
		}
		if len(rec) < 4 {
			return fmt.Errorf("signals line %d: want at least 4 columns", line)
		}

		at, err := time.Parse(time.RFC3339, rec[2])
		if err != nil {
			return fmt.Errorf("signals line %d: %w", line, err)
		}
		riskR, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return fmt.Errorf("signals line %d: %w", line, err)
		}

		sig := admission.Signal{
			Account:       rec[0],
			Symbol:        rec[1],
			Timestamp:     at,
			ProposedRiskR: riskR,
		}
		if sig.Account == "" {
			sig.Account = defaultAccount
		}
		if len(rec) > 4 && rec[4] != "" {
			pctl, err := strconv.ParseFloat(rec[4], 64)
			if err != nil {
				return fmt.Errorf("signals line %d: %w", line, err)
			}
			sig.ATRPercentile = &pctl
		}

		dec, err := svc.Evaluate(sig)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s %.2fR -> ", at.Format(time.RFC3339), sig.Symbol, riskR)
		printDecision(dec)
	}

	return journalViews(svc)
}

// demoScenario walks a trading day: signals during and outside sessions,
// one close, and the ledger view after each step.
func demoScenario(svc *admission.Service, account string) error {
	day := time.Now().UTC().Truncate(24 * time.Hour)
	steps := []struct {
		label string
		hour  int
		riskR float64
	}{
		{"pre-London", 5, 1.0},
		{"London open", 9, 1.0},
		{"London/NY overlap", 14, 1.0},
		{"third entry (budget)", 15, 1.0},
		{"after hours", 23, 1.0},
	}

	var firstCommitment string
	for _, s := range steps {
		at := day.Add(time.Duration(s.hour) * time.Hour)
		dec, err := svc.Evaluate(admission.Signal{
			Account:       account,
			Symbol:        "XAUUSD",
			Timestamp:     at,
			ProposedRiskR: s.riskR,
		})
		if err != nil {
			return err
		}
		fmt.Printf("%-22s %s -> ", s.label, at.Format("15:04 MST"))
		printDecision(dec)
		if dec.Approved && firstCommitment == "" {
			firstCommitment = dec.CommitmentID
		}
	}

	if firstCommitment != "" {
		fmt.Printf("\nclosing %s at +1.80R\n", firstCommitment)
		err := svc.Close(admission.TradeClose{
			Account:            account,
			CommitmentID:       firstCommitment,
			RealizedPnLR:       1.8,
			RealizedPnLDollars: 360,
			ClosedAt:           day.Add(16 * time.Hour),
		})
		if err != nil {
			return err
		}
	}

	c, err := svc.Controller(account)
	if err != nil {
		return err
	}
	fmt.Println("\nLedger view:")
	printView(c.Snapshot())

	return journalViews(svc)
}

// journalViews records a final risk snapshot per live account.
func journalViews(svc *admission.Service) error {
	for _, account := range svc.Accounts() {
		c, err := svc.Controller(account)
		if err != nil {
			return err
		}
		if err := c.JournalRisk(); err != nil {
			log.Printf("journal risk snapshot for %s: %v", account, err)
		}
	}
	return nil
}
