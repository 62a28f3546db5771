package admission

import (
	"fmt"
	"log"
	"time"

	"github.com/giftchaps/phoenix-ea/filters"
	"github.com/giftchaps/phoenix-ea/journal"
	"github.com/giftchaps/phoenix-ea/metrics"
	"github.com/giftchaps/phoenix-ea/pkg/id"
	"github.com/giftchaps/phoenix-ea/risk"
	"github.com/giftchaps/phoenix-ea/session"
)

// Controller is the single admission entry point for one account. It chains
// the read-only gates (session, news, volatility) and then performs the
// fused evaluate-and-reserve against the account's ledger. Trade closes
// release budget directly; they are not gated.
type Controller struct {
	account  string
	sessions *session.Gate
	ledger   *risk.Ledger
	news     *filters.NewsGuard // optional
	atr      *filters.ATRRegime // optional
	journal  journal.Journal
}

// ControllerConfig wires a controller. Sessions and Ledger are required;
// nil filters disable those gates and a nil Journal falls back to Nop.
type ControllerConfig struct {
	Account  string
	Sessions *session.Gate
	Ledger   *risk.Ledger
	News     *filters.NewsGuard
	ATR      *filters.ATRRegime
	Journal  journal.Journal
}

func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("admission: session gate is required")
	}
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("admission: risk ledger is required")
	}
	j := cfg.Journal
	if j == nil {
		j = journal.Nop{}
	}
	return &Controller{
		account:  cfg.Account,
		sessions: cfg.Sessions,
		ledger:   cfg.Ledger,
		news:     cfg.News,
		atr:      cfg.ATR,
		journal:  j,
	}, nil
}

// Evaluate decides whether the signal may execute right now and, when
// approved, reserves its risk in the same step. Denials are outcomes, not
// errors; every decision is journaled and counted.
func (c *Controller) Evaluate(sig Signal) Decision {
	at := sig.Timestamp
	if at.IsZero() {
		at = time.Now().UTC()
	}
	decisionID := id.New()

	dec, ok := c.checkFilters(sig, at, decisionID)
	if ok {
		gd, commitment := c.ledger.EvaluateAndReserve(sig.Symbol, sig.ProposedRiskR, at)
		if gd.Allowed {
			dec = Decision{
				ID:             decisionID,
				Approved:       true,
				EffectiveRiskR: gd.EffectiveRiskR,
				CommitmentID:   commitment.ID,
				EvaluatedAt:    at,
			}
		} else {
			dec = rejected(decisionID, at, Reason(gd.Code), gd.Message)
		}
	}

	c.record(sig, dec)
	return dec
}

// checkFilters runs the read-only gates. Returns ok=true when the signal may
// proceed to the risk gate.
func (c *Controller) checkFilters(sig Signal, at time.Time, decisionID string) (Decision, bool) {
	if !c.sessions.IsTradable(sig.Symbol, at) {
		return rejected(decisionID, at, ReasonOutsideSessionWindow,
			fmt.Sprintf("%s is outside all session windows", sig.Symbol)), false
	}
	if c.news != nil {
		if ok, msg := c.news.Check(sig.Symbol, at); !ok {
			return rejected(decisionID, at, ReasonNewsBlackout, msg), false
		}
	}
	if c.atr != nil && sig.ATRPercentile != nil {
		if ok, msg := c.atr.Check(*sig.ATRPercentile); !ok {
			return rejected(decisionID, at, ReasonVolatilityRegime, msg), false
		}
	}
	return Decision{}, true
}

func (c *Controller) record(sig Signal, dec Decision) {
	metrics.RecordDecision(sig.Symbol, string(dec.Reason), dec.Approved, dec.EffectiveRiskR)
	metrics.ObserveLedger(c.account, c.ledger.SnapshotAt(dec.EvaluatedAt))

	err := c.journal.RecordDecision(journal.DecisionRecord{
		ID:             dec.ID,
		Account:        c.account,
		Symbol:         sig.Symbol,
		At:             dec.EvaluatedAt,
		Approved:       dec.Approved,
		Reason:         string(dec.Reason),
		Message:        dec.Message,
		ProposedRiskR:  sig.ProposedRiskR,
		EffectiveRiskR: dec.EffectiveRiskR,
		CommitmentID:   dec.CommitmentID,
	})
	if err != nil {
		log.Printf("admission: journal decision %s: %v", dec.ID, err)
	}
}

// Close releases a commitment's budget and records the realized result.
// risk.ErrUnknownCommitment surfaces double-closes instead of corrupting
// the active-risk accounting.
func (c *Controller) Close(tc TradeClose) error {
	commitment, err := c.ledger.Release(tc.CommitmentID, tc.RealizedPnLR, tc.RealizedPnLDollars, tc.ClosedAt)
	if err != nil {
		return err
	}

	metrics.RecordClose(commitment.Symbol, tc.RealizedPnLR)
	metrics.ObserveLedger(c.account, c.ledger.SnapshotAt(tc.ClosedAt))

	jerr := c.journal.RecordClose(journal.CloseRecord{
		CommitmentID: commitment.ID,
		Account:      c.account,
		Symbol:       commitment.Symbol,
		RiskR:        commitment.RiskR,
		OpenedAt:     commitment.OpenedAt,
		ClosedAt:     tc.ClosedAt,
		PnLR:         tc.RealizedPnLR,
		PnLDollars:   tc.RealizedPnLDollars,
	})
	if jerr != nil {
		log.Printf("admission: journal close %s: %v", commitment.ID, jerr)
	}
	return nil
}

// Snapshot returns the account's current risk view.
func (c *Controller) Snapshot() risk.View {
	return c.ledger.Snapshot()
}

// SnapshotAt returns the risk view as of an explicit instant. Replay and
// historical queries use this instead of Snapshot.
func (c *Controller) SnapshotAt(at time.Time) risk.View {
	return c.ledger.SnapshotAt(at)
}

// JournalRisk writes the current risk view to the journal, for periodic
// monitoring snapshots.
func (c *Controller) JournalRisk() error {
	v := c.ledger.Snapshot()
	return c.journal.RecordRisk(journal.RiskSnapshot{
		At:                  v.At,
		Account:             c.account,
		DailyPnLR:           v.DailyPnLR,
		DailyPnLDollars:     v.DailyPnLDollars,
		TradeCount:          v.TradeCount,
		ActiveTrades:        v.ActiveTrades,
		ActiveRiskR:         v.ActiveRiskR,
		RiskUtilization:     v.RiskUtilization,
		DrawdownR:           v.DrawdownR,
		RiskReductionActive: v.RiskReductionActive,
		CanTrade:            v.CanTrade,
	})
}

// Account returns the controller's account identifier.
func (c *Controller) Account() string { return c.account }
