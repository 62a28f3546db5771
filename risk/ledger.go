package risk

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/giftchaps/phoenix-ea/pkg/id"
)

var (
	// ErrInsufficientBudget means a reserve would push the ledger past its
	// concurrent or daily budget. The ledger is left unchanged.
	ErrInsufficientBudget = errors.New("insufficient risk budget")

	// ErrUnknownCommitment means a release named a commitment the ledger does
	// not hold. Usually a double-close upstream; never ignore it silently or
	// the active-risk accounting drifts.
	ErrUnknownCommitment = errors.New("unknown commitment")
)

// Commitment is one open trade holding risk budget.
type Commitment struct {
	ID       string
	Symbol   string
	RiskR    float64
	OpenedAt time.Time
}

type pnlEntry struct {
	at   time.Time
	pnlR float64
}

// View is a consistent read of the ledger's derived state, shaped for both
// the risk gate and monitoring consumers.
type View struct {
	At time.Time

	DailyPnLR       float64
	DailyPnLDollars float64
	TradeCount      int
	ActiveTrades    int
	ActiveRiskR     float64
	DailyRiskUsedR  float64
	DrawdownR       float64

	MaxRiskPerTrade    float64
	MaxDailyRisk       float64
	DailyBudgetR       float64
	DailyStopR         float64
	MaxConcurrentR     float64
	DrawdownThresholdR float64

	RiskUtilization     float64
	RiskReductionActive bool
	CanTrade            bool

	LastRollover time.Time
}

// Ledger is the per-account risk budget: daily realized totals, open
// commitments, and the trailing pnl window behind the drawdown throttle.
//
// One mutex serializes every mutation; the admission path evaluates and
// reserves inside a single critical section so a check can never race a
// concurrent reserve, release or rollover. Snapshots are value copies taken
// under the same lock.
type Ledger struct {
	mu sync.Mutex

	limits Limits
	zone   *time.Location

	dailyPnLR       float64
	dailyPnLDollars float64
	tradeCount      int
	open            map[string]Commitment
	trail           []pnlEntry
	lastRollover    time.Time // local day open of the last rollover

	now func() time.Time
}

// NewLedger creates an empty ledger anchored to the account's reference
// timezone. The day boundary is anchored by the first event's instant, so a
// ledger replaying a historical stream anchors to stream time, not the wall
// clock at construction.
func NewLedger(limits Limits, zone *time.Location) *Ledger {
	if zone == nil {
		zone = time.UTC
	}
	return &Ledger{
		limits: limits,
		zone:   zone,
		open:   make(map[string]Commitment),
		now:    time.Now,
	}
}

// SetLimits hot-reloads the limit set. It takes effect on the next
// evaluation, never mid-evaluation, since evaluations hold the lock.
func (l *Ledger) SetLimits(limits Limits) {
	l.mu.Lock()
	l.limits = limits
	l.mu.Unlock()
}

// Snapshot returns a consistent view of all derived quantities, performing a
// catch-up rollover first if the day boundary was missed.
func (l *Ledger) Snapshot() View {
	return l.SnapshotAt(time.Time{})
}

// SnapshotAt is Snapshot evaluated at an explicit instant. Replay consumers
// must pass their stream time here; mixing stream instants with the wall
// clock makes the day boundary flap back and forth.
func (l *Ledger) SnapshotAt(at time.Time) View {
	l.mu.Lock()
	defer l.mu.Unlock()

	if at.IsZero() {
		at = l.now()
	}
	l.rolloverIfNeededLocked(at)
	return l.viewLocked(at)
}

// Reserve adds the commitment and increments the daily trade count. It fails
// with ErrInsufficientBudget when the commitment would breach the concurrent
// or daily budget, leaving the ledger unchanged. An empty ID is assigned.
func (l *Ledger) Reserve(c Commitment) (Commitment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	at := c.OpenedAt
	if at.IsZero() {
		at = l.now()
		c.OpenedAt = at
	}
	l.rolloverIfNeededLocked(at)
	return l.reserveLocked(c)
}

func (l *Ledger) reserveLocked(c Commitment) (Commitment, error) {
	active := l.activeRiskLocked()
	if active+c.RiskR > l.limits.MaxConcurrentR {
		return Commitment{}, fmt.Errorf("%w: open %.2fR + %.2fR exceeds max concurrent %.2fR",
			ErrInsufficientBudget, active, c.RiskR, l.limits.MaxConcurrentR)
	}
	used := l.dailyRiskUsedLocked()
	if used+c.RiskR > l.limits.DailyBudgetR() {
		return Commitment{}, fmt.Errorf("%w: daily used %.2fR + %.2fR exceeds daily budget %.2fR",
			ErrInsufficientBudget, used, c.RiskR, l.limits.DailyBudgetR())
	}

	if c.ID == "" {
		c.ID = id.New()
	}
	l.open[c.ID] = c
	l.tradeCount++
	return c, nil
}

// Release removes the commitment, records the realized pnl on the daily
// totals, and appends the result to the trailing pnl window.
func (l *Ledger) Release(commitmentID string, pnlR, pnlDollars float64, closedAt time.Time) (Commitment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if closedAt.IsZero() {
		closedAt = l.now()
	}
	l.rolloverIfNeededLocked(closedAt)

	c, ok := l.open[commitmentID]
	if !ok {
		return Commitment{}, fmt.Errorf("%w: %s", ErrUnknownCommitment, commitmentID)
	}
	delete(l.open, commitmentID)

	l.dailyPnLR += pnlR
	l.dailyPnLDollars += pnlDollars
	l.trail = append(l.trail, pnlEntry{at: closedAt, pnlR: pnlR})
	return c, nil
}

// Rollover resets the daily counters at the account-day boundary. Open
// commitments survive; the trailing pnl window is trimmed to its horizon.
func (l *Ledger) Rollover(at time.Time) {
	l.mu.Lock()
	l.rolloverLocked(at)
	l.mu.Unlock()
}

// EvaluateAndReserve fuses the risk-gate check and the reservation into one
// critical section: the view the gate sees is exactly the state the reserve
// applies to, so a concurrent admission cannot win the same budget.
func (l *Ledger) EvaluateAndReserve(symbol string, proposedRiskR float64, at time.Time) (GateDecision, Commitment) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if at.IsZero() {
		at = l.now()
	}
	l.rolloverIfNeededLocked(at)

	dec := Evaluate(l.viewLocked(at), proposedRiskR)
	if !dec.Allowed {
		return dec, Commitment{}
	}

	c, err := l.reserveLocked(Commitment{
		Symbol:   symbol,
		RiskR:    dec.EffectiveRiskR,
		OpenedAt: at,
	})
	if err != nil {
		// Unreachable under the fused lock; kept so a future split of the
		// check and the reserve still degrades to a denial.
		dec.deny(CodeConcurrentRiskExceeded, err.Error())
		return dec, Commitment{}
	}
	return dec, c
}

// ---- internal, caller holds l.mu ----

func (l *Ledger) activeRiskLocked() float64 {
	var sum float64
	for _, c := range l.open {
		sum += c.RiskR
	}
	return sum
}

func (l *Ledger) dailyRiskUsedLocked() float64 {
	used := l.activeRiskLocked()
	if l.dailyPnLR < 0 {
		used += -l.dailyPnLR
	}
	return used
}

func (l *Ledger) drawdownLocked(at time.Time) float64 {
	cutoff := at.Add(-l.limits.DrawdownLookback)
	var dd float64
	for _, e := range l.trail {
		if e.pnlR < 0 && !e.at.Before(cutoff) {
			dd += e.pnlR
		}
	}
	return dd
}

func (l *Ledger) viewLocked(at time.Time) View {
	v := View{
		At:                 at,
		DailyPnLR:          l.dailyPnLR,
		DailyPnLDollars:    l.dailyPnLDollars,
		TradeCount:         l.tradeCount,
		ActiveTrades:       len(l.open),
		ActiveRiskR:        l.activeRiskLocked(),
		DailyRiskUsedR:     l.dailyRiskUsedLocked(),
		DrawdownR:          l.drawdownLocked(at),
		MaxRiskPerTrade:    l.limits.MaxRiskPerTradePct,
		MaxDailyRisk:       l.limits.MaxDailyRiskPct,
		DailyBudgetR:       l.limits.DailyBudgetR(),
		DailyStopR:         l.limits.DailyStopR,
		MaxConcurrentR:     l.limits.MaxConcurrentR,
		DrawdownThresholdR: l.limits.DrawdownThresholdR,
		LastRollover:       l.lastRollover,
	}
	if l.limits.MaxConcurrentR > 0 {
		v.RiskUtilization = v.ActiveRiskR / l.limits.MaxConcurrentR
	}
	v.RiskReductionActive = l.limits.DrawdownThresholdR > 0 && v.DrawdownR <= -l.limits.DrawdownThresholdR
	v.CanTrade = l.dailyPnLR > l.limits.DailyStopR
	return v
}

// rolloverIfNeededLocked rolls forward only. An instant from before the last
// rollover (a late close, a stale snapshot) must never reset the day, or an
// out-of-order timestamp would clear the daily stop. The very first event
// anchors the boundary without resetting anything.
func (l *Ledger) rolloverIfNeededLocked(at time.Time) {
	open := dayOpen(l.zone, at)
	if l.lastRollover.IsZero() {
		l.lastRollover = open
		return
	}
	if !open.After(l.lastRollover) {
		return
	}
	l.rolloverLocked(at)
}

func (l *Ledger) rolloverLocked(at time.Time) {
	l.dailyPnLR = 0
	l.dailyPnLDollars = 0
	l.tradeCount = 0
	l.lastRollover = dayOpen(l.zone, at)

	// Trim the trailing window to its horizon.
	cutoff := at.Add(-l.limits.DrawdownLookback)
	kept := l.trail[:0]
	for _, e := range l.trail {
		if !e.at.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	l.trail = kept
}

// dayOpen returns local midnight for the instant in the given zone.
func dayOpen(zone *time.Location, at time.Time) time.Time {
	y, m, d := at.In(zone).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, zone)
}
