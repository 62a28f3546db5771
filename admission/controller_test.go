package admission

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftchaps/phoenix-ea/filters"
	"github.com/giftchaps/phoenix-ea/journal"
	"github.com/giftchaps/phoenix-ea/risk"
	"github.com/giftchaps/phoenix-ea/session"
)

// testJournal records everything in memory for assertions.
type testJournal struct {
	mu        sync.Mutex
	decisions []journal.DecisionRecord
	closes    []journal.CloseRecord
	risks     []journal.RiskSnapshot
}

func (j *testJournal) RecordDecision(r journal.DecisionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.decisions = append(j.decisions, r)
	return nil
}

func (j *testJournal) RecordClose(r journal.CloseRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closes = append(j.closes, r)
	return nil
}

func (j *testJournal) RecordRisk(r journal.RiskSnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.risks = append(j.risks, r)
	return nil
}

func (j *testJournal) Close() error { return nil }

func testGate(t *testing.T) *session.Gate {
	t.Helper()
	london, err := session.NewWindow("london", "08:00", "16:00", "Europe/London")
	require.NoError(t, err)
	ny, err := session.NewWindow("new_york", "08:00", "17:00", "America/New_York")
	require.NoError(t, err)
	return session.NewGate(map[string][]session.TimeWindow{
		"XAUUSD": {london, ny},
	})
}

func testController(t *testing.T, j journal.Journal) *Controller {
	t.Helper()
	c, err := NewController(ControllerConfig{
		Account:  "ACC-TEST",
		Sessions: testGate(t),
		Ledger:   risk.NewLedger(risk.DefaultLimits(), time.UTC),
		Journal:  j,
	})
	require.NoError(t, err)
	return c
}

// A winter Tuesday, 14:00 UTC: both London and New York are open.
var openInstant = time.Date(2026, 1, 13, 14, 0, 0, 0, time.UTC)

func TestEvaluateApprovesAndReserves(t *testing.T) {
	t.Parallel()

	j := &testJournal{}
	c := testController(t, j)

	dec := c.Evaluate(Signal{Symbol: "XAUUSD", Timestamp: openInstant, ProposedRiskR: 1.0})

	assert.True(t, dec.Approved)
	assert.Empty(t, dec.Reason)
	assert.NotEmpty(t, dec.ID)
	assert.NotEmpty(t, dec.CommitmentID)
	assert.InDelta(t, 1.0, dec.EffectiveRiskR, 1e-9)

	v := c.SnapshotAt(openInstant)
	assert.Equal(t, 1, v.ActiveTrades)
	assert.InDelta(t, 1.0, v.ActiveRiskR, 1e-9)

	require.Len(t, j.decisions, 1)
	rec := j.decisions[0]
	assert.Equal(t, dec.ID, rec.ID)
	assert.Equal(t, "ACC-TEST", rec.Account)
	assert.True(t, rec.Approved)
	assert.Equal(t, dec.CommitmentID, rec.CommitmentID)
}

func TestEvaluateOutsideSession(t *testing.T) {
	t.Parallel()

	j := &testJournal{}
	c := testController(t, j)

	// 02:00 UTC: both sessions are shut.
	dec := c.Evaluate(Signal{
		Symbol:        "XAUUSD",
		Timestamp:     time.Date(2026, 1, 13, 2, 0, 0, 0, time.UTC),
		ProposedRiskR: 1.0,
	})

	assert.False(t, dec.Approved)
	assert.Equal(t, ReasonOutsideSessionWindow, dec.Reason)
	assert.Empty(t, dec.CommitmentID)
	assert.Zero(t, c.SnapshotAt(openInstant).ActiveTrades, "a rejection reserves nothing")

	require.Len(t, j.decisions, 1)
	assert.Equal(t, string(ReasonOutsideSessionWindow), j.decisions[0].Reason)
}

func TestEvaluateRiskDenialAfterBudgetSpent(t *testing.T) {
	t.Parallel()

	c := testController(t, &testJournal{})

	first := c.Evaluate(Signal{Symbol: "XAUUSD", Timestamp: openInstant, ProposedRiskR: 1.0})
	second := c.Evaluate(Signal{Symbol: "XAUUSD", Timestamp: openInstant, ProposedRiskR: 1.0})
	third := c.Evaluate(Signal{Symbol: "XAUUSD", Timestamp: openInstant, ProposedRiskR: 1.0})

	assert.True(t, first.Approved)
	assert.True(t, second.Approved)
	assert.False(t, third.Approved)
	assert.Equal(t, ReasonConcurrentRiskExceeded, third.Reason)
	assert.NotEmpty(t, third.Message)
}

func TestEvaluateNewsBlackout(t *testing.T) {
	t.Parallel()

	release := openInstant.Add(5 * time.Minute)
	news := filters.NewNewsGuard(filters.NewsGuardConfig{
		Enabled:       true,
		BlockBefore:   15 * time.Minute,
		BlockAfter:    15 * time.Minute,
		WatchedEvents: []string{"FOMC"},
	})
	news.LoadCalendar([]filters.CalendarEvent{
		{Time: release, Name: "FOMC Statement", Currency: "USD", Impact: "high"},
	})

	c, err := NewController(ControllerConfig{
		Account:  "ACC-TEST",
		Sessions: testGate(t),
		Ledger:   risk.NewLedger(risk.DefaultLimits(), time.UTC),
		News:     news,
	})
	require.NoError(t, err)

	dec := c.Evaluate(Signal{Symbol: "XAUUSD", Timestamp: openInstant, ProposedRiskR: 1.0})
	assert.False(t, dec.Approved)
	assert.Equal(t, ReasonNewsBlackout, dec.Reason)

	// EURGBP has no USD leg and no session windows configured.
	dec = c.Evaluate(Signal{Symbol: "EURGBP", Timestamp: openInstant, ProposedRiskR: 1.0})
	assert.True(t, dec.Approved)
}

func TestEvaluateVolatilityRegime(t *testing.T) {
	t.Parallel()

	atr := filters.NewATRRegime(filters.ATRRegimeConfig{
		Enabled:       true,
		MinPercentile: 40,
		MaxPercentile: 85,
	})
	c, err := NewController(ControllerConfig{
		Account:  "ACC-TEST",
		Sessions: testGate(t),
		Ledger:   risk.NewLedger(risk.DefaultLimits(), time.UTC),
		ATR:      atr,
	})
	require.NoError(t, err)

	quiet := 20.0
	dec := c.Evaluate(Signal{
		Symbol: "XAUUSD", Timestamp: openInstant, ProposedRiskR: 1.0,
		ATRPercentile: &quiet,
	})
	assert.False(t, dec.Approved)
	assert.Equal(t, ReasonVolatilityRegime, dec.Reason)

	// Without a percentile the gate is skipped.
	dec = c.Evaluate(Signal{Symbol: "XAUUSD", Timestamp: openInstant, ProposedRiskR: 1.0})
	assert.True(t, dec.Approved)
}

func TestCloseReleasesAndJournals(t *testing.T) {
	t.Parallel()

	j := &testJournal{}
	c := testController(t, j)

	dec := c.Evaluate(Signal{Symbol: "XAUUSD", Timestamp: openInstant, ProposedRiskR: 1.0})
	require.True(t, dec.Approved)

	err := c.Close(TradeClose{
		CommitmentID:       dec.CommitmentID,
		RealizedPnLR:       -1.0,
		RealizedPnLDollars: -200,
		ClosedAt:           openInstant.Add(time.Hour),
	})
	require.NoError(t, err)

	v := c.SnapshotAt(openInstant.Add(time.Hour))
	assert.Zero(t, v.ActiveTrades)
	assert.InDelta(t, -1.0, v.DailyPnLR, 1e-9)

	require.Len(t, j.closes, 1)
	rec := j.closes[0]
	assert.Equal(t, dec.CommitmentID, rec.CommitmentID)
	assert.Equal(t, "XAUUSD", rec.Symbol)
	assert.InDelta(t, -1.0, rec.PnLR, 1e-9)
}

func TestCloseUnknownCommitment(t *testing.T) {
	t.Parallel()

	j := &testJournal{}
	c := testController(t, j)

	err := c.Close(TradeClose{CommitmentID: "nope", RealizedPnLR: 1.0})
	assert.ErrorIs(t, err, risk.ErrUnknownCommitment)
	assert.Empty(t, j.closes)
}

// Closes are never gated: a stopped-out day still lets positions unwind.
func TestCloseAllowedAfterDailyStop(t *testing.T) {
	t.Parallel()

	c := testController(t, &testJournal{})

	first := c.Evaluate(Signal{Symbol: "XAUUSD", Timestamp: openInstant, ProposedRiskR: 1.0})
	second := c.Evaluate(Signal{Symbol: "XAUUSD", Timestamp: openInstant, ProposedRiskR: 1.0})
	require.True(t, first.Approved)
	require.True(t, second.Approved)

	err := c.Close(TradeClose{
		CommitmentID: first.CommitmentID,
		RealizedPnLR: -3.5, RealizedPnLDollars: -700,
		ClosedAt: openInstant.Add(time.Hour),
	})
	require.NoError(t, err)
	require.False(t, c.SnapshotAt(openInstant.Add(time.Hour)).CanTrade)

	// New admissions are refused, the remaining position still closes.
	dec := c.Evaluate(Signal{Symbol: "XAUUSD", Timestamp: openInstant.Add(2 * time.Hour), ProposedRiskR: 0.5})
	assert.Equal(t, ReasonDailyStopHit, dec.Reason)

	err = c.Close(TradeClose{
		CommitmentID: second.CommitmentID,
		RealizedPnLR: 1.0, RealizedPnLDollars: 200,
		ClosedAt: openInstant.Add(3 * time.Hour),
	})
	assert.NoError(t, err)
}

func TestJournalRisk(t *testing.T) {
	t.Parallel()

	j := &testJournal{}
	c := testController(t, j)

	dec := c.Evaluate(Signal{Symbol: "XAUUSD", Timestamp: openInstant, ProposedRiskR: 1.0})
	require.True(t, dec.Approved)
	require.NoError(t, c.JournalRisk())

	require.Len(t, j.risks, 1)
	snap := j.risks[0]
	assert.Equal(t, "ACC-TEST", snap.Account)
	assert.Equal(t, 1, snap.ActiveTrades)
	assert.InDelta(t, 0.5, snap.RiskUtilization, 1e-9)
	assert.True(t, snap.CanTrade)
}

func TestNewControllerValidation(t *testing.T) {
	t.Parallel()

	_, err := NewController(ControllerConfig{Ledger: risk.NewLedger(risk.DefaultLimits(), time.UTC)})
	assert.Error(t, err, "missing session gate")

	_, err = NewController(ControllerConfig{Sessions: testGate(t)})
	assert.Error(t, err, "missing ledger")
}

// Concurrent signals race for a 2.0R budget; the reservations must never
// oversubscribe it.
func TestEvaluateConcurrentBudget(t *testing.T) {
	t.Parallel()

	c := testController(t, &testJournal{})

	const signals = 20
	var wg sync.WaitGroup
	approved := make(chan Decision, signals)

	for i := 0; i < signals; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dec := c.Evaluate(Signal{Symbol: "XAUUSD", Timestamp: openInstant, ProposedRiskR: 1.0})
			if dec.Approved {
				approved <- dec
			}
		}()
	}
	wg.Wait()
	close(approved)

	var n int
	for range approved {
		n++
	}
	assert.Equal(t, 2, n)
	assert.InDelta(t, 2.0, c.SnapshotAt(openInstant).ActiveRiskR, 1e-9)
}
