package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('decisions','closes','risk_snapshots')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["decisions"])
	assert.True(t, found["closes"])
	assert.True(t, found["risk_snapshots"])
}

func TestSQLiteRecordDecisionRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	at := time.Date(2026, 6, 15, 14, 30, 0, 0, time.UTC)
	rec := DecisionRecord{
		ID:             "01JXDECISION01",
		Account:        "PHX-001",
		Symbol:         "XAUUSD",
		At:             at,
		Approved:       true,
		ProposedRiskR:  1.0,
		EffectiveRiskR: 0.5,
		CommitmentID:   "01JXCOMMIT01",
	}
	require.NoError(t, j.RecordDecision(rec))

	got, err := j.GetDecision(rec.ID)
	require.NoError(t, err)

	assert.Equal(t, rec.Account, got.Account)
	assert.Equal(t, rec.Symbol, got.Symbol)
	assert.True(t, got.Approved)
	assert.InDelta(t, 0.5, got.EffectiveRiskR, 1e-9)
	assert.Equal(t, rec.CommitmentID, got.CommitmentID)
	assert.True(t, got.At.Equal(at))
}

func TestSQLiteRecordRejectedDecision(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	rec := DecisionRecord{
		ID:            "01JXDECISION02",
		Account:       "PHX-001",
		Symbol:        "XAUUSD",
		At:            time.Date(2026, 6, 15, 2, 0, 0, 0, time.UTC),
		Approved:      false,
		Reason:        "OutsideSessionWindow",
		Message:       "XAUUSD is outside all session windows",
		ProposedRiskR: 1.0,
	}
	require.NoError(t, j.RecordDecision(rec))

	got, err := j.GetDecision(rec.ID)
	require.NoError(t, err)

	assert.False(t, got.Approved)
	assert.Equal(t, "OutsideSessionWindow", got.Reason)
	assert.Zero(t, got.EffectiveRiskR)
	assert.Empty(t, got.CommitmentID)
}

func TestSQLiteGetDecisionMissing(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	_, err := j.GetDecision("does-not-exist")
	assert.Error(t, err)
}

func TestSQLiteDuplicateDecisionID(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	rec := DecisionRecord{ID: "01JXDUP", Account: "PHX-001", Symbol: "XAUUSD", At: time.Now().UTC()}
	require.NoError(t, j.RecordDecision(rec))
	assert.Error(t, j.RecordDecision(rec), "decision_id is the primary key")
}

func TestSQLiteRecordCloseAndRisk(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	opened := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordClose(CloseRecord{
		CommitmentID: "01JXCOMMIT02",
		Account:      "PHX-001",
		Symbol:       "XAUUSD",
		RiskR:        1.0,
		OpenedAt:     opened,
		ClosedAt:     opened.Add(2 * time.Hour),
		PnLR:         1.8,
		PnLDollars:   360,
	}))

	require.NoError(t, j.RecordRisk(RiskSnapshot{
		At:           opened.Add(3 * time.Hour),
		Account:      "PHX-001",
		DailyPnLR:    1.8,
		TradeCount:   1,
		ActiveTrades: 0,
		CanTrade:     true,
	}))

	closes, err := j.ListClosesBetween("PHX-001", opened, opened.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, closes, 1)
	assert.InDelta(t, 1.8, closes[0].PnLR, 1e-9)
}
