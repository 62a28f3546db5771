package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStats(t *testing.T) {
	t.Parallel()

	closes := []CloseRecord{
		{PnLR: 2.0},
		{PnLR: -1.0},
		{PnLR: 1.5},
		{PnLR: -0.5},
		{PnLR: 0}, // scratch, counts toward neither side
	}

	s := computeStats(closes)

	assert.Equal(t, 5, s.TotalTrades)
	assert.Equal(t, 2, s.WinningTrades)
	assert.Equal(t, 2, s.LosingTrades)
	assert.InDelta(t, 0.4, s.WinRate, 1e-9)
	assert.InDelta(t, 2.0, s.TotalPnLR, 1e-9)
	assert.InDelta(t, 0.4, s.ExpectancyR, 1e-9)
	// 3.5 gross wins over 1.5 gross losses.
	assert.InDelta(t, 3.5/1.5, s.ProfitFactor, 1e-9)
}

func TestComputeStatsEmpty(t *testing.T) {
	t.Parallel()

	s := computeStats(nil)

	assert.Zero(t, s.TotalTrades)
	assert.Zero(t, s.WinRate)
	assert.Zero(t, s.ProfitFactor)
	assert.Zero(t, s.ExpectancyR)
}

func TestComputeStatsNoLosses(t *testing.T) {
	t.Parallel()

	s := computeStats([]CloseRecord{{PnLR: 1.0}, {PnLR: 2.0}})

	assert.InDelta(t, 1.0, s.WinRate, 1e-9)
	assert.Zero(t, s.ProfitFactor, "undefined without losses, reported as zero")
}

func TestListClosesBetweenBounds(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	base := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	add := func(id string, closedAt time.Time, pnlR float64) {
		require.NoError(t, j.RecordClose(CloseRecord{
			CommitmentID: id,
			Account:      "PHX-001",
			Symbol:       "XAUUSD",
			RiskR:        1.0,
			OpenedAt:     closedAt.Add(-time.Hour),
			ClosedAt:     closedAt,
			PnLR:         pnlR,
		}))
	}
	add("C1", base.Add(-time.Minute), 1.0) // before the range
	add("C2", base.Add(10*time.Hour), -1.0)
	add("C3", base.Add(20*time.Hour), 2.0)
	add("C4", base.Add(24*time.Hour), 5.0) // at the exclusive end

	// Different account inside the range.
	require.NoError(t, j.RecordClose(CloseRecord{
		CommitmentID: "XX", Account: "OTHER", Symbol: "XAUUSD",
		OpenedAt: base, ClosedAt: base.Add(time.Hour),
	}))

	closes, err := j.ListClosesBetween("PHX-001", base, base.Add(24*time.Hour))
	require.NoError(t, err)

	require.Len(t, closes, 2)
	assert.Equal(t, "C2", closes[0].CommitmentID, "ordered by close time")
	assert.Equal(t, "C3", closes[1].CommitmentID)
}

func TestAccountStats(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	base := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	pnls := []float64{2.0, -1.0, 1.5}
	for i, p := range pnls {
		require.NoError(t, j.RecordClose(CloseRecord{
			CommitmentID: string(rune('A' + i)),
			Account:      "PHX-001",
			Symbol:       "XAUUSD",
			RiskR:        1.0,
			OpenedAt:     base,
			ClosedAt:     base.Add(time.Duration(i+1) * time.Hour),
			PnLR:         p,
		}))
	}

	s, err := j.AccountStats("PHX-001", base, base.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 3, s.TotalTrades)
	assert.InDelta(t, 2.5, s.TotalPnLR, 1e-9)
	assert.InDelta(t, 2.0/3.0, s.WinRate, 1e-9)
}
