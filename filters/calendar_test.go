package filters

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCalendarFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "calendar.csv")
	data := `time,name,currency,impact
2026-09-04T12:30:00Z,NFP (Non-Farm Payrolls),USD,high
2026-09-10T12:30:00Z,CPI,USD,high
2026-09-11T08:00:00Z,German Factory Orders,EUR,medium
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	events, err := ReadCalendarFile(path)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "NFP (Non-Farm Payrolls)", events[0].Name)
	assert.Equal(t, "USD", events[0].Currency)
	assert.Equal(t, "high", events[0].Impact)
	assert.True(t, events[0].Time.Equal(time.Date(2026, 9, 4, 12, 30, 0, 0, time.UTC)))
}

func TestReadCalendarFileNoHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "calendar.csv")
	data := "2026-09-04T12:30:00Z,NFP,USD,high\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	events, err := ReadCalendarFile(path)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestReadCalendarFileBadTime(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "calendar.csv")
	data := "next friday,NFP,USD,high\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	_, err := ReadCalendarFile(path)
	assert.Error(t, err)
}

func TestReadCalendarFileMissing(t *testing.T) {
	t.Parallel()

	_, err := ReadCalendarFile(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
