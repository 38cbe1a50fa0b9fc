package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestISOToUnix(t *testing.T) {
	ts, err := ISOToUnix("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC).Unix(), ts)

	_, err = ISOToUnix("15/03/2024")
	assert.Error(t, err)

	_, err = ISOToUnix("")
	assert.Error(t, err)
}

func TestGroupingKeys(t *testing.T) {
	ts := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC).Unix()

	assert.Equal(t, "2024-03-15", DayKey(ts))
	assert.Equal(t, "2024-03", MonthKey(ts))
	assert.Equal(t, "2024-W11", WeekKey(ts))
}

func TestMonthBoundaries(t *testing.T) {
	ts := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC).Unix()
	start, end := MonthBoundaries(ts)

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).Unix(), start)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC).Unix(), end)
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC).Unix()

	assert.Equal(t, 30, DaysBetween(start, end))
	assert.Equal(t, 0, DaysBetween(start, start))
}

func TestMonthsBetween(t *testing.T) {
	start := time.Date(2023, 11, 15, 0, 0, 0, 0, time.UTC).Unix()
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).Unix()

	assert.Equal(t, 3, MonthsBetween(start, end))
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		months   int
		expected time.Time
	}{
		{
			"simple add",
			time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			2,
			time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			"day clamped to leap february",
			time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			1,
			time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			"year rollover",
			time.Date(2024, 11, 10, 0, 0, 0, 0, time.UTC),
			3,
			time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			"negative months",
			time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			-1,
			time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected.Unix(), AddMonths(tt.start.Unix(), tt.months))
		})
	}
}
