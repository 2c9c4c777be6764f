package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAndEndOfUTCDay(t *testing.T) {
	// A late-evening local time east of UTC lands on the previous UTC day.
	tehran := time.FixedZone("IRST", int(3.5*3600))
	local := time.Date(2020, 8, 15, 1, 30, 0, 0, tehran)

	start := StartOfUTCDay(local)
	assert.Equal(t, time.Date(2020, 8, 14, 0, 0, 0, 0, time.UTC), start)

	end := EndOfUTCDay(local)
	assert.Equal(t, time.Date(2020, 8, 14, 23, 59, 59, int(999*time.Millisecond), time.UTC), end)
}

func TestEndOfPreviousUTCDay(t *testing.T) {
	d := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2020, 2, 29, 23, 59, 59, int(999*time.Millisecond), time.UTC), EndOfPreviousUTCDay(d))

	newYear := time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2020, 12, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC), EndOfPreviousUTCDay(newYear))
}

func TestDayComparisons(t *testing.T) {
	morning := time.Date(2020, 8, 15, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2020, 8, 15, 23, 0, 0, 0, time.UTC)
	nextDay := time.Date(2020, 8, 16, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsSameDay(morning, evening))
	assert.False(t, IsBeforeDay(morning, evening))
	assert.False(t, IsAfterDay(evening, morning))

	assert.True(t, IsBeforeDay(evening, nextDay))
	assert.True(t, IsAfterDay(nextDay, morning))

	assert.Equal(t, 0, CompareDay(morning, evening))
	assert.Equal(t, -1, CompareDay(morning, nextDay))
	assert.Equal(t, 1, CompareDay(nextDay, evening))
}

func TestMonthHelpers(t *testing.T) {
	mid := time.Date(2020, 8, 15, 10, 0, 0, 0, time.UTC)
	first := time.Date(2020, 8, 1, 17, 45, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC), StartOfUTCMonth(mid))
	assert.False(t, IsUTCFirstDayOfMonth(mid))
	assert.True(t, IsUTCFirstDayOfMonth(first))

	assert.Equal(t, time.Date(2020, 9, 1, 0, 0, 0, 0, time.UTC), StartOfNextUTCMonth(mid))
	assert.Equal(t, time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC), StartOfNextUTCMonth(first))
}

func TestFormatISODate(t *testing.T) {
	d := time.Date(2021, 12, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	assert.Equal(t, "2021-12-31T23:59:59.999Z", FormatISODate(d))

	// Non-UTC input is rendered in UTC.
	est := time.FixedZone("EST", -5*3600)
	assert.Equal(t, "2020-01-02T05:00:00.000Z", FormatISODate(time.Date(2020, 1, 2, 0, 0, 0, 0, est)))
}

func TestParseISODate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"millisecond precision", "2021-12-31T23:59:59.999Z", time.Date(2021, 12, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC)},
		{"rfc3339 without fraction", "2020-01-02T00:00:00Z", time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"bare day", "2020-01-02", time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"offset normalized to utc", "2020-01-02T03:30:00+03:30", time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseISODate(tt.input)
			require.NoError(t, err)
			assert.True(t, parsed.Equal(tt.expected), "got %s", parsed)
		})
	}

	_, err := ParseISODate("31/12/2021")
	assert.Error(t, err)
}
