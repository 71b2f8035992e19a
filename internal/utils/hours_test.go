package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 1, hour, minute, 0, 0, time.UTC)
}

func TestOperatingHoursDaytimeWindow(t *testing.T) {
	hours, err := ParseOperatingHours("09:00", "23:00")
	require.NoError(t, err)

	assert.True(t, hours.Contains(at(9, 0)))
	assert.True(t, hours.Contains(at(14, 30)))
	assert.True(t, hours.Contains(at(22, 59)))
	assert.False(t, hours.Contains(at(23, 0)))
	assert.False(t, hours.Contains(at(8, 59)))
	assert.False(t, hours.Contains(at(2, 0)))
}

func TestOperatingHoursOvernightWindow(t *testing.T) {
	hours, err := ParseOperatingHours("18:00", "02:00")
	require.NoError(t, err)

	assert.True(t, hours.Contains(at(18, 0)))
	assert.True(t, hours.Contains(at(23, 30)))
	assert.True(t, hours.Contains(at(1, 59)))
	assert.False(t, hours.Contains(at(2, 0)))
	assert.False(t, hours.Contains(at(12, 0)))
}

func TestOperatingHoursAlwaysOpen(t *testing.T) {
	hours, err := ParseOperatingHours("00:00", "00:00")
	require.NoError(t, err)

	assert.True(t, hours.Contains(at(0, 0)))
	assert.True(t, hours.Contains(at(13, 37)))
}

func TestParseOperatingHoursRejectsGarbage(t *testing.T) {
	cases := []struct{ open, close string }{
		{"9", "23:00"},
		{"09:00", "24:00"},
		{"09:60", "23:00"},
		{"", "23:00"},
		{"ab:cd", "23:00"},
	}
	for _, tc := range cases {
		_, err := ParseOperatingHours(tc.open, tc.close)
		assert.Error(t, err, "open=%q close=%q", tc.open, tc.close)
	}
}
