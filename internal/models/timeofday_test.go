package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		raw  string
		want TimeOfDay
	}{
		{"00:00", 0},
		{"09:00", 540},
		{"13:45", 825},
		{"23:59", 23*60 + 59},
		{"24:00", MinutesPerDay},
	}
	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestParseTimeOfDayRejectsMalformedInput(t *testing.T) {
	invalid := []string{
		"",
		"9:00",
		"0900",
		"09-00",
		"09:0",
		"09:00:30",
		"09:00xyz",
		" 09:00",
		"09:00 ",
		"0a:00",
		"09:x0",
		"25:00",
		"09:60",
		"24:01",
	}
	for _, raw := range invalid {
		_, err := ParseTimeOfDay(raw)
		assert.Error(t, err, "%q should not parse", raw)
	}
}

func TestTimeOfDayScanTruncatesSeconds(t *testing.T) {
	var tod TimeOfDay
	require.NoError(t, tod.Scan("09:30:00"))
	assert.Equal(t, TimeOfDay(570), tod)
}
