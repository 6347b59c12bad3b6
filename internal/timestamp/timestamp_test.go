package timestamp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-01T06:10:00", time.Date(2025, 3, 1, 6, 10, 0, 0, time.UTC)},
		{"2025-03-01 06:10:00", time.Date(2025, 3, 1, 6, 10, 0, 0, time.UTC)},
		{"2025-03-01T06:10", time.Date(2025, 3, 1, 6, 10, 0, 0, time.UTC)},
		{"2025-03-01T06:10:00Z", time.Date(2025, 3, 1, 6, 10, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%s parsed as %v", tt.in, got)
	}

	_, err := Parse("01/03/2025 06:10")
	assert.Error(t, err)
	_, err = Parse("")
	assert.Error(t, err)
}

func TestParse_WithOffset(t *testing.T) {
	got, err := Parse("2025-03-01T06:10:00+05:30")
	require.NoError(t, err)
	assert.True(t, time.Date(2025, 3, 1, 0, 40, 0, 0, time.UTC).Equal(got))
}

func TestMinutesBetween(t *testing.T) {
	m, err := MinutesBetween("2025-03-01T06:10:00", "2025-03-01T08:25:00")
	require.NoError(t, err)
	assert.Equal(t, 135, m)

	m, err = MinutesBetween("2025-03-01T23:00:00", "2025-03-02T01:30:00")
	require.NoError(t, err)
	assert.Equal(t, 150, m)

	_, err = MinutesBetween("bad", "2025-03-02T01:30:00")
	assert.Error(t, err)
	_, err = MinutesBetween("2025-03-02T01:30:00", "bad")
	assert.Error(t, err)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "2025-03-01 06:10", Display("2025-03-01T06:10:00"))
	assert.Equal(t, "garbage", Display("garbage"))
}
