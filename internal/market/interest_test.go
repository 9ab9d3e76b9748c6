package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNowNanosMillisecondResolution(t *testing.T) {
	at := time.Unix(1_717_787_717, 123_456_789)
	got := NowNanos(func() time.Time { return at })
	require.Equal(t, int64(1_717_787_717_123_000_000), got)
}

func TestAccrueOneYear(t *testing.T) {
	now := int64(1_717_787_717_000_000_000)
	got := Accrue(now, now-NanosecondsPerYear, 1000)
	require.InDelta(t, 50.0, got, 1e-9)
}

func TestAccrueFormula(t *testing.T) {
	cases := []struct {
		mint    float64
		elapsed int64
	}{
		{0, 1_000_000},
		{1, 1},
		{1_000_000, 86_400_000_000_000},
		{123_456_789, 3_600_000_000_000},
	}
	now := int64(1_717_787_717_000_000_000)
	for _, tc := range cases {
		got := Accrue(now, now-tc.elapsed, tc.mint)
		want := tc.mint * float64(tc.elapsed) * 0.05 / 31_536_000_000_000_000
		require.Equal(t, want, got)
	}
}

func TestAccrueMonotonic(t *testing.T) {
	now := int64(1_717_787_717_000_000_000)
	prev := Accrue(now, now, 1000)
	for elapsed := int64(1); elapsed <= 1<<40; elapsed <<= 4 {
		cur := Accrue(now, now-elapsed, 1000)
		require.GreaterOrEqual(t, cur, prev)
		prev = cur
	}

	prev = Accrue(now, now-1_000_000_000, 0)
	for mint := 1.0; mint < 1e12; mint *= 10 {
		cur := Accrue(now, now-1_000_000_000, mint)
		require.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestAccrueFutureCheckpointIsNegative(t *testing.T) {
	now := int64(1_717_787_717_000_000_000)
	got := Accrue(now, now+NanosecondsPerYear, 1000)
	require.InDelta(t, -50.0, got, 1e-9)
}
