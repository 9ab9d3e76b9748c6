package market

import "time"

const (
	// AnnualRate is the fixed simple interest rate charged on minted debt
	AnnualRate = 0.05

	// NanosecondsPerYear assumes a 365-day year
	NanosecondsPerYear = 31_536_000_000_000_000
)

// Clock returns the current wall-clock time
type Clock func() time.Time

// NowNanos returns unix nanoseconds at millisecond resolution
func NowNanos(clock Clock) int64 {
	return clock().UnixMilli() * 1_000_000
}

// Accrue returns simple interest on mintAmount accrued between updatedAt and
// now (both unix ns). A checkpoint in the future yields a negative value.
func Accrue(now, updatedAt int64, mintAmount float64) float64 {
	elapsed := float64(now - updatedAt)
	return mintAmount * elapsed * AnnualRate / NanosecondsPerYear
}
