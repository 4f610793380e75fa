package sever

import (
	"math"
	"time"

	"github.com/zoobzio/clockz"
)

// nsPerSecond is one whole second expressed in nanoseconds.
const nsPerSecond = int64(time.Second)

// Instant is a monotonic clock reading split into whole seconds and the
// nanoseconds within that second. Instants are only ever compared against
// each other; they are never formatted for humans.
type Instant struct {
	sec  int64
	nsec int64
}

// instantOf splits a clock reading into an Instant.
func instantOf(t time.Time) Instant {
	return Instant{sec: t.Unix(), nsec: int64(t.Nanosecond())}
}

// ElapsedAtLeast reports whether after is at or beyond before by at least
// min, or whether after precedes before entirely. A clock that appears to
// have run backward is treated as "enough time has passed" so that
// cancellation checks are never starved by clock anomalies.
//
// For min below one second the comparison is resolved from the second and
// nanosecond fields without any multiplication; the common cases (same
// second, consecutive seconds) never touch 64-bit products. Larger minimums
// fall back to direct nanosecond subtraction.
func ElapsedAtLeast(after, before Instant, min time.Duration) bool {
	minNS := int64(min)
	if minNS >= nsPerSecond {
		return elapsedAtLeastDirect(after, before, min)
	}

	// The most probable situation is that after and before are different
	// points within the same second, where the nanosecond fields decide.
	if after.sec == before.sec {
		return after.nsec-before.nsec >= minNS || after.nsec < before.nsec
	}

	// Next most probable: consecutive seconds. Lift after's nanoseconds by
	// one second before subtracting; the difference cannot be negative.
	if after.sec == before.sec+1 {
		return (nsPerSecond+after.nsec)-before.nsec >= minNS
	}

	// Anything else is either a gap of more than one whole second, which
	// exceeds any sub-second minimum, or a backward clock.
	return true
}

// elapsedAtLeastDirect is the straightforward form of ElapsedAtLeast: flatten
// both instants to 64-bit nanosecond counts and subtract. Valid for any min
// as long as the arithmetic does not overflow, which no computation in this
// package runs long enough to do.
func elapsedAtLeastDirect(after, before Instant, min time.Duration) bool {
	afterNS := after.sec*nsPerSecond + after.nsec
	beforeNS := before.sec*nsPerSecond + before.nsec

	delta := afterNS - beforeNS
	return delta < 0 || delta >= int64(min)
}

// fineNow takes a fine-resolution monotonic reading from clock.
func fineNow(clock clockz.Clock) Instant {
	return instantOf(clock.Now())
}

// coarseNow takes a best-effort lower-cost reading. The Go runtime funnels
// every clock read through the same monotonic source, so the coarse reading
// is identical to the fine one here.
func coarseNow(clock clockz.Clock) Instant {
	return fineNow(clock)
}

// secondsToDuration converts float seconds to a Duration, rounding to the
// nearest nanosecond. Non-positive values map to zero. Scaled to seconds, a
// float64 represents every interval under 48 days to full nanosecond
// precision, so the conversion is exact for any interval this package uses.
func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(math.Round(s * 1e9))
}

// durationSeconds converts a Duration to float seconds.
func durationSeconds(d time.Duration) float64 {
	return float64(d) * 1e-9
}
