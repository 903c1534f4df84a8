package tick

import (
	"math"
	"time"
)

// DefaultPeriod is the tick period used when none is configured.
const DefaultPeriod = 10 * time.Millisecond

// Tick is a reading of the clock counter.
type Tick uint64

// Span is a duration expressed in ticks.
type Span uint32

// Infinite is the sentinel Span meaning "wait indefinitely".
const Infinite Span = math.MaxUint32

// Duration converts s to wall time for the given period.
//
// For Infinite, and for products that do not fit, it returns the largest representable
// duration; callers that need to block forever should check IsInfinite (or use After) instead.
func (s Span) Duration(period time.Duration) time.Duration {
	if period <= 0 {
		return 0
	}
	if s == Infinite || time.Duration(s) > maxDuration/period {
		return maxDuration
	}
	return time.Duration(s) * period
}

const maxDuration = time.Duration(math.MaxInt64)

// IsInfinite reports whether s is the Infinite sentinel.
func (s Span) IsInfinite() bool { return s == Infinite }

// After returns a channel that receives once s ticks of period have elapsed, and a stop func
// that releases the underlying timer.
//
// For Infinite it returns a nil channel, which never becomes ready in a select.
func After(s Span, period time.Duration) (<-chan time.Time, func()) {
	if s == Infinite {
		return nil, func() {}
	}
	t := time.NewTimer(s.Duration(period))
	return t.C, func() { t.Stop() }
}
