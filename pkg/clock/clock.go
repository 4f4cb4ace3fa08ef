package clock

import (
	"time"

	"github.com/BYTE-6D65/chrono/pkg/satmath"
)

// Micros represents a monotonic timestamp in microseconds since an arbitrary
// epoch (process or boot start). int64 gives ~292,000 years of range; values
// saturate at math.MaxInt64 instead of wrapping.
type Micros int64

// Clock is a monotonic microsecond time source.
// Now must never go backward between two calls on the same clock.
type Clock interface {
	// Now returns the current monotonic time
	Now() Micros
}

// Millis returns m in whole milliseconds, truncated toward zero.
func (m Micros) Millis() int64 {
	return int64(m) / satmath.MicrosPerMilli
}

// Seconds returns m in whole seconds, truncated toward zero.
func (m Micros) Seconds() int64 {
	return int64(m) / satmath.MicrosPerSecond
}

// Add returns m shifted by d microseconds, saturating.
func (m Micros) Add(d int64) Micros {
	return Micros(satmath.Add(int64(m), d))
}

// Sub returns m-o in microseconds, saturating.
func (m Micros) Sub(o Micros) int64 {
	return satmath.Sub(int64(m), int64(o))
}

// Duration converts m to a time.Duration, saturating at the Duration range.
func (m Micros) Duration() time.Duration {
	return time.Duration(satmath.Mul(int64(m), int64(time.Microsecond)))
}

// FromDuration converts a time.Duration to Micros, truncating toward zero.
func FromDuration(d time.Duration) Micros {
	return Micros(d.Microseconds())
}

// NowMillis returns c's current time in whole milliseconds.
func NowMillis(c Clock) int64 {
	return c.Now().Millis()
}

// NowSeconds returns c's current time in whole seconds.
func NowSeconds(c Clock) int64 {
	return c.Now().Seconds()
}

// SystemClock uses the Go runtime's monotonic clock as a native 64-bit
// microsecond source. No wrap tracking is needed.
type SystemClock struct {
	epoch time.Time // Cached at creation to provide stable monotonic base
}

// NewSystemClock creates a new SystemClock anchored at the current time.
func NewSystemClock() *SystemClock {
	return &SystemClock{
		epoch: time.Now(),
	}
}

// Now returns the current monotonic time in microseconds since epoch.
func (s *SystemClock) Now() Micros {
	// time.Since reads the monotonic reading embedded in epoch
	return FromDuration(time.Since(s.epoch))
}
