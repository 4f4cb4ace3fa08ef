package clock

import (
	"sync/atomic"

	"github.com/BYTE-6D65/chrono/pkg/satmath"
)

// ElapsedMicros returns c.Now()-start in microseconds, saturating.
// A start in the future yields a negative result.
func ElapsedMicros(c Clock, start Micros) int64 {
	return satmath.Sub(int64(c.Now()), int64(start))
}

// ElapsedMillis returns the milliseconds elapsed since startMs, a value
// previously obtained from NowMillis on the same clock.
func ElapsedMillis(c Clock, startMs int64) int64 {
	return satmath.Sub(NowMillis(c), startMs)
}

// ElapsedSeconds returns the seconds elapsed since startS, a value previously
// obtained from NowSeconds on the same clock.
func ElapsedSeconds(c Clock, startS int64) int64 {
	return satmath.Sub(NowSeconds(c), startS)
}

type holder struct {
	c Clock
}

var defaultClock atomic.Pointer[holder]

func init() {
	defaultClock.Store(&holder{c: NewSystemClock()})
}

// Default returns the process-wide clock used when callers pass no clock.
func Default() Clock {
	return defaultClock.Load().c
}

// SetDefault replaces the process-wide clock. A nil clock is ignored.
// Timestamps taken from the previous clock are not comparable with the new one.
func SetDefault(c Clock) {
	if c == nil {
		return
	}
	defaultClock.Store(&holder{c: c})
}

// Or returns c, or the default clock if c is nil.
func Or(c Clock) Clock {
	if c == nil {
		return Default()
	}
	return c
}

// Now returns the default clock's current time.
func Now() Micros {
	return Default().Now()
}

// Since returns the microseconds elapsed on the default clock since start.
func Since(start Micros) int64 {
	return ElapsedMicros(Default(), start)
}

// SinceMillis returns the milliseconds elapsed on the default clock since startMs.
func SinceMillis(startMs int64) int64 {
	return ElapsedMillis(Default(), startMs)
}

// SinceSeconds returns the seconds elapsed on the default clock since startS.
func SinceSeconds(startS int64) int64 {
	return ElapsedSeconds(Default(), startS)
}

// Millis returns the default clock's current time in whole milliseconds.
func Millis() int64 {
	return NowMillis(Default())
}

// Seconds returns the default clock's current time in whole seconds.
func Seconds() int64 {
	return NowSeconds(Default())
}
