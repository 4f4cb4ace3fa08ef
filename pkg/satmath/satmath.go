// Package satmath provides overflow-checked int64 arithmetic that clamps to
// math.MinInt64 / math.MaxInt64 instead of wrapping.
//
// Time arithmetic in this module never fails: a duration that cannot be
// represented is reported as the nearest representable extreme.
package satmath

import "math"

const (
	// MicrosPerMilli is the number of microseconds in a millisecond.
	MicrosPerMilli int64 = 1000

	// MicrosPerSecond is the number of microseconds in a second.
	MicrosPerSecond int64 = 1000000
)

// Add returns a+b, clamped to the int64 range.
func Add(a, b int64) int64 {
	s := a + b
	// Overflow iff both operands share a sign that the sum does not.
	if (a >= 0) == (b >= 0) && (s >= 0) != (a >= 0) {
		if b >= 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return s
}

// Sub returns a-b, clamped to the int64 range.
func Sub(a, b int64) int64 {
	d := a - b
	if (a >= 0) != (b >= 0) && (d >= 0) != (a >= 0) {
		if b >= 0 {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	return d
}

// Mul returns a*b, clamped to the int64 range.
func Mul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	// -1 * MinInt64 is the one product whose negation overflows.
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return math.MaxInt64
	}

	p := a * b
	if p/b != a {
		if (a < 0) == (b < 0) {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return p
}

// Abs returns the magnitude of v as a uint64. Abs(math.MinInt64) is 1<<63.
func Abs(v int64) uint64 {
	if v >= 0 {
		return uint64(v)
	}
	if v == math.MinInt64 {
		return uint64(math.MaxInt64) + 1
	}
	return uint64(-v)
}

// MillisToMicros converts milliseconds to microseconds, saturating.
func MillisToMicros(ms int64) int64 {
	return Mul(ms, MicrosPerMilli)
}

// SecondsToMicros converts seconds to microseconds, saturating.
func SecondsToMicros(s int64) int64 {
	return Mul(s, MicrosPerSecond)
}

// Saturated reports whether v sits at either clamp boundary.
func Saturated(v int64) bool {
	return v == math.MaxInt64 || v == math.MinInt64
}
