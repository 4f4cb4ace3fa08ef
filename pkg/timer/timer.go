// Package timer provides free-running elapsed-time counters at microsecond,
// millisecond and second granularity.
//
// A timer stores only a baseline timestamp; Value recomputes the elapsed time
// against the live clock on every call. Assigning a value moves the baseline
// so the next read reports that value. Sub moves the baseline later, which
// lowers later reads by the delta; Add moves it earlier and raises them. That
// lets the periodic idiom keep the remainder instead of dropping it:
//
//	if t.Value() >= period {
//		t.Sub(period)
//		// do periodic work
//	}
//
// Timers are small values and may be copied. They are not safe for
// concurrent mutation.
package timer

import (
	"github.com/BYTE-6D65/chrono/pkg/clock"
	"github.com/BYTE-6D65/chrono/pkg/satmath"
)

// base holds what every granularity shares: a clock and a baseline in
// microseconds.
type base struct {
	clk      clock.Clock
	baseline clock.Micros
}

func newBase(c clock.Clock) base {
	c = clock.Or(c)
	return base{clk: c, baseline: c.Now()}
}

// elapsed returns microseconds since the baseline, saturating.
func (b *base) elapsed() int64 {
	return clock.ElapsedMicros(b.clk, b.baseline)
}

// rebase sets the baseline so elapsed() currently reads us.
func (b *base) rebase(us int64) {
	b.baseline = clock.Micros(satmath.Sub(int64(b.clk.Now()), us))
}

// later moves the baseline us microseconds later, lowering reads.
func (b *base) later(us int64) {
	b.baseline = b.baseline.Add(us)
}

// earlier moves the baseline us microseconds earlier, raising reads.
func (b *base) earlier(us int64) {
	b.baseline = clock.Micros(satmath.Sub(int64(b.baseline), us))
}

// Baseline returns the timestamp the timer measures from.
func (b *base) Baseline() clock.Micros {
	return b.baseline
}

// Micros counts elapsed microseconds.
type Micros struct {
	base
}

// NewMicros starts a Micros timer at zero. A nil c uses clock.Default.
func NewMicros(c clock.Clock) Micros {
	return Micros{newBase(c)}
}

// MicrosOf starts a Micros timer already reading v.
func MicrosOf(c clock.Clock, v int64) Micros {
	t := NewMicros(c)
	t.Set(v)
	return t
}

// Value returns the microseconds elapsed since the baseline.
func (t *Micros) Value() int64 {
	return t.elapsed()
}

// Set rebases the timer so it currently reads v.
func (t *Micros) Set(v int64) {
	t.rebase(v)
}

// Sub lowers future reads by d.
func (t *Micros) Sub(d int64) {
	t.later(d)
}

// Add raises future reads by d.
func (t *Micros) Add(d int64) {
	t.earlier(d)
}

// Minus returns a copy of t with Sub(d) applied.
func (t Micros) Minus(d int64) Micros {
	t.Sub(d)
	return t
}

// Plus returns a copy of t with Add(d) applied.
func (t Micros) Plus(d int64) Micros {
	t.Add(d)
	return t
}

// Due reports whether period microseconds have elapsed and, if so, consumes
// one period while keeping any overshoot.
func (t *Micros) Due(period int64) bool {
	if t.Value() < period {
		return false
	}
	t.Sub(period)
	return true
}

// Millis counts elapsed milliseconds. The baseline keeps microsecond
// resolution so sub-millisecond remainders are never lost.
type Millis struct {
	base
}

// NewMillis starts a Millis timer at zero. A nil c uses clock.Default.
func NewMillis(c clock.Clock) Millis {
	return Millis{newBase(c)}
}

// MillisOf starts a Millis timer already reading v.
func MillisOf(c clock.Clock, v int64) Millis {
	t := NewMillis(c)
	t.Set(v)
	return t
}

// Value returns the milliseconds elapsed since the baseline.
func (t *Millis) Value() int64 {
	return t.elapsed() / satmath.MicrosPerMilli
}

// Set rebases the timer so it currently reads v.
func (t *Millis) Set(v int64) {
	t.rebase(satmath.MillisToMicros(v))
}

// Sub lowers future reads by d.
func (t *Millis) Sub(d int64) {
	t.later(satmath.MillisToMicros(d))
}

// Add raises future reads by d.
func (t *Millis) Add(d int64) {
	t.earlier(satmath.MillisToMicros(d))
}

// Minus returns a copy of t with Sub(d) applied.
func (t Millis) Minus(d int64) Millis {
	t.Sub(d)
	return t
}

// Plus returns a copy of t with Add(d) applied.
func (t Millis) Plus(d int64) Millis {
	t.Add(d)
	return t
}

// Due reports whether period milliseconds have elapsed and, if so, consumes
// one period while keeping any overshoot.
func (t *Millis) Due(period int64) bool {
	if t.Value() < period {
		return false
	}
	t.Sub(period)
	return true
}

// Seconds counts elapsed seconds.
type Seconds struct {
	base
}

// NewSeconds starts a Seconds timer at zero. A nil c uses clock.Default.
func NewSeconds(c clock.Clock) Seconds {
	return Seconds{newBase(c)}
}

// SecondsOf starts a Seconds timer already reading v.
func SecondsOf(c clock.Clock, v int64) Seconds {
	t := NewSeconds(c)
	t.Set(v)
	return t
}

// Value returns the seconds elapsed since the baseline.
func (t *Seconds) Value() int64 {
	return t.elapsed() / satmath.MicrosPerSecond
}

// Set rebases the timer so it currently reads v.
func (t *Seconds) Set(v int64) {
	t.rebase(satmath.SecondsToMicros(v))
}

// Sub lowers future reads by d.
func (t *Seconds) Sub(d int64) {
	t.later(satmath.SecondsToMicros(d))
}

// Add raises future reads by d.
func (t *Seconds) Add(d int64) {
	t.earlier(satmath.SecondsToMicros(d))
}

// Minus returns a copy of t with Sub(d) applied.
func (t Seconds) Minus(d int64) Seconds {
	t.Sub(d)
	return t
}

// Plus returns a copy of t with Add(d) applied.
func (t Seconds) Plus(d int64) Seconds {
	t.Add(d)
	return t
}

// Due reports whether period seconds have elapsed and, if so, consumes one
// period while keeping any overshoot.
func (t *Seconds) Due(period int64) bool {
	if t.Value() < period {
		return false
	}
	t.Sub(period)
	return true
}
