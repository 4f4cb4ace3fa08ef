package clock

import (
	"time"
)

// Counter is a narrow hardware tick counter. Ticks returns the raw reading;
// only the low native-width bits are significant and the value increases
// monotonically modulo 2^width.
type Counter interface {
	Ticks() uint64
}

// CounterFunc adapts a plain function to the Counter interface.
type CounterFunc func() uint64

// Ticks calls f.
func (f CounterFunc) Ticks() uint64 {
	return f()
}

// SystemCounter emulates a 32-bit microsecond hardware counter (the classic
// micros() primitive) on top of the Go runtime's monotonic clock. The offset
// shifts the raw reading so a wraparound can be reached in seconds instead of
// the ~71.6 minutes a 32-bit microsecond counter normally takes.
type SystemCounter struct {
	epoch  time.Time
	offset uint32
}

// NewSystemCounter creates a counter whose first reading is roughly offset.
func NewSystemCounter(offset uint32) *SystemCounter {
	return &SystemCounter{
		epoch:  time.Now(),
		offset: offset,
	}
}

// Ticks returns elapsed microseconds plus offset, truncated to 32 bits.
func (s *SystemCounter) Ticks() uint64 {
	us := uint64(time.Since(s.epoch).Microseconds())
	return uint64(uint32(us + uint64(s.offset)))
}
