package clock

import (
	"sync"
)

// DeltaCounter is a deterministic Counter that replays a pre-loaded sequence
// of tick deltas. The raw reading wraps at the configured native width, which
// makes it the tool of choice for driving a WrapClock across wraparounds.
type DeltaCounter struct {
	mu sync.RWMutex

	start   uint64   // Initial raw reading
	deltas  []uint64 // Pre-loaded deltas
	current uint64   // Current raw reading
	index   int      // Current position in deltas
	mask    uint64
}

// NewDeltaCounter creates a DeltaCounter of the given native width.
// Out-of-range widths fall back to DefaultBits.
func NewDeltaCounter(bits uint) *DeltaCounter {
	if bits == 0 || bits > 63 {
		bits = DefaultBits
	}
	return &DeltaCounter{
		mask: 1<<bits - 1,
	}
}

// Load initializes the counter with a start reading and deltas.
func (d *DeltaCounter) Load(start uint64, deltas []uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.start = start & d.mask
	d.current = d.start
	d.deltas = make([]uint64, len(deltas))
	copy(d.deltas, deltas)
	d.index = 0
}

// Ticks returns the current raw reading.
func (d *DeltaCounter) Ticks() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current
}

// Set forces the raw reading, masked to the native width.
func (d *DeltaCounter) Set(raw uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = raw & d.mask
}

// Step moves the raw reading forward by n ticks, wrapping at the native width.
func (d *DeltaCounter) Step(n uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = (d.current + n) & d.mask
}

// Advance moves to the next delta in the sequence.
func (d *DeltaCounter) Advance() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.index >= len(d.deltas) {
		return // No more deltas
	}

	d.current = (d.current + d.deltas[d.index]) & d.mask
	d.index++
}

// AdvanceAll advances through all remaining deltas.
func (d *DeltaCounter) AdvanceAll() {
	for d.HasNext() {
		d.Advance()
	}
}

// Reset rewinds to the start reading.
func (d *DeltaCounter) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = d.start
	d.index = 0
}

// HasNext returns true if there are more deltas to advance.
func (d *DeltaCounter) HasNext() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.index < len(d.deltas)
}

// CurrentIndex returns the current position in the delta sequence.
func (d *DeltaCounter) CurrentIndex() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.index
}

// RemainingDeltas returns the number of deltas left to process.
func (d *DeltaCounter) RemainingDeltas() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.deltas) - d.index
}

// ManualClock is a wide Clock whose time only moves when told to.
// Useful for deterministic tests of timers and stopwatches.
type ManualClock struct {
	mu  sync.RWMutex
	now Micros
}

// NewManualClock creates a ManualClock reading start.
func NewManualClock(start Micros) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time.
func (m *ManualClock) Now() Micros {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Advance moves the clock forward by d microseconds, saturating.
// Negative d is ignored; the clock never goes backward.
func (m *ManualClock) Advance(d int64) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Set moves the clock to t if t is not in the past.
func (m *ManualClock) Set(t Micros) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t > m.now {
		m.now = t
	}
}
