package clock

import (
	"math"
	"sync"
	"sync/atomic"
)

// Truer maps timestamps from a foreign clock domain (a peer device's widened
// counter, for example) onto a local Clock using local = a*foreign + b.
type Truer interface {
	// Observe records a simultaneous (foreign, local) timestamp pair
	Observe(foreign Micros, local Micros)

	// True maps a foreign timestamp onto the local clock domain
	True(foreign Micros) Micros

	// Snapshot returns the current (a, b) coefficients for inspection
	Snapshot() (a float64, b float64)
}

// MaxDriftPPM bounds the slope of the fit. Crystal oscillators drift well
// under this, so larger slopes indicate bad samples rather than drift.
const MaxDriftPPM = 1000

// AffineTruer implements Truer using a rolling least-squares affine fit.
// Samples are centred on the first observation so the float64 sums keep
// microsecond resolution even for uptimes of years.
type AffineTruer struct {
	mu sync.RWMutex

	a float64
	b float64

	origin    Micros // foreign reference point, set by the first sample
	hasOrigin bool

	window []sample // circular buffer
	index  int
	count  int

	sumX  float64
	sumY  float64
	sumXX float64
	sumXY float64
}

type sample struct {
	x float64 // foreign - origin
	y float64 // local - origin
}

// NewAffineTruer creates a Truer over the last windowSize observations.
// Windows smaller than 2 fall back to 16.
func NewAffineTruer(windowSize int) *AffineTruer {
	if windowSize < 2 {
		windowSize = 16
	}
	return &AffineTruer{
		a:      1.0,
		window: make([]sample, windowSize),
	}
}

// Observe adds a (foreign, local) pair and refits.
func (t *AffineTruer) Observe(foreign Micros, local Micros) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.hasOrigin {
		t.origin = foreign
		t.hasOrigin = true
	}

	s := sample{
		x: float64(foreign.Sub(t.origin)),
		y: float64(local.Sub(t.origin)),
	}

	if t.count == len(t.window) {
		old := t.window[t.index]
		t.sumX -= old.x
		t.sumY -= old.y
		t.sumXX -= old.x * old.x
		t.sumXY -= old.x * old.y
	} else {
		t.count++
	}

	t.window[t.index] = s
	t.index = (t.index + 1) % len(t.window)

	t.sumX += s.x
	t.sumY += s.y
	t.sumXX += s.x * s.x
	t.sumXY += s.x * s.y

	t.refit()
}

// refit recomputes a and b. Must be called with lock held.
func (t *AffineTruer) refit() {
	n := float64(t.count)
	if t.count == 1 {
		// Pure offset until a second sample fixes the slope.
		t.a = 1.0
		t.b = t.sumY - t.sumX
		return
	}

	det := t.sumXX*n - t.sumX*t.sumX
	if det < 1e-9 {
		// All foreign samples identical; keep current fit
		return
	}

	a := (t.sumXY*n - t.sumX*t.sumY) / det
	lo, hi := 1-MaxDriftPPM/1e6, 1+MaxDriftPPM/1e6
	if a < lo {
		a = lo
	}
	if a > hi {
		a = hi
	}

	t.a = a
	// Intercept for the clamped slope passes through the sample mean.
	t.b = (t.sumY - a*t.sumX) / n
}

// True maps a foreign timestamp onto the local clock, saturating.
func (t *AffineTruer) True(foreign Micros) Micros {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.hasOrigin {
		return foreign
	}

	x := float64(foreign.Sub(t.origin))
	y := t.a*x + t.b + float64(t.origin)
	switch {
	case math.IsNaN(y):
		return foreign
	case y >= math.MaxInt64:
		return Micros(math.MaxInt64)
	case y <= math.MinInt64:
		return Micros(math.MinInt64)
	}
	return Micros(y)
}

// Snapshot returns the current affine coefficients (a, b). b is expressed
// relative to the first foreign sample.
func (t *AffineTruer) Snapshot() (a float64, b float64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.a, t.b
}

// Samples returns the number of observations currently in the window.
func (t *AffineTruer) Samples() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// IdentityTruer is used when both domains share one clock.
type IdentityTruer struct{}

// Observe is a no-op.
func (IdentityTruer) Observe(foreign Micros, local Micros) {}

// True returns foreign unchanged.
func (IdentityTruer) True(foreign Micros) Micros {
	return foreign
}

// Snapshot returns the identity transform (1, 0).
func (IdentityTruer) Snapshot() (a float64, b float64) {
	return 1.0, 0.0
}

// MappedClock reads a foreign Clock and maps each reading through a Truer,
// so timestamps land in the Truer's local domain. Reads are clamped so a
// refit never moves the result backward.
type MappedClock struct {
	src  Clock
	t    Truer
	last atomic.Int64
}

// NewMappedClock creates a MappedClock over src. A nil t maps identically.
func NewMappedClock(src Clock, t Truer) *MappedClock {
	if t == nil {
		t = IdentityTruer{}
	}
	m := &MappedClock{src: Or(src), t: t}
	m.last.Store(math.MinInt64)
	return m
}

// Now returns the mapped reading, never less than a previous one.
func (m *MappedClock) Now() Micros {
	v := int64(m.t.True(m.src.Now()))
	for {
		last := m.last.Load()
		if v <= last {
			return Micros(last)
		}
		if m.last.CompareAndSwap(last, v) {
			return Micros(v)
		}
	}
}

// Calibrate observes one simultaneous pair from the foreign clock and the
// local clock, in that order, and returns the local reading.
func Calibrate(t Truer, foreign, local Clock) Micros {
	f := foreign.Now()
	l := local.Now()
	t.Observe(f, l)
	return l
}
