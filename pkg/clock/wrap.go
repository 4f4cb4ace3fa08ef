package clock

import (
	"math"
	"sync/atomic"
)

// DefaultBits is the native width of the classic micros() hardware counter.
const DefaultBits = 32

// Observer receives notifications from the clock read path. Implementations
// must be cheap and must not call back into the clock.
type Observer interface {
	// ObserveWrap is called once per detected counter wraparound
	ObserveWrap()

	// ObserveSaturation is called when op produced a clamped value
	ObserveSaturation(op string)
}

// MultiObserver fans notifications out to several observers in order.
type MultiObserver []Observer

// ObserveWrap implements Observer.
func (m MultiObserver) ObserveWrap() {
	for _, o := range m {
		o.ObserveWrap()
	}
}

// ObserveSaturation implements Observer.
func (m MultiObserver) ObserveSaturation(op string) {
	for _, o := range m {
		o.ObserveSaturation(op)
	}
}

// WrapClock widens a narrow Counter into a 64-bit monotonic microsecond value
// by detecting wraparound between successive readings.
//
// The wrap state (last raw reading, high-order accumulator) is packed into a
// single word: the accumulator is always a multiple of 2^bits, so high|raw is
// both the stored state and the widened value. The compare-and-update is a
// CompareAndSwap loop, so the read path is bounded and safe to call from an
// interrupt-like context concurrently with application reads.
//
// A WrapClock must not be copied after first use.
type WrapClock struct {
	src   Counter
	bits  uint
	mask  uint64
	obs   Observer
	state atomic.Uint64 // high | last raw
	wraps atomic.Uint64
}

// WrapOption configures a WrapClock.
type WrapOption func(*WrapClock)

// WithBits sets the native width of the counter, 1..63 bits.
// Out-of-range values fall back to DefaultBits.
func WithBits(bits uint) WrapOption {
	return func(w *WrapClock) {
		w.bits = bits
	}
}

// WithObserver attaches an Observer to the read path.
func WithObserver(obs Observer) WrapOption {
	return func(w *WrapClock) {
		w.obs = obs
	}
}

// NewWrapClock creates a WrapClock reading from src.
func NewWrapClock(src Counter, opts ...WrapOption) *WrapClock {
	w := &WrapClock{
		src:  src,
		bits: DefaultBits,
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.bits == 0 || w.bits > 63 {
		w.bits = DefaultBits
	}
	w.mask = 1<<w.bits - 1

	return w
}

// Now reads the counter and returns the widened monotonic time.
func (w *WrapClock) Now() Micros {
	for {
		old := w.state.Load()
		if old == math.MaxUint64 {
			return w.widen(old)
		}

		// The counter is read inside the loop: a concurrent reader that
		// publishes a newer raw value forces a retry with a fresh reading.
		raw := w.src.Ticks() & w.mask
		last := old & w.mask
		high := old &^ w.mask

		wrapped := raw < last
		next := high | raw
		if wrapped {
			modulus := w.mask + 1
			if high > math.MaxUint64-modulus-w.mask {
				// Accumulator exhausted; pin at the top.
				next = math.MaxUint64
			} else {
				next = (high + modulus) | raw
			}
		}

		if !w.state.CompareAndSwap(old, next) {
			continue
		}

		if wrapped {
			w.wraps.Add(1)
			if w.obs != nil {
				w.obs.ObserveWrap()
			}
		}
		return w.widen(next)
	}
}

// widen converts the packed state to Micros, saturating at math.MaxInt64.
func (w *WrapClock) widen(full uint64) Micros {
	if full > math.MaxInt64 {
		if w.obs != nil {
			w.obs.ObserveSaturation("clock")
		}
		return Micros(math.MaxInt64)
	}
	return Micros(full)
}

// Wraps returns the number of wraparounds detected so far.
func (w *WrapClock) Wraps() uint64 {
	return w.wraps.Load()
}

// Bits returns the configured native counter width.
func (w *WrapClock) Bits() uint {
	return w.bits
}
