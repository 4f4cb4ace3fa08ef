// Package stopwatch implements a start/stop/resume/reset stopwatch that
// accumulates elapsed time across multiple running intervals.
package stopwatch

import (
	"fmt"

	"github.com/BYTE-6D65/chrono/pkg/clock"
	"github.com/BYTE-6D65/chrono/pkg/satmath"
)

// State is the observable state of a Stopwatch.
type State int

const (
	Idle    State = iota // Never started, or reset while stopped
	Running              // Timing a live interval
	Paused               // Stopped after at least one interval
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Running:
		return "RUNNING"
	case Paused:
		return "PAUSED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// Stopwatch accumulates elapsed microseconds over one or more intervals.
// The zero value is a stopped stopwatch on clock.Default.
//
// Not safe for concurrent mutation; use it from a single context.
type Stopwatch struct {
	clk   clock.Clock
	start clock.Micros // interval start, valid while running
	total int64        // closed intervals, microseconds
	state State
}

// New creates a stopped Stopwatch. A nil c uses clock.Default.
func New(c clock.Clock) *Stopwatch {
	return &Stopwatch{clk: c}
}

func (s *Stopwatch) source() clock.Clock {
	if s.clk == nil {
		s.clk = clock.Default()
	}
	return s.clk
}

// Start clears the accumulated time and begins a new interval.
func (s *Stopwatch) Start() {
	s.total = 0
	s.start = s.source().Now()
	s.state = Running
}

// Stop folds the live interval into the total. No-op if already stopped.
func (s *Stopwatch) Stop() {
	if s.state != Running {
		return
	}
	s.total = satmath.Add(s.total, clock.ElapsedMicros(s.source(), s.start))
	s.state = Paused
	s.start = 0
}

// Resume begins a new interval without clearing the total.
// No-op if already running.
func (s *Stopwatch) Resume() {
	if s.state == Running {
		return
	}
	s.start = s.source().Now()
	s.state = Running
}

// Reset clears the total. A running stopwatch keeps running from zero;
// a stopped one returns to Idle.
func (s *Stopwatch) Reset() {
	s.total = 0
	if s.state == Running {
		s.start = s.source().Now()
		return
	}
	s.start = 0
	s.state = Idle
}

// ElapsedMicros returns the accumulated time including any live interval.
// It never changes the stopwatch state.
func (s *Stopwatch) ElapsedMicros() int64 {
	if s.state != Running {
		return s.total
	}
	return satmath.Add(s.total, clock.ElapsedMicros(s.source(), s.start))
}

// ElapsedMillis returns ElapsedMicros in whole milliseconds.
func (s *Stopwatch) ElapsedMillis() int64 {
	return s.ElapsedMicros() / satmath.MicrosPerMilli
}

// ElapsedSeconds returns ElapsedMicros in whole seconds.
func (s *Stopwatch) ElapsedSeconds() int64 {
	return s.ElapsedMicros() / satmath.MicrosPerSecond
}

// Running reports whether an interval is live.
func (s *Stopwatch) Running() bool {
	return s.state == Running
}

// State returns Idle until the first Start, Running while an interval is
// live and Paused after Stop, even when nothing accumulated.
func (s *Stopwatch) State() State {
	return s.state
}
