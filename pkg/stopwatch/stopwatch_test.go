package stopwatch

import (
	"math"
	"testing"
	"time"

	"github.com/BYTE-6D65/chrono/pkg/clock"
)

func TestStopwatch_ZeroValue(t *testing.T) {
	var sw Stopwatch

	if sw.Running() || sw.State() != Idle {
		t.Errorf("Expected idle zero value, got %v", sw.State())
	}
	if sw.ElapsedMicros() != 0 {
		t.Errorf("Expected 0, got %d", sw.ElapsedMicros())
	}

	// Stop on a stopped stopwatch is a no-op
	sw.Stop()
	if sw.ElapsedMicros() != 0 {
		t.Errorf("Expected 0 after no-op stop, got %d", sw.ElapsedMicros())
	}
}

func TestStopwatch_StartStopIdempotentReads(t *testing.T) {
	clk := clock.NewManualClock(0)
	sw := New(clk)

	sw.Start()
	clk.Advance(1_500_000)
	sw.Stop()

	first := sw.ElapsedMillis()
	clk.Advance(10_000_000)
	second := sw.ElapsedMillis()

	if first != 1500 || second != 1500 {
		t.Errorf("Expected stable 1500ms once stopped, got %d then %d", first, second)
	}
	if sw.State() != Paused {
		t.Errorf("Expected PAUSED, got %v", sw.State())
	}
}

func TestStopwatch_ResumeAccumulates(t *testing.T) {
	clk := clock.NewManualClock(0)
	sw := New(clk)

	sw.Start()
	clk.Advance(400)
	sw.Stop()

	clk.Advance(1_000) // not counted
	sw.Resume()
	clk.Advance(600)

	if sw.ElapsedMicros() != 1_000 {
		t.Errorf("Expected 1000 while running, got %d", sw.ElapsedMicros())
	}

	// Resume while running is a no-op
	sw.Resume()
	clk.Advance(100)
	sw.Stop()
	if sw.ElapsedMicros() != 1_100 {
		t.Errorf("Expected 1100, got %d", sw.ElapsedMicros())
	}
}

func TestStopwatch_ReadsDoNotMutate(t *testing.T) {
	clk := clock.NewManualClock(0)
	sw := New(clk)

	sw.Start()
	clk.Advance(700)
	_ = sw.ElapsedMicros()
	_ = sw.ElapsedSeconds()
	clk.Advance(300)

	if sw.ElapsedMicros() != 1_000 {
		t.Errorf("Expected reads to leave the interval intact, got %d", sw.ElapsedMicros())
	}
}

func TestStopwatch_StartClearsTotal(t *testing.T) {
	clk := clock.NewManualClock(0)
	sw := New(clk)

	sw.Start()
	clk.Advance(5_000)
	sw.Stop()

	sw.Start()
	clk.Advance(200)
	if sw.ElapsedMicros() != 200 {
		t.Errorf("Expected Start to clear the total, got %d", sw.ElapsedMicros())
	}
}

func TestStopwatch_ResetWhileRunning(t *testing.T) {
	clk := clock.NewManualClock(0)
	sw := New(clk)

	sw.Start()
	clk.Advance(3_000)
	sw.Reset()

	if !sw.Running() {
		t.Fatal("Reset must not stop a running stopwatch")
	}
	if sw.ElapsedMicros() != 0 {
		t.Errorf("Expected 0 right after reset, got %d", sw.ElapsedMicros())
	}

	clk.Advance(250)
	if sw.ElapsedMicros() != 250 {
		t.Errorf("Expected fresh interval of 250, got %d", sw.ElapsedMicros())
	}
}

func TestStopwatch_ResetWhileStopped(t *testing.T) {
	clk := clock.NewManualClock(0)
	sw := New(clk)

	sw.Start()
	clk.Advance(3_000)
	sw.Stop()
	sw.Reset()

	if sw.Running() || sw.State() != Idle || sw.ElapsedMicros() != 0 {
		t.Errorf("Expected idle at zero, got state=%v elapsed=%d", sw.State(), sw.ElapsedMicros())
	}
}

func TestStopwatch_ZeroLengthIntervalIsPaused(t *testing.T) {
	clk := clock.NewManualClock(0)
	sw := New(clk)

	sw.Start()
	sw.Stop()

	if sw.State() != Paused {
		t.Errorf("Expected PAUSED after an empty interval, got %v", sw.State())
	}
	if sw.ElapsedMicros() != 0 {
		t.Errorf("Expected 0, got %d", sw.ElapsedMicros())
	}

	sw.Resume()
	if sw.State() != Running {
		t.Errorf("Expected RUNNING after resume, got %v", sw.State())
	}
}

func TestStopwatch_Saturates(t *testing.T) {
	clk := clock.NewManualClock(0)
	sw := New(clk)

	sw.Start()
	clk.Set(clock.Micros(math.MaxInt64 - 10))
	sw.Stop()
	sw.Resume()
	clk.Advance(math.MaxInt64)

	if sw.ElapsedMicros() != math.MaxInt64 {
		t.Errorf("Expected saturated total, got %d", sw.ElapsedMicros())
	}
}

func TestStopwatch_RealClock(t *testing.T) {
	sw := New(clock.NewSystemClock())
	sw.Start()
	time.Sleep(20 * time.Millisecond)
	sw.Stop()

	ms := sw.ElapsedMillis()
	if ms < 20 {
		t.Errorf("Expected at least 20ms, got %d", ms)
	}
	if ms != sw.ElapsedMillis() {
		t.Error("Stopped stopwatch reads must be idempotent")
	}
}

func TestState_String(t *testing.T) {
	if Running.String() != "RUNNING" || State(9).String() != "UNKNOWN(9)" {
		t.Errorf("Unexpected state strings %q %q", Running.String(), State(9).String())
	}
}
