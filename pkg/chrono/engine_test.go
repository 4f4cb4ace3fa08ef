package chrono

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/BYTE-6D65/chrono/pkg/clock"
	"github.com/BYTE-6D65/chrono/pkg/event"
	"github.com/BYTE-6D65/chrono/pkg/format"
)

func TestEngine_New(t *testing.T) {
	e, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer e.Shutdown()

	if e.Clock() == nil || e.Bus() == nil || e.Notifier() == nil {
		t.Fatal("Engine components should be initialized")
	}
	if e.Metrics() == nil {
		t.Error("Expected metrics with the default config")
	}

	cfg := DefaultConfig()
	cfg.MetricsEnabled = false
	e2, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer e2.Shutdown()
	if e2.Metrics() != nil {
		t.Error("Expected no metrics when disabled")
	}

	cfg.Source = "bogus"
	if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestEngine_StopwatchEvents(t *testing.T) {
	e, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer e.Shutdown()

	ctx := context.Background()
	sub, err := e.Bus().Subscribe(ctx, event.Filter{Types: []string{event.TypeStopwatchStopped}})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	sw := e.Stopwatch("build")
	if e.Stopwatch("build") != sw {
		t.Fatal("Expected the same named stopwatch")
	}
	sw.Start()
	time.Sleep(2 * time.Millisecond)

	if err := e.StopStopwatch(ctx, "build"); err != nil {
		t.Fatalf("StopStopwatch failed: %v", err)
	}
	if err := e.StopStopwatch(ctx, "unknown"); err != nil {
		t.Errorf("Unknown stopwatch should be a no-op, got %v", err)
	}

	select {
	case evt := <-sub.Events():
		var p event.StopwatchPayload
		if err := evt.DecodePayload(&p, event.JSONCodec{}); err != nil {
			t.Fatalf("DecodePayload failed: %v", err)
		}
		if p.Name != "build" || p.ElapsedMicros < 2_000 || p.Formatted == "" {
			t.Errorf("Unexpected payload %+v", p)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for stopwatch event")
	}

	if len(e.Stopwatches()) != 1 {
		t.Errorf("Expected 1 stopwatch, got %d", len(e.Stopwatches()))
	}
}

func TestEngine_RunPublishesWraps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source = SourceCounter
	cfg.CounterBits = 10

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer e.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := e.Bus().Subscribe(ctx, event.Filter{Types: []string{event.TypeClockWrapped}})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	// A 10-bit microsecond counter wraps about every millisecond.
	deadline := time.After(2 * time.Second)
	for received := false; !received; {
		e.Clock().Now()
		select {
		case evt := <-sub.Events():
			if evt.Source != "clock:counter" {
				t.Errorf("Unexpected source %s", evt.Source)
			}
			received = true
		case <-deadline:
			t.Fatal("Timeout waiting for wrap event")
		default:
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Expected clean shutdown, got %v", err)
	}
}

func TestEngine_TimerDue(t *testing.T) {
	e, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer e.Shutdown()

	ctx := context.Background()
	sub, err := e.Bus().Subscribe(ctx, event.Filter{Types: []string{"chrono.timer.*"}})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := e.TimerDue(ctx, "tick", 1000, 3); err != nil {
		t.Fatalf("TimerDue failed: %v", err)
	}

	evt := <-sub.Events()
	var p event.TimerPayload
	if err := evt.DecodePayload(&p, event.JSONCodec{}); err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	if evt.Source != "timer:tick" || p.PeriodMillis != 1000 || p.Fired != 3 {
		t.Errorf("Unexpected event %s %+v", evt.Source, p)
	}
}

func TestEngine_WrapEventsShareClockDomain(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source = SourceCounter
	cfg.CounterOffset = math.MaxUint32 - 20_000 // wraps ~20ms in

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer e.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := e.Bus().Subscribe(ctx, event.Filter{Types: []string{event.TypeClockWrapped}})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	go e.Run(ctx)

	deadline := time.After(2 * time.Second)
	for {
		now := e.Now()
		select {
		case evt := <-sub.Events():
			skew := now.Sub(evt.Timestamp)
			if skew < 0 {
				skew = -skew
			}
			if skew > 500_000 {
				t.Errorf("Wrap stamped at %d, clock reads %d", evt.Timestamp, now)
			}
			if evt.Timestamp < clock.Micros(math.MaxUint32-20_000) {
				t.Errorf("Wrap stamp %d is outside the counter domain", evt.Timestamp)
			}
			return
		case <-deadline:
			t.Fatal("Timeout waiting for wrap event")
		default:
			time.Sleep(100 * time.Microsecond)
		}
	}
}

func TestEngine_StopwatchEventStampedInClockDomain(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source = SourceCounter
	cfg.CounterOffset = 4_000_000_000

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer e.Shutdown()

	ctx := context.Background()
	sub, err := e.Bus().Subscribe(ctx, event.Filter{Types: []string{event.TypeStopwatchStopped}})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	e.Stopwatch("lap").Start()
	if err := e.StopStopwatch(ctx, "lap"); err != nil {
		t.Fatalf("StopStopwatch failed: %v", err)
	}

	evt := <-sub.Events()
	if evt.Timestamp < 4_000_000_000 {
		t.Errorf("Expected stamp in the counter domain, got %d", evt.Timestamp)
	}
}

func TestEngine_FormatCountsFailures(t *testing.T) {
	e, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer e.Shutdown()

	var small [8]byte
	if _, st := e.Format(1_500, small[:]); st.Code != format.InvalidArgument {
		t.Errorf("Expected INVALID_ARGUMENT, got %v", st)
	}
	if _, st := e.Format(1_500, nil); st.OK() {
		t.Error("Expected failure for nil buffer")
	}
	if got := e.FormatString(1_500); got != "0:00:00.001" {
		t.Errorf("Expected 0:00:00.001, got %q", got)
	}

	var m dto.Metric
	if err := e.Metrics().FormatFailures.WithLabelValues("INVALID_ARGUMENT").Write(&m); err != nil {
		t.Fatalf("Failed to read counter: %v", err)
	}
	if got := m.GetCounter().GetValue(); got != 2 {
		t.Errorf("Expected 2 recorded failures, got %v", got)
	}
}
