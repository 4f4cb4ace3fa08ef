package chrono

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BYTE-6D65/chrono/pkg/clock"
	"github.com/BYTE-6D65/chrono/pkg/event"
	"github.com/BYTE-6D65/chrono/pkg/format"
	"github.com/BYTE-6D65/chrono/pkg/registry"
	"github.com/BYTE-6D65/chrono/pkg/stopwatch"
	"github.com/BYTE-6D65/chrono/pkg/telemetry"
)

// Engine wires the configured clock to its observers: Prometheus metrics
// and an event bus fed by a Notifier. It also keeps named stopwatches.
//
// Every event on the bus is stamped in the configured clock's domain. The
// notifier cannot read that clock from inside its own observer callback, so
// it reads the native clock mapped through a Truer that Now keeps calibrated.
type Engine struct {
	cfg         Config
	clock       clock.Clock
	native      clock.Clock
	truer       *clock.AffineTruer
	bus         *event.InMemoryBus
	notifier    *event.Notifier
	metrics     *telemetry.Metrics
	gatherer    prometheus.Gatherer
	stopwatches *registry.Registry[*stopwatch.Stopwatch]
}

// New builds an Engine from cfg. Metrics are registered on a private
// registry so several engines can coexist in one process.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:         cfg,
		native:      clock.NewSystemClock(),
		truer:       clock.NewAffineTruer(calibrationWindow),
		bus:         event.NewInMemoryBus(event.WithBufferSize(cfg.EventQueueSize), event.WithDropSlow(true)),
		stopwatches: registry.New[*stopwatch.Stopwatch](),
	}

	stamp := clock.NewMappedClock(e.native, e.truer)
	e.notifier = event.NewNotifier(e.bus, stamp, "clock:"+cfg.Source, cfg.CounterBits, cfg.EventQueueSize)

	observers := clock.MultiObserver{e.notifier}
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		e.metrics = telemetry.InitMetrics(reg)
		e.gatherer = reg
		observers = append(observers, e.metrics)
	}

	clk, err := NewClock(cfg, observers)
	if err != nil {
		return nil, err
	}
	e.clock = clk
	e.Now()

	return e, nil
}

// calibrationWindow is the number of (native, configured) pairs kept.
const calibrationWindow = 32

// Now reads the configured clock and records the pairing with the native
// clock, keeping the notifier's stamps in the same domain.
func (e *Engine) Now() clock.Micros {
	return clock.Calibrate(e.truer, e.native, e.clock)
}

// Format formats us into buf like format.FormatDuration and counts
// failures in the metrics.
func (e *Engine) Format(us int64, buf []byte) (int, format.Status) {
	n, st := format.FormatDuration(us, buf)
	if e.metrics != nil {
		e.metrics.ObserveFormat(st)
	}
	return n, st
}

// FormatString returns the text form of us, or "" on failure.
func (e *Engine) FormatString(us int64) string {
	var b [format.MinBufferSize]byte
	n, st := e.Format(us, b[:])
	if !st.OK() {
		return ""
	}
	return string(b[:n])
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Clock returns the configured clock.
func (e *Engine) Clock() clock.Clock {
	return e.clock
}

// Bus returns the timing event bus.
func (e *Engine) Bus() event.Bus {
	return e.bus
}

// Metrics returns the engine metrics, or nil when disabled.
func (e *Engine) Metrics() *telemetry.Metrics {
	return e.metrics
}

// Notifier returns the clock-to-bus bridge.
func (e *Engine) Notifier() *event.Notifier {
	return e.notifier
}

// Stopwatch returns the named stopwatch, creating it on first use.
func (e *Engine) Stopwatch(name string) *stopwatch.Stopwatch {
	return e.stopwatches.GetOrCreate(name, func() *stopwatch.Stopwatch {
		return stopwatch.New(e.clock)
	})
}

// Stopwatches lists the named stopwatches sorted by name.
func (e *Engine) Stopwatches() []registry.Entry[*stopwatch.Stopwatch] {
	return e.stopwatches.List()
}

// StopStopwatch stops the named stopwatch, records its total and publishes
// a chrono.stopwatch.stopped event. It is a no-op for unknown names.
func (e *Engine) StopStopwatch(ctx context.Context, name string) error {
	sw, ok := e.stopwatches.Get(name)
	if !ok {
		return nil
	}
	sw.Stop()

	total := sw.ElapsedMicros()
	if e.metrics != nil {
		e.metrics.ObserveStopwatch(total)
	}

	payload := event.StopwatchPayload{
		Name:          name,
		ElapsedMicros: total,
		Formatted:     e.FormatString(total),
	}
	evt, err := event.NewEvent(event.TypeStopwatchStopped, "stopwatch:"+name, e.Now(), payload, event.JSONCodec{})
	if err != nil {
		return fmt.Errorf("encode stopwatch event: %w", err)
	}
	return e.bus.Publish(ctx, *evt)
}

// TimerDue publishes a chrono.timer.due event for the named periodic timer.
func (e *Engine) TimerDue(ctx context.Context, name string, periodMillis int64, fired uint64) error {
	payload := event.TimerPayload{
		Name:         name,
		PeriodMillis: periodMillis,
		Fired:        fired,
	}
	evt, err := event.NewEvent(event.TypeTimerDue, "timer:"+name, e.Now(), payload, event.JSONCodec{})
	if err != nil {
		return fmt.Errorf("encode timer event: %w", err)
	}
	return e.bus.Publish(ctx, *evt)
}

// Run drives the notifier and, when configured, the metrics endpoint
// until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() { errCh <- e.notifier.Run(ctx) }()

	running := 1
	if e.gatherer != nil && e.cfg.MetricsAddr != "" {
		running++
		go func() { errCh <- e.serveMetrics(ctx) }()
	}

	var first error
	for i := 0; i < running; i++ {
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) && first == nil {
			first = err
		}
	}
	return first
}

func (e *Engine) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              e.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return ctx.Err()
}

// Shutdown closes the event bus.
func (e *Engine) Shutdown() error {
	if err := e.bus.Close(); err != nil {
		return fmt.Errorf("bus shutdown: %w", err)
	}
	return nil
}
