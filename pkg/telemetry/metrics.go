package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/BYTE-6D65/chrono/pkg/format"
	"github.com/BYTE-6D65/chrono/pkg/satmath"
)

// Metrics holds all Prometheus metrics for the time engine.
// It implements clock.Observer so it can be attached to a WrapClock.
type Metrics struct {
	// Clock Metrics
	ClockWraps  prometheus.Counter
	Saturations *prometheus.CounterVec

	// Formatter Metrics
	FormatFailures *prometheus.CounterVec

	// Stopwatch Metrics
	StopwatchInterval prometheus.Histogram
}

var (
	defaultMetrics *Metrics
)

// InitMetrics initializes the Prometheus metrics on registry.
// This should be called once at startup before any metrics are recorded.
func InitMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	// Buckets from 1ms to ~4.6h: stopwatches time anything from a code block
	// to a long-running job.
	intervalBuckets := prometheus.ExponentialBuckets(0.001, 4, 12)

	m := &Metrics{
		ClockWraps: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "chrono_clock_wraps_total",
				Help: "Total number of hardware counter wraparounds detected",
			},
		),

		Saturations: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chrono_saturations_total",
				Help: "Total number of time values clamped to the int64 range",
			},
			[]string{"op"},
		),

		FormatFailures: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chrono_format_failures_total",
				Help: "Total number of duration formatting failures",
			},
			[]string{"code"},
		),

		StopwatchInterval: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chrono_stopwatch_interval_seconds",
				Help:    "Accumulated stopwatch time observed at stop",
				Buckets: intervalBuckets,
			},
		),
	}

	defaultMetrics = m
	return m
}

// Default returns the default metrics instance.
// If InitMetrics hasn't been called, it will initialize with the default registry.
func Default() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics(nil)
	}
	return defaultMetrics
}

// ObserveWrap implements clock.Observer.
func (m *Metrics) ObserveWrap() {
	m.ClockWraps.Inc()
}

// ObserveSaturation implements clock.Observer.
func (m *Metrics) ObserveSaturation(op string) {
	m.Saturations.WithLabelValues(op).Inc()
}

// ObserveFormat records a formatter Status; successes are not counted.
func (m *Metrics) ObserveFormat(st format.Status) {
	if st.OK() {
		return
	}
	m.FormatFailures.WithLabelValues(st.Code.String()).Inc()
}

// ObserveStopwatch records an accumulated stopwatch total in microseconds.
// A saturated total is also counted as a saturation.
func (m *Metrics) ObserveStopwatch(totalMicros int64) {
	if satmath.Saturated(totalMicros) {
		m.ObserveSaturation("stopwatch")
	}
	m.StopwatchInterval.Observe(float64(totalMicros) / float64(satmath.MicrosPerSecond))
}
