// Package chrono wires the configured clock source, observers and
// metrics together for front-ends.
package chrono

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BYTE-6D65/chrono/pkg/clock"
)

// Clock sources.
const (
	SourceSystem  = "system"  // Native 64-bit monotonic clock
	SourceCounter = "counter" // Emulated narrow counter behind a WrapClock
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("chrono: invalid config")

// Config holds the tunable parameters of the time engine.
// Values can be set via:
//  1. Code (programmatic configuration)
//  2. Environment variables (CHRONO_*)
//  3. Config file (YAML)
//
// Precedence: Code > Env Vars > Config File > Defaults
type Config struct {
	// Clock Source
	Source        string `yaml:"source"`         // "system" or "counter"
	CounterBits   uint   `yaml:"counter_bits"`   // Native counter width, 1..32 for the emulated counter
	CounterOffset uint32 `yaml:"counter_offset"` // Raw start offset of the emulated counter

	// Telemetry
	MetricsEnabled bool   `yaml:"metrics_enabled"` // Register Prometheus metrics
	MetricsAddr    string `yaml:"metrics_addr"`    // Serve /metrics here when set

	// Events
	EventQueueSize int `yaml:"event_queue_size"` // Pending clock notices before dropping

	// Front-end
	RefreshInterval time.Duration `yaml:"refresh_interval"` // Demo redraw period
	TimerPeriod     time.Duration `yaml:"timer_period"`     // Demo periodic timer
}

// DefaultConfig returns the native clock with metrics on and no exporter.
func DefaultConfig() Config {
	return Config{
		Source:      SourceSystem,
		CounterBits: clock.DefaultBits,

		MetricsEnabled: true,

		EventQueueSize: 64,

		RefreshInterval: 50 * time.Millisecond,
		TimerPeriod:     time.Second,
	}
}

// LoadFile reads a YAML config file on top of DefaultConfig.
// Keys missing from the file keep their defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// LoadFromEnv loads configuration from environment variables.
// Returns a Config with defaults, overridden by any CHRONO_* env vars found.
func LoadFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from CHRONO_* environment variables.
// Unparseable values are reported rather than ignored.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("CHRONO_SOURCE"); v != "" {
		c.Source = v
	}
	if v := os.Getenv("CHRONO_COUNTER_BITS"); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return fmt.Errorf("CHRONO_COUNTER_BITS: %w", err)
		}
		c.CounterBits = uint(n)
	}
	if v := os.Getenv("CHRONO_COUNTER_OFFSET"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("CHRONO_COUNTER_OFFSET: %w", err)
		}
		c.CounterOffset = uint32(n)
	}
	if v := os.Getenv("CHRONO_METRICS"); v != "" {
		c.MetricsEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("CHRONO_METRICS_ADDR"); v != "" {
		c.MetricsAddr = v
	}
	if v := os.Getenv("CHRONO_EVENT_QUEUE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CHRONO_EVENT_QUEUE: %w", err)
		}
		c.EventQueueSize = n
	}
	if v := os.Getenv("CHRONO_REFRESH"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CHRONO_REFRESH: %w", err)
		}
		c.RefreshInterval = d
	}
	if v := os.Getenv("CHRONO_TIMER_PERIOD"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CHRONO_TIMER_PERIOD: %w", err)
		}
		c.TimerPeriod = d
	}
	return nil
}

// Validate checks that configuration values are sensible.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceSystem:
	case SourceCounter:
		// The emulated counter is 32 bits wide; a wider mask would miss wraps.
		if c.CounterBits == 0 || c.CounterBits > 32 {
			return fmt.Errorf("%w: counter bits must be 1..32, got %d", ErrInvalidConfig, c.CounterBits)
		}
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidConfig, c.Source)
	}

	if c.EventQueueSize <= 0 {
		return fmt.Errorf("%w: event queue size must be > 0, got %d", ErrInvalidConfig, c.EventQueueSize)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("%w: refresh interval must be > 0, got %s", ErrInvalidConfig, c.RefreshInterval)
	}
	if c.TimerPeriod <= 0 {
		return fmt.Errorf("%w: timer period must be > 0, got %s", ErrInvalidConfig, c.TimerPeriod)
	}
	if c.MetricsAddr != "" && !c.MetricsEnabled {
		return fmt.Errorf("%w: metrics address set with metrics disabled", ErrInvalidConfig)
	}

	return nil
}

// String returns a human-readable summary of the configuration.
func (c *Config) String() string {
	source := c.Source
	if c.Source == SourceCounter {
		source = fmt.Sprintf("%s (%d-bit, offset %d)", c.Source, c.CounterBits, c.CounterOffset)
	}
	metrics := "disabled"
	if c.MetricsEnabled {
		metrics = "enabled"
		if c.MetricsAddr != "" {
			metrics += " on " + c.MetricsAddr
		}
	}

	return fmt.Sprintf(`Chrono Configuration:
  Clock Source: %s
  Metrics:      %s
  Event Queue:  %d

  Demo:
    Refresh:      %s
    Timer Period: %s
`,
		source,
		metrics,
		c.EventQueueSize,
		c.RefreshInterval,
		c.TimerPeriod,
	)
}

// NewClock builds the configured clock. obs may be nil; it is only
// attached to the counter source, which is the one that can wrap.
func NewClock(cfg Config, obs clock.Observer) (clock.Clock, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Source == SourceSystem {
		return clock.NewSystemClock(), nil
	}

	opts := []clock.WrapOption{clock.WithBits(cfg.CounterBits)}
	if obs != nil {
		opts = append(opts, clock.WithObserver(obs))
	}
	return clock.NewWrapClock(clock.NewSystemCounter(cfg.CounterOffset), opts...), nil
}
