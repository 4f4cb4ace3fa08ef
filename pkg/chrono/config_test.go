package chrono

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BYTE-6D65/chrono/pkg/clock"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	if cfg.Source != SourceSystem || cfg.CounterBits != 32 {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHRONO_SOURCE", "counter")
	t.Setenv("CHRONO_COUNTER_BITS", "16")
	t.Setenv("CHRONO_COUNTER_OFFSET", "4294000000")
	t.Setenv("CHRONO_METRICS", "0")
	t.Setenv("CHRONO_TIMER_PERIOD", "250ms")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.Source != SourceCounter || cfg.CounterBits != 16 || cfg.CounterOffset != 4294000000 {
		t.Errorf("Counter settings not applied: %+v", cfg)
	}
	if cfg.MetricsEnabled {
		t.Error("Expected metrics disabled")
	}
	if cfg.TimerPeriod != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %s", cfg.TimerPeriod)
	}
}

func TestLoadFromEnv_BadValue(t *testing.T) {
	t.Setenv("CHRONO_COUNTER_OFFSET", "not-a-number")

	if _, err := LoadFromEnv(); err == nil || !strings.Contains(err.Error(), "CHRONO_COUNTER_OFFSET") {
		t.Errorf("Expected offset parse error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chrono.yaml")
	data := `source: counter
counter_bits: 24
refresh_interval: 100ms
metrics_addr: ":9102"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.CounterBits != 24 || cfg.RefreshInterval != 100*time.Millisecond || cfg.MetricsAddr != ":9102" {
		t.Errorf("File values not applied: %+v", cfg)
	}
	if cfg.EventQueueSize != 64 {
		t.Errorf("Expected default queue size to survive, got %d", cfg.EventQueueSize)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("source: [\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("Expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown source", func(c *Config) { c.Source = "sundial" }},
		{"zero bits", func(c *Config) { c.Source = SourceCounter; c.CounterBits = 0 }},
		{"wide bits", func(c *Config) { c.Source = SourceCounter; c.CounterBits = 40 }},
		{"queue", func(c *Config) { c.EventQueueSize = 0 }},
		{"refresh", func(c *Config) { c.RefreshInterval = 0 }},
		{"period", func(c *Config) { c.TimerPeriod = -time.Second }},
		{"addr without metrics", func(c *Config) { c.MetricsEnabled = false; c.MetricsAddr = ":9102" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfig_String(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source = SourceCounter
	cfg.CounterBits = 8

	s := cfg.String()
	if !strings.Contains(s, "counter (8-bit, offset 0)") || !strings.Contains(s, "enabled") {
		t.Errorf("Unexpected summary:\n%s", s)
	}
}

type wrapCount struct{ n int }

func (w *wrapCount) ObserveWrap()               { w.n++ }
func (w *wrapCount) ObserveSaturation(_ string) {}

func TestNewClock(t *testing.T) {
	clk, err := NewClock(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewClock failed: %v", err)
	}
	if _, ok := clk.(*clock.SystemClock); !ok {
		t.Errorf("Expected SystemClock, got %T", clk)
	}

	cfg := DefaultConfig()
	cfg.Source = SourceCounter
	cfg.CounterBits = 8
	obs := &wrapCount{}

	clk, err = NewClock(cfg, obs)
	if err != nil {
		t.Fatalf("NewClock failed: %v", err)
	}
	wc, ok := clk.(*clock.WrapClock)
	if !ok || wc.Bits() != 8 {
		t.Fatalf("Expected 8-bit WrapClock, got %T", clk)
	}

	// An 8-bit microsecond counter wraps every 256us.
	prev := wc.Now()
	deadline := time.Now().Add(time.Second)
	for wc.Wraps() == 0 && time.Now().Before(deadline) {
		now := wc.Now()
		if now < prev {
			t.Fatalf("Clock went backwards: %d -> %d", prev, now)
		}
		prev = now
	}
	if wc.Wraps() == 0 || obs.n == 0 {
		t.Error("Expected at least one observed wrap")
	}

	cfg.CounterBits = 0
	if _, err := NewClock(cfg, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}
