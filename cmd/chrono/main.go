package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/BYTE-6D65/chrono/pkg/chrono"
	"github.com/BYTE-6D65/chrono/pkg/clock"
	"github.com/BYTE-6D65/chrono/pkg/format"
	"github.com/BYTE-6D65/chrono/pkg/telemetry"
)

const version = "0.1.0"

func main() {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	// If no arguments or "demo", launch interactive TUI
	if len(os.Args) < 2 || os.Args[1] == "demo" {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		if err := startTUI(cfg); err != nil {
			log.Fatalf("TUI error: %v", err)
		}
		return
	}

	cmd := os.Args[1]

	switch cmd {
	case "format":
		if err := runFormat(telemetry.Default(), os.Args[2:]); err != nil {
			log.Fatalf("ERROR: %v", err)
		}
	case "wrap-test":
		if err := runWrapTest(os.Args[2:]); err != nil {
			log.Fatalf("ERROR: %v", err)
		}
	case "config":
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		fmt.Print(cfg.String())
	case "version":
		fmt.Printf("chrono v%s\n", version)
		fmt.Printf("Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	case "help", "-h", "--help":
		usage()
	default:
		log.Fatalf("ERROR: unknown command %q (try 'chrono help')", cmd)
	}
}

// loadConfig reads CHRONO_CONFIG when set, then applies CHRONO_* overrides.
func loadConfig() (chrono.Config, error) {
	path := os.Getenv("CHRONO_CONFIG")
	if path == "" {
		return chrono.LoadFromEnv()
	}

	cfg, err := chrono.LoadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// runFormat renders each argument into a buffer of -buf bytes, recording
// formatter failures in m.
func runFormat(m *telemetry.Metrics, args []string) error {
	fs := flag.NewFlagSet("format", flag.ContinueOnError)
	size := fs.Int("buf", format.MinBufferSize, "output buffer size in bytes, terminator included")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: chrono format [-buf n] <micros>...")
	}
	if *size < 0 {
		return fmt.Errorf("buffer size must be >= 0, got %d", *size)
	}

	buf := make([]byte, *size)
	for _, arg := range fs.Args() {
		us, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("parse %q: %w", arg, err)
		}
		n, st := format.FormatDuration(us, buf)
		m.ObserveFormat(st)
		if err := st.Err(); err != nil {
			return fmt.Errorf("format %d: %w", us, err)
		}
		fmt.Printf("%d\t%s\n", us, buf[:n])
	}
	return nil
}

// runWrapTest replays a synthetic narrow counter across its wrap point and
// logs the widened values.
func runWrapTest(args []string) error {
	bits := uint(clock.DefaultBits)
	if len(args) > 0 {
		n, err := strconv.ParseUint(args[0], 10, 8)
		if err != nil || n == 0 || n > 63 {
			return fmt.Errorf("bits must be 1..63, got %q", args[0])
		}
		bits = uint(n)
	}

	metrics := telemetry.InitMetrics(prometheus.NewRegistry())
	modulus := uint64(1) << bits
	step := modulus / 4
	if step == 0 {
		step = 1
	}

	cnt := clock.NewDeltaCounter(bits)
	cnt.Load(modulus-step/2, []uint64{step, step, step, step, step, step})
	clk := clock.NewWrapClock(cnt, clock.WithBits(bits), clock.WithObserver(metrics))

	log.Printf("Replaying %d-bit counter, %d deltas of %d ticks", bits, cnt.RemainingDeltas(), step)

	prev := clk.Now()
	log.Printf("  raw=%-20d widened=%-20d %s", cnt.Ticks(), prev, format.String(int64(prev)))
	for cnt.HasNext() {
		cnt.Advance()
		now := clk.Now()
		if now < prev {
			return fmt.Errorf("clock went backwards at step %d: %d -> %d", cnt.CurrentIndex(), prev, now)
		}
		log.Printf("  raw=%-20d widened=%-20d %s", cnt.Ticks(), now, format.String(int64(now)))
		prev = now
	}

	log.Printf("Detected %d wraps", clk.Wraps())
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `Chrono - Monotonic Time Library Demo

Usage:
  chrono [demo]
      Launch interactive demo (uptime, stopwatch, periodic timer, events)

  chrono format [-buf n] <micros>...
      Render microsecond durations as [-]H:MM:SS.mmm into an n-byte buffer

  chrono wrap-test [bits]
      Replay a synthetic counter of the given width across its wrap point

  chrono config
      Show the effective configuration

  chrono version
      Show version and platform information

  chrono help
      Show this help message

Environment:
  CHRONO_CONFIG          YAML config file, applied before the variables below
  CHRONO_SOURCE          "system" or "counter"
  CHRONO_COUNTER_BITS    Emulated counter width (1..32)
  CHRONO_COUNTER_OFFSET  Emulated counter start offset
  CHRONO_METRICS         Enable Prometheus metrics (true/false)
  CHRONO_METRICS_ADDR    Serve /metrics on this address
  CHRONO_EVENT_QUEUE     Pending clock notices before dropping
  CHRONO_REFRESH         Demo redraw period (e.g. 50ms)
  CHRONO_TIMER_PERIOD    Demo periodic timer (e.g. 1s)

Examples:
  # Watch a 32-bit counter wrap within five seconds
  CHRONO_SOURCE=counter CHRONO_COUNTER_OFFSET=4290000000 chrono demo

  # Format the extremes
  chrono format 0 -1 9223372036854775807
`)
}
