package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/BYTE-6D65/chrono/pkg/clock"
)

type notice struct {
	typ string
	op  string
	at  clock.Micros
}

// Notifier bridges the clock read path onto a Bus. It implements
// clock.Observer with a non-blocking channel send, so ObserveWrap never
// waits on subscribers; Run drains the queue and publishes events.
type Notifier struct {
	bus    Bus
	clk    clock.Clock
	source string
	bits   uint
	codec  EventCodec
	queue  chan notice
	wraps  atomic.Uint64
	lost   atomic.Uint64
}

// NewNotifier creates a Notifier that stamps events with clk and
// publishes them on bus as coming from source. queueSize bounds the
// number of pending notices; overflow is counted by Lost.
//
// clk must not be the WrapClock the notifier observes.
func NewNotifier(bus Bus, clk clock.Clock, source string, bits uint, queueSize int) *Notifier {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Notifier{
		bus:    bus,
		clk:    clock.Or(clk),
		source: source,
		bits:   bits,
		codec:  JSONCodec{},
		queue:  make(chan notice, queueSize),
	}
}

// ObserveWrap implements clock.Observer.
func (n *Notifier) ObserveWrap() {
	n.enqueue(notice{typ: TypeClockWrapped})
}

// ObserveSaturation implements clock.Observer.
func (n *Notifier) ObserveSaturation(op string) {
	n.enqueue(notice{typ: TypeSaturated, op: op})
}

func (n *Notifier) enqueue(nt notice) {
	nt.at = n.clk.Now()
	select {
	case n.queue <- nt:
	default:
		n.lost.Add(1)
	}
}

// Lost returns how many notices were discarded because the queue was full.
func (n *Notifier) Lost() uint64 {
	return n.lost.Load()
}

// Run publishes queued notices until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case nt := <-n.queue:
			if err := n.publish(ctx, nt); err != nil {
				return err
			}
		}
	}
}

func (n *Notifier) publish(ctx context.Context, nt notice) error {
	var payload any
	switch nt.typ {
	case TypeClockWrapped:
		payload = WrapPayload{Bits: n.bits, Wraps: n.wraps.Add(1)}
	default:
		payload = SaturationPayload{Op: nt.op}
	}

	evt, err := NewEvent(nt.typ, n.source, nt.at, payload, n.codec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", nt.typ, err)
	}
	if err := n.bus.Publish(ctx, *evt); err != nil {
		return fmt.Errorf("publish %s: %w", nt.typ, err)
	}
	return nil
}
