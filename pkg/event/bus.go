package event

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrBusClosed is returned by Publish and Subscribe after Close.
var ErrBusClosed = errors.New("event: bus is closed")

// Bus defines the interface for an event bus that supports publish/subscribe patterns.
type Bus interface {
	// Publish sends an event to all subscribers
	Publish(ctx context.Context, evt Event) error

	// Subscribe creates a subscription with optional filtering
	Subscribe(ctx context.Context, filter Filter) (Subscription, error)

	// Close shuts down the bus and releases all resources
	Close() error
}

// Filter defines criteria for filtering events in a subscription.
type Filter struct {
	// Types specifies event types to match (supports wildcards like "chrono.clock.*")
	Types []string

	// Sources specifies event sources to match
	Sources []string

	// Metadata specifies metadata key-value pairs that must match
	Metadata map[string]string
}

// Subscription represents an active subscription to an event bus.
type Subscription interface {
	// ID returns the unique subscription identifier
	ID() string

	// Events returns a channel that receives matching events
	Events() <-chan Event

	// Close unsubscribes and releases resources
	Close() error
}

// InMemoryBus is an in-memory implementation of the Bus interface.
// It supports fan-out to multiple subscribers with configurable buffering.
type InMemoryBus struct {
	mu            sync.RWMutex
	subscriptions map[string]*inMemorySubscription
	closed        bool
	bufferSize    int
	dropSlow      bool // If true, drop events for slow subscribers; if false, block
	dropped       atomic.Uint64
}

// BusOption configures an InMemoryBus.
type BusOption func(*InMemoryBus)

// WithBufferSize sets the buffer size for subscription channels.
func WithBufferSize(size int) BusOption {
	return func(b *InMemoryBus) {
		if size >= 0 {
			b.bufferSize = size
		}
	}
}

// WithDropSlow configures whether to drop events for slow subscribers (true)
// or block until they catch up (false).
func WithDropSlow(drop bool) BusOption {
	return func(b *InMemoryBus) {
		b.dropSlow = drop
	}
}

// NewInMemoryBus creates a new in-memory event bus with the given options.
func NewInMemoryBus(opts ...BusOption) *InMemoryBus {
	bus := &InMemoryBus{
		subscriptions: make(map[string]*inMemorySubscription),
		bufferSize:    64,
	}

	for _, opt := range opts {
		opt(bus)
	}

	return bus
}

// Publish sends an event to all matching subscribers.
func (b *InMemoryBus) Publish(ctx context.Context, evt Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	for _, sub := range b.subscriptions {
		if !sub.matches(evt) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !sub.send(ctx, evt, b.dropSlow) {
			b.dropped.Add(1)
		}
	}

	return nil
}

// Subscribe creates a new subscription with the given filter.
func (b *InMemoryBus) Subscribe(ctx context.Context, filter Filter) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}

	sub := &inMemorySubscription{
		id:     uuid.New().String(),
		bus:    b,
		filter: filter,
		ch:     make(chan Event, b.bufferSize),
	}

	b.subscriptions[sub.id] = sub
	return sub, nil
}

// Dropped returns how many deliveries were skipped for slow subscribers.
func (b *InMemoryBus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close shuts down the bus and all subscriptions.
func (b *InMemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true
	for _, sub := range b.subscriptions {
		sub.closeChannel()
	}
	b.subscriptions = nil
	return nil
}

type inMemorySubscription struct {
	id     string
	bus    *InMemoryBus
	filter Filter
	ch     chan Event
	mu     sync.Mutex
	closed bool
}

func (s *inMemorySubscription) ID() string {
	return s.id
}

func (s *inMemorySubscription) Events() <-chan Event {
	return s.ch
}

// Close unsubscribes and closes the event channel.
func (s *inMemorySubscription) Close() error {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	delete(s.bus.subscriptions, s.id)
	s.closeChannel()
	return nil
}

func (s *inMemorySubscription) closeChannel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// send delivers evt and reports whether it was accepted.
func (s *inMemorySubscription) send(ctx context.Context, evt Event, dropSlow bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return true
	}

	if dropSlow {
		select {
		case s.ch <- evt:
			return true
		default:
			return false
		}
	}

	select {
	case s.ch <- evt:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *inMemorySubscription) matches(evt Event) bool {
	if len(s.filter.Types) > 0 && !matchesAny(evt.Type, s.filter.Types) {
		return false
	}
	if len(s.filter.Sources) > 0 && !matchesAny(evt.Source, s.filter.Sources) {
		return false
	}
	for key, value := range s.filter.Metadata {
		if evt.Metadata[key] != value {
			return false
		}
	}
	return true
}

// matchesAny checks str against filepath.Match patterns.
func matchesAny(str string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, str); err == nil && matched {
			return true
		}
	}
	return false
}
