// Package event carries timing notifications (counter wraps, saturation,
// stopwatch results) as uuid-identified envelopes over an in-memory bus.
package event

import (
	"github.com/go-json-experiment/json"
	"github.com/google/uuid"

	"github.com/BYTE-6D65/chrono/pkg/clock"
)

// Event types.
const (
	TypeClockWrapped     = "chrono.clock.wrapped"     // Hardware counter wrapped
	TypeSaturated        = "chrono.clock.saturated"   // A time value was clamped
	TypeStopwatchStopped = "chrono.stopwatch.stopped" // Stopwatch interval closed
	TypeTimerDue         = "chrono.timer.due"         // Periodic timer fired
)

// Event is a payload-agnostic envelope stamped with monotonic time.
type Event struct {
	// ID is a unique identifier for this event instance
	ID string `json:"id"`

	// Type is a namespaced event type (e.g., "chrono.clock.wrapped")
	Type string `json:"type"`

	// Source identifies the originating component (e.g., "clock:counter32")
	Source string `json:"source"`

	// Timestamp is the monotonic time the event was created
	Timestamp clock.Micros `json:"timestamp_us"`

	// Data contains the serialized payload (use codec to marshal/unmarshal)
	Data []byte `json:"data,omitempty"`

	// Metadata provides additional context for filtering
	Metadata map[string]string `json:"metadata,omitempty"`
}

// WrapPayload describes a counter wraparound.
type WrapPayload struct {
	Bits  uint   `json:"bits"`
	Wraps uint64 `json:"wraps"`
}

// SaturationPayload names the operation that clamped.
type SaturationPayload struct {
	Op string `json:"op"`
}

// StopwatchPayload reports a stopped stopwatch.
type StopwatchPayload struct {
	Name          string `json:"name"`
	ElapsedMicros int64  `json:"elapsed_us"`
	Formatted     string `json:"formatted"`
}

// TimerPayload reports a periodic timer firing.
type TimerPayload struct {
	Name         string `json:"name"`
	PeriodMillis int64  `json:"period_ms"`
	Fired        uint64 `json:"fired"`
}

// EventCodec defines how to serialize and deserialize event payloads.
type EventCodec interface {
	// Marshal converts a payload struct to bytes
	Marshal(v any) ([]byte, error)

	// Unmarshal deserializes bytes into a payload struct
	Unmarshal(data []byte, v any) error
}

// JSONCodec implements EventCodec using go-json-experiment.
type JSONCodec struct{}

// Marshal converts a payload to JSON bytes.
func (c JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal deserializes JSON bytes into a payload.
func (c JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// NewEvent creates a new event with a generated ID, stamped at ts.
func NewEvent(eventType, source string, ts clock.Micros, payload any, codec EventCodec) (*Event, error) {
	data, err := codec.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: ts,
		Data:      data,
		Metadata:  make(map[string]string),
	}, nil
}

// WithMetadata adds metadata key-value pairs to the event.
func (e *Event) WithMetadata(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// DecodePayload deserializes the event data into the provided struct.
func (e *Event) DecodePayload(v any, codec EventCodec) error {
	if len(e.Data) == 0 {
		return nil
	}
	return codec.Unmarshal(e.Data, v)
}

// Encode serializes the whole envelope, e.g. for a JSON lines log.
func (e *Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}
