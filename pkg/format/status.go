package format

import (
	"errors"
	"fmt"
)

// Code classifies the outcome of a formatting operation.
type Code uint16

const (
	OK              Code = iota // Success, no error
	InvalidArgument             // Output buffer missing or too small
	InternalError               // Formatting primitive misbehaved (library bug)
)

func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case InvalidArgument:
		return "INVALID_ARGUMENT"
	case InternalError:
		return "INTERNAL_ERROR"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint16(c))
	}
}

// Sentinel errors returned by Status.Err, for use with errors.Is.
var (
	ErrInvalidArgument = errors.New("format: invalid argument")
	ErrInternal        = errors.New("format: internal error")
)

// Static messages. Status.Msg only ever holds one of these.
const (
	msgNilBuffer   = "Output buffer is null or empty"
	msgSmallBuffer = "Output buffer too small"
	msgFormatFail  = "Time formatting failed"
)

// Status is the result of a formatting operation. It is a plain value with
// a static message so neither success nor failure allocates.
type Status struct {
	Code   Code   // Error category
	Detail int32  // Required buffer size for InvalidArgument, otherwise 0
	Msg    string // Static description, empty on success
}

// Ok returns the success Status.
func Ok() Status {
	return Status{}
}

// OK reports whether the operation succeeded.
func (s Status) OK() bool {
	return s.Code == OK
}

// Err returns nil on success, or an error wrapping the matching sentinel.
// Only call it off the hot path: building the error allocates.
func (s Status) Err() error {
	switch s.Code {
	case OK:
		return nil
	case InvalidArgument:
		return fmt.Errorf("%w: %s (detail=%d)", ErrInvalidArgument, s.Msg, s.Detail)
	default:
		return fmt.Errorf("%w: %s (detail=%d)", ErrInternal, s.Msg, s.Detail)
	}
}

func (s Status) String() string {
	if s.OK() {
		return "OK"
	}
	return fmt.Sprintf("%s: %s (detail=%d)", s.Code, s.Msg, s.Detail)
}
