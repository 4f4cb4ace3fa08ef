// Package format renders signed microsecond durations as [-]H:MM:SS.mmm into
// caller-owned fixed-size buffers without allocating.
//
// Buffers follow C string conventions: the text is followed by a NUL byte
// inside the buffer, so a buffer must hold the text plus one terminator byte.
// On any failure the buffer (if non-empty) is left holding an empty string.
//
// Hours are not reduced modulo 24; the output is a duration since boot, not a
// time of day.
package format

import (
	"math"

	"github.com/BYTE-6D65/chrono/pkg/clock"
	"github.com/BYTE-6D65/chrono/pkg/satmath"
)

// MinBufferSize fits the longest possible output, "-2562047788:00:54.775"
// (math.MinInt64 microseconds), plus the terminator.
const MinBufferSize = 22

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute

	// ":MM:SS.mmm"
	fixedTail = 10
)

// parts is a duration decomposed for display.
type parts struct {
	neg     bool
	hours   uint64
	minutes uint64
	seconds uint64
	millis  uint64
}

func split(us int64) parts {
	totalMs := satmath.Abs(us) / 1000
	return parts{
		neg:     us < 0,
		hours:   totalMs / msPerHour,
		minutes: (totalMs / msPerMinute) % 60,
		seconds: (totalMs / msPerSecond) % 60,
		millis:  totalMs % msPerSecond,
	}
}

// textLen returns the length of the rendered text, terminator excluded.
func (p parts) textLen() int {
	n := digits(p.hours) + fixedTail
	if p.neg {
		n++
	}
	return n
}

// put writes the text into buf, which must hold at least textLen bytes, and
// returns the number of bytes written.
func (p parts) put(buf []byte) int {
	i := 0
	if p.neg {
		buf[i] = '-'
		i++
	}

	hd := digits(p.hours)
	h := p.hours
	for j := i + hd - 1; j >= i; j-- {
		buf[j] = byte('0' + h%10)
		h /= 10
	}
	i += hd

	buf[i] = ':'
	i += putPadded(buf[i+1:], p.minutes, 2) + 1
	buf[i] = ':'
	i += putPadded(buf[i+1:], p.seconds, 2) + 1
	buf[i] = '.'
	i += putPadded(buf[i+1:], p.millis, 3) + 1

	return i
}

func putPadded(buf []byte, v uint64, width int) int {
	for j := width - 1; j >= 0; j-- {
		buf[j] = byte('0' + v%10)
		v /= 10
	}
	return width
}

func digits(v uint64) int {
	n := 1
	for v >= 10 {
		v /= 10
		n++
	}
	return n
}

func clampDetail(n int) int32 {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(n)
}

// FormatDuration writes us as [-]H:MM:SS.mmm followed by a NUL terminator
// into buf and returns the text length (terminator excluded).
//
// A nil or empty buf fails with InvalidArgument. A buf shorter than
// MinBufferSize fails with InvalidArgument and Detail = MinBufferSize.
// Neither path allocates.
func FormatDuration(us int64, buf []byte) (int, Status) {
	if len(buf) == 0 {
		return 0, Status{Code: InvalidArgument, Msg: msgNilBuffer}
	}

	buf[0] = 0

	if len(buf) < MinBufferSize {
		return 0, Status{Code: InvalidArgument, Detail: MinBufferSize, Msg: msgSmallBuffer}
	}

	p := split(us)
	need := p.textLen()
	if need >= len(buf) {
		return 0, Status{Code: InvalidArgument, Detail: clampDetail(need + 1), Msg: msgSmallBuffer}
	}

	n := p.put(buf)
	if n != need {
		buf[0] = 0
		return 0, Status{Code: InternalError, Detail: clampDetail(n), Msg: msgFormatFail}
	}

	buf[n] = 0
	return n, Ok()
}

// FormatNow formats c's current time into buf. A nil c uses clock.Default.
func FormatNow(c clock.Clock, buf []byte) (int, Status) {
	return FormatDuration(int64(clock.Or(c).Now()), buf)
}

// Append appends the text form of us (without terminator) to dst.
// It allocates only if dst needs to grow.
func Append(dst []byte, us int64) []byte {
	var scratch [MinBufferSize]byte
	p := split(us)
	n := p.put(scratch[:])
	return append(dst, scratch[:n]...)
}

// String returns the text form of us, or "" if formatting fails.
// Convenience for non-hot paths; it allocates the result.
func String(us int64) string {
	var b [MinBufferSize]byte
	n, st := FormatDuration(us, b[:])
	if !st.OK() {
		return ""
	}
	return string(b[:n])
}

// NowString returns the text form of c's current time.
func NowString(c clock.Clock) string {
	return String(int64(clock.Or(c).Now()))
}
