/*
 The MIT License

 Permission is hereby granted, free of charge, to any person obtaining a copy
 of this software and associated documentation files (the "Software"), to deal
 in the Software without restriction, including without limitation the rights
 to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 copies of the Software, and to permit persons to whom the Software is
 furnished to do so, subject to the following conditions:

 The above copyright notice and this permission notice shall be included in
 all copies or substantial portions of the Software.

 THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
 THE SOFTWARE.
*/

package influxdb

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"time"

	"github.com/influxdata/line-protocol/v2/lineprotocol"
)

// TimeUnit is the unit a Timestamp magnitude is expressed in.
type TimeUnit uint8

const (
	Nanoseconds TimeUnit = iota
	Microseconds
	Milliseconds
	Seconds
	Minutes
	Hours
)

// Duration returns the length of one unit.
func (u TimeUnit) Duration() time.Duration {
	switch u {
	case Microseconds:
		return time.Microsecond
	case Milliseconds:
		return time.Millisecond
	case Seconds:
		return time.Second
	case Minutes:
		return time.Minute
	case Hours:
		return time.Hour
	default:
		return time.Nanosecond
	}
}

// Precision returns the InfluxDB write precision code for the unit:
// ns, u, ms, s, m or h.
func (u TimeUnit) Precision() string {
	switch u {
	case Microseconds:
		return "u"
	case Milliseconds:
		return "ms"
	case Seconds:
		return "s"
	case Minutes:
		return "m"
	case Hours:
		return "h"
	default:
		return "ns"
	}
}

// String returns the precision code of the unit.
func (u TimeUnit) String() string {
	return u.Precision()
}

// LineProtocolPrecision maps the unit onto a [lineprotocol.Precision].
// Minutes and hours have no counterpart and report false.
//
// [lineprotocol.Precision]: https://pkg.go.dev/github.com/influxdata/line-protocol/v2/lineprotocol#Precision
func (u TimeUnit) LineProtocolPrecision() (lineprotocol.Precision, bool) {
	switch u {
	case Nanoseconds:
		return lineprotocol.Nanosecond, true
	case Microseconds:
		return lineprotocol.Microsecond, true
	case Milliseconds:
		return lineprotocol.Millisecond, true
	case Seconds:
		return lineprotocol.Second, true
	default:
		return 0, false
	}
}

// ParseTimeUnit parses a precision code. Besides the codes returned by
// [TimeUnit.Precision] it accepts "us" and "µ" for microseconds.
func ParseTimeUnit(s string) (TimeUnit, error) {
	switch s {
	case "ns", "n":
		return Nanoseconds, nil
	case "u", "us", "µ":
		return Microseconds, nil
	case "ms":
		return Milliseconds, nil
	case "s":
		return Seconds, nil
	case "m":
		return Minutes, nil
	case "h":
		return Hours, nil
	default:
		return 0, fmt.Errorf("unsupported precision %s", s)
	}
}

// Timestamp is a point in time expressed as a magnitude of Unit since the Unix
// epoch. It determines both the trailing integer of a line and the precision
// the server uses to interpret it.
type Timestamp struct {
	Unit  TimeUnit
	Value uint64
}

// NewTimestamp creates a Timestamp of value units since the Unix epoch.
func NewTimestamp(value uint64, unit TimeUnit) Timestamp {
	return Timestamp{Unit: unit, Value: value}
}

// TimestampFromTime converts t into a Timestamp of the given unit, truncating
// anything finer than the unit. Times before the Unix epoch cannot be
// represented.
func TimestampFromTime(t time.Time, unit TimeUnit) (Timestamp, error) {
	ns := t.UnixNano()
	if t.Before(time.Unix(0, 0)) {
		return Timestamp{}, fmt.Errorf("%w: time %s is before the Unix epoch", ErrInvalidQuery, t.Format(time.RFC3339Nano))
	}
	return Timestamp{Unit: unit, Value: uint64(ns / int64(unit.Duration()))}, nil
}

// String returns the magnitude as a bare decimal integer, as written on the wire.
func (t Timestamp) String() string {
	return strconv.FormatUint(t.Value, 10)
}

// Precision returns the write precision code of the timestamp unit.
func (t Timestamp) Precision() string {
	return t.Unit.Precision()
}

// UnixNano converts the timestamp to nanoseconds since the Unix epoch.
// A result that does not fit an int64 is reported as an error instead of
// wrapping around.
func (t Timestamp) UnixNano() (int64, error) {
	hi, lo := bits.Mul64(t.Value, uint64(t.Unit.Duration()))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, fmt.Errorf("%w: timestamp %d%s overflows int64 nanoseconds", ErrInvalidQuery, t.Value, t.Unit.Precision())
	}
	return int64(lo), nil
}

// Time converts the timestamp to a time.Time in UTC.
func (t Timestamp) Time() (time.Time, error) {
	ns, err := t.UnixNano()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, ns).UTC(), nil
}

// IntoQuery starts a WriteQuery for measurement at this timestamp.
func (t Timestamp) IntoQuery(measurement string) *WriteQuery {
	return NewWriteQuery(t, measurement)
}

// Describe makes a bare Timestamp a Writeable with no fields or tags.
func (t Timestamp) Describe() Description {
	return Description{Timestamp: t}
}
