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
	"time"

	"github.com/influxdata/line-protocol/v2/lineprotocol"
)

// ParseWriteQueries decodes line protocol text back into write queries. Every
// line must carry a timestamp, which is read as a magnitude of unit. For
// units down to seconds the timestamp must fit an int64 nanosecond count.
//
// Parameters:
//   - data: The line protocol text, one point per line.
//   - unit: The unit of the timestamps in data.
//
// Returns:
//   - The decoded queries in line order.
//   - An error wrapping ErrInvalidQuery, if any line cannot be decoded.
func ParseWriteQueries(data []byte, unit TimeUnit) (WriteQueries, error) {
	var queries WriteQueries
	dec := lineprotocol.NewDecoderWithBytes(data)
	for dec.Next() {
		m, err := dec.Measurement()
		if err != nil {
			return nil, invalidQuery("%s", err)
		}
		q := &WriteQuery{measurement: string(m)}
		for {
			key, val, err := dec.NextTag()
			if err != nil {
				return nil, invalidQuery("%s", err)
			}
			if key == nil {
				break
			}
			q.tags = append(q.tags, Tag{Key: string(key), Value: TextValue(string(val))})
		}
		for {
			key, val, err := dec.NextField()
			if err != nil {
				return nil, invalidQuery("%s", err)
			}
			if key == nil {
				break
			}
			q.fields = append(q.fields, Field{Key: string(key), Value: NewValueFromLineProtocol(val)})
		}
		// Minutes and hours have no decoder precision; nanoseconds keep the
		// integer as written.
		prec, scaled := unit.LineProtocolPrecision()
		if !scaled {
			prec = lineprotocol.Nanosecond
		}
		t, err := dec.Time(prec, time.Time{})
		if err != nil {
			return nil, invalidQuery("%s", err)
		}
		if t.IsZero() {
			return nil, invalidQuery("line %d of measurement %q has no timestamp", len(queries)+1, q.measurement)
		}
		ns := t.UnixNano()
		if ns < 0 {
			return nil, invalidQuery("negative timestamp %d", ns/int64(prec.Duration()))
		}
		q.timestamp = NewTimestamp(uint64(ns/int64(prec.Duration())), unit)
		queries = append(queries, q)
	}
	if err := dec.Err(); err != nil {
		return nil, invalidQuery("%s", err)
	}
	return queries, nil
}
