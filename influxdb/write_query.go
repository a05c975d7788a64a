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
	"strings"
)

// Tag holds the key and value of a tag. Tag values are always written as
// text, whatever the kind of Value.
type Tag struct {
	Key   string
	Value Value
}

// Field holds the key and value of a field.
type Field struct {
	Key   string
	Value Value
}

// WriteQuery builds a single line protocol point: a measurement, an ordered
// list of tags, an ordered list of fields and a timestamp. Insertion order is
// kept on the wire and keys are not deduplicated.
//
// A WriteQuery needs at least one field to build. It is not safe for
// concurrent mutation.
type WriteQuery struct {
	measurement string
	timestamp   Timestamp
	fields      []Field
	tags        []Tag
}

// NewWriteQuery creates an empty WriteQuery for measurement at timestamp.
//
// Parameters:
//   - timestamp: The point timestamp, which also sets the write precision.
//   - measurement: The measurement name.
//
// Returns:
//   - The created WriteQuery.
func NewWriteQuery(timestamp Timestamp, measurement string) *WriteQuery {
	return &WriteQuery{
		measurement: measurement,
		timestamp:   timestamp,
	}
}

// AddField appends a field. The value is converted with [ValueOf]; a nil
// value or nil pointer adds nothing, so optional fields need no branching:
//
//	q.AddField("humidity", reading.Humidity) // Humidity is a *float64
//
// Parameters:
//   - key: The key of the field.
//   - value: The value of the field.
//
// Returns:
//   - The updated WriteQuery.
func (q *WriteQuery) AddField(key string, value any) *WriteQuery {
	if v, ok := ValueOf(value); ok {
		q.fields = append(q.fields, Field{Key: key, Value: v})
	}
	return q
}

// AddFieldFromValue appends a field holding v. A zero Value adds nothing.
func (q *WriteQuery) AddFieldFromValue(key string, v Value) *WriteQuery {
	if v.kind != Unknown {
		q.fields = append(q.fields, Field{Key: key, Value: v})
	}
	return q
}

// AddTag appends a tag. Conversion and optional handling follow AddField.
// A query holding only tags fails to build.
//
// Parameters:
//   - key: The key of the tag.
//   - value: The value of the tag.
//
// Returns:
//   - The updated WriteQuery.
func (q *WriteQuery) AddTag(key string, value any) *WriteQuery {
	if v, ok := ValueOf(value); ok {
		q.tags = append(q.tags, Tag{Key: key, Value: v})
	}
	return q
}

// AddTagFromValue appends a tag holding v. A zero Value adds nothing.
func (q *WriteQuery) AddTagFromValue(key string, v Value) *WriteQuery {
	if v.kind != Unknown {
		q.tags = append(q.tags, Tag{Key: key, Value: v})
	}
	return q
}

// Measurement returns the measurement name.
func (q *WriteQuery) Measurement() string {
	return q.measurement
}

// Timestamp returns the point timestamp.
func (q *WriteQuery) Timestamp() Timestamp {
	return q.timestamp
}

// Fields returns a copy of the fields in insertion order.
func (q *WriteQuery) Fields() []Field {
	return append([]Field(nil), q.fields...)
}

// Tags returns a copy of the tags in insertion order.
func (q *WriteQuery) Tags() []Tag {
	return append([]Tag(nil), q.tags...)
}

// Precision returns the write precision code derived from the timestamp unit.
func (q *WriteQuery) Precision() string {
	return q.timestamp.Precision()
}

// Build serializes the query for InfluxDB 1.x, writing unsigned integers with
// the "i" suffix.
func (q *WriteQuery) Build() (ValidQuery, error) {
	return q.BuildWithOpts(false)
}

// BuildWithOpts serializes the query into one line of line protocol:
//
//	<measurement>[,<tag>=<value>...] <field>=<value>[,<field>=<value>...] <timestamp>
//
// When useV2 is set, unsigned integers get the "u" suffix. The timestamp is
// written in the unit it was created with; no conversion happens.
//
// Returns:
//   - The line, without a trailing newline.
//   - An error wrapping ErrInvalidQuery if the query has no fields.
func (q *WriteQuery) BuildWithOpts(useV2 bool) (ValidQuery, error) {
	if len(q.fields) == 0 {
		return "", invalidQuery("fields cannot be empty")
	}

	var b strings.Builder
	b.WriteString(Measurement.EscapeString(q.measurement))
	for _, t := range q.tags {
		b.WriteByte(',')
		b.WriteString(TagKey.EscapeString(t.Key))
		b.WriteByte('=')
		b.WriteString(TagValue.Escape(t.Value, useV2))
	}
	b.WriteByte(' ')
	for i, f := range q.fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(FieldKey.EscapeString(f.Key))
		b.WriteByte('=')
		b.WriteString(FieldValue.Escape(f.Value, useV2))
	}
	b.WriteByte(' ')
	b.WriteString(q.timestamp.String())

	return ValidQuery(b.String()), nil
}

// Type reports a write query carrying the timestamp precision.
func (q *WriteQuery) Type() QueryType {
	return WriteQueryType(q.Precision())
}

// WriteQueries is a batch of write queries sent in one request.
type WriteQueries []*WriteQuery

// defaultBatchPrecision is used when a batch is empty and there is no first
// query to take the precision from.
const defaultBatchPrecision = "ms"

// Build serializes every query with Build and joins the lines with "\n".
func (qs WriteQueries) Build() (ValidQuery, error) {
	return qs.BuildWithOpts(false)
}

// BuildWithOpts serializes every query with BuildWithOpts and joins the lines
// with "\n", keeping the original order. The first failing query aborts the batch.
func (qs WriteQueries) BuildWithOpts(useV2 bool) (ValidQuery, error) {
	lines := make([]string, 0, len(qs))
	for _, q := range qs {
		line, err := q.BuildWithOpts(useV2)
		if err != nil {
			return "", err
		}
		lines = append(lines, string(line))
	}
	return ValidQuery(strings.Join(lines, "\n")), nil
}

// Type reports a write query with the precision of the first query.
// A single request carries one precision, so mixed precisions within a batch
// are not supported.
func (qs WriteQueries) Type() QueryType {
	if len(qs) == 0 {
		return WriteQueryType(defaultBatchPrecision)
	}
	return qs[0].Type()
}
