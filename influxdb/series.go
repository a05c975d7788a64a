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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
)

// Series is one decoded series of a query result. Each row of the response
// is decoded into T by column name, so the field order of T does not have to
// match the column order:
//
//	type Weather struct {
//	    Time        string `json:"time"`
//	    Temperature int    `json:"temperature"`
//	}
//
//	var s influxdb.Series[Weather]
//	err := json.Unmarshal(data, &s)
type Series[T any] struct {
	Name   string
	Values []T
}

// TaggedSeries is a Series of a GROUP BY query, carrying the group tags
// decoded into TAG.
type TaggedSeries[TAG, T any] struct {
	Name   string
	Tags   TAG
	Values []T
}

// UnmarshalJSON decodes a series object of the form
// {"name": ..., "columns": [...], "values": [[...], ...]}.
func (s *Series[T]) UnmarshalJSON(data []byte) error {
	d := seriesDecoder[T]{}
	if err := d.decode(data); err != nil {
		return err
	}
	s.Name = d.name
	s.Values = d.values
	return nil
}

// UnmarshalJSON decodes a series object that also has a "tags" object.
func (s *TaggedSeries[TAG, T]) UnmarshalJSON(data []byte) error {
	var tags TAG
	d := seriesDecoder[T]{tags: &tags}
	if err := d.decode(data); err != nil {
		return err
	}
	s.Name = d.name
	s.Tags = tags
	s.Values = d.values
	return nil
}

// seriesDecoder walks the keys of one series object in source order, so that
// ordering and duplicate violations can be reported.
type seriesDecoder[T any] struct {
	// tags is non-nil when a "tags" object is required.
	tags any

	name   string
	header []string
	values []T

	seen map[string]bool
}

func (d *seriesDecoder[T]) decode(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	d.seen = make(map[string]bool, 4)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decoding series: %w", err)
		}
		key, _ := tok.(string)
		switch key {
		case "name":
			err = d.once(key, func() error { return d.decodeName(dec) })
		case "tags":
			if d.tags == nil {
				err = skipValue(dec)
				break
			}
			err = d.once(key, func() error { return decodeTags(dec, d.tags) })
		case "columns":
			err = d.once(key, func() error { return d.decodeHeader(dec) })
		case "values":
			if !d.seen["columns"] {
				return fmt.Errorf("series values encountered before columns")
			}
			err = d.once(key, func() error { return d.decodeRows(dec) })
		default:
			err = skipValue(dec)
		}
		if err != nil {
			return err
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}

	if !d.seen["name"] {
		return fmt.Errorf("missing field `name`")
	}
	if d.tags != nil && !d.seen["tags"] {
		return fmt.Errorf("missing field `tags`")
	}
	if d.values == nil {
		d.values = []T{}
	}
	return nil
}

func (d *seriesDecoder[T]) once(key string, fn func() error) error {
	if d.seen[key] {
		return fmt.Errorf("duplicate field `%s`", key)
	}
	d.seen[key] = true
	return fn()
}

func (d *seriesDecoder[T]) decodeName(dec *json.Decoder) error {
	var name *string
	if err := dec.Decode(&name); err != nil {
		return err
	}
	if name == nil {
		return fmt.Errorf("invalid type: null, expected a string")
	}
	d.name = *name
	return nil
}

func (d *seriesDecoder[T]) decodeHeader(dec *json.Decoder) error {
	if err := dec.Decode(&d.header); err != nil {
		return err
	}
	seen := make(map[string]bool, len(d.header))
	for _, col := range d.header {
		if seen[col] {
			return fmt.Errorf("duplicate column `%s`", col)
		}
		seen[col] = true
	}
	return nil
}

func (d *seriesDecoder[T]) decodeRows(dec *json.Decoder) error {
	var rows []json.RawMessage
	if err := dec.Decode(&rows); err != nil {
		return err
	}
	keys := fieldKeys(reflect.TypeFor[T]())
	skip := make([]bool, len(d.header))
	for i, col := range d.header {
		skip[i] = foldOnly(keys, col)
	}
	d.values = make([]T, 0, len(rows))
	for i, raw := range rows {
		var row []json.RawMessage
		if err := json.Unmarshal(raw, &row); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		var v T
		if err := decodeRow(d.header, skip, row, &v); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		d.values = append(d.values, v)
	}
	return nil
}

// rowCursor presents a positional row as a sequence of key/value pairs, the
// keys coming from the shared header.
type rowCursor struct {
	header []string
	row    []json.RawMessage
	pos    int
}

// nextKey returns the next column name, or false once the header is used up.
func (c *rowCursor) nextKey() (string, bool) {
	if c.pos >= len(c.header) {
		return "", false
	}
	return c.header[c.pos], true
}

// nextValue returns the row element of the current column and advances.
func (c *rowCursor) nextValue() (json.RawMessage, error) {
	if c.pos >= len(c.row) {
		return nil, fmt.Errorf("unexpected end of row")
	}
	v := c.row[c.pos]
	c.pos++
	return v, nil
}

// decodeRow builds a JSON object from header and row and unmarshals it into
// v. Columns flagged in skip are consumed but left out of the object.
func decodeRow(header []string, skip []bool, row []json.RawMessage, v any) error {
	c := rowCursor{header: header, row: row}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for first := true; ; {
		i := c.pos
		key, ok := c.nextKey()
		if !ok {
			break
		}
		val, err := c.nextValue()
		if err != nil {
			return err
		}
		if skip[i] {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return json.Unmarshal(buf.Bytes(), v)
}

// decodeTags decodes the tags object into v, matching keys to fields exactly.
func decodeTags(dec *json.Decoder, v any) error {
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	keys := fieldKeys(reflect.TypeOf(v))
	if keys == nil {
		return json.Unmarshal(raw, v)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return json.Unmarshal(raw, v)
	}
	for k := range obj {
		if foldOnly(keys, k) {
			delete(obj, k)
		}
	}
	filtered, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return json.Unmarshal(filtered, v)
}

var unmarshalerType = reflect.TypeFor[json.Unmarshaler]()

// fieldKeys returns the object keys a struct type decodes, or nil when t is
// not a struct or brings its own UnmarshalJSON.
func fieldKeys(t reflect.Type) map[string]bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || reflect.PointerTo(t).Implements(unmarshalerType) {
		return nil
	}
	keys := make(map[string]bool, t.NumField())
	collectKeys(t, keys, map[reflect.Type]bool{})
	return keys
}

func collectKeys(t reflect.Type, keys map[string]bool, visited map[reflect.Type]bool) {
	if visited[t] {
		return
	}
	visited[t] = true
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				collectKeys(ft, keys, visited)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		keys[name] = true
	}
}

// foldOnly reports whether key matches a field of keys only when case is
// ignored. encoding/json would accept such a key; the decoder does not.
func foldOnly(keys map[string]bool, key string) bool {
	if keys == nil || keys[key] {
		return false
	}
	for k := range keys {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return fmt.Errorf("unexpected end of series")
		}
		return fmt.Errorf("decoding series: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("invalid type: %v, expected a series object", tok)
	}
	return nil
}

func skipValue(dec *json.Decoder) error {
	var discard json.RawMessage
	return dec.Decode(&discard)
}
