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
	"reflect"
	"strings"
	"time"
)

// Description is how a record describes itself as a point: its timestamp and
// its fields and tags in the order they should be written.
type Description struct {
	Timestamp Timestamp
	Fields    []Field
	Tags      []Tag
}

// Writeable is implemented by records that can describe themselves as a point.
//
//	type WeatherReading struct {
//	    At       influxdb.Timestamp
//	    Humidity int32
//	    Wind     string
//	}
//
//	func (r WeatherReading) Describe() influxdb.Description {
//	    return influxdb.Description{
//	        Timestamp: r.At,
//	        Fields:    []influxdb.Field{{Key: "humidity", Value: influxdb.NewValueFromInt(r.Humidity)}},
//	        Tags:      []influxdb.Tag{{Key: "wind_direction", Value: influxdb.TextValue(r.Wind)}},
//	    }
//	}
type Writeable interface {
	Describe() Description
}

// IntoQuery turns a Writeable into a WriteQuery for measurement.
func IntoQuery(w Writeable, measurement string) *WriteQuery {
	d := w.Describe()
	q := NewWriteQuery(d.Timestamp, measurement)
	for _, f := range d.Fields {
		q.AddFieldFromValue(f.Key, f.Value)
	}
	for _, t := range d.Tags {
		q.AddTagFromValue(t.Key, t.Value)
	}
	return q
}

var (
	timeType      = reflect.TypeOf(time.Time{})
	timestampType = reflect.TypeOf(Timestamp{})
)

// StructToQuery encodes a struct, or a pointer to one, into a WriteQuery using
// 'lp' struct tags with the values measurement, tag, field, timestamp or "-".
// An optional second tag part renames the key. Fields keep struct order and
// nil pointers are skipped.
//
// The timestamp must be a time.Time, converted to unit, or a Timestamp, used
// as is. Without an 'lp:"timestamp"' field, an exported field named Time is
// used. A measurement field overrides the measurement argument.
//
//	type TemperatureSensor struct {
//	    Measurement  string    `lp:"measurement"`
//	    Sensor       string    `lp:"tag,sensor"`
//	    ID           string    `lp:"tag,device_id"`
//	    Temp         float64   `lp:"field,temperature"`
//	    Hum          *int      `lp:"field,humidity"`
//	    Time         time.Time `lp:"timestamp"`
//	    Description  string    `lp:"-"`
//	}
//
// Parameters:
//   - x: The struct to encode.
//   - measurement: The measurement used when the struct has no measurement field.
//   - unit: The unit time.Time timestamps are converted to.
//
// Returns:
//   - The created WriteQuery.
//   - An error, if any.
func StructToQuery(x any, measurement string, unit TimeUnit) (*WriteQuery, error) {
	if x == nil {
		return nil, fmt.Errorf("cannot use nil as a point")
	}
	t := reflect.TypeOf(x)
	v := reflect.ValueOf(x)
	if t.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("cannot use nil %s as a point", t)
		}
		t = t.Elem()
		v = v.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot use %s as a point", t)
	}

	var (
		fields       []Field
		tags         []Tag
		timeField    = -1
		implicitTime = -1
		measureSet   bool
	)

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, ok := f.Tag.Lookup("lp")
		if !ok {
			if f.Name == "Time" {
				implicitTime = i
			}
			continue
		}
		if tag == "-" {
			continue
		}
		parts := strings.Split(tag, ",")
		if len(parts) > 2 {
			return nil, fmt.Errorf("multiple tag attributes are not supported")
		}
		typ := parts[0]
		name := f.Name
		if len(parts) == 2 {
			name = parts[1]
		}
		if name == "" && (typ == "tag" || typ == "field") {
			return nil, fmt.Errorf("empty %s key for struct field '%s'", typ, f.Name)
		}
		switch typ {
		case "measurement":
			if measureSet {
				return nil, fmt.Errorf("multiple measurement fields")
			}
			if f.Type.Kind() != reflect.String {
				return nil, fmt.Errorf("cannot use field '%s' as a measurement", f.Name)
			}
			measurement = v.Field(i).String()
			measureSet = true
		case "tag":
			if val, ok := ValueOf(v.Field(i).Interface()); ok {
				tags = append(tags, Tag{Key: name, Value: val})
			}
		case "field":
			if val, ok := ValueOf(v.Field(i).Interface()); ok {
				fields = append(fields, Field{Key: name, Value: val})
			}
		case "timestamp":
			if timeField >= 0 {
				return nil, fmt.Errorf("multiple timestamp fields")
			}
			timeField = i
		default:
			return nil, fmt.Errorf("invalid tag %s", typ)
		}
	}

	if measurement == "" {
		return nil, fmt.Errorf("no struct field with tag 'measurement'")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no struct field with tag 'field'")
	}
	if timeField < 0 {
		timeField = implicitTime
	}
	if timeField < 0 {
		return nil, fmt.Errorf("no struct field with tag 'timestamp'")
	}
	ts, err := structTimestamp(t.Field(timeField), v.Field(timeField), unit)
	if err != nil {
		return nil, err
	}

	return IntoQuery(Description{Timestamp: ts, Fields: fields, Tags: tags}, measurement), nil
}

func structTimestamp(f reflect.StructField, v reflect.Value, unit TimeUnit) (Timestamp, error) {
	switch f.Type {
	case timeType:
		return TimestampFromTime(v.Interface().(time.Time), unit)
	case timestampType:
		return v.Interface().(Timestamp), nil
	default:
		return Timestamp{}, fmt.Errorf("cannot use field '%s' as a timestamp", f.Name)
	}
}

// Describe makes a Description a Writeable of itself.
func (d Description) Describe() Description {
	return d
}
