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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type weatherReading struct {
	At            Timestamp
	Humidity      int32
	WindStrength  *uint64
	WindDirection string
}

func (r weatherReading) Describe() Description {
	d := Description{
		Timestamp: r.At,
		Fields:    []Field{{Key: "humidity", Value: NewValueFromInt(r.Humidity)}},
		Tags:      []Tag{{Key: "wind_direction", Value: TextValue(r.WindDirection)}},
	}
	if r.WindStrength != nil {
		d.Fields = append(d.Fields, Field{Key: "wind_strength", Value: NewValueFromUInt(*r.WindStrength)})
	}
	return d
}

func TestIntoQuery(t *testing.T) {
	strength := uint64(5)
	r := weatherReading{
		At:            NewTimestamp(11, Hours),
		Humidity:      30,
		WindStrength:  &strength,
		WindDirection: "north",
	}

	query, err := IntoQuery(r, "weather_reading").Build()
	require.NoError(t, err)
	assert.Equal(t, "weather_reading,wind_direction=north humidity=30i,wind_strength=5i 11", query.String())

	r.WindStrength = nil
	query, err = IntoQuery(r, "weather_reading").BuildWithOpts(true)
	require.NoError(t, err)
	assert.Equal(t, "weather_reading,wind_direction=north humidity=30i 11", query.String())
}

func TestStructToQuery(t *testing.T) {
	now := time.Unix(1_700_000_000, 123_000_000)
	hum := 55

	tests := []struct {
		name        string
		s           any
		measurement string
		unit        TimeUnit
		line        string
		error       string
	}{
		{
			name: "test normal structure",
			s: struct {
				Measurement string    `lp:"measurement"`
				Sensor      string    `lp:"tag,sensor"`
				ID          string    `lp:"tag,device_id"`
				Temp        float64   `lp:"field,temperature"`
				Hum         int       `lp:"field,humidity"`
				Time        time.Time `lp:"timestamp"`
				Description string    `lp:"-"`
			}{"air", "SHT31", "10", 23.5, 55, now, "Room temp"},
			unit: Milliseconds,
			line: "air,sensor=SHT31,device_id=10 temperature=23.5,humidity=55i 1700000000123",
		},
		{
			name: "test pointer to structure with measurement argument",
			s: &struct {
				Sensor string    `lp:"tag,sensor"`
				Temp   float64   `lp:"field,temperature"`
				Hum    *int      `lp:"field,humidity"`
				Time   time.Time `lp:"timestamp"`
			}{"SHT31", 23.5, &hum, now},
			measurement: "air",
			unit:        Seconds,
			line:        "air,sensor=SHT31 temperature=23.5,humidity=55i 1700000000",
		},
		{
			name: "test nil pointer field is skipped",
			s: struct {
				Temp float64   `lp:"field,temperature"`
				Hum  *int      `lp:"field,humidity"`
				Time time.Time `lp:"timestamp"`
			}{23.5, nil, now},
			measurement: "air",
			unit:        Seconds,
			line:        "air temperature=23.5 1700000000",
		},
		{
			name: "test implicit time field",
			s: struct {
				Temp float64 `lp:"field,temperature"`
				Time time.Time
			}{23.5, now},
			measurement: "air",
			unit:        Seconds,
			line:        "air temperature=23.5 1700000000",
		},
		{
			name: "test timestamp field",
			s: struct {
				Temp float64   `lp:"field,temperature"`
				At   Timestamp `lp:"timestamp"`
			}{23.5, NewTimestamp(11, Hours)},
			measurement: "air",
			unit:        Seconds,
			line:        "air temperature=23.5 11",
		},
		{
			name: "test default struct field name",
			s: &struct {
				Measurement string    `lp:"measurement"`
				Sensor      string    `lp:"tag"`
				Temp        float64   `lp:"field"`
				Time        time.Time `lp:"timestamp"`
			}{"air", "SHT31", 23.5, now},
			unit: Seconds,
			line: "air,Sensor=SHT31 Temp=23.5 1700000000",
		},
		{
			name: "test missing struct field tag name",
			s: &struct {
				Measurement string  `lp:"measurement"`
				Sensor      string  `lp:"tag,"`
				Temp        float64 `lp:"field"`
			}{"air", "SHT31", 23.5},
			error: "empty tag key for struct field 'Sensor'",
		},
		{
			name: "test missing measurement",
			s: &struct {
				Temp float64   `lp:"field,a"`
				Time time.Time `lp:"timestamp"`
			}{23.5, now},
			error: "no struct field with tag 'measurement'",
		},
		{
			name: "test no field",
			s: &struct {
				Measurement string    `lp:"measurement"`
				Sensor      string    `lp:"tag,sensor"`
				Time        time.Time `lp:"timestamp"`
			}{"air", "SHT31", now},
			error: "no struct field with tag 'field'",
		},
		{
			name: "test no timestamp",
			s: &struct {
				Measurement string  `lp:"measurement"`
				Temp        float64 `lp:"field,a"`
			}{"air", 23.5},
			error: "no struct field with tag 'timestamp'",
		},
		{
			name: "test wrong timestamp type",
			s: &struct {
				Measurement string  `lp:"measurement"`
				Temp        float64 `lp:"field,a"`
				Time        int64   `lp:"timestamp"`
			}{"air", 23.5, 10},
			error: "cannot use field 'Time' as a timestamp",
		},
		{
			name: "test multiple measurements",
			s: &struct {
				Measurement  string    `lp:"measurement"`
				Measurement2 string    `lp:"measurement"`
				Temp         float64   `lp:"field,a"`
				Time         time.Time `lp:"timestamp"`
			}{"air", "air2", 23.5, now},
			error: "multiple measurement fields",
		},
		{
			name: "test wrong tag",
			s: &struct {
				Measurement string  `lp:"measurement"`
				Temp        float64 `lp:"data,a"`
			}{"air", 23.5},
			error: "invalid tag data",
		},
		{
			name: "test too many tag attributes",
			s: &struct {
				Measurement string  `lp:"measurement"`
				Temp        float64 `lp:"field,a,b"`
			}{"air", 23.5},
			error: "multiple tag attributes are not supported",
		},
		{
			name:  "test wrong type",
			s:     "air",
			error: "cannot use string as a point",
		},
		{
			name:  "test nil",
			s:     nil,
			error: "cannot use nil as a point",
		},
		{
			name: "test time before epoch",
			s: struct {
				Temp float64   `lp:"field,a"`
				Time time.Time `lp:"timestamp"`
			}{1, time.Unix(-10, 0)},
			measurement: "air",
			unit:        Seconds,
			error:       fmt.Sprintf("%s: time %s is before the Unix epoch", ErrInvalidQuery, time.Unix(-10, 0).Format(time.RFC3339Nano)),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := StructToQuery(tc.s, tc.measurement, tc.unit)
			if tc.error != "" {
				require.Error(t, err)
				assert.Equal(t, tc.error, err.Error())
				return
			}
			require.NoError(t, err)
			query, err := q.Build()
			require.NoError(t, err)
			assert.Equal(t, tc.line, query.String())
		})
	}
}
