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
	"testing"

	"github.com/influxdata/line-protocol/v2/lineprotocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteQueryEmpty(t *testing.T) {
	_, err := NewTimestamp(5, Hours).IntoQuery("marina_3").Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestWriteQueryOnlyTags(t *testing.T) {
	_, err := NewTimestamp(11, Hours).
		IntoQuery("weather").
		AddTag("season", "summer").
		AddTag("location", "us-midwest").
		Build()
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestWriteQuerySingleField(t *testing.T) {
	query, err := NewTimestamp(11, Hours).
		IntoQuery("weather").
		AddField("temperature", 82).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "weather temperature=82i 11", query.String())
}

func TestWriteQueryMultipleFields(t *testing.T) {
	q := NewTimestamp(11, Hours).
		IntoQuery("weather").
		AddField("temperature", 82).
		AddField("wind_strength", 3.7).
		AddField("temperature_unsigned", uint64(82))

	query, err := q.Build()
	require.NoError(t, err)
	assert.Equal(t, "weather temperature=82i,wind_strength=3.7,temperature_unsigned=82i 11", query.String())

	query, err = q.BuildWithOpts(true)
	require.NoError(t, err)
	assert.Equal(t, "weather temperature=82i,wind_strength=3.7,temperature_unsigned=82u 11", query.String())
}

func TestWriteQueryOptionalValues(t *testing.T) {
	var windStrength *uint64
	humidity := 44.5

	q := NewTimestamp(11, Hours).
		IntoQuery("weather").
		AddField("temperature", uint64(82)).
		AddField("humidity", &humidity).
		AddField("pressure", nil).
		AddTag("wind_strength", windStrength)

	query, err := q.Build()
	require.NoError(t, err)
	assert.Equal(t, "weather temperature=82i,humidity=44.5 11", query.String())

	query, err = q.BuildWithOpts(true)
	require.NoError(t, err)
	assert.Equal(t, "weather temperature=82u,humidity=44.5 11", query.String())
	assert.Empty(t, q.Tags())
}

func TestWriteQueryZeroLineProtocolValue(t *testing.T) {
	query, err := NewTimestamp(11, Hours).
		IntoQuery("weather").
		AddField("temperature", 82).
		AddField("pressure", lineprotocol.Value{}).
		AddTag("location", lineprotocol.Value{}).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "weather temperature=82i 11", query.String())
}

func TestWriteQueryFullQuery(t *testing.T) {
	query, err := NewTimestamp(11, Hours).
		IntoQuery("weather").
		AddField("temperature", 82).
		AddTag("location", "us-midwest").
		AddTag("season", "summer").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "weather,location=us-midwest,season=summer temperature=82i 11", query.String())
}

func TestWriteQueryType(t *testing.T) {
	q := NewTimestamp(11, Hours).
		IntoQuery("weather").
		AddField("temperature", 82).
		AddTag("location", "us-midwest")

	assert.Equal(t, WriteQueryType("h"), q.Type())
	assert.Equal(t, "h", q.Precision())
}

func TestWriteQueryEscaping(t *testing.T) {
	query, err := NewTimestamp(11, Hours).
		IntoQuery("wea, ther=").
		AddField("temperature", 82).
		AddField(`"temp=era,t ure"`, `too"\\hot`).
		AddField("float", 82.0).
		AddTag("location", "us-midwest").
		AddTag(`loc, ="ation`, `us, "mid=west`).
		Build()
	require.NoError(t, err)
	assert.Equal(t,
		`wea\,\ ther=,location=us-midwest,loc\,\ \="ation=us\,\ \"mid\=west temperature=82i,"temp\=era\,t\ ure"="too\"\\\\hot",float=82 11`,
		query.String())
}

func TestWriteQueryDuplicateKeys(t *testing.T) {
	query, err := NewTimestamp(1, Seconds).
		IntoQuery("m").
		AddField("v", 1).
		AddField("v", 2).
		AddTag("t", "a").
		AddTag("t", "b").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "m,t=a,t=b v=1i,v=2i 1", query.String())
}

func TestWriteQueryEmptyTagValue(t *testing.T) {
	query, err := NewTimestamp(1, Seconds).
		IntoQuery("m").
		AddField("v", true).
		AddTag("t", "").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "m,t= v=true 1", query.String())
}

func TestWriteQueryNumericTags(t *testing.T) {
	query, err := NewTimestamp(7, Milliseconds).
		IntoQuery("m").
		AddField("v", int8(-3)).
		AddTag("float", 1.5).
		AddTag("int", -4).
		AddTag("uint", uint32(5)).
		AddTag("bool", false).
		BuildWithOpts(true)
	require.NoError(t, err)
	assert.Equal(t, "m,float=1.5,int=-4,uint=5,bool=false v=-3i 7", query.String())
}

func TestWriteQuerySplitRecoversParts(t *testing.T) {
	q := NewTimestamp(1_700_000_000, Seconds).
		IntoQuery("weather report").
		AddTag("city", "New York").
		AddField("temp, C", 21.5)

	query, err := q.Build()
	require.NoError(t, err)
	line := query.String()

	// split on the first unescaped space and the last space
	first := -1
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' && line[i-1] != '\\' {
			first = i
			break
		}
	}
	last := strings.LastIndexByte(line, ' ')
	require.Greater(t, last, first)

	assert.Equal(t, `weather\ report,city=New\ York`, line[:first])
	assert.Equal(t, `temp\,\ C=21.5`, line[first+1:last])
	assert.Equal(t, "1700000000", line[last+1:])
}

func TestWriteQueryAccessors(t *testing.T) {
	ts := NewTimestamp(11, Hours)
	q := ts.IntoQuery("weather").
		AddFieldFromValue("temperature", IntegerValue(82)).
		AddFieldFromValue("ignored", Value{}).
		AddTagFromValue("location", TextValue("us-midwest"))

	assert.Equal(t, "weather", q.Measurement())
	assert.Equal(t, ts, q.Timestamp())
	assert.Equal(t, []Field{{Key: "temperature", Value: IntegerValue(82)}}, q.Fields())
	assert.Equal(t, []Tag{{Key: "location", Value: TextValue("us-midwest")}}, q.Tags())

	// accessors return copies
	q.Fields()[0].Key = "changed"
	assert.Equal(t, "temperature", q.Fields()[0].Key)
}

func TestWriteQueriesBatch(t *testing.T) {
	q0 := NewTimestamp(11, Hours).
		IntoQuery("weather").
		AddField("temperature", 82).
		AddTag("location", "us-midwest")
	q1 := NewTimestamp(12, Hours).
		IntoQuery("weather").
		AddField("temperature", 65).
		AddTag("location", "us-midwest")

	query, err := WriteQueries{q0, q1}.Build()
	require.NoError(t, err)
	assert.Equal(t, "weather,location=us-midwest temperature=82i 11\nweather,location=us-midwest temperature=65i 12", query.String())

	line0, err := q0.Build()
	require.NoError(t, err)
	line1, err := q1.Build()
	require.NoError(t, err)
	assert.Equal(t, line0+"\n"+line1, query)
}

func TestWriteQueriesPrecision(t *testing.T) {
	q0 := NewTimestamp(11, Seconds).IntoQuery("m").AddField("v", 1)
	q1 := NewTimestamp(11, Hours).IntoQuery("m").AddField("v", 1)

	assert.Equal(t, WriteQueryType("s"), WriteQueries{q0, q1}.Type())
	assert.Equal(t, WriteQueryType("h"), WriteQueries{q1, q0}.Type())
	assert.Equal(t, WriteQueryType("ms"), WriteQueries{}.Type())
}

func TestWriteQueriesFailOnEmptyQuery(t *testing.T) {
	q0 := NewTimestamp(11, Seconds).IntoQuery("m").AddField("v", 1)
	q1 := NewTimestamp(12, Seconds).IntoQuery("m")

	_, err := WriteQueries{q0, q1}.BuildWithOpts(true)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
