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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWriteQueries(t *testing.T) {
	data := []byte("weather,location=us-midwest,season=summer temperature=82i,wind=3.7,ok=true,note=\"warm\" 11\n" +
		"weather,location=us-east temperature=65u 12\n")

	queries, err := ParseWriteQueries(data, Hours)
	require.NoError(t, err)
	require.Len(t, queries, 2)

	q := queries[0]
	assert.Equal(t, "weather", q.Measurement())
	assert.Equal(t, NewTimestamp(11, Hours), q.Timestamp())
	assert.Equal(t, []Tag{
		{Key: "location", Value: TextValue("us-midwest")},
		{Key: "season", Value: TextValue("summer")},
	}, q.Tags())
	assert.Equal(t, []Field{
		{Key: "temperature", Value: IntegerValue(82)},
		{Key: "wind", Value: FloatValue(3.7)},
		{Key: "ok", Value: BooleanValue(true)},
		{Key: "note", Value: TextValue("warm")},
	}, q.Fields())

	assert.Equal(t, []Field{{Key: "temperature", Value: UIntegerValue(65)}}, queries[1].Fields())
	assert.Equal(t, WriteQueryType("h"), queries.Type())
}

func TestParseWriteQueriesRoundTrip(t *testing.T) {
	strength := uint64(7)
	original := WriteQueries{
		NewTimestamp(1_700_000_000_123, Milliseconds).
			IntoQuery("wea, ther").
			AddTag("loc, =ation", "us, mid=west").
			AddField("temp=era,t ure", `too "hot"`).
			AddField("wind", &strength).
			AddField("rain", 0.25),
		NewTimestamp(1_700_000_000_124, Milliseconds).
			IntoQuery("wea, ther").
			AddField("temp=era,t ure", "cold"),
	}

	text, err := original.BuildWithOpts(true)
	require.NoError(t, err)

	parsed, err := ParseWriteQueries([]byte(text), Milliseconds)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)

	again, err := parsed.BuildWithOpts(true)
	require.NoError(t, err)
	assert.Equal(t, text, again)
}

func TestParseWriteQueriesErrors(t *testing.T) {
	_, err := ParseWriteQueries([]byte("weather temperature=82i"), Seconds)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = ParseWriteQueries([]byte("weather temperature 11"), Seconds)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = ParseWriteQueries([]byte("weather temperature=1i -5"), Seconds)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestParseWriteQueriesUnitRange(t *testing.T) {
	queries, err := ParseWriteQueries([]byte("weather temperature=1i 1700000000"), Seconds)
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Equal(t, NewTimestamp(1_700_000_000, Seconds), queries[0].Timestamp())

	queries, err = ParseWriteQueries([]byte("weather temperature=1i 1700000000123456"), Microseconds)
	require.NoError(t, err)
	assert.Equal(t, NewTimestamp(1_700_000_000_123_456, Microseconds), queries[0].Timestamp())

	// overflows int64 nanoseconds
	_, err = ParseWriteQueries([]byte("weather temperature=1i 10000000000000"), Seconds)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	// hours are kept as written
	queries, err = ParseWriteQueries([]byte("weather temperature=1i 10000000000000"), Hours)
	require.NoError(t, err)
	assert.Equal(t, NewTimestamp(10_000_000_000_000, Hours), queries[0].Timestamp())
}

func TestParseWriteQueriesEmpty(t *testing.T) {
	queries, err := ParseWriteQueries([]byte("\n# comment\n"), Seconds)
	require.NoError(t, err)
	assert.Empty(t, queries)
}
