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

// Query is implemented by everything the client can send: ReadQuery,
// WriteQuery and WriteQueries.
type Query interface {
	// Build serializes the query for InfluxDB 1.x.
	Build() (ValidQuery, error)
	// BuildWithOpts serializes the query; useV2 selects the InfluxDB 2.x
	// encoding of unsigned integers.
	BuildWithOpts(useV2 bool) (ValidQuery, error)
	// Type tells the client which endpoint and precision to use.
	Type() QueryType
}

// ValidQuery is the serialized text of a query that built successfully.
type ValidQuery string

// String returns the query text.
func (q ValidQuery) String() string {
	return string(q)
}

// QueryKind separates read queries from write queries.
type QueryKind uint8

const (
	ReadKind QueryKind = iota
	WriteKind
)

// QueryType describes how a query is sent. Write queries carry the precision
// parameter of the request.
type QueryType struct {
	Kind      QueryKind
	Precision string
}

// ReadQueryType returns the type of read queries.
func ReadQueryType() QueryType {
	return QueryType{Kind: ReadKind}
}

// WriteQueryType returns the type of a write query with the given precision code.
func WriteQueryType(precision string) QueryType {
	return QueryType{Kind: WriteKind, Precision: precision}
}
