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
	"encoding/json"
)

// DatabaseQueryResult is the undecoded body of a JSON query. It holds one
// result per statement, decoded in order by DeserializeNext or
// DeserializeNextTagged.
type DatabaseQueryResult struct {
	Results []json.RawMessage `json:"results"`
}

// Len returns the number of results not decoded yet.
func (r *DatabaseQueryResult) Len() int {
	return len(r.Results)
}

// Return is the decoded result of one statement.
type Return[T any] struct {
	StatementID int         `json:"statement_id"`
	Series      []Series[T] `json:"series"`
}

// TaggedReturn is the decoded result of one GROUP BY statement.
type TaggedReturn[TAG, T any] struct {
	StatementID int                    `json:"statement_id"`
	Series      []TaggedSeries[TAG, T] `json:"series"`
}

// statementError is the part of a statement result reporting its failure.
type statementError struct {
	Error string `json:"error"`
}

// DeserializeNext removes the next statement result from r and decodes its
// series into T rows.
//
// Parameters:
//   - r: The query result to consume.
//
// Returns:
//   - The decoded statement result. A statement without series yields no series.
//   - An error wrapping ErrDeserialization, or ErrDatabase when the statement failed.
func DeserializeNext[T any](r *DatabaseQueryResult) (*Return[T], error) {
	raw, err := r.next()
	if err != nil {
		return nil, err
	}
	ret := &Return[T]{}
	if err := json.Unmarshal(raw, ret); err != nil {
		return nil, deserializationError("could not deserialize: %s", err)
	}
	if ret.Series == nil {
		ret.Series = []Series[T]{}
	}
	return ret, nil
}

// DeserializeNextTagged is DeserializeNext for GROUP BY statements, decoding
// the tags of each series into TAG.
//
// Parameters:
//   - r: The query result to consume.
//
// Returns:
//   - The decoded statement result.
//   - An error wrapping ErrDeserialization, or ErrDatabase when the statement failed.
func DeserializeNextTagged[TAG, T any](r *DatabaseQueryResult) (*TaggedReturn[TAG, T], error) {
	raw, err := r.next()
	if err != nil {
		return nil, err
	}
	ret := &TaggedReturn[TAG, T]{}
	if err := json.Unmarshal(raw, ret); err != nil {
		return nil, deserializationError("could not deserialize: %s", err)
	}
	if ret.Series == nil {
		ret.Series = []TaggedSeries[TAG, T]{}
	}
	return ret, nil
}

func (r *DatabaseQueryResult) next() (json.RawMessage, error) {
	if len(r.Results) == 0 {
		return nil, deserializationError("no more results")
	}
	raw := r.Results[0]
	r.Results = r.Results[1:]

	var se statementError
	if err := json.Unmarshal(raw, &se); err == nil && se.Error != "" {
		return nil, NewServerError(se.Error)
	}
	return raw, nil
}
