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

import "strings"

// ReadQuery holds one or more raw query statements. They are sent as is,
// joined with ";", without any escaping.
type ReadQuery struct {
	queries []string
}

// NewReadQuery creates a ReadQuery holding a single statement.
func NewReadQuery(query string) *ReadQuery {
	return &ReadQuery{queries: []string{query}}
}

// AddQuery appends another statement, which is executed in the same request.
func (q *ReadQuery) AddQuery(query string) *ReadQuery {
	q.queries = append(q.queries, query)
	return q
}

// Build joins the statements with ";". It never fails.
func (q *ReadQuery) Build() (ValidQuery, error) {
	return ValidQuery(strings.Join(q.queries, ";")), nil
}

// BuildWithOpts is Build; read queries do not depend on the server version.
func (q *ReadQuery) BuildWithOpts(bool) (ValidQuery, error) {
	return q.Build()
}

// Type reports a read query.
func (q *ReadQuery) Type() QueryType {
	return ReadQueryType()
}
