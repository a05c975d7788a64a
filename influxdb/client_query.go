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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Query sends a read or write query and returns the raw response text.
// Read queries containing SELECT or SHOW are sent with GET, other read
// queries, such as CREATE DATABASE, with POST. Write queries are posted to
// the write endpoint with the precision of their timestamp.
//
// Parameters:
//   - ctx: The context.Context to use for the request.
//   - q: The query to send.
//   - opts: Query options.
//
// Returns:
//   - The response body.
//   - An error, wrapping ErrDatabase if the server reported an error.
func (c *Client) Query(ctx context.Context, q Query, opts ...QueryOption) (string, error) {
	switch q.Type().Kind {
	case WriteKind:
		options := newWriteOptions(c.config.WriteOptions, opts)
		text, err := q.BuildWithOpts(options.UseV2)
		if err != nil {
			return "", err
		}
		return "", c.write(ctx, []byte(text), q.Type().Precision, options)
	default:
		text, err := q.Build()
		if err != nil {
			return "", err
		}
		options := newQueryOptions(&DefaultQueryOptions, opts)
		method := http.MethodPost
		if s := text.String(); strings.Contains(s, "SELECT") || strings.Contains(s, "SHOW") {
			method = http.MethodGet
		}
		resp, err := c.query(ctx, method, text, options)
		if err != nil {
			return "", err
		}
		return readTextResponse(resp)
	}
}

// JSONQuery runs a SELECT or SHOW query and returns its undecoded results,
// ready for DeserializeNext.
//
// Parameters:
//   - ctx: The context.Context to use for the request.
//   - q: The query to run.
//   - opts: Query options.
//
// Returns:
//   - The results, one per statement.
//   - An error, wrapping ErrInvalidQuery for other statements, ErrDatabase
//     for server errors or ErrDeserialization for malformed responses.
func (c *Client) JSONQuery(ctx context.Context, q *ReadQuery, opts ...QueryOption) (*DatabaseQueryResult, error) {
	text, err := q.Build()
	if err != nil {
		return nil, err
	}
	lower := strings.ToLower(text.String())
	if !strings.Contains(lower, "select") && !strings.Contains(lower, "show") {
		return nil, invalidQuery("Only SELECT and SHOW queries supported with JSON deserialization")
	}

	options := newQueryOptions(&DefaultQueryOptions, opts)
	resp, err := c.query(ctx, http.MethodGet, text, options)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if !utf8.Valid(body) {
		return nil, deserializationError("response is not valid UTF-8")
	}

	var dbErr struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(body, &dbErr); err == nil && dbErr.Error != nil {
		return nil, NewServerError(*dbErr.Error)
	}

	var result DatabaseQueryResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, deserializationError("serde error: %s", err)
	}
	return &result, nil
}

func (c *Client) query(ctx context.Context, method string, text ValidQuery, options *QueryOptions) (*http.Response, error) {
	database := options.Database
	if database == "" {
		database = c.config.Database
	}

	u, _ := c.apiURL.Parse("query")
	params := u.Query()
	if database != "" {
		params.Set("db", database)
	}
	params.Set("q", text.String())

	return c.makeAPICall(ctx, httpParams{
		endpointURL: u,
		httpMethod:  method,
		headers:     options.Headers,
		queryParams: params,
	})
}

// readTextResponse returns the body of a text response, failing when it
// carries an error payload.
func readTextResponse(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if !utf8.Valid(body) {
		return "", deserializationError("response is not valid UTF-8")
	}
	s := string(body)
	if containsErrorKey(s) {
		return "", NewServerError(fmt.Sprintf("influxdb error: \"%s\"", s))
	}
	return s, nil
}

func checkTextResponse(resp *http.Response) error {
	_, err := readTextResponse(resp)
	return err
}
