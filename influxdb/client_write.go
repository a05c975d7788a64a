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
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/klauspost/compress/gzip"
)

// Write writes line protocol record(s) to the server into the default
// database. Multiple records must be separated by the new line character (\n).
// The timestamps are interpreted in WriteOptions.Precision.
// The data is written synchronously.
//
// Parameters:
//   - ctx: The context.Context to use for the request.
//   - buff: The line protocol record(s) to write.
//   - opts: Write options.
//
// Returns:
//   - An error, if any.
func (c *Client) Write(ctx context.Context, buff []byte, opts ...WriteOption) error {
	options := newWriteOptions(c.config.WriteOptions, opts)
	return c.write(ctx, buff, options.Precision.Precision(), options)
}

// WriteQueries writes a batch of write queries. The batch is written with the
// precision of its first query and must not mix precisions.
//
// Parameters:
//   - ctx: The context.Context to use for the request.
//   - queries: The queries to write.
//   - opts: Write options.
//
// Returns:
//   - An error, if any.
func (c *Client) WriteQueries(ctx context.Context, queries WriteQueries, opts ...WriteOption) error {
	options := newWriteOptions(c.config.WriteOptions, opts)
	lines, err := queries.BuildWithOpts(options.UseV2)
	if err != nil {
		return err
	}
	return c.write(ctx, []byte(lines), queries.Type().Precision, options)
}

// WriteData converts records into write queries of measurement and writes
// them in one request. A record is either a Writeable or a struct annotated
// with 'lp' tags as described by StructToQuery, whose time.Time timestamps are
// converted to WriteOptions.Precision.
//
// Example usage:
//
//	type TemperatureSensor struct {
//	    Sensor       string    `lp:"tag,sensor"`
//	    Temp         float64   `lp:"field,temperature"`
//	    Time         time.Time `lp:"timestamp"`
//	}
//
//	err := client.WriteData(ctx, "temperature", []any{sensor1, sensor2})
//
// Parameters:
//   - ctx: The context.Context to use for the request.
//   - measurement: The measurement of records that do not name one.
//   - records: The records to encode and write.
//   - opts: Write options.
//
// Returns:
//   - An error, if any.
func (c *Client) WriteData(ctx context.Context, measurement string, records []any, opts ...WriteOption) error {
	options := newWriteOptions(c.config.WriteOptions, opts)
	queries := make(WriteQueries, 0, len(records))
	for _, r := range records {
		var q *WriteQuery
		if w, ok := r.(Writeable); ok {
			q = IntoQuery(w, measurement)
		} else {
			var err error
			if q, err = StructToQuery(r, measurement, options.Precision); err != nil {
				return fmt.Errorf("error encoding point: %w", err)
			}
		}
		queries = append(queries, q)
	}
	lines, err := queries.BuildWithOpts(options.UseV2)
	if err != nil {
		return err
	}
	return c.write(ctx, []byte(lines), queries.Type().Precision, options)
}

func (c *Client) write(ctx context.Context, buff []byte, precision string, options *WriteOptions) error {
	database := options.Database
	if database == "" {
		database = c.config.Database
	}
	if database == "" {
		return invalidQuery("database not specified")
	}

	u, _ := c.apiURL.Parse("write")
	params := u.Query()
	params.Set("db", database)
	params.Set("precision", precision)

	var body io.Reader = bytes.NewReader(buff)
	headers := http.Header{"Content-Type": {"text/plain; charset=utf-8"}}
	for k, v := range options.Headers {
		headers[k] = v
	}
	if options.GzipThreshold > 0 && len(buff) >= options.GzipThreshold {
		var err error
		body, err = compressWithGzip(buff)
		if err != nil {
			return fmt.Errorf("unable to compress write body: %w", err)
		}
		headers["Content-Encoding"] = []string{"gzip"}
	}

	resp, err := c.makeAPICall(ctx, httpParams{
		endpointURL: u,
		httpMethod:  http.MethodPost,
		headers:     headers,
		queryParams: params,
		body:        body,
	})
	if err != nil {
		return err
	}
	return checkTextResponse(resp)
}

func compressWithGzip(data []byte) (io.Reader, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}
