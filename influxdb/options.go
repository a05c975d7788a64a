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
	"net/http"
)

// QueryOptions holds options for queries.
type QueryOptions struct {
	// Database for querying. Use to override default database in `ClientConfig`.
	Database string

	// Headers to be included in requests. Use to add or override headers in `ClientConfig`.
	Headers http.Header
}

// WriteOptions holds options for writes.
type WriteOptions struct {
	// Database for writing. Use to override default database in `ClientConfig`.
	Database string

	// Precision of raw line protocol timestamps. Write queries carry their own
	// precision and ignore it.
	Precision TimeUnit

	// Write body larger than the threshold is gzipped. 0 for no compression.
	GzipThreshold int

	// UseV2 writes unsigned integers with the 'u' suffix. InfluxDB 1.x has
	// no unsigned type and needs it disabled.
	UseV2 bool

	// Headers to be included in requests. Use to add or override headers in `ClientConfig`.
	Headers http.Header
}

// DefaultQueryOptions specifies default query options.
var DefaultQueryOptions = QueryOptions{}

// DefaultWriteOptions specifies default write options.
var DefaultWriteOptions = WriteOptions{
	Precision:     Nanoseconds,
	GzipThreshold: 1_000,
}

// Option is a functional option for both queries and writes.
type Option func(o *options)

// QueryOption is a functional option for queries.
type QueryOption = Option

// WriteOption is a functional option for writes.
type WriteOption = Option

type options struct {
	QueryOptions
	WriteOptions
}

// WithDatabase is used to override default database in Query and Write methods.
func WithDatabase(database string) Option {
	return func(o *options) {
		o.QueryOptions.Database = database
		o.WriteOptions.Database = database
	}
}

// WithPrecision is used to override default precision of raw line protocol writes.
func WithPrecision(precision TimeUnit) Option {
	return func(o *options) {
		o.WriteOptions.Precision = precision
	}
}

// WithGzipThreshold is used to override default GZIP threshold in writes.
func WithGzipThreshold(gzipThreshold int) Option {
	return func(o *options) {
		o.WriteOptions.GzipThreshold = gzipThreshold
	}
}

// WithV2 selects whether unsigned integers are written with the 'u' suffix.
func WithV2(useV2 bool) Option {
	return func(o *options) {
		o.WriteOptions.UseV2 = useV2
	}
}

// WithHeader is used to add or override a header in Query and Write methods.
func WithHeader(key, value string) Option {
	return func(o *options) {
		if o.QueryOptions.Headers == nil {
			o.QueryOptions.Headers = make(http.Header)
		}
		o.QueryOptions.Headers[key] = []string{value}
		if o.WriteOptions.Headers == nil {
			o.WriteOptions.Headers = make(http.Header)
		}
		o.WriteOptions.Headers[key] = []string{value}
	}
}

func newQueryOptions(defaults *QueryOptions, opts []QueryOption) *QueryOptions {
	o := &options{QueryOptions: *defaults}
	o.QueryOptions.Headers = o.QueryOptions.Headers.Clone()
	for _, opt := range opts {
		opt(o)
	}
	return &o.QueryOptions
}

func newWriteOptions(defaults *WriteOptions, opts []WriteOption) *WriteOptions {
	o := &options{WriteOptions: *defaults}
	o.WriteOptions.Headers = o.WriteOptions.Headers.Clone()
	for _, opt := range opts {
		opt(o)
	}
	return &o.WriteOptions
}
