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

package batching

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/influxdb-rs/influxdb-go/influxdb"
	"github.com/pkg/errors"
)

// LineWriter sends line protocol to InfluxDB. *influxdb.Client implements it.
type LineWriter interface {
	Write(ctx context.Context, buff []byte, opts ...influxdb.WriteOption) error
}

// WriterParams holds configuration properties for a PointsWriter.
type WriterParams struct {
	// Database to write to. Empty means the database of the client.
	Database string
	// Maximum number of lines sent to server in single request. Default 5000
	BatchSize int
	// Maximum size of batch in bytes. Default 50_000_000
	MaxBatchBytes int
	// Interval in which the buffer is flushed if it has not been already
	// written by reaching the batch size. Default 1s
	FlushInterval time.Duration
	// Maximum time a batch may wait before it is dropped. Default 3m
	ExpirationTime time.Duration
	// Precision of the timestamps. Queries with another precision are rejected.
	Precision influxdb.TimeUnit
	// UseV2 writes unsigned integers with the "u" suffix.
	UseV2 bool
	// WriteFailed is called to inform about an error occurred during writing procedure.
	// lines is nil when the error occurred before sending, e.g. when a record
	// cannot be encoded; expires is zero in that case.
	WriteFailed func(err error, lines []byte, expires time.Time)
}

// DefaultWriterParams specifies default writer params
var DefaultWriterParams = WriterParams{
	BatchSize:      5_000,
	MaxBatchBytes:  50_000_000,
	FlushInterval:  time.Second,
	ExpirationTime: 3 * time.Minute,
	Precision:      influxdb.Nanoseconds,
}

// writeBuffer collects lines and flushes them when maxLength lines are
// buffered or maxBytes would be exceeded.
type writeBuffer struct {
	length    int
	lines     []byte
	maxLength int
	maxBytes  int
	flushFn   func(lines []byte)
}

func (w *writeBuffer) add(lines []byte) {
	if len(w.lines) > 0 && len(w.lines)+len(lines) > w.maxBytes {
		w.flush()
	}
	w.lines = append(w.lines, lines...)
	w.length += bytes.Count(lines, []byte{'\n'})
	if w.length >= w.maxLength {
		w.flush()
	}
}

func (w *writeBuffer) flush() {
	if len(w.lines) == 0 {
		return
	}
	ret := make([]byte, len(w.lines))
	copy(ret, w.lines)
	w.lines = w.lines[:0]
	w.length = 0
	w.flushFn(ret)
}

type batch struct {
	lines   []byte
	expires time.Time
	// done is closed once every batch queued before it has been written.
	done chan struct{}
}

// PointsWriter is asynchronous writer with automated batching.
// Lines are collected by a background routine and written in batches when
// BatchSize or MaxBatchBytes is reached, on every FlushInterval and on Flush.
// Any error encountered during asynchronous processing is reported by
// WriterParams.WriteFailed. All methods are safe for concurrent use; Close
// must be called at the end and the writer must not be used afterwards.
type PointsWriter struct {
	writer LineWriter
	params WriterParams
	buffer *writeBuffer

	bufferCh chan []byte
	flushCh  chan chan struct{}
	batchCh  chan *batch
	stopCh   chan struct{}

	closed    atomic.Bool
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewPointsWriter creates an asynchronous PointsWriter writing through writer
// according to params. Zero params fall back to DefaultWriterParams.
func NewPointsWriter(writer LineWriter, params WriterParams) *PointsWriter {
	if params.BatchSize <= 0 {
		params.BatchSize = DefaultWriterParams.BatchSize
	}
	if params.MaxBatchBytes <= 0 {
		params.MaxBatchBytes = DefaultWriterParams.MaxBatchBytes
	}
	if params.FlushInterval <= 0 {
		params.FlushInterval = DefaultWriterParams.FlushInterval
	}
	if params.ExpirationTime <= 0 {
		params.ExpirationTime = DefaultWriterParams.ExpirationTime
	}

	p := &PointsWriter{
		writer:   writer,
		params:   params,
		bufferCh: make(chan []byte, 1),
		flushCh:  make(chan chan struct{}),
		batchCh:  make(chan *batch, 1),
		stopCh:   make(chan struct{}),
	}
	p.buffer = &writeBuffer{
		maxLength: params.BatchSize,
		maxBytes:  params.MaxBatchBytes,
		flushFn: func(lines []byte) {
			p.batchCh <- &batch{lines: lines, expires: time.Now().Add(params.ExpirationTime)}
		},
	}

	p.wg.Add(2)
	go p.writeProc()
	go p.bufferProc()
	return p
}

// Write asynchronously writes line protocol record(s) to the server.
// Multiple records must be separated by the new line character (\n).
func (p *PointsWriter) Write(lines []byte) {
	if len(lines) == 0 {
		return
	}
	if p.closed.Load() {
		slog.Warn("PointsWriter is closed, dropping lines", "bytes", len(lines))
		return
	}
	buf := make([]byte, len(lines), len(lines)+1)
	copy(buf, lines)
	if buf[len(buf)-1] != '\n' {
		buf = append(buf, '\n')
	}
	select {
	case p.bufferCh <- buf:
	case <-p.stopCh:
		slog.Warn("PointsWriter is closed, dropping lines", "bytes", len(lines))
	}
}

// WriteQueries asynchronously writes the given queries. A query that cannot
// be built, or whose precision differs from WriterParams.Precision, is
// reported by WriteFailed and skipped.
func (p *PointsWriter) WriteQueries(queries ...*influxdb.WriteQuery) {
	var b strings.Builder
	for _, q := range queries {
		if q.Precision() != p.params.Precision.Precision() {
			p.failed(errors.Errorf("query precision %s does not match writer precision %s",
				q.Precision(), p.params.Precision.Precision()), nil, time.Time{})
			continue
		}
		line, err := q.BuildWithOpts(p.params.UseV2)
		if err != nil {
			p.failed(errors.Wrap(err, "point encoding failed"), nil, time.Time{})
			continue
		}
		b.WriteString(line.String())
		b.WriteByte('\n')
	}
	p.Write([]byte(b.String()))
}

// WriteData asynchronously encodes records into measurement and writes them.
// A record is either an influxdb.Writeable or a struct annotated with 'lp'
// tags, see influxdb.StructToQuery.
func (p *PointsWriter) WriteData(measurement string, records ...any) {
	queries := make([]*influxdb.WriteQuery, 0, len(records))
	for _, r := range records {
		if w, ok := r.(influxdb.Writeable); ok {
			queries = append(queries, influxdb.IntoQuery(w, measurement))
			continue
		}
		q, err := influxdb.StructToQuery(r, measurement, p.params.Precision)
		if err != nil {
			p.failed(errors.Wrap(err, "point encoding failed"), nil, time.Time{})
			continue
		}
		queries = append(queries, q)
	}
	p.WriteQueries(queries...)
}

// Flush writes everything buffered so far and waits until it has been sent,
// even when no flush condition (batch size, flush interval, max batch bytes)
// is met.
func (p *PointsWriter) Flush() {
	if p.closed.Load() {
		return
	}
	done := make(chan struct{})
	select {
	case p.flushCh <- done:
		// writeProc closes done once every earlier batch is written
		<-done
	case <-p.stopCh:
		// Close flushes on its own
	}
}

// Close flushes the buffer, waits for pending writes and stops the
// background routines.
func (p *PointsWriter) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.stopCh)
		p.wg.Wait()
	})
}

func (p *PointsWriter) bufferProc() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.params.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case lines := <-p.bufferCh:
			p.buffer.add(lines)
		case <-ticker.C:
			p.buffer.flush()
		case done := <-p.flushCh:
			p.drain()
			p.buffer.flush()
			p.batchCh <- &batch{done: done}
		case <-p.stopCh:
			p.drain()
			p.buffer.flush()
			close(p.batchCh)
			return
		}
	}
}

// drain takes lines already queued by Write, so that Flush and Close see them.
func (p *PointsWriter) drain() {
	for {
		select {
		case lines := <-p.bufferCh:
			p.buffer.add(lines)
		default:
			return
		}
	}
}

func (p *PointsWriter) writeProc() {
	defer p.wg.Done()
	for b := range p.batchCh {
		if b.done != nil {
			close(b.done)
			continue
		}
		if b.expires.Before(time.Now()) {
			err := errors.New("max time exceeded")
			slog.Warn("PointsWriter: batch dropped", "error", err, "bytes", len(b.lines))
			p.failed(err, b.lines, b.expires)
			continue
		}
		p.writeBatch(b)
	}
}

func (p *PointsWriter) writeBatch(b *batch) {
	opts := []influxdb.WriteOption{influxdb.WithPrecision(p.params.Precision)}
	if p.params.Database != "" {
		opts = append(opts, influxdb.WithDatabase(p.params.Database))
	}
	err := p.writer.Write(context.Background(), b.lines, opts...)
	if err == nil {
		return
	}
	var se *influxdb.ServerError
	if errors.As(err, &se) && isIgnorableError(se) {
		slog.Warn("PointsWriter: write to InfluxDB returns", "message", se.Message)
		return
	}
	slog.Error("PointsWriter: write to InfluxDB failed", "error", err)
	p.failed(err, b.lines, b.expires)
}

func (p *PointsWriter) failed(err error, lines []byte, expires time.Time) {
	if p.params.WriteFailed != nil {
		p.params.WriteFailed(err, lines, expires)
	}
}

// Non-retryable errors
const (
	errStringHintedHandoffNotEmpty = "hinted handoff queue not empty"
	errStringPartialWrite          = "partial write"
	errStringPointsBeyondRP        = "points beyond retention policy"
	errStringUnableToParse         = "unable to parse"
)

// isIgnorableError reports server errors that writing the same batch again
// cannot fix. The batch is dropped without calling WriteFailed.
func isIgnorableError(se *influxdb.ServerError) bool {
	for _, s := range []string{
		errStringHintedHandoffNotEmpty,
		errStringPointsBeyondRP,
		errStringPartialWrite,
		errStringUnableToParse,
	} {
		if strings.Contains(se.Message, s) {
			return true
		}
	}
	return false
}
