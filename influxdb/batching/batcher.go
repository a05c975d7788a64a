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

// Package batching provides batchers that collect write queries or line
// protocol and emit them as batches.
package batching

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/influxdb-rs/influxdb-go/influxdb"
)

// DefaultBatchSize is the default number of write queries emitted
const DefaultBatchSize = 1000

// DefaultInitialCapacity is the default initial capacity of the query buffer
const DefaultInitialCapacity = 2 * DefaultBatchSize

// Batcher collects write queries and emits them as batches
type Batcher struct {
	size          int
	capacity      int
	callbackReady func()
	callbackEmit  func(influxdb.WriteQueries)

	queries influxdb.WriteQueries
	sync.Mutex
}

func (b *Batcher) SetSize(s int) {
	b.size = s
}

func (b *Batcher) SetCapacity(c int) {
	b.capacity = c
}

func (b *Batcher) SetReadyCallback(f func()) {
	b.callbackReady = f
}

func (b *Batcher) SetEmitCallback(f func(influxdb.WriteQueries)) {
	b.callbackEmit = f
}

// NewBatcher creates and initializes a new Batcher instance applying the
// specified options. By default, a batch-size is DefaultBatchSize and the
// initial capacity is DefaultInitialCapacity.
func NewBatcher(options ...Option) *Batcher {
	// Set up a batcher with the default values
	b := &Batcher{
		size:     DefaultBatchSize,
		capacity: DefaultInitialCapacity,
	}

	// Apply the options
	for _, o := range options {
		o(b)
	}

	// setup internal data
	b.queries = make(influxdb.WriteQueries, 0, b.capacity)

	return b
}

// Add write queries to the batcher and call the given callbacks if any.
// Queries of one batch are written with a single precision, so a batcher
// should only be fed queries of one timestamp unit.
func (b *Batcher) Add(q ...*influxdb.WriteQuery) {
	b.Lock()
	defer b.Unlock()

	b.queries = append(b.queries, q...)

	// Call callbacks while a new batch is ready
	for b.isReady() {
		if b.callbackReady != nil {
			b.callbackReady()
		}
		if b.callbackEmit == nil {
			// no emitter callback
			if len(b.queries) >= (b.capacity - b.size) {
				slog.Warn(
					fmt.Sprintf("Batcher is ready, but no callbackEmit is available.  "+
						"Batcher load is %d queries waiting to be emitted.",
						len(b.queries)),
				)
			}
			break
		}
		b.callbackEmit(b.emitQueries())
	}
}

// Ready tells the call if a new batch is ready to be emitted
func (b *Batcher) Ready() bool {
	b.Lock()
	defer b.Unlock()
	return b.isReady()
}

func (b *Batcher) isReady() bool {
	return len(b.queries) >= b.size
}

// Emit returns a new batch of queries with the provided batch size or with the
// remaining queries. Please drain the queries at the end of your processing to
// get the remaining queries not filling up a batch.
func (b *Batcher) Emit() influxdb.WriteQueries {
	b.Lock()
	defer b.Unlock()

	return b.emitQueries()
}

func (b *Batcher) emitQueries() influxdb.WriteQueries {
	l := min(b.size, len(b.queries))

	batch := make(influxdb.WriteQueries, l)
	copy(batch, b.queries[:l])
	b.queries = b.queries[l:]

	return batch
}

// Flush drains all queries even if buffer currently larger than size.
// It does not call the callbackEmit method
func (b *Batcher) Flush() influxdb.WriteQueries {
	b.Lock()
	defer b.Unlock()

	slog.Info(fmt.Sprintf("Flushing all queries (%d) from buffer.", len(b.queries)))
	batch := b.queries
	b.queries = make(influxdb.WriteQueries, 0, b.capacity)
	return batch
}

// CurrentLoadSize returns the number of queries waiting to be emitted.
func (b *Batcher) CurrentLoadSize() int {
	b.Lock()
	defer b.Unlock()
	return len(b.queries)
}
