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
	"github.com/influxdb-rs/influxdb-go/influxdb"
)

// Emittable is the configuration surface shared by Batcher and LPBatcher.
type Emittable interface {
	SetSize(s int)               // setsize
	SetCapacity(c int)           // set capacity
	SetReadyCallback(rcb func()) // ready Callback
}

// QueryEmittable is implemented by batchers emitting write queries.
type QueryEmittable interface {
	Emittable
	SetEmitCallback(epcb func(influxdb.WriteQueries)) // callback for emitting queries
}

// BytesEmittable is implemented by batchers emitting line protocol bytes.
type BytesEmittable interface {
	Emittable
	SetEmitBytesCallback(ebcb func([]byte)) // callback for emitting bytes
}

// Option to adapt properties of a Batcher.
type Option func(QueryEmittable)

// LPOption to adapt properties of an LPBatcher.
type LPOption func(BytesEmittable)

// WithSize changes the batch-size emitted by the batcher.
// The implied unit is a write query.
func WithSize(size int) Option {
	return func(b QueryEmittable) {
		b.SetSize(size)
	}
}

// WithInitialCapacity changes the initial capacity of the internal buffer.
func WithInitialCapacity(capacity int) Option {
	return func(b QueryEmittable) {
		b.SetCapacity(capacity)
	}
}

// WithReadyCallback sets the function called when a new batch is ready. The
// batcher will wait for the callback to finish, so please return as fast as
// possible and move long-running processing to a  go-routine.
func WithReadyCallback(f func()) Option {
	return func(b QueryEmittable) {
		b.SetReadyCallback(f)
	}
}

// WithEmitCallback sets the function called when a new batch is ready with the
// batch of queries. The batcher will wait for the callback to finish, so please
// return as fast as possible and move long-running processing to a go-routine.
func WithEmitCallback(f func(influxdb.WriteQueries)) Option {
	return func(b QueryEmittable) {
		b.SetEmitCallback(f)
	}
}

// WithBufferSize changes the batch-size emitted by the LPBatcher.
// The implied unit is a byte.
func WithBufferSize(size int) LPOption {
	return func(b BytesEmittable) {
		b.SetSize(size)
	}
}

// WithBufferCapacity changes the initial capacity of the LPBatcher buffer in bytes.
func WithBufferCapacity(capacity int) LPOption {
	return func(b BytesEmittable) {
		b.SetCapacity(capacity)
	}
}

// WithByteEmitReadyCallback is WithReadyCallback for the LPBatcher.
func WithByteEmitReadyCallback(f func()) LPOption {
	return func(b BytesEmittable) {
		b.SetReadyCallback(f)
	}
}

// WithEmitBytesCallback sets the function called with each batch of whole
// lines once a batch is ready.
func WithEmitBytesCallback(f func([]byte)) LPOption {
	return func(b BytesEmittable) {
		b.SetEmitBytesCallback(f)
	}
}
