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
	"fmt"
	"log/slog"
	"sync"
)

// DefaultByteBatchSize is the default number of bytes emitted by an LPBatcher
const DefaultByteBatchSize = 100_000

// DefaultBufferCapacity is the default initial capacity of the LPBatcher buffer
const DefaultBufferCapacity = DefaultByteBatchSize * 2

// LPBatcher collects line protocol and emits it in batches of about size
// bytes. A batch always holds whole lines, each terminated by a new line.
type LPBatcher struct {
	size          int
	capacity      int
	callbackReady func()
	callbackEmit  func([]byte)

	buffer []byte
	sync.Mutex
}

func (l *LPBatcher) SetSize(s int) {
	l.size = s
}

func (l *LPBatcher) SetCapacity(c int) {
	l.capacity = c
}

func (l *LPBatcher) SetReadyCallback(f func()) {
	l.callbackReady = f
}

func (l *LPBatcher) SetEmitBytesCallback(f func([]byte)) {
	l.callbackEmit = f
}

// NewLPBatcher creates and initializes a new LPBatcher instance applying the
// specified options. By default, a batch-size is DefaultByteBatchSize and the
// initial capacity is DefaultBufferCapacity.
func NewLPBatcher(options ...LPOption) *LPBatcher {
	l := &LPBatcher{
		size:     DefaultByteBatchSize,
		capacity: DefaultBufferCapacity,
	}

	// Apply the options
	for _, o := range options {
		o(l)
	}

	// setup internal data
	l.buffer = make([]byte, 0, l.capacity)
	return l
}

// Add lines to the buffer and call the given callbacks while a batch is
// ready. Empty lines are ignored and a missing trailing new line is added.
func (l *LPBatcher) Add(lines ...string) {
	l.Lock()
	defer l.Unlock()

	for _, line := range lines {
		if len(line) != 0 { // ignore empty lines
			l.buffer = append(l.buffer, line...)
			if line[len(line)-1] != '\n' {
				l.buffer = append(l.buffer, '\n')
			}
		}
	}

	for l.isReady() {
		if l.callbackReady != nil {
			l.callbackReady()
		}
		if l.callbackEmit == nil {
			if len(l.buffer) >= (l.capacity - l.size) {
				slog.Warn(
					fmt.Sprintf("LPBatcher is ready, but no callbackEmit is available.  "+
						"Batcher load is %d bytes waiting to be emitted.",
						len(l.buffer)),
				)
			}
			break
		}
		l.callbackEmit(l.emitBytes())
	}
}

// Ready tells the call if a new batch is ready to be emitted
func (l *LPBatcher) Ready() bool {
	l.Lock()
	defer l.Unlock()
	return l.isReady()
}

func (l *LPBatcher) isReady() bool {
	return len(l.buffer) >= l.size
}

// Emit returns the next batch of whole lines, at most size bytes unless a
// single line is longer. It does not call the callbackEmit method.
func (l *LPBatcher) Emit() []byte {
	l.Lock()
	defer l.Unlock()

	return l.emitBytes()
}

func (l *LPBatcher) emitBytes() []byte {
	c := min(l.size, len(l.buffer))

	cut := bytes.LastIndexByte(l.buffer[:c], '\n') + 1
	if cut == 0 {
		// first line is longer than size
		cut = bytes.IndexByte(l.buffer, '\n') + 1
	}

	packet := make([]byte, cut)
	copy(packet, l.buffer[:cut])
	l.buffer = append(l.buffer[:0], l.buffer[cut:]...)

	return packet
}

// Flush drains all lines even if buffer currently larger than size.
// It does not call the callbackEmit method
func (l *LPBatcher) Flush() []byte {
	l.Lock()
	defer l.Unlock()

	slog.Info(fmt.Sprintf("Flushing all bytes (%d) from buffer.", len(l.buffer)))
	packet := l.buffer
	l.buffer = make([]byte, 0, l.capacity)
	return packet
}

// CurrentLoadSize returns the number of bytes waiting to be emitted.
func (l *LPBatcher) CurrentLoadSize() int {
	l.Lock()
	defer l.Unlock()
	return len(l.buffer)
}
