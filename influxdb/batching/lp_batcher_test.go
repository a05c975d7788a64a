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
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLPDefaultValues(t *testing.T) {
	lpb := NewLPBatcher()

	assert.Equal(t, DefaultByteBatchSize, lpb.size)
	assert.Equal(t, DefaultBufferCapacity, cap(lpb.buffer))
	assert.Nil(t, lpb.callbackReady)
	assert.Nil(t, lpb.callbackEmit)
}

func TestLPBatcherCreate(t *testing.T) {
	size := 1000
	capacity := size * 2

	var emitted bool
	var emittedBytes []byte

	l := NewLPBatcher(
		WithBufferSize(size),
		WithBufferCapacity(capacity),
		WithEmitBytesCallback(func(ba []byte) {
			emitted = true
			emittedBytes = ba
		}),
	)

	assert.Equal(t, size, l.size)
	assert.Equal(t, capacity, l.capacity)
	assert.False(t, emitted)
	assert.Nil(t, emittedBytes)
	assert.NotNil(t, l.callbackEmit)
	assert.Nil(t, l.callbackReady)
}

func TestLPReady(t *testing.T) {
	size := 10
	capacity := size * 2
	lpb := NewLPBatcher(WithBufferSize(size), WithBufferCapacity(capacity))
	lpb.Add("0123456789ABCDEF")

	assert.True(t, lpb.Ready(), "LPBatcher should be ready when the batch size is reached")
}

func TestLPReadyCallback(t *testing.T) {
	size := 10
	capacity := size * 2
	readyCalled := false

	lpb := NewLPBatcher(WithBufferSize(size),
		WithBufferCapacity(capacity),
		WithByteEmitReadyCallback(func() {
			readyCalled = true
		}))

	lpb.Add("0123456789ABCDEF")

	assert.True(t, readyCalled)
}

func TestLPAddAndPartialEmit(t *testing.T) {
	size := 500
	capacity := size * 2
	emitCount := 0
	emittedBytes := make([]byte, 0)

	lineTemplate := "cpu,location=tabor fVal=2.71,count=%di"
	lines := make([]string, 5)
	lineByteCt := 0
	for n := range 5 {
		lines[n] = fmt.Sprintf(lineTemplate, n+1)
		lineByteCt += len(lines[n]) + 1
	}

	verif := strings.Join(lines, "\n") + "\n"

	lpb := NewLPBatcher(
		WithBufferSize(size),
		WithBufferCapacity(capacity),
		WithEmitBytesCallback(func(ba []byte) {
			emitCount++
			emittedBytes = append(emittedBytes, ba...)
		}))
	lpb.Add(lines...)

	assert.Equal(t, lineByteCt, lpb.CurrentLoadSize())

	packet := lpb.Emit()

	assert.Equal(t, verif, string(packet))
	assert.Equal(t, 0, lpb.CurrentLoadSize())
	assert.Equal(t, 0, emitCount) // callback should not have been called
	assert.Empty(t, emittedBytes) // callback should not have been called
}

func TestLPAddAndEmitCallBack(t *testing.T) {
	batchSize := 1000 // Bytes
	capacity := 10000 // Bytes
	emitCount := 0
	emittedBytes := make([]byte, 0)
	readyCalled := 0

	lps2emit := make([]string, 100)

	lpb := NewLPBatcher(
		WithBufferSize(batchSize),
		WithBufferCapacity(capacity),
		WithByteEmitReadyCallback(func() {
			readyCalled++
		}),
		WithEmitBytesCallback(func(b []byte) {
			emitCount++
			assert.LessOrEqual(t, len(b), batchSize)
			assert.Equal(t, byte('\n'), b[len(b)-1], "a batch must end with a whole line")
			emittedBytes = append(emittedBytes, b...)
		}))

	for n := range lps2emit {
		lps2emit[n] = fmt.Sprintf("lptest,foo=bar count=%di", n+1)
	}

	for i := 10; i <= len(lps2emit); i += 10 {
		lpb.Add(lps2emit[i-10 : i]...)
	}

	verify := strings.Join(lps2emit, "\n") + "\n"

	assert.False(t, lpb.Ready())

	emittedBytes = append(emittedBytes, lpb.Emit()...) // drain any leftovers

	assert.Equal(t, verify, string(emittedBytes))
	assert.Equal(t, readyCalled, emitCount)
	assert.Greater(t, emitCount, 1)
}

func TestLPLineLongerThanSize(t *testing.T) {
	lpb := NewLPBatcher(WithBufferSize(4))
	lpb.Add("measurement value=1i 1", "m v=2i 2")

	assert.Equal(t, "measurement value=1i 1\n", string(lpb.Emit()))
	assert.Equal(t, "m v=2i 2\n", string(lpb.Emit()))
	assert.Empty(t, lpb.Emit())
}

func TestLPBufferFlush(t *testing.T) {
	size := 10
	capacity := size * 2

	lpb := NewLPBatcher(WithBufferSize(size), WithBufferCapacity(capacity))
	testString := "0123456789ABCDEF\n"

	assert.Equal(t, 0, lpb.CurrentLoadSize())
	lpb.Add(testString)
	assert.Equal(t, len(testString), lpb.CurrentLoadSize())
	packet := lpb.Flush()
	assert.Equal(t, 0, lpb.CurrentLoadSize())
	assert.Equal(t, testString, string(packet))
}

func TestLPThreadSafety(t *testing.T) {
	size := 80
	capacity := size * 2
	var wg sync.WaitGroup
	emitCt := 0
	testString := "123456789ABCDEF\n"

	lpb := NewLPBatcher(WithBufferSize(size),
		WithBufferCapacity(capacity),
		WithEmitBytesCallback(func([]byte) {
			emitCt++
		}))

	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 4 {
				lpb.Add(testString)
			}
		}()
	}

	wg.Wait()
	packet := lpb.Emit()
	assert.Equal(t, 20, emitCt, "All bytes should have been emitted")
	assert.Empty(t, packet, "Remaining bytes should be emitted correctly")
}

func TestLPAddLargerThanSize(t *testing.T) {
	size := 64
	loadFactor := 10
	capacity := size * loadFactor
	remainder := 3
	testString := "123456789ABCDEF\n"
	stringSet := make([]string, ((size/len(testString))*loadFactor)+remainder)
	for ct := range stringSet {
		stringSet[ct] = testString
	}

	emitCt := 0
	resultBuffer := make([]byte, 0)
	lpb := NewLPBatcher(
		WithBufferSize(size),
		WithBufferCapacity(capacity),
		WithEmitBytesCallback(func(ba []byte) {
			emitCt++
			resultBuffer = append(resultBuffer, ba...)
		}))

	lpb.Add(stringSet...)

	assert.Equal(t, loadFactor, emitCt)
	assert.Len(t, resultBuffer, size*loadFactor)
	assert.Equal(t, remainder*len(testString), lpb.CurrentLoadSize())
	assert.Equal(t, strings.Repeat(testString, remainder), string(lpb.Flush()))
}
