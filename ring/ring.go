// SPDX-License-Identifier: EPL-2.0

package ring

import (
	"math/bits"
	"sync/atomic"
)

// Buffer is a lock-free single-producer/single-consumer circular buffer
// of fixed-size elements. Capacity is rounded up to the next power of
// two so index wrapping is a bitmask instead of a division.
//
// The write cursor and read cursor are monotonically increasing; their
// difference is the readable element count. They live on separate cache
// lines to avoid false sharing between the producer and the consumer.
//
// Exactly one goroutine may write and exactly one may read. Concurrent
// writers or concurrent readers are not supported.
type Buffer struct {
	writeCount atomic.Uint64
	_          [56]byte
	readCount  atomic.Uint64
	_          [56]byte

	writeSize uint64
	sizeMask  uint64
	elemSize  int
	data      []byte
}

// Span is one contiguous run of elements inside the buffer.
type Span struct {
	Data []byte
	Len  int // element count
}

// New creates a buffer holding at least size elements of elemSize bytes
// each. limitWrites reserves one element so the buffer can never appear
// full and empty at the same time to code that compares cursors only by
// masked position.
func New(size, elemSize int, limitWrites bool) *Buffer {
	if size < 1 || elemSize < 1 {
		panic("ring: size and elemSize must be positive")
	}
	pow := 1
	if size > 1 {
		pow = 1 << bits.Len(uint(size-1))
	}
	writeSize := uint64(pow)
	if limitWrites {
		writeSize--
	}
	return &Buffer{
		writeSize: writeSize,
		sizeMask:  uint64(pow - 1),
		elemSize:  elemSize,
		data:      make([]byte, pow*elemSize),
	}
}

// Reset returns both cursors to zero. Not safe while either side is
// active.
func (b *Buffer) Reset() {
	b.writeCount.Store(0)
	b.readCount.Store(0)
}

// ElemSize reports the element size in bytes.
func (b *Buffer) ElemSize() int { return b.elemSize }

// ReadSpace reports the number of elements available for reading.
func (b *Buffer) ReadSpace() int {
	w := b.writeCount.Load()
	r := b.readCount.Load()
	// writeCount never exceeds readCount by more than writeSize.
	return int(w - r)
}

// WriteSpace reports the number of elements available for writing.
func (b *Buffer) WriteSpace() int {
	return int(b.writeSize) - b.ReadSpace()
}

// Read copies up to count elements into dst and advances the read
// cursor. It returns the number of elements actually copied.
func (b *Buffer) Read(dst []byte, count int) int {
	n := min(count, b.ReadSpace())
	if n <= 0 {
		return 0
	}
	b.copyOut(dst, n)
	b.readCount.Add(uint64(n))
	return n
}

// Peek copies up to count elements into dst without advancing the read
// cursor.
func (b *Buffer) Peek(dst []byte, count int) int {
	n := min(count, b.ReadSpace())
	if n <= 0 {
		return 0
	}
	b.copyOut(dst, n)
	return n
}

func (b *Buffer) copyOut(dst []byte, n int) {
	pos := int(b.readCount.Load() & b.sizeMask)
	first := min(n, int(b.sizeMask)+1-pos)
	copy(dst, b.data[pos*b.elemSize:(pos+first)*b.elemSize])
	if rest := n - first; rest > 0 {
		copy(dst[first*b.elemSize:], b.data[:rest*b.elemSize])
	}
}

// Write copies up to count elements from src and advances the write
// cursor. It returns the number of elements actually copied.
func (b *Buffer) Write(src []byte, count int) int {
	n := min(count, b.WriteSpace())
	if n <= 0 {
		return 0
	}
	pos := int(b.writeCount.Load() & b.sizeMask)
	first := min(n, int(b.sizeMask)+1-pos)
	copy(b.data[pos*b.elemSize:], src[:first*b.elemSize])
	if rest := n - first; rest > 0 {
		copy(b.data, src[first*b.elemSize:n*b.elemSize])
	}
	b.writeCount.Add(uint64(n))
	return n
}

// ReadVector returns up to two spans covering the currently readable
// elements without copying. The second span is empty unless the data
// wraps. Call ReadAdvance after consuming.
func (b *Buffer) ReadVector() [2]Span {
	n := b.ReadSpace()
	pos := int(b.readCount.Load() & b.sizeMask)
	return b.vectors(pos, n)
}

// WriteVector returns up to two spans covering the currently writable
// space without copying. Call WriteAdvance after filling.
func (b *Buffer) WriteVector() [2]Span {
	n := b.WriteSpace()
	pos := int(b.writeCount.Load() & b.sizeMask)
	return b.vectors(pos, n)
}

func (b *Buffer) vectors(pos, n int) [2]Span {
	first := min(n, int(b.sizeMask)+1-pos)
	out := [2]Span{
		{Data: b.data[pos*b.elemSize : (pos+first)*b.elemSize], Len: first},
	}
	if rest := n - first; rest > 0 {
		out[1] = Span{Data: b.data[:rest*b.elemSize], Len: rest}
	}
	return out
}

// ReadAdvance moves the read cursor forward count elements.
func (b *Buffer) ReadAdvance(count int) {
	if count > b.ReadSpace() {
		panic("ring: read advance past write cursor")
	}
	b.readCount.Add(uint64(count))
}

// WriteAdvance moves the write cursor forward count elements.
func (b *Buffer) WriteAdvance(count int) {
	if count > b.WriteSpace() {
		panic("ring: write advance past read cursor")
	}
	b.writeCount.Add(uint64(count))
}
