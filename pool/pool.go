// SPDX-License-Identifier: EPL-2.0

package pool

import (
	"errors"
	"math/bits"
)

// Handle is a stable reference to one allocated slot. The zero value is
// never issued: the low 24 bits hold the encoded slot index plus one,
// the high 8 bits hold the slot's generation at allocation time. A
// handle outlives its slot only as a rejected lookup, never as a silent
// alias of the slot's next occupant.
type Handle uint32

const (
	slabShift = 6
	slabSize  = 1 << slabShift // 64 slots per slab, one bit each in the free-mask

	indexBits = 24
	indexMask = 1<<indexBits - 1

	// maxSlabs keeps the encoded index (plus one) inside indexBits.
	maxSlabs = (indexMask - 1) >> slabShift
)

var (
	// ErrExhausted reports that the table cannot grow without
	// overflowing the handle encoding.
	ErrExhausted = errors.New("pool: table exhausted")
)

// Generation reports the handle's embedded generation counter.
func (h Handle) Generation() uint8 { return uint8(h >> indexBits) }

func (h Handle) index() uint32 { return uint32(h&indexMask) - 1 }

type slab[T any] struct {
	freeMask uint64
	gens     [slabSize]uint8
	items    *[slabSize]T
}

// Table is a registry of T values in fixed-capacity slabs of 64 slots
// each, tracked by a free-bitmask. Allocation takes the lowest free bit
// of the first non-full slab; a new slab is appended when all are full.
// Slots are reused, items are never moved, so pointers returned by
// Lookup stay valid until the slot is freed.
//
// Table is not safe for concurrent use; callers hold their registry
// lock around it.
type Table[T any] struct {
	slabs []slab[T]
	live  int
}

// Len reports the number of live allocations.
func (t *Table[T]) Len() int { return t.live }

// Allocate reserves a free slot and returns its handle together with a
// pointer to the (zeroed) item.
func (t *Table[T]) Allocate() (Handle, *T, error) {
	si := -1
	for i := range t.slabs {
		if t.slabs[i].freeMask != 0 {
			si = i
			break
		}
	}
	if si < 0 {
		if len(t.slabs) >= maxSlabs {
			return 0, nil, ErrExhausted
		}
		t.slabs = append(t.slabs, slab[T]{
			freeMask: ^uint64(0),
			items:    new([slabSize]T),
		})
		si = len(t.slabs) - 1
	}

	s := &t.slabs[si]
	slot := bits.TrailingZeros64(s.freeMask)
	s.freeMask &^= 1 << slot

	idx := uint32(si)<<slabShift | uint32(slot)
	h := Handle(idx+1) | Handle(s.gens[slot])<<indexBits
	item := &s.items[slot]
	var zero T
	*item = zero
	t.live++
	return h, item, nil
}

// Lookup resolves a handle to its item. It returns nil for the zero
// handle, an out-of-range index, a freed slot, or a stale generation.
func (t *Table[T]) Lookup(h Handle) *T {
	s, slot := t.locate(h)
	if s == nil {
		return nil
	}
	return &s.items[slot]
}

// Free releases the slot behind h. It reports false if the handle does
// not resolve to a live slot. The slot's generation advances so
// outstanding copies of h are rejected from now on.
func (t *Table[T]) Free(h Handle) bool {
	s, slot := t.locate(h)
	if s == nil {
		return false
	}
	s.freeMask |= 1 << slot
	s.gens[slot]++
	t.live--
	return true
}

func (t *Table[T]) locate(h Handle) (*slab[T], int) {
	if h == 0 {
		return nil, 0
	}
	idx := h.index()
	si := int(idx >> slabShift)
	slot := int(idx & (slabSize - 1))
	if si >= len(t.slabs) {
		return nil, 0
	}
	s := &t.slabs[si]
	if s.freeMask&(1<<slot) != 0 {
		// Bit set means the slot is empty.
		return nil, 0
	}
	if s.gens[slot] != h.Generation() {
		return nil, 0
	}
	return s, slot
}

// ForEach calls fn for every live item until fn returns false.
func (t *Table[T]) ForEach(fn func(Handle, *T) bool) {
	for si := range t.slabs {
		s := &t.slabs[si]
		used := ^s.freeMask
		for used != 0 {
			slot := bits.TrailingZeros64(used)
			used &^= 1 << slot
			idx := uint32(si)<<slabShift | uint32(slot)
			h := Handle(idx+1) | Handle(s.gens[slot])<<indexBits
			if !fn(h, &s.items[slot]) {
				return
			}
		}
	}
}
