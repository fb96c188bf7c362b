// SPDX-License-Identifier: EPL-2.0

// Package pool provides the slab-based registry the engine uses for
// sources, buffers, filters and effect slots.
//
// Slots are grouped in slabs of 64 with a free-bitmask per slab, and
// every allocation is addressed by a compact integer Handle carrying a
// generation counter, so a handle kept past its slot's lifetime is
// rejected instead of silently resolving to the slot's next occupant.
package pool
