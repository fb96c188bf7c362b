// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/voicemix/voicemix/pool"
)

// FilterType selects a filter's frequency response.
type FilterType uint8

const (
	FilterNull FilterType = iota
	FilterLowPass
	FilterHighPass
	FilterBandPass
)

// filter is a reusable gain set applied where it is attached; the
// values are copied at attach time, so editing a filter afterwards does
// not retroactively change earlier attachments.
type filter struct {
	typ    FilterType
	gain   float32
	gainHF float32
	gainLF float32
}

func (f *filter) gains() SendGains {
	g := SendGains{Gain: f.gain, GainHF: 1, GainLF: 1}
	switch f.typ {
	case FilterLowPass:
		g.GainHF = f.gainHF
	case FilterHighPass:
		g.GainLF = f.gainLF
	case FilterBandPass:
		g.GainHF = f.gainHF
		g.GainLF = f.gainLF
	}
	return g
}

// effectSlot is an auxiliary routing target. Sources hold counted
// references to it through their sends.
type effectSlot struct {
	gain float32
	refs atomic.Int32
}

// CreateFilter allocates a null filter with unity gains.
func (e *Engine) CreateFilter() (FilterID, error) {
	e.filtersMu.Lock()
	defer e.filtersMu.Unlock()

	h, f, err := e.filters.Allocate()
	if err != nil {
		return 0, fmt.Errorf("%w: filter table: %w", ErrNoMemory, err)
	}
	*f = filter{typ: FilterNull, gain: 1, gainHF: 1, gainLF: 1}
	return FilterID(h), nil
}

// DeleteFilter removes a filter. Attachments made with it keep the
// gains they copied.
func (e *Engine) DeleteFilter(id FilterID) error {
	e.filtersMu.Lock()
	defer e.filtersMu.Unlock()

	if e.filters.Lookup(pool.Handle(id)) == nil {
		return fmt.Errorf("%w: filter %d", ErrInvalidHandle, id)
	}
	e.filters.Free(pool.Handle(id))
	return nil
}

// SetFilter configures a filter's type and gains. Gains are clamped to
// [0, 1] by validation, not silently.
func (e *Engine) SetFilter(id FilterID, typ FilterType, gain, gainHF, gainLF float32) error {
	if typ > FilterBandPass {
		return fmt.Errorf("%w: filter type %d", ErrInvalidValue, typ)
	}
	for _, g := range [...]float32{gain, gainHF, gainLF} {
		if g < 0 || g > 1 || g != g {
			return fmt.Errorf("%w: filter gain %v", ErrInvalidValue, g)
		}
	}

	e.filtersMu.Lock()
	defer e.filtersMu.Unlock()

	f := e.filters.Lookup(pool.Handle(id))
	if f == nil {
		return fmt.Errorf("%w: filter %d", ErrInvalidHandle, id)
	}
	f.typ = typ
	f.gain = gain
	f.gainHF = gainHF
	f.gainLF = gainLF
	return nil
}

// lookupFilterGains resolves an optional filter id to its gain set. A
// zero id means "no filter": unity.
func (e *Engine) lookupFilterGains(id FilterID) (SendGains, error) {
	if id == 0 {
		return SendGains{Gain: 1, GainHF: 1, GainLF: 1}, nil
	}
	e.filtersMu.Lock()
	defer e.filtersMu.Unlock()

	f := e.filters.Lookup(pool.Handle(id))
	if f == nil {
		return SendGains{}, fmt.Errorf("%w: filter %d", ErrInvalidHandle, id)
	}
	return f.gains(), nil
}

// CreateEffectSlot allocates an auxiliary effect slot at unity gain.
func (e *Engine) CreateEffectSlot() (EffectSlotID, error) {
	e.slotsMu.Lock()
	defer e.slotsMu.Unlock()

	h, s, err := e.slots.Allocate()
	if err != nil {
		return 0, fmt.Errorf("%w: effect slot table: %w", ErrNoMemory, err)
	}
	s.gain = 1
	s.refs.Store(0)
	return EffectSlotID(h), nil
}

// DeleteEffectSlot removes an effect slot. A slot still targeted by any
// source send cannot be deleted.
func (e *Engine) DeleteEffectSlot(id EffectSlotID) error {
	e.slotsMu.Lock()
	defer e.slotsMu.Unlock()

	s := e.slots.Lookup(pool.Handle(id))
	if s == nil {
		return fmt.Errorf("%w: effect slot %d", ErrInvalidHandle, id)
	}
	if n := s.refs.Load(); n > 0 {
		return fmt.Errorf("%w: effect slot %d targeted by %d send(s)", ErrInvalidOperation, id, n)
	}
	e.slots.Free(pool.Handle(id))
	return nil
}

// SetSourceDirect attaches a filter's gains to the source's dry path. A
// zero filter id resets the path to unity.
func (e *Engine) SetSourceDirect(id SourceID, fid FilterID) error {
	gains, err := e.lookupFilterGains(fid)
	if err != nil {
		return err
	}

	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	src := e.lookupSource(id)
	if src == nil {
		return fmt.Errorf("%w: source %d", ErrInvalidHandle, id)
	}
	src.direct = gains
	e.updateSourceProps(src)
	return nil
}

// SetSourceSend routes one of the source's auxiliary sends to an effect
// slot, carrying the given filter's gains. A zero slot id disconnects
// the send; a zero filter id sends unfiltered.
func (e *Engine) SetSourceSend(id SourceID, send int, slot EffectSlotID, fid FilterID) error {
	if send < 0 || send >= MaxSends {
		return fmt.Errorf("%w: send index %d", ErrInvalidValue, send)
	}
	gains, err := e.lookupFilterGains(fid)
	if err != nil {
		return err
	}

	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	src := e.lookupSource(id)
	if src == nil {
		return fmt.Errorf("%w: source %d", ErrInvalidHandle, id)
	}

	e.slotsMu.Lock()
	if slot != 0 {
		s := e.slots.Lookup(pool.Handle(slot))
		if s == nil {
			e.slotsMu.Unlock()
			return fmt.Errorf("%w: effect slot %d", ErrInvalidHandle, slot)
		}
		s.refs.Add(1)
	}
	if old := src.send[send].Slot; old != 0 {
		if s := e.slots.Lookup(pool.Handle(old)); s != nil {
			s.refs.Add(-1)
		}
	}
	e.slotsMu.Unlock()

	src.send[send] = SendTarget{Slot: slot, SendGains: gains}
	e.updateSourceProps(src)
	return nil
}
