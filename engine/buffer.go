// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/voicemix/voicemix/convert"
	"github.com/voicemix/voicemix/pool"
)

// BufferData is the immutable payload of an engine buffer: interleaved
// sample bytes plus the format needed to interpret them.
type BufferData struct {
	Data       []byte
	Channels   int
	Type       convert.SampleType
	SampleRate int

	// SamplesPerBlock and BytesPerBlock describe block-aligned codecs;
	// for PCM both describe a single frame. Zero values mean PCM.
	SamplesPerBlock int
	BytesPerBlock   int
}

// normalize fills in the PCM block defaults.
func (d *BufferData) normalize() {
	if d.SamplesPerBlock <= 0 {
		d.SamplesPerBlock = 1
	}
	if d.BytesPerBlock <= 0 {
		d.BytesPerBlock = d.Channels * d.Type.Size()
	}
}

// Frames reports the buffer length in sample frames.
func (d *BufferData) Frames() int {
	if d.BytesPerBlock == 0 {
		return 0
	}
	return len(d.Data) / d.BytesPerBlock * d.SamplesPerBlock
}

func (d *BufferData) valid() error {
	if d.Channels < 1 {
		return fmt.Errorf("%w: channel count %d", ErrInvalidValue, d.Channels)
	}
	if d.Type.Size() == 0 {
		return fmt.Errorf("%w: sample type", ErrInvalidValue)
	}
	if d.SampleRate < 1 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidValue, d.SampleRate)
	}
	if len(d.Data)%d.BytesPerBlock != 0 {
		return fmt.Errorf("%w: data not block-aligned", ErrInvalidValue)
	}
	return nil
}

// buffer is a registry entry. refs counts voices and static sources
// holding the buffer; a referenced buffer cannot be deleted.
type buffer struct {
	data BufferData
	refs atomic.Int32
}

// CreateBuffer registers an immutable sample buffer and returns its
// handle.
func (e *Engine) CreateBuffer(data BufferData) (BufferID, error) {
	data.normalize()
	if err := data.valid(); err != nil {
		return 0, err
	}

	e.buffersMu.Lock()
	defer e.buffersMu.Unlock()

	h, item, err := e.buffers.Allocate()
	if err != nil {
		return 0, fmt.Errorf("%w: buffer table: %w", ErrNoMemory, err)
	}
	item.data = data
	e.log.Debug().Uint32("buffer", uint32(h)).Int("frames", data.Frames()).Msg("buffer created")
	return BufferID(h), nil
}

// DeleteBuffer removes a buffer. Deletion is rejected while any source
// or voice still references it.
func (e *Engine) DeleteBuffer(id BufferID) error {
	e.buffersMu.Lock()
	defer e.buffersMu.Unlock()

	buf := e.buffers.Lookup(pool.Handle(id))
	if buf == nil {
		return fmt.Errorf("%w: buffer %d", ErrInvalidHandle, id)
	}
	if buf.refs.Load() > 0 {
		return fmt.Errorf("%w: buffer %d is in use", ErrInvalidOperation, id)
	}
	e.buffers.Free(pool.Handle(id))
	return nil
}

// BufferFrames reports the length of a buffer in sample frames.
func (e *Engine) BufferFrames(id BufferID) (int, error) {
	e.buffersMu.Lock()
	defer e.buffersMu.Unlock()

	buf := e.buffers.Lookup(pool.Handle(id))
	if buf == nil {
		return 0, fmt.Errorf("%w: buffer %d", ErrInvalidHandle, id)
	}
	return buf.data.Frames(), nil
}

func (e *Engine) lookupBuffer(id BufferID) *buffer {
	return e.buffers.Lookup(pool.Handle(id))
}
