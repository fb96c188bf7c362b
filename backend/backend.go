// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Renderer is what a backend drives: one MixPass call per output block.
// *engine.Engine satisfies it.
type Renderer interface {
	MixPass(out []float32, frames int)
	SampleRate() int
	Channels() int
}

// DefaultBlockFrames is the render block size used when a driver is not
// told otherwise.
const DefaultBlockFrames = 512

// Headless drives a Renderer without an audio device: the caller clocks
// it by calling Pump. Rendered audio can be discarded or captured
// through an io.Writer as little-endian float32 frames, which makes it
// usable for offline rendering and tests alike.
type Headless struct {
	r       Renderer
	block   int
	sink    io.Writer
	buf     []float32
	scratch []byte
}

// NewHeadless creates a headless driver rendering blockFrames frames per
// pass. A zero blockFrames selects DefaultBlockFrames. sink may be nil
// to discard output.
func NewHeadless(r Renderer, blockFrames int, sink io.Writer) *Headless {
	if blockFrames <= 0 {
		blockFrames = DefaultBlockFrames
	}
	return &Headless{
		r:     r,
		block: blockFrames,
		sink:  sink,
		buf:   make([]float32, blockFrames*r.Channels()),
	}
}

// BlockFrames reports the frames rendered per pass.
func (h *Headless) BlockFrames() int { return h.block }

// Pump renders frames frames of audio in block-sized passes, writing
// them to the sink when one is set. A partial final block is rendered
// at its exact length.
func (h *Headless) Pump(frames int) error {
	for frames > 0 {
		n := min(frames, h.block)
		h.r.MixPass(h.buf[:n*h.r.Channels()], n)
		if h.sink != nil {
			if err := h.flush(n); err != nil {
				return fmt.Errorf("backend: sink write: %w", err)
			}
		}
		frames -= n
	}
	return nil
}

// PumpSeconds renders the given duration, rounded down to whole frames.
func (h *Headless) PumpSeconds(sec float64) error {
	return h.Pump(int(sec * float64(h.r.SampleRate())))
}

func (h *Headless) flush(frames int) error {
	need := frames * h.r.Channels() * 4
	if cap(h.scratch) < need {
		h.scratch = make([]byte, need)
	}
	out := h.scratch[:need]
	for i, s := range h.buf[:frames*h.r.Channels()] {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	_, err := h.sink.Write(out)
	return err
}
