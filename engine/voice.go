// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"math"
	"sync/atomic"

	"github.com/voicemix/voicemix/convert"
)

// voice is the transient mixer-side binding of one source to an active
// playback slot. Voices are created on pool growth and never destroyed,
// only reset to the free state and reused. Everything the mixer touches
// per pass lives here; the control side communicates exclusively
// through the atomic fields.
type voice struct {
	// update holds the pending properties snapshot, exchanged by the
	// control thread and consumed by the mixer.
	update atomic.Pointer[propsItem]

	// props is the mixer's working copy. Only the mix pass reads or
	// writes it after the voice starts.
	props VoiceProps

	sourceID  atomic.Uint32 // 0 = slot free or mid-teardown
	playState atomic.Uint32

	// position is the frame offset inside the current queue item, not
	// the whole queue; positionFrac is the fixed-point sub-frame part.
	position     atomic.Int64
	positionFrac atomic.Uint32

	currentBuffer atomic.Pointer[queueItem]
	// loopBuffer is non-nil only while the source loops; the mixer
	// jumps here when it runs off the queue tail.
	loopBuffer atomic.Pointer[queueItem]

	// Format of the attached buffers, fixed at start.
	fmtChannels int
	fmtType     convert.SampleType
	frequency   int

	// step is the fixed-point playback increment derived from the
	// source pitch and the rate ratio, recomputed when props change.
	step uint32

	// Per-channel mixing gains into the device channels. This is the
	// voice's private DSP state; the control side never reads it.
	chanGains [][]float32
}

func (v *voice) free() bool {
	return v.playState.Load() == vStopped && v.sourceID.Load() == 0
}

// prepare fixes the voice's stream format from the first playable
// queue entry and resets its private mixing state.
func (v *voice) prepare(e *Engine, buf *buffer) {
	v.fmtChannels = buf.data.Channels
	v.fmtType = buf.data.Type
	v.frequency = buf.data.SampleRate
	v.step = convert.FracOne
	v.chanGains = make([][]float32, v.fmtChannels)
	for i := range v.chanGains {
		v.chanGains[i] = make([]float32, e.channels)
	}
	v.applyProps(e)
}

// applyProps recomputes derived mixing state from the working props.
func (v *voice) applyProps(e *Engine) {
	pitch := v.props.Pitch
	if pitch <= 0 {
		pitch = 1
	}
	step := float64(pitch) * float64(v.frequency) * convert.FracOne / float64(e.sampleRate)
	step = min(max(step, 1), convert.MaxPitch*convert.FracOne)
	v.step = uint32(step)

	gain := min(max(v.props.Gain, v.props.MinGain), v.props.MaxGain)

	// Channel fan-out without spatialization: mono duplicates at -3 dB,
	// matching counts map straight through, anything else folds down
	// with a power-normalizing scale. The spatial parameters ride along
	// in props for the DSP stage, which is outside this core.
	downScale := float32(1)
	if v.fmtChannels > e.channels {
		downScale = float32(1 / math.Sqrt(float64(v.fmtChannels)))
	}
	for ch := range v.chanGains {
		g := v.chanGains[ch]
		for out := range g {
			g[out] = 0
		}
		switch {
		case v.fmtChannels == e.channels:
			g[ch] = gain
		case v.fmtChannels == 1:
			for out := range g {
				g[out] = gain * 0.70710678
			}
		default:
			g[ch%e.channels] = gain * downScale
		}
	}
}

// mix renders one pass of this voice into out (interleaved device
// channels, frames frames). It never blocks and never reports errors:
// any inconsistency contributes silence. Called only from the mixer.
func (v *voice) mix(vstate playState, e *Engine, out []float32, frames int) {
	v.consumeUpdateAndApply(e)

	if vstate == vStopping {
		// Control requested an immediate stop; finalize teardown. The
		// pass emits nothing further for this voice.
		v.teardown(e, Stopped)
		return
	}

	item := v.currentBuffer.Load()
	if item == nil {
		// Nothing to contribute this pass.
		return
	}

	pos := int(v.position.Load())
	frac := v.positionFrac.Load()
	step := v.step

	devCh := e.channels
	sampleSize := v.fmtType.Size()

	ended := false
	for i := range frames {
		// Skip gap entries and exhausted buffers before fetching.
		for item.buf == nil || pos >= item.sampleLen {
			next := item.next.Load()
			if next == nil {
				next = v.loopBuffer.Load()
			}
			if next == nil {
				ended = true
				break
			}
			if item.sampleLen > 0 {
				pos -= item.sampleLen
			}
			item = next
			v.currentBuffer.Store(item)
		}
		if ended {
			break
		}

		off := pos * v.fmtChannels * sampleSize
		for ch := range v.fmtChannels {
			s := convert.LoadSample(v.fmtType, item.buf.data.Data, off+ch*sampleSize)
			for outCh := range devCh {
				out[i*devCh+outCh] += s * v.chanGains[ch][outCh]
			}
		}

		frac += step
		pos += int(frac >> convert.FracBits)
		frac &= convert.FracMask
	}

	v.position.Store(int64(pos))
	v.positionFrac.Store(frac)

	if ended {
		v.teardown(e, Stopped)
	}
}

func (v *voice) consumeUpdateAndApply(e *Engine) {
	if item := v.update.Swap(nil); item != nil {
		v.props = item.VoiceProps
		e.freePropsPush(item)
		v.applyProps(e)
	}
}

// teardown finalizes a stop on the mixer side: the state goes to
// Stopped before the occupant id is cleared, so a control thread never
// sees a free slot that is still winding down.
func (v *voice) teardown(e *Engine, state SourceState) {
	id := v.sourceID.Load()
	v.currentBuffer.Store(nil)
	v.loopBuffer.Store(nil)
	v.playState.Store(vStopped)
	v.sourceID.Store(0)
	e.postEvent(Event{Type: EventSourceState, Source: SourceID(id), State: state})
}
