// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"math"
	"runtime"

	"github.com/voicemix/voicemix/convert"
)

// voicePos is a resolved playback position: a queue item plus the frame
// offset and fixed-point fraction inside it.
type voicePos struct {
	pos  int
	frac uint32
	item *queueItem
}

// resolveOffset converts a user-specified offset in the given unit into
// a queue position. Byte offsets round down to block boundaries so
// block-aligned codecs never start mid-block. Offsets beyond the total
// queued length are rejected. Both play-at-offset and seek-while-playing
// funnel through here.
func resolveOffset(src *source, kind offsetKind, offset float64) (voicePos, bool) {
	fmtBuf := src.queueFormat()
	if fmtBuf == nil {
		return voicePos{}, false
	}

	var frames int64
	var frac uint32
	switch kind {
	case offsetSeconds:
		whole, fracPart := math.Modf(offset * float64(fmtBuf.data.SampleRate))
		if fracPart < 0 {
			whole--
			fracPart++
		}
		frames = int64(whole)
		frac = uint32(min(fracPart*convert.FracOne, convert.FracOne-1))
	case offsetSamples:
		whole, fracPart := math.Modf(offset)
		if fracPart < 0 {
			whole--
			fracPart++
		}
		frames = int64(whole)
		frac = uint32(min(fracPart*convert.FracOne, convert.FracOne-1))
	case offsetBytes:
		// Round down to a block boundary.
		blocks := math.Floor(offset / float64(fmtBuf.data.BytesPerBlock))
		frames = int64(blocks) * int64(fmtBuf.data.SamplesPerBlock)
	default:
		return voicePos{}, false
	}

	if frames < 0 {
		return voicePos{}, false
	}

	// Walk the queue until the target frame falls inside an item.
	for item := src.queue.head; item != nil; item = item.next.Load() {
		if int64(item.sampleLen) > frames {
			return voicePos{pos: int(frames), frac: frac, item: item}, true
		}
		frames -= int64(item.sampleLen)
	}
	return voicePos{}, false
}

// SetPlayOffset stores a pending seek request on the source in the
// given unit. If a voice is bound (playing or paused) the seek applies
// immediately; otherwise it is consumed by the next play request.
func (e *Engine) setPlayOffset(src *source, kind offsetKind, offset float64) error {
	if offset < 0 {
		return fmt.Errorf("%w: negative offset", ErrInvalidValue)
	}
	src.offsetType = kind
	src.offset = offset

	e.backendMu.Lock()
	defer e.backendMu.Unlock()

	v := e.sourceVoice(src)
	if v == nil {
		return nil
	}

	vpos, ok := resolveOffset(src, kind, offset)
	if !ok {
		src.offsetType = offsetNone
		src.offset = 0
		return fmt.Errorf("%w: offset beyond queued data", ErrInvalidValue)
	}
	src.offsetType = offsetNone
	src.offset = 0

	// Publish the new position to the live voice. The mixer reads the
	// current item first, so store position parts before the item.
	v.position.Store(int64(vpos.pos))
	v.positionFrac.Store(vpos.frac)
	v.currentBuffer.Store(vpos.item)
	return nil
}

// waitForMix spins until no mix pass is in flight and returns the
// counter value observed. Even values mean the mixer is idle.
func (e *Engine) waitForMix() uint32 {
	for {
		c := e.mixCount.Load()
		if c&1 == 0 {
			return c
		}
		runtime.Gosched()
	}
}

// sampleOffsetLocked samples the bound voice's position tear-free using
// the mix parity counter: the fields are only trusted if no mix pass
// ran while they were read. The retry loop is unbounded; the mixer
// finishes each pass in bounded time, so a stuck loop means a stuck
// backend, not livelock here.
func (e *Engine) sampleOffsetLocked(src *source) (frames int64, frac uint32) {
	var current *queueItem
	for {
		ref := e.waitForMix()
		v := e.sourceVoice(src)
		if v == nil {
			return 0, 0
		}
		current = v.currentBuffer.Load()
		frames = v.position.Load()
		frac = v.positionFrac.Load()
		if e.mixCount.Load() == ref {
			break
		}
		runtime.Gosched()
	}

	// Positions are relative to the current item; make them relative to
	// the queue start.
	for item := src.queue.head; item != nil && item != current; item = item.next.Load() {
		frames += int64(item.sampleLen)
	}
	return frames, frac
}

// SourceSampleOffset reports the source's playback position in frames
// from the start of its queue, plus the fractional sub-frame part in
// 1/convert.FracOne units. An unbound source reports zero.
func (e *Engine) SourceSampleOffset(id SourceID) (int64, uint32, error) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	src := e.lookupSource(id)
	if src == nil {
		return 0, 0, fmt.Errorf("%w: source %d", ErrInvalidHandle, id)
	}
	frames, frac := e.sampleOffsetLocked(src)
	return frames, frac, nil
}

// SourceSecOffset reports the source's playback position in seconds
// from the start of its queue.
func (e *Engine) SourceSecOffset(id SourceID) (float64, error) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	src := e.lookupSource(id)
	if src == nil {
		return 0, fmt.Errorf("%w: source %d", ErrInvalidHandle, id)
	}
	fmtBuf := src.queueFormat()
	if fmtBuf == nil {
		return 0, nil
	}
	frames, frac := e.sampleOffsetLocked(src)
	pos := float64(frames) + float64(frac)/convert.FracOne
	return pos / float64(fmtBuf.data.SampleRate), nil
}
