// SPDX-License-Identifier: EPL-2.0

package engine

import "fmt"

// Play starts the given sources, each on its own voice, atomically with
// respect to a mix pass: either every source starts or none does, and
// all of them become audible in the same pass. Sources with an empty
// queue transition straight to Stopped. Playing an already playing
// source restarts it from its pending offset (or the beginning).
func (e *Engine) Play(ids ...SourceID) error {
	if len(ids) == 0 {
		return nil
	}

	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	// Validate the whole batch before touching anything.
	srcs := make([]*source, len(ids))
	for i, id := range ids {
		src := e.lookupSource(id)
		if src == nil {
			return fmt.Errorf("%w: source %d", ErrInvalidHandle, id)
		}
		srcs[i] = src
	}

	e.backendMu.Lock()
	defer e.backendMu.Unlock()

	// Count how many fresh voices the batch needs so the pool grows at
	// most once, before any source is committed.
	need := 0
	for _, src := range srcs {
		if src.state != Paused || e.sourceVoice(src) == nil {
			need++
		}
	}
	free := 0
	for _, v := range *e.voices.Load() {
		if v.free() {
			free++
		}
	}
	if need > free {
		if err := e.growVoices(need - free); err != nil {
			return err
		}
	}

	for _, src := range srcs {
		e.playLocked(src)
	}
	return nil
}

// playLocked starts one validated source. Caller holds sourcesMu and
// backendMu, and has ensured a free voice exists.
func (e *Engine) playLocked(src *source) {
	first := src.queueFormat()
	if first == nil {
		// Nothing to play; the transition still happens.
		if v := e.sourceVoice(src); v != nil {
			e.teardownVoice(v)
		}
		src.state = Stopped
		src.offsetType = offsetNone
		return
	}

	// A paused source resumes in place on its parked voice.
	if src.state == Paused {
		if v := e.sourceVoice(src); v != nil {
			if src.offsetType != offsetNone {
				e.applyOffsetLocked(src, v)
			}
			src.propsDirty.Store(false)
			e.publishProps(v, e.stageProps(src))
			v.playState.Store(vPlaying)
			src.state = Playing
			return
		}
		// Voice vanished underneath the pause; fall through to a
		// fresh start.
	}

	// Restart: reclaim the old voice before binding a new one.
	if v := e.sourceVoice(src); v != nil {
		e.teardownVoice(v)
	}

	v, idx := e.reserveVoice()
	src.voiceIdx = idx

	v.prepare(e, first)

	start := voicePos{pos: 0, frac: 0, item: src.queue.head}
	if src.offsetType != offsetNone {
		if at, ok := resolveOffset(src, src.offsetType, src.offset); ok {
			start = at
		}
		src.offsetType = offsetNone
	}
	v.position.Store(int64(start.pos))
	v.positionFrac.Store(start.frac)
	v.currentBuffer.Store(start.item)
	if src.looping {
		v.loopBuffer.Store(src.queue.head)
	} else {
		v.loopBuffer.Store(nil)
	}

	// Properties must be pending before the state flips to Playing, so
	// the first pass never mixes with defaults.
	src.propsDirty.Store(false)
	e.publishProps(v, e.stageProps(src))
	v.sourceID.Store(uint32(src.id))
	v.playState.Store(vPlaying)
	src.state = Playing
}

// reserveVoice claims a free voice slot. Play sized the pool before
// committing, so a scan always succeeds here.
func (e *Engine) reserveVoice() (*voice, int) {
	voices := *e.voices.Load()
	for i, v := range voices {
		if v.free() {
			return v, i
		}
	}
	// Unreachable when called via Play; guard against drift.
	panic("engine: voice reservation after sizing found no free slot")
}

// applyOffsetLocked seeks a live (parked) voice. Caller holds backendMu.
func (e *Engine) applyOffsetLocked(src *source, v *voice) {
	at, ok := resolveOffset(src, src.offsetType, src.offset)
	src.offsetType = offsetNone
	if !ok {
		return
	}
	v.position.Store(int64(at.pos))
	v.positionFrac.Store(at.frac)
	v.currentBuffer.Store(at.item)
}

// Pause suspends the given sources in place: the voice keeps its
// binding and position, the mixer just stops visiting it. Pausing a
// source that is not playing is a no-op.
func (e *Engine) Pause(ids ...SourceID) error {
	if len(ids) == 0 {
		return nil
	}

	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	srcs := make([]*source, len(ids))
	for i, id := range ids {
		src := e.lookupSource(id)
		if src == nil {
			return fmt.Errorf("%w: source %d", ErrInvalidHandle, id)
		}
		srcs[i] = src
	}

	e.backendMu.Lock()
	defer e.backendMu.Unlock()

	for _, src := range srcs {
		if src.state != Playing {
			continue
		}
		v := e.sourceVoice(src)
		if v == nil {
			// Stopped on its own before we got here.
			src.state = Stopped
			continue
		}
		if v.playState.CompareAndSwap(vPlaying, vStopped) {
			src.state = Paused
		} else {
			src.state = Stopped
		}
	}
	return nil
}

// Stop halts the given sources. A playing voice winds down at the top
// of the next mix pass; a paused voice releases immediately. Either
// way the source reads Stopped as soon as Stop returns.
func (e *Engine) Stop(ids ...SourceID) error {
	return e.halt(ids, Stopped)
}

// Rewind halts the given sources and returns them to Initial, so a
// later Play starts from the top with no pending offset.
func (e *Engine) Rewind(ids ...SourceID) error {
	return e.halt(ids, Initial)
}

func (e *Engine) halt(ids []SourceID, to SourceState) error {
	if len(ids) == 0 {
		return nil
	}

	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	srcs := make([]*source, len(ids))
	for i, id := range ids {
		src := e.lookupSource(id)
		if src == nil {
			return fmt.Errorf("%w: source %d", ErrInvalidHandle, id)
		}
		srcs[i] = src
	}

	e.backendMu.Lock()
	defer e.backendMu.Unlock()

	for _, src := range srcs {
		if v := e.sourceVoice(src); v != nil {
			e.teardownVoice(v)
		}
		src.voiceIdx = noVoice
		src.offsetType = offsetNone
		if src.state != Initial || to == Initial {
			src.state = to
		}
	}
	return nil
}
