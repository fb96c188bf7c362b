// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/voicemix/voicemix/pool"
)

// queueItem is one node of a source's buffer queue. The control thread
// appends at the tail under the sources lock; the mixer traverses the
// next links lock-free. Nodes ahead of the mixer's current pointer are
// never removed, so a traversal in flight always lands on live memory.
type queueItem struct {
	next atomic.Pointer[queueItem]

	id        BufferID // 0 for a silent gap entry
	buf       *buffer  // nil for a gap
	sampleLen int      // frames

	samplesPerBlock int
	bytesPerBlock   int
}

// offsetKind tags a stored seek request with its unit.
type offsetKind uint8

const (
	offsetNone offsetKind = iota
	offsetBytes
	offsetSamples
	offsetSeconds
)

// source is the persistent control-side playback entity.
type source struct {
	id SourceID

	// Playback parameters, mutated only under the sources lock.
	gain          float32
	pitch         float32
	outerGain     float32
	minGain       float32
	maxGain       float32
	innerAngle    float32
	outerAngle    float32
	refDistance   float32
	maxDistance   float32
	rolloffFactor float32
	roomRolloff   float32
	dopplerFactor float32
	airAbsorption float32
	radius        float32

	position  [3]float32
	velocity  [3]float32
	direction [3]float32
	orientAt  [3]float32
	orientUp  [3]float32
	stereoPan [2]float32

	sourceRelative bool
	looping        bool
	distanceModel  DistanceModel
	spatialize     SpatializeMode

	direct SendGains
	send   [MaxSends]SendTarget

	// Pending seek request, consumed on the next play transition or
	// applied immediately when a voice is bound.
	offsetType offsetKind
	offset     float64

	srcType SourceType
	queue   struct {
		head *queueItem
		tail *queueItem
		len  int
	}

	// state is authoritative only while no voice is bound.
	state SourceState

	// voiceIdx caches which voice slot this source is bound to. The
	// hint is validated against the voice's occupant id before use; a
	// stale hint reads as "unbound".
	voiceIdx int

	propsDirty atomic.Bool
}

const noVoice = -1

func (s *source) reset(id SourceID) {
	*s = source{
		id:            id,
		gain:          1,
		pitch:         1,
		minGain:       0,
		maxGain:       1,
		innerAngle:    360,
		outerAngle:    360,
		refDistance:   1,
		maxDistance:   maxFloat32,
		rolloffFactor: 1,
		dopplerFactor: 1,
		orientAt:      [3]float32{0, 0, -1},
		orientUp:      [3]float32{0, 1, 0},
		distanceModel: DistanceInverseClamped,
		spatialize:    SpatializeAuto,
		direct:        SendGains{Gain: 1, GainHF: 1, GainLF: 1},
		voiceIdx:      noVoice,
	}
	for i := range s.send {
		s.send[i].SendGains = SendGains{Gain: 1, GainHF: 1, GainLF: 1}
	}
}

const maxFloat32 = 3.4028234663852886e+38

// CreateSource allocates a new source in the Initial state.
func (e *Engine) CreateSource() (SourceID, error) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	h, src, err := e.sources.Allocate()
	if err != nil {
		return 0, fmt.Errorf("%w: source table: %w", ErrNoMemory, err)
	}
	src.reset(SourceID(h))
	return SourceID(h), nil
}

// DeleteSource stops and removes a source, draining its queue and
// releasing every buffer and effect-slot reference it holds.
func (e *Engine) DeleteSource(id SourceID) error {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	src := e.lookupSource(id)
	if src == nil {
		return fmt.Errorf("%w: source %d", ErrInvalidHandle, id)
	}

	e.backendMu.Lock()
	if v := e.sourceVoice(src); v != nil {
		e.teardownVoice(v)
	}
	e.backendMu.Unlock()

	e.drainQueue(src)
	e.releaseSends(src)
	e.sources.Free(pool.Handle(id))
	return nil
}

func (e *Engine) lookupSource(id SourceID) *source {
	return e.sources.Lookup(pool.Handle(id))
}

// sourceVoice resolves the source's cached voice index, trusting it
// only if the slot's occupant id still matches.
func (e *Engine) sourceVoice(src *source) *voice {
	voices := *e.voices.Load()
	if idx := src.voiceIdx; idx >= 0 && idx < len(voices) {
		v := voices[idx]
		if SourceID(v.sourceID.Load()) == src.id {
			return v
		}
	}
	src.voiceIdx = noVoice
	return nil
}

// queueFormat returns the first queued buffer, which fixes the format
// every further queued buffer must match.
func (s *source) queueFormat() *buffer {
	for item := s.queue.head; item != nil; item = item.next.Load() {
		if item.buf != nil {
			return item.buf
		}
	}
	return nil
}

// QueueBuffers appends buffers to the tail of a source's queue. A zero
// BufferID queues a silent gap entry. The whole batch is validated
// before any node is linked: a single bad handle or format mismatch
// aborts without partial effect. Queueing onto a static source is
// structurally disallowed.
func (e *Engine) QueueBuffers(id SourceID, bufs ...BufferID) error {
	if len(bufs) == 0 {
		return nil
	}

	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	src := e.lookupSource(id)
	if src == nil {
		return fmt.Errorf("%w: source %d", ErrInvalidHandle, id)
	}
	if src.srcType == Static {
		return fmt.Errorf("%w: cannot queue onto a static source", ErrInvalidOperation)
	}

	e.buffersMu.Lock()
	defer e.buffersMu.Unlock()

	// Validate the batch against the existing queue format, or the
	// first real buffer of the batch for a fresh queue.
	fmtBuf := src.queueFormat()
	var items []*queueItem
	for _, bid := range bufs {
		item := &queueItem{id: bid}
		if bid != 0 {
			buf := e.lookupBuffer(bid)
			if buf == nil {
				return fmt.Errorf("%w: buffer %d", ErrInvalidHandle, bid)
			}
			if fmtBuf == nil {
				fmtBuf = buf
			} else if !formatsMatch(&fmtBuf.data, &buf.data) {
				return fmt.Errorf("%w: buffer %d format mismatch", ErrInvalidOperation, bid)
			}
			item.buf = buf
			item.sampleLen = buf.data.Frames()
			item.samplesPerBlock = buf.data.SamplesPerBlock
			item.bytesPerBlock = buf.data.BytesPerBlock
		}
		items = append(items, item)
	}

	// Commit: link the chain, then splice it onto the tail.
	for i := range len(items) - 1 {
		items[i].next.Store(items[i+1])
	}
	for _, item := range items {
		if item.buf != nil {
			item.buf.refs.Add(1)
		}
	}
	if src.queue.tail == nil {
		src.queue.head = items[0]
	} else {
		src.queue.tail.next.Store(items[0])
	}
	src.queue.tail = items[len(items)-1]
	src.queue.len += len(items)
	src.srcType = Streaming
	return nil
}

func formatsMatch(a, b *BufferData) bool {
	return a.Channels == b.Channels && a.Type == b.Type && a.SampleRate == b.SampleRate
}

// UnqueueBuffers removes up to n processed entries from the head of a
// source's queue and returns their buffer ids. Entries the mixer may
// still read (the current buffer and everything after it) stay queued;
// unqueueing from a looping or static source is rejected.
func (e *Engine) UnqueueBuffers(id SourceID, n int) ([]BufferID, error) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	src := e.lookupSource(id)
	if src == nil {
		return nil, fmt.Errorf("%w: source %d", ErrInvalidHandle, id)
	}
	if src.srcType != Streaming {
		return nil, fmt.Errorf("%w: source %d has no queue", ErrInvalidOperation, id)
	}
	if src.looping {
		return nil, fmt.Errorf("%w: cannot unqueue from a looping source", ErrInvalidOperation)
	}

	// Everything before the voice's current item is processed. With no
	// voice bound (stopped/initial), the whole queue is processed.
	var current *queueItem
	if v := e.sourceVoice(src); v != nil {
		current = v.currentBuffer.Load()
	}

	processed := 0
	for item := src.queue.head; item != nil && item != current; item = item.next.Load() {
		processed++
	}
	if n > processed {
		return nil, fmt.Errorf("%w: only %d buffers processed", ErrInvalidValue, processed)
	}

	e.buffersMu.Lock()
	defer e.buffersMu.Unlock()

	out := make([]BufferID, 0, n)
	for range n {
		item := src.queue.head
		out = append(out, item.id)
		if item.buf != nil {
			item.buf.refs.Add(-1)
		}
		src.queue.head = item.next.Load()
		src.queue.len--
	}
	if src.queue.head == nil {
		src.queue.tail = nil
		src.srcType = Undetermined
	}
	return out, nil
}

// SetStaticBuffer attaches a single buffer to the source as a one-item
// queue, replacing any previous attachment. A zero id detaches and
// returns the source to Undetermined. Rejected while the source is
// playing or paused.
func (e *Engine) SetStaticBuffer(id SourceID, buf BufferID) error {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	src := e.lookupSource(id)
	if src == nil {
		return fmt.Errorf("%w: source %d", ErrInvalidHandle, id)
	}
	return e.setStaticBufferLocked(src, buf)
}

func (e *Engine) setStaticBufferLocked(src *source, buf BufferID) error {
	if st := e.sourceState(src); st == Playing || st == Paused {
		return fmt.Errorf("%w: source %d is %v", ErrInvalidOperation, src.id, st)
	}

	e.buffersMu.Lock()
	defer e.buffersMu.Unlock()

	if buf == 0 {
		e.drainQueueLocked(src)
		return nil
	}

	b := e.lookupBuffer(buf)
	if b == nil {
		return fmt.Errorf("%w: buffer %d", ErrInvalidHandle, buf)
	}

	e.drainQueueLocked(src)
	item := &queueItem{
		id:              buf,
		buf:             b,
		sampleLen:       b.data.Frames(),
		samplesPerBlock: b.data.SamplesPerBlock,
		bytesPerBlock:   b.data.BytesPerBlock,
	}
	b.refs.Add(1)
	src.queue.head = item
	src.queue.tail = item
	src.queue.len = 1
	src.srcType = Static
	return nil
}

func (e *Engine) drainQueue(src *source) {
	e.buffersMu.Lock()
	defer e.buffersMu.Unlock()
	e.drainQueueLocked(src)
}

func (e *Engine) drainQueueLocked(src *source) {
	for item := src.queue.head; item != nil; item = item.next.Load() {
		if item.buf != nil {
			item.buf.refs.Add(-1)
		}
	}
	src.queue.head = nil
	src.queue.tail = nil
	src.queue.len = 0
	src.srcType = Undetermined
}

func (e *Engine) releaseSends(src *source) {
	e.slotsMu.Lock()
	defer e.slotsMu.Unlock()
	for i := range src.send {
		if slot := src.send[i].Slot; slot != 0 {
			if s := e.slots.Lookup(pool.Handle(slot)); s != nil {
				s.refs.Add(-1)
			}
			src.send[i].Slot = 0
		}
	}
}

// sourceState reconciles the control-side state with the bound voice,
// whose state is authoritative while it exists. A voice that stopped on
// its own (queue exhausted) is reflected back here on first read.
func (e *Engine) sourceState(src *source) SourceState {
	if src.state != Playing {
		return src.state
	}
	v := e.sourceVoice(src)
	if v == nil {
		src.state = Stopped
		return Stopped
	}
	switch v.playState.Load() {
	case vPlaying, vStopping:
		return Playing
	default:
		src.state = Stopped
		return Stopped
	}
}

// SourceState reports the source's current playback state.
func (e *Engine) SourceState(id SourceID) (SourceState, error) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	src := e.lookupSource(id)
	if src == nil {
		return 0, fmt.Errorf("%w: source %d", ErrInvalidHandle, id)
	}
	if src.state == Paused {
		// The voice may have run out in the same pass the pause landed.
		if e.sourceVoice(src) == nil {
			src.state = Stopped
			return Stopped, nil
		}
		return Paused, nil
	}
	return e.sourceState(src), nil
}

// SourceQueueLen reports how many entries are in the source's queue.
func (e *Engine) SourceQueueLen(id SourceID) (int, error) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	src := e.lookupSource(id)
	if src == nil {
		return 0, fmt.Errorf("%w: source %d", ErrInvalidHandle, id)
	}
	return src.queue.len, nil
}
