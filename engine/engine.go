// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/voicemix/voicemix/pool"
	"github.com/voicemix/voicemix/ring"
)

// Config carries the engine's construction parameters.
type Config struct {
	// SampleRate of the internal mix format in Hz.
	SampleRate int
	// Channels of the internal mix format (1 or 2).
	Channels int
	// Voices is the initial voice pool size; the pool grows on demand
	// up to MaxVoices.
	Voices int
	// MaxVoices bounds pool growth. Zero means DefaultMaxVoices.
	MaxVoices int
	// EventQueueDepth is the mixer-to-control event ring capacity.
	EventQueueDepth int
	// Logger receives structured engine logs. The zero value logs
	// nothing.
	Logger zerolog.Logger
}

// Default engine parameters.
const (
	DefaultSampleRate      = 48000
	DefaultChannels        = 2
	DefaultVoices          = 64
	DefaultMaxVoices       = 1024
	DefaultEventQueueDepth = 512
)

// NewConfig returns a Config with default values.
func NewConfig() Config {
	return Config{
		SampleRate:      DefaultSampleRate,
		Channels:        DefaultChannels,
		Voices:          DefaultVoices,
		MaxVoices:       DefaultMaxVoices,
		EventQueueDepth: DefaultEventQueueDepth,
		Logger:          zerolog.Nop(),
	}
}

// Engine is the rendering engine instance. Any number of control
// goroutines may call its methods; exactly one goroutine (the backend's
// callback) drives MixPass. Control operations serialize on coarse
// per-registry locks and never hold a lock across a mix pass; the mixer
// synchronizes only through atomics.
type Engine struct {
	log zerolog.Logger

	sampleRate int
	channels   int
	maxVoices  int

	// Lock order: sourcesMu > buffersMu > slotsMu, backendMu innermost.
	sourcesMu sync.Mutex
	buffersMu sync.Mutex
	slotsMu   sync.Mutex
	filtersMu sync.Mutex
	// propsMu serializes deferred-update batches against each other.
	propsMu sync.Mutex
	// backendMu brackets play-state transitions that the next mix pass
	// must observe atomically. Held briefly, by control threads only.
	backendMu sync.Mutex

	sources pool.Table[source]
	buffers pool.Table[buffer]
	filters pool.Table[filter]
	slots   pool.Table[effectSlot]

	// voices is a copy-on-write snapshot; the mixer loads it once per
	// pass while control threads swap in grown copies.
	voices atomic.Pointer[[]*voice]

	freeProps atomic.Pointer[propsItem]

	// mixCount is the parity counter: odd while a mix pass is in
	// flight. Control threads use it for tear-free position reads.
	mixCount atomic.Uint32

	deferring atomic.Bool

	events   *ring.Buffer
	eventsMu sync.Mutex
	dropped  uint32 // mixer-side only

	// clock advances one frame per mixed frame.
	clock atomic.Int64
}

// New creates an engine. Zero-valued Config fields take defaults.
func New(cfg Config) (*Engine, error) {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Channels == 0 {
		cfg.Channels = DefaultChannels
	}
	if cfg.Voices == 0 {
		cfg.Voices = DefaultVoices
	}
	if cfg.MaxVoices == 0 {
		cfg.MaxVoices = DefaultMaxVoices
	}
	if cfg.EventQueueDepth == 0 {
		cfg.EventQueueDepth = DefaultEventQueueDepth
	}
	if cfg.SampleRate < 1 || cfg.Channels < 1 || cfg.Channels > 2 {
		return nil, fmt.Errorf("%w: mix format %d Hz / %d ch", ErrInvalidValue,
			cfg.SampleRate, cfg.Channels)
	}
	if cfg.Voices > cfg.MaxVoices {
		return nil, fmt.Errorf("%w: initial voices %d exceed MaxVoices %d", ErrInvalidValue,
			cfg.Voices, cfg.MaxVoices)
	}

	e := &Engine{
		log:        cfg.Logger,
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
		maxVoices:  cfg.MaxVoices,
		events:     ring.New(cfg.EventQueueDepth, eventSize, false),
	}
	voices := make([]*voice, cfg.Voices)
	for i := range voices {
		voices[i] = &voice{}
	}
	e.voices.Store(&voices)

	e.log.Debug().
		Int("sample_rate", e.sampleRate).
		Int("channels", e.channels).
		Int("voices", cfg.Voices).
		Msg("engine created")
	return e, nil
}

// SampleRate reports the internal mix rate in Hz.
func (e *Engine) SampleRate() int { return e.sampleRate }

// Channels reports the internal mix channel count.
func (e *Engine) Channels() int { return e.channels }

// Clock reports the number of frames mixed since creation.
func (e *Engine) Clock() int64 { return e.clock.Load() }

// growVoices appends n fresh voices, publishing a new snapshot. The
// caller holds backendMu. Growth past MaxVoices fails without touching
// the pool.
func (e *Engine) growVoices(n int) error {
	old := *e.voices.Load()
	if len(old)+n > e.maxVoices {
		return fmt.Errorf("%w: voice pool limit %d", ErrNoMemory, e.maxVoices)
	}
	grown := make([]*voice, len(old), len(old)+n)
	copy(grown, old)
	for range n {
		grown = append(grown, &voice{})
	}
	e.voices.Store(&grown)
	e.log.Info().Int("voices", len(grown)).Msg("voice pool grown")
	return nil
}

// teardownVoice silences a voice from the control side. A playing
// voice is handed to the mixer via the Stopping handshake; a voice
// already stopping stays with the mixer; a parked (paused or
// never-started) voice is freed directly since the mixer ignores
// stopped slots. The caller holds backendMu.
func (e *Engine) teardownVoice(v *voice) {
	if v.playState.CompareAndSwap(vPlaying, vStopping) {
		return
	}
	if v.playState.Load() == vStopping {
		// A stop is already in flight. The mixer owns the slot until it
		// finalizes Stopping to Stopped; freeing it here would let a new
		// play rebind the slot under a pass that already observed it.
		return
	}
	// Stopped (parked or never started): the mixer will not touch this
	// slot.
	v.currentBuffer.Store(nil)
	v.loopBuffer.Store(nil)
	if item := v.update.Swap(nil); item != nil {
		e.freePropsPush(item)
	}
	v.playState.Store(vStopped)
	v.sourceID.Store(0)
}

// MixPass renders one block of output audio: frames frames of
// interleaved float32 into out, accumulated over every active voice
// and clamped. It is the real-time path: no locks, no allocation, no
// errors. Exactly one goroutine may call it.
func (e *Engine) MixPass(out []float32, frames int) {
	n := frames * e.channels
	for i := range out[:n] {
		out[i] = 0
	}

	e.mixCount.Add(1) // odd: pass in flight

	voices := *e.voices.Load()
	for _, v := range voices {
		st := v.playState.Load()
		if st == vPlaying || st == vStopping {
			v.mix(st, e, out[:n], frames)
		}
	}

	for i := range out[:n] {
		out[i] = min(max(out[i], -1), 1)
	}

	e.clock.Add(int64(frames))
	e.mixCount.Add(1) // even: pass done
}

// SuspendUpdates defers property propagation: subsequent parameter
// changes mark sources dirty instead of publishing snapshots, so a
// batch of changes becomes audible in one pass.
func (e *Engine) SuspendUpdates() {
	e.propsMu.Lock()
	defer e.propsMu.Unlock()
	e.deferring.Store(true)
}

// ProcessUpdates ends a deferred batch, staging and publishing a
// snapshot for every dirty, voice-bound source.
func (e *Engine) ProcessUpdates() {
	e.propsMu.Lock()
	defer e.propsMu.Unlock()
	if !e.deferring.Swap(false) {
		return
	}

	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()
	e.sources.ForEach(func(_ pool.Handle, src *source) bool {
		if src.propsDirty.Load() {
			e.updateSourceProps(src)
		}
		return true
	})
}
