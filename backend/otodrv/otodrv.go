// SPDX-License-Identifier: EPL-2.0

package otodrv

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/voicemix/voicemix/backend"
)

// Driver plays a Renderer through the system audio device. oto pulls
// sample data with Read calls on its own goroutine, which becomes the
// single mixer goroutine.
type Driver struct {
	ctx    *oto.Context
	player *oto.Player
	r      backend.Renderer

	mu      sync.Mutex
	started bool

	buf []float32
}

// New opens the audio device for the renderer's format and prepares a
// player. Playback starts with Start.
func New(r backend.Renderer) (*Driver, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   r.SampleRate(),
		ChannelCount: r.Channels(),
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("otodrv: open context: %w", err)
	}
	<-ready

	d := &Driver{ctx: ctx, r: r}
	d.player = ctx.NewPlayer(d)
	return d, nil
}

// Read renders the next block. It is called by oto's playback
// goroutine; the renderer's mix path is wait-free, so this never blocks
// the device.
func (d *Driver) Read(p []byte) (int, error) {
	sampleBytes := 4 * d.r.Channels()
	frames := len(p) / sampleBytes
	if frames == 0 {
		return 0, nil
	}

	n := frames * d.r.Channels()
	if cap(d.buf) < n {
		d.buf = make([]float32, n)
	}
	out := d.buf[:n]
	d.r.MixPass(out, frames)

	for i, s := range out {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return frames * sampleBytes, nil
}

// Start begins pulling audio from the renderer.
func (d *Driver) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started {
		d.player.Play()
		d.started = true
	}
}

// Pause stops pulling without closing the device; Start resumes.
func (d *Driver) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		d.player.Pause()
		d.started = false
	}
}

// Close releases the player. The oto context itself cannot be closed
// and is reused for the life of the process.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started = false
	return d.player.Close()
}
