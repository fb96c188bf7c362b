// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/voicemix/voicemix/convert"
	"github.com/voicemix/voicemix/engine"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	cfg := engine.NewConfig()
	cfg.Channels = 1
	e, err := engine.New(cfg)
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	return e
}

func TestHeadless_PumpRendersExactFrameCount(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	var sink bytes.Buffer
	h := NewHeadless(e, 128, &sink)

	if err := h.Pump(1000); err != nil {
		t.Fatalf("Pump() error = %v", err)
	}
	// 1000 frames of mono float32.
	if got := sink.Len(); got != 1000*4 {
		t.Errorf("sink received %d bytes, want %d", got, 1000*4)
	}
	if got := e.Clock(); got != 1000 {
		t.Errorf("engine clock = %d, want 1000", got)
	}
}

func TestHeadless_CapturesRenderedAudio(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	src, err := e.CreateSource()
	if err != nil {
		t.Fatalf("CreateSource() error = %v", err)
	}
	data := make([]byte, 256*4)
	for i := range 256 {
		convert.StoreSample(convert.Float32, data, i*4, 0.5)
	}
	buf, err := e.CreateBuffer(engine.BufferData{
		Data:       data,
		Channels:   1,
		Type:       convert.Float32,
		SampleRate: e.SampleRate(),
	})
	if err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	if err := e.QueueBuffers(src, buf); err != nil {
		t.Fatalf("QueueBuffers() error = %v", err)
	}
	if err := e.Play(src); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	var sink bytes.Buffer
	h := NewHeadless(e, 64, &sink)
	if err := h.Pump(256); err != nil {
		t.Fatalf("Pump() error = %v", err)
	}

	out := sink.Bytes()
	for i := range 256 {
		s := math.Float32frombits(binary.LittleEndian.Uint32(out[i*4:]))
		if s != 0.5 {
			t.Fatalf("captured sample %d = %v, want 0.5", i, s)
		}
	}
}

func TestHeadless_DefaultBlockSize(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	h := NewHeadless(e, 0, nil)
	if h.BlockFrames() != DefaultBlockFrames {
		t.Errorf("BlockFrames() = %d, want %d", h.BlockFrames(), DefaultBlockFrames)
	}
	if err := h.Pump(10); err != nil {
		t.Fatalf("Pump() with nil sink error = %v", err)
	}
}

func TestHeadless_PumpSeconds(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	h := NewHeadless(e, 256, nil)
	if err := h.PumpSeconds(0.25); err != nil {
		t.Fatalf("PumpSeconds() error = %v", err)
	}
	want := int64(float64(e.SampleRate()) * 0.25)
	if got := e.Clock(); got != want {
		t.Errorf("engine clock = %d, want %d", got, want)
	}
}
