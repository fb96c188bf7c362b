// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func TestWriteWAV16_Header(t *testing.T) {
	t.Parallel()

	samples := []int16{100, -100, 200, -200}
	buf := new(bytes.Buffer)

	if err := WriteWAV16(buf, 8000, 1, samples); err != nil {
		t.Fatalf("WriteWAV16() error = %v", err)
	}

	data := buf.Bytes()
	if len(data) != 44+len(samples)*2 {
		t.Fatalf("output length = %d, want %d", len(data), 44+len(samples)*2)
	}

	if string(data[0:4]) != "RIFF" {
		t.Errorf("RIFF marker = %q, want \"RIFF\"", data[0:4])
	}

	if string(data[8:12]) != "WAVE" {
		t.Errorf("WAVE marker = %q, want \"WAVE\"", data[8:12])
	}

	if got := binary.LittleEndian.Uint32(data[24:28]); got != 8000 {
		t.Errorf("sample rate = %d, want 8000", got)
	}

	if got := binary.LittleEndian.Uint16(data[22:24]); got != 1 {
		t.Errorf("channel count = %d, want 1", got)
	}

	if got := binary.LittleEndian.Uint32(data[40:44]); got != uint32(len(samples)*2) {
		t.Errorf("data size = %d, want %d", got, len(samples)*2)
	}
}

func TestWriteWAV16_Stereo(t *testing.T) {
	t.Parallel()

	samples := []int16{100, 200, 300, 400}
	buf := new(bytes.Buffer)

	if err := WriteWAV16(buf, 44100, 2, samples); err != nil {
		t.Fatalf("WriteWAV16() error = %v", err)
	}

	data := buf.Bytes()
	if got := binary.LittleEndian.Uint16(data[22:24]); got != 2 {
		t.Errorf("channel count = %d, want 2", got)
	}

	if got := binary.LittleEndian.Uint16(data[32:34]); got != 4 {
		t.Errorf("block align = %d, want 4", got)
	}

	if got := binary.LittleEndian.Uint32(data[28:32]); got != 44100*4 {
		t.Errorf("byte rate = %d, want %d", got, 44100*4)
	}
}

func TestWriteWAV16_Empty(t *testing.T) {
	t.Parallel()

	buf := new(bytes.Buffer)

	if err := WriteWAV16(buf, 8000, 1, nil); err != nil {
		t.Fatalf("WriteWAV16() error = %v", err)
	}

	if buf.Len() != 44 {
		t.Errorf("output length = %d, want 44 (header only)", buf.Len())
	}
}

func TestWriteWAV16_InvalidChannels(t *testing.T) {
	t.Parallel()

	buf := new(bytes.Buffer)

	if err := WriteWAV16(buf, 8000, 0, []int16{1}); err == nil {
		t.Error("WriteWAV16() error = nil, want error for zero channels")
	}
}

func TestWriteWAV16_RoundTrip(t *testing.T) {
	t.Parallel()

	original := []int16{-32768, -1000, 0, 1000, 32767}
	buf := new(bytes.Buffer)

	if err := WriteWAV16(buf, 16000, 1, original); err != nil {
		t.Fatalf("WriteWAV16() error = %v", err)
	}

	decoder := Decoder{}
	src, err := decoder.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	dst := make([]float32, len(original))
	n, err := src.ReadSamples(dst)
	if err != nil && err != io.EOF {
		t.Fatalf("ReadSamples() error = %v", err)
	}

	if n != len(original) {
		t.Fatalf("ReadSamples() n = %d, want %d", n, len(original))
	}

	for i, want := range original {
		got := int16(dst[i] * 32768.0)
		if got != want {
			t.Errorf("sample %d = %d, want %d", i, got, want)
		}
	}
}
