// SPDX-License-Identifier: EPL-2.0

package voicemix

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/voicemix/voicemix/audio"
	"github.com/voicemix/voicemix/convert"
	"github.com/voicemix/voicemix/engine"
	"github.com/voicemix/voicemix/formats/aiff"
	"github.com/voicemix/voicemix/formats/mp3"
	"github.com/voicemix/voicemix/formats/vorbis"
	"github.com/voicemix/voicemix/formats/wav"
)

// DefaultRegistry maps file extensions to the built-in format decoders.
// Additional decoders may be registered before loading.
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("aif", aiff.Decoder{})
	return r
}

// DecodeReader decodes the named format from r into buffer payload
// ready for engine.CreateBuffer. The whole stream is drained; samples
// are stored as interleaved float32.
func DecodeReader(format string, r io.Reader) (engine.BufferData, error) {
	dec, ok := DefaultRegistry.Get(format)
	if !ok {
		return engine.BufferData{}, fmt.Errorf("no decoder registered for format %q", format)
	}

	src, err := dec.Decode(r)
	if err != nil {
		return engine.BufferData{}, fmt.Errorf("decoding %s: %w", format, err)
	}
	defer src.Close()

	samples, err := audio.ReadAll(src)
	if err != nil {
		return engine.BufferData{}, fmt.Errorf("reading %s samples: %w", format, err)
	}

	data := make([]byte, len(samples)*4)
	for i, s := range samples {
		convert.StoreSample(convert.Float32, data, i*4, s)
	}

	return engine.BufferData{
		Data:       data,
		Channels:   src.Channels(),
		Type:       convert.Float32,
		SampleRate: src.SampleRate(),
	}, nil
}

// LoadReader decodes the named format from r and registers the result
// as an engine buffer.
func LoadReader(e *engine.Engine, format string, r io.Reader) (engine.BufferID, error) {
	data, err := DecodeReader(format, r)
	if err != nil {
		return 0, err
	}
	return e.CreateBuffer(data)
}

// LoadFile decodes the file at path, picking the decoder from the file
// extension, and registers the result as an engine buffer.
func LoadFile(e *engine.Engine, path string) (engine.BufferID, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		return 0, fmt.Errorf("cannot determine format of %q", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return LoadReader(e, format, f)
}
