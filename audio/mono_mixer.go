// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/voicemix/voicemix/convert"
)

// MonoMixer folds a multi-channel source down to mono with a
// power-normalizing scale. Mono input passes through untouched.
type MonoMixer struct {
	src  Source
	conv *convert.ChannelConverter

	srcBuf []float32
	enc    []byte
}

func NewMonoMixer(src Source) (*MonoMixer, error) {
	conv, err := convert.NewChannel(convert.Float32, src.Channels(), 1)
	if err != nil {
		return nil, fmt.Errorf("audio: mono mixer: %w", err)
	}
	return &MonoMixer{src: src, conv: conv}, nil
}

func (m *MonoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *MonoMixer) Channels() int   { return 1 }

func (m *MonoMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// ReadSamples fills dst with mono samples, one per source frame.
func (m *MonoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	ch := m.src.Channels()
	if ch == 1 {
		return m.src.ReadSamples(dst)
	}

	if cap(m.srcBuf) < len(dst)*ch {
		m.srcBuf = make([]float32, len(dst)*ch)
	}
	n, err := m.src.ReadSamples(m.srcBuf[:len(dst)*ch])
	frames := n / ch
	if frames == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	if cap(m.enc) < frames*ch*4 {
		m.enc = make([]byte, frames*ch*4)
	}
	enc := m.enc[:frames*ch*4]
	for i := range frames * ch {
		convert.StoreSample(convert.Float32, enc, i*4, m.srcBuf[i])
	}
	m.conv.Convert(enc, dst[:frames], frames)

	if err != nil && err != io.EOF {
		return frames, fmt.Errorf("%w", err)
	}
	return frames, err
}
