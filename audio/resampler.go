// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/voicemix/voicemix/convert"
)

// Resampler streams from src to a target sample rate using cubic
// interpolation. It works on interleaved samples and preserves the
// channel count. Output is continuous across ReadSamples boundaries.
type Resampler struct {
	src  Source
	conv *convert.Converter
	rate int

	srcBuf  []float32
	pending []byte // encoded frames not yet consumed by the converter
	outBuf  []byte
	eof     bool
}

// NewResampler wraps src so it reads back at dstRate.
func NewResampler(src Source, dstRate int) (*Resampler, error) {
	conv, err := convert.New(convert.Float32, convert.Float32,
		src.Channels(), src.SampleRate(), dstRate)
	if err != nil {
		return nil, fmt.Errorf("audio: resampler: %w", err)
	}
	return &Resampler{
		src:    src,
		conv:   conv,
		rate:   dstRate,
		srcBuf: make([]float32, 4096),
	}, nil
}

func (r *Resampler) SampleRate() int { return r.rate }
func (r *Resampler) Channels() int   { return r.conv.Channels() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// ReadSamples fills dst with resampled interleaved samples. len(dst)
// must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	ch := r.conv.Channels()
	if len(dst)%ch != 0 {
		return 0, ErrInvalidDstSize
	}

	frameSize := ch * 4
	total := 0
	for total < len(dst) {
		if len(r.pending) == 0 {
			if r.eof {
				break
			}
			if err := r.fill(); err != nil {
				return total, err
			}
			continue
		}

		srcFrames := len(r.pending) / frameSize
		before := srcFrames
		wantFrames := (len(dst) - total) / ch

		need := wantFrames * frameSize
		if cap(r.outBuf) < need {
			r.outBuf = make([]byte, need)
		}
		out := r.outBuf[:need]

		m := r.conv.Convert(r.pending, &srcFrames, out, wantFrames)
		r.pending = r.pending[(before-srcFrames)*frameSize:]

		for i := range m * ch {
			dst[total+i] = convert.LoadSample(convert.Float32, out, i*4)
		}
		total += m * ch
	}

	if total == 0 && r.eof {
		return 0, io.EOF
	}
	return total, nil
}

// fill reads one block from the wrapped source and encodes whole frames
// for the converter.
func (r *Resampler) fill() error {
	n, err := r.src.ReadSamples(r.srcBuf)
	if err == io.EOF {
		r.eof = true
	} else if err != nil {
		return fmt.Errorf("%w", err)
	}

	ch := r.conv.Channels()
	frames := n / ch
	if frames == 0 {
		return nil
	}

	off := len(r.pending)
	grown := append(r.pending, make([]byte, frames*ch*4)...)
	for i := range frames * ch {
		convert.StoreSample(convert.Float32, grown[off:], i*4, r.srcBuf[i])
	}
	r.pending = grown
	return nil
}
