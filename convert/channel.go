// SPDX-License-Identifier: EPL-2.0

package convert

import (
	"fmt"
	"math"
)

// ChannelConverter remaps channel counts without resampling, producing
// float32 output. Mono input is duplicated to stereo at -3 dB so the
// summed acoustic power matches; multi-channel input is downmixed to
// mono with a power-normalizing 1/sqrt(n) scale.
type ChannelConverter struct {
	srcType  SampleType
	srcChans int
	dstChans int
	scale    float32
}

const monoToStereoGain = 0.70710678 // -3 dB

// NewChannel creates a converter from srcChans interleaved channels of
// srcType to dstChans of float32. Supported mappings are mono->stereo
// and any channel count down to mono; matching counts pass through.
func NewChannel(srcType SampleType, srcChans, dstChans int) (*ChannelConverter, error) {
	if srcType.Size() == 0 {
		return nil, fmt.Errorf("convert: invalid sample type")
	}
	if srcChans < 1 || dstChans < 1 {
		return nil, fmt.Errorf("convert: invalid channel mapping %d -> %d", srcChans, dstChans)
	}
	switch {
	case srcChans == dstChans:
	case srcChans == 1 && dstChans == 2:
	case dstChans == 1:
	default:
		return nil, fmt.Errorf("convert: unsupported channel mapping %d -> %d", srcChans, dstChans)
	}
	return &ChannelConverter{
		srcType:  srcType,
		srcChans: srcChans,
		dstChans: dstChans,
		scale:    float32(1.0 / math.Sqrt(float64(srcChans))),
	}, nil
}

// Convert remaps frames interleaved frames from src into dst, which
// must hold frames*dstChans float32 values.
func (c *ChannelConverter) Convert(src []byte, dst []float32, frames int) {
	size := c.srcType.Size()
	switch {
	case c.srcChans == c.dstChans:
		for i := range frames * c.srcChans {
			dst[i] = loadSample(c.srcType, src, i*size)
		}
	case c.srcChans == 1: // mono -> stereo
		for i := range frames {
			s := loadSample(c.srcType, src, i*size) * monoToStereoGain
			dst[i*2] = s
			dst[i*2+1] = s
		}
	default: // multi -> mono
		stride := c.srcChans * size
		for i := range frames {
			sum := float32(0)
			for ch := range c.srcChans {
				sum += loadSample(c.srcType, src, i*stride+ch*size)
			}
			dst[i] = sum * c.scale
		}
	}
}
