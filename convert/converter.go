// SPDX-License-Identifier: EPL-2.0

package convert

import (
	"fmt"
	"math"

	"github.com/voicemix/voicemix/utils"
)

// Fixed-point parameters shared with the engine's playback position
// accounting: positions advance by increment steps of 1/FracOne frame.
const (
	FracBits = 16
	FracOne  = 1 << FracBits
	FracMask = FracOne - 1

	// MaxPitch bounds the conversion ratio; a source cannot be read
	// more than ten times faster than it is written.
	MaxPitch = 10
)

const (
	// maxPadding samples of history are carried across calls per
	// channel so the interpolation window never sees a seam. The edge
	// is the history half that precedes the current sample.
	maxPadding = 4
	maxEdge    = maxPadding / 2

	// lineSize is the per-iteration working block, in frames.
	lineSize = 1024
)

// Converter normalizes an interleaved sample stream from one encoding
// and rate to another. It is stateful only in the carried padding
// history and fractional offset; each Convert call may hand it an
// arbitrary slice of the stream and output remains continuous across
// call boundaries.
//
// A Converter is not safe for concurrent use.
type Converter struct {
	srcType SampleType
	dstType SampleType
	chans   int

	increment  uint32
	fracOffset uint32
	prepCount  int
	unity      bool

	// prev holds maxPadding history samples per channel.
	prev [][maxPadding]float32

	srcData [lineSize + maxPadding]float32
	dstData [lineSize]float32
}

// New creates a converter for the given stream shape. The rate ratio is
// clamped to MaxPitch.
func New(srcType, dstType SampleType, channels, srcRate, dstRate int) (*Converter, error) {
	if channels < 1 {
		return nil, fmt.Errorf("convert: invalid channel count %d", channels)
	}
	if srcRate < 1 || dstRate < 1 {
		return nil, fmt.Errorf("convert: invalid rates %d -> %d", srcRate, dstRate)
	}
	if srcType.Size() == 0 || dstType.Size() == 0 {
		return nil, fmt.Errorf("convert: invalid sample type")
	}

	step := math.Round(float64(srcRate) * FracOne / float64(dstRate))
	step = min(max(step, 1), MaxPitch*FracOne)

	return &Converter{
		srcType:   srcType,
		dstType:   dstType,
		chans:     channels,
		increment: uint32(step),
		prepCount: maxPadding,
		unity:     uint32(step) == FracOne,
		prev:      make([][maxPadding]float32, channels),
	}, nil
}

// Channels reports the stream's channel count.
func (c *Converter) Channels() int { return c.chans }

// SrcFrameSize reports the size in bytes of one input frame.
func (c *Converter) SrcFrameSize() int { return c.chans * c.srcType.Size() }

// DstFrameSize reports the size in bytes of one output frame.
func (c *Converter) DstFrameSize() int { return c.chans * c.dstType.Size() }

// AvailableOut reports how many output frames Convert would produce
// from srcFrames more input frames.
func (c *Converter) AvailableOut(srcFrames int) int {
	if srcFrames < 1 {
		return 0
	}
	if c.unity {
		return srcFrames
	}
	if c.prepCount < maxPadding && maxPadding-c.prepCount >= srcFrames {
		// Not enough input to fill the interpolation window.
		return 0
	}

	size := int64(c.prepCount+srcFrames-maxPadding)<<FracBits - int64(c.fracOffset)
	out := (size + int64(c.increment) - 1) / int64(c.increment)
	return int(min(max(out, 1), math.MaxInt32))
}

// Convert reads frames from src, writes converted frames into dst, and
// returns the number of frames written. *srcFrames is reduced by the
// number of input frames consumed; input that cannot yet produce output
// is absorbed into the padding history. dst must hold dstFrames frames
// of the destination format.
func (c *Converter) Convert(src []byte, srcFrames *int, dst []byte, dstFrames int) int {
	if c.unity {
		n := min(*srcFrames, dstFrames)
		c.retype(src, dst, n)
		*srcFrames -= n
		return n
	}

	numSrc := *srcFrames
	srcFrameSize := c.SrcFrameSize()
	dstFrameSize := c.DstFrameSize()
	increment := int64(c.increment)

	pos := 0
	for pos < dstFrames && numSrc > 0 {
		prep := c.prepCount
		readable := min(numSrc, lineSize-prep)

		if prep < maxPadding && maxPadding-prep >= readable {
			// Not enough input for a single output frame; keep what we
			// were given for the next call.
			for ch := range c.chans {
				loadChannel(c.prev[ch][prep:prep+readable], src, c.srcType, ch, c.chans)
			}
			c.prepCount = prep + readable
			numSrc = 0
			break
		}

		frac := int64(c.fracOffset)
		size := int64(prep+readable-maxPadding)<<FracBits - frac

		dstSize := int(min(max((size+increment-1)/increment, 1), lineSize))
		dstSize = min(dstSize, dstFrames-pos)

		posEnd := int64(dstSize)*increment + frac
		srcDataEnd := int(posEnd >> FracBits)
		nextPrep := min(prep+readable-srcDataEnd, maxPadding)

		for ch := range c.chans {
			// History first, then the fresh input.
			copy(c.srcData[:prep], c.prev[ch][:prep])
			loadChannel(c.srcData[prep:prep+readable], src, c.srcType, ch, c.chans)

			n := copy(c.prev[ch][:nextPrep], c.srcData[srcDataEnd:prep+readable])
			for i := n; i < maxPadding; i++ {
				c.prev[ch][i] = 0
			}

			resampleCubic(c.dstData[:dstSize], c.srcData[:], uint32(frac), c.increment)
			storeChannel(dst, c.dstData[:dstSize], c.dstType, ch, c.chans)
		}

		c.prepCount = nextPrep
		c.fracOffset = uint32(posEnd & FracMask)

		srcRead := min(numSrc, srcDataEnd+c.prepCount-prep)
		src = src[srcRead*srcFrameSize:]
		numSrc -= srcRead

		dst = dst[dstSize*dstFrameSize:]
		pos += dstSize
	}

	*srcFrames = numSrc
	return pos
}

// retype copies n frames changing only the sample encoding.
func (c *Converter) retype(src, dst []byte, n int) {
	if c.srcType == c.dstType {
		copy(dst[:n*c.DstFrameSize()], src[:n*c.SrcFrameSize()])
		return
	}
	size := c.srcType.Size()
	dsize := c.dstType.Size()
	for i := range n * c.chans {
		storeSample(c.dstType, dst, i*dsize, loadSample(c.srcType, src, i*size))
	}
}

// resampleCubic fills dst by stepping a fractional cursor through src.
// src[0] is the first history sample; the sample interpolated at
// integer position p sits at src[maxEdge+p], with a four-sample window
// around it.
func resampleCubic(dst, src []float32, frac, increment uint32) {
	pos := frac
	for i := range dst {
		base := int(pos >> FracBits)
		mu := float32(pos&FracMask) * (1.0 / FracOne)
		dst[i] = utils.CubicInterpolate(
			src[base+maxEdge-1], src[base+maxEdge], src[base+maxEdge+1], src[base+maxEdge+2], mu)
		pos += increment
	}
}
