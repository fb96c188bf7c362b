// SPDX-License-Identifier: EPL-2.0

package convert

import (
	"encoding/binary"
	"math"
)

// SampleType identifies one of the engine's supported sample encodings.
// Every encoding is normalized to float32 in [-1, 1] for processing.
type SampleType uint8

const (
	Uint8 SampleType = iota
	Int8
	Int16
	Uint16
	Int32
	Uint32
	Float32
)

// Size returns the encoding's width in bytes.
func (t SampleType) Size() int {
	switch t {
	case Uint8, Int8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	}
	return 0
}

func (t SampleType) String() string {
	switch t {
	case Uint8:
		return "uint8"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Float32:
		return "float32"
	}
	return "invalid"
}

// LoadSample reads the sample at byte offset off and normalizes it to
// [-1, 1]. Unsigned encodings are biased around their midpoint.
func LoadSample(t SampleType, src []byte, off int) float32 {
	return loadSample(t, src, off)
}

// StoreSample clamps val to the encoding's range and writes it at byte
// offset off.
func StoreSample(t SampleType, dst []byte, off int, val float32) {
	storeSample(t, dst, off, val)
}

func loadSample(t SampleType, src []byte, off int) float32 {
	switch t {
	case Uint8:
		return float32(int8(src[off]-128)) * (1.0 / 128.0)
	case Int8:
		return float32(int8(src[off])) * (1.0 / 128.0)
	case Int16:
		return float32(int16(binary.LittleEndian.Uint16(src[off:]))) * (1.0 / 32768.0)
	case Uint16:
		return float32(int16(binary.LittleEndian.Uint16(src[off:])-32768)) * (1.0 / 32768.0)
	case Int32:
		return float32(int32(binary.LittleEndian.Uint32(src[off:]))) * (1.0 / 2147483648.0)
	case Uint32:
		return float32(int32(binary.LittleEndian.Uint32(src[off:])-2147483648)) * (1.0 / 2147483648.0)
	case Float32:
		return math.Float32frombits(binary.LittleEndian.Uint32(src[off:]))
	}
	return 0
}

func storeSample(t SampleType, dst []byte, off int, val float32) {
	switch t {
	case Uint8:
		dst[off] = uint8(clampI(val*128, -128, 127) + 128)
	case Int8:
		dst[off] = uint8(int8(clampI(val*128, -128, 127)))
	case Int16:
		binary.LittleEndian.PutUint16(dst[off:], uint16(int16(clampI(val*32768, -32768, 32767))))
	case Uint16:
		binary.LittleEndian.PutUint16(dst[off:], uint16(clampI(val*32768, -32768, 32767)+32768))
	case Int32:
		binary.LittleEndian.PutUint32(dst[off:], uint32(clampI32(val)))
	case Uint32:
		binary.LittleEndian.PutUint32(dst[off:], uint32(clampI32(val))+2147483648)
	case Float32:
		binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(val))
	}
}

func clampI(val, lo, hi float32) int32 {
	if val <= lo {
		return int32(lo)
	}
	if val >= hi {
		return int32(hi)
	}
	return int32(val)
}

// clampI32 avoids overflowing int32 at the positive extreme: +1.0 maps
// to the largest exactly representable value below 2^31.
func clampI32(val float32) int32 {
	v := float64(val) * 2147483648.0
	if v <= -2147483648.0 {
		return math.MinInt32
	}
	if v >= 2147483520.0 {
		return 2147483520
	}
	return int32(v)
}

// loadChannel pulls frame-strided samples for one channel out of an
// interleaved byte stream.
func loadChannel(dst []float32, src []byte, t SampleType, ch, step int) {
	size := t.Size()
	off := ch * size
	stride := step * size
	for i := range dst {
		dst[i] = loadSample(t, src, off)
		off += stride
	}
}

// storeChannel writes frame-strided samples for one channel into an
// interleaved byte stream.
func storeChannel(dst []byte, src []float32, t SampleType, ch, step int) {
	size := t.Size()
	off := ch * size
	stride := step * size
	for i := range src {
		storeSample(t, dst, off, src[i])
		off += stride
	}
}
