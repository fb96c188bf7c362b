// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"

	"github.com/voicemix/voicemix/convert"
)

// Param names one source parameter. The set is closed: every parameter
// has a fixed arity and a validated range, and unknown values are
// rejected rather than ignored.
type Param uint16

const (
	// Float parameters, arity 1.
	ParamGain Param = iota + 1
	ParamPitch
	ParamMinGain
	ParamMaxGain
	ParamOuterGain
	ParamInnerAngle
	ParamOuterAngle
	ParamRefDistance
	ParamMaxDistance
	ParamRolloffFactor
	ParamRoomRolloffFactor
	ParamDopplerFactor
	ParamAirAbsorptionFactor
	ParamRadius
	ParamSecOffset
	ParamSampleOffset
	ParamByteOffset

	// Float parameters, arity 2 and up.
	ParamStereoPan   // 2
	ParamPosition    // 3
	ParamVelocity    // 3
	ParamDirection   // 3
	ParamOrientation // 6: "at" then "up"

	// Integer parameters, arity 1.
	ParamLooping
	ParamSourceRelative
	ParamBuffer
	ParamDistanceModel
	ParamSpatializeMode
)

// maxParamArity is the widest parameter vector.
const maxParamArity = 6

func (p Param) arity() int {
	switch p {
	case ParamStereoPan:
		return 2
	case ParamPosition, ParamVelocity, ParamDirection:
		return 3
	case ParamOrientation:
		return 6
	default:
		return 1
	}
}

// checkArity accepts the parameter's exact arity or the widest vector,
// so callers can reuse one scratch slice across parameters.
func checkArity(p Param, n int) error {
	if n == p.arity() || n == maxParamArity {
		return nil
	}
	return fmt.Errorf("%w: param %d wants %d value(s), got %d", ErrInvalidValue,
		p, p.arity(), n)
}

func finite(v float32) bool {
	return v == v && v > -maxFloat32-1 && v < maxFloat32+1
}

func allFinite(vals []float32) bool {
	for _, v := range vals {
		if !finite(v) {
			return false
		}
	}
	return true
}

// SetSourceF sets a float-valued source parameter. Vector parameters
// take their values in order; Orientation is the "at" vector followed
// by the "up" vector. Validation is complete before any field changes:
// a rejected call has no partial effect.
func (e *Engine) SetSourceF(id SourceID, p Param, vals ...float32) error {
	if err := checkArity(p, len(vals)); err != nil {
		return err
	}
	vals = vals[:p.arity()]

	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	src := e.lookupSource(id)
	if src == nil {
		return fmt.Errorf("%w: source %d", ErrInvalidHandle, id)
	}
	return e.setSourceF(src, p, vals)
}

func (e *Engine) setSourceF(src *source, p Param, vals []float32) error {
	bad := func() error {
		return fmt.Errorf("%w: param %d value %v out of range", ErrInvalidValue, p, vals)
	}
	if !allFinite(vals) {
		return bad()
	}
	v := vals[0]

	switch p {
	case ParamGain:
		if v < 0 {
			return bad()
		}
		src.gain = v
	case ParamPitch:
		if v <= 0 {
			return bad()
		}
		src.pitch = v
	case ParamMinGain:
		if v < 0 || v > 1 {
			return bad()
		}
		src.minGain = v
	case ParamMaxGain:
		if v < 0 || v > 1 {
			return bad()
		}
		src.maxGain = v
	case ParamOuterGain:
		if v < 0 || v > 1 {
			return bad()
		}
		src.outerGain = v
	case ParamInnerAngle:
		if v < 0 || v > 360 {
			return bad()
		}
		src.innerAngle = v
	case ParamOuterAngle:
		if v < 0 || v > 360 {
			return bad()
		}
		src.outerAngle = v
	case ParamRefDistance:
		if v < 0 {
			return bad()
		}
		src.refDistance = v
	case ParamMaxDistance:
		if v < 0 {
			return bad()
		}
		src.maxDistance = v
	case ParamRolloffFactor:
		if v < 0 {
			return bad()
		}
		src.rolloffFactor = v
	case ParamRoomRolloffFactor:
		if v < 0 || v > 10 {
			return bad()
		}
		src.roomRolloff = v
	case ParamDopplerFactor:
		if v < 0 || v > 1 {
			return bad()
		}
		src.dopplerFactor = v
	case ParamAirAbsorptionFactor:
		if v < 0 || v > 10 {
			return bad()
		}
		src.airAbsorption = v
	case ParamRadius:
		if v < 0 {
			return bad()
		}
		src.radius = v
	case ParamSecOffset:
		return e.setPlayOffset(src, offsetSeconds, float64(v))
	case ParamSampleOffset:
		return e.setPlayOffset(src, offsetSamples, float64(v))
	case ParamByteOffset:
		return e.setPlayOffset(src, offsetBytes, float64(v))
	case ParamStereoPan:
		for _, pan := range vals {
			if pan < -1 || pan > 1 {
				return bad()
			}
		}
		src.stereoPan = [2]float32{vals[0], vals[1]}
	case ParamPosition:
		src.position = [3]float32(vals)
	case ParamVelocity:
		src.velocity = [3]float32(vals)
	case ParamDirection:
		src.direction = [3]float32(vals)
	case ParamOrientation:
		src.orientAt = [3]float32(vals[:3])
		src.orientUp = [3]float32(vals[3:])
	default:
		return fmt.Errorf("%w: param %d is not float-valued", ErrInvalidValue, p)
	}

	e.updateSourceProps(src)
	return nil
}

// GetSourceF reads a float-valued source parameter into out, which must
// hold at least the parameter's arity. It returns how many values were
// written.
func (e *Engine) GetSourceF(id SourceID, p Param, out []float32) (int, error) {
	n := p.arity()
	if len(out) < n {
		return 0, fmt.Errorf("%w: param %d wants %d value(s), got room for %d",
			ErrInvalidValue, p, n, len(out))
	}

	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	src := e.lookupSource(id)
	if src == nil {
		return 0, fmt.Errorf("%w: source %d", ErrInvalidHandle, id)
	}

	switch p {
	case ParamGain:
		out[0] = src.gain
	case ParamPitch:
		out[0] = src.pitch
	case ParamMinGain:
		out[0] = src.minGain
	case ParamMaxGain:
		out[0] = src.maxGain
	case ParamOuterGain:
		out[0] = src.outerGain
	case ParamInnerAngle:
		out[0] = src.innerAngle
	case ParamOuterAngle:
		out[0] = src.outerAngle
	case ParamRefDistance:
		out[0] = src.refDistance
	case ParamMaxDistance:
		out[0] = src.maxDistance
	case ParamRolloffFactor:
		out[0] = src.rolloffFactor
	case ParamRoomRolloffFactor:
		out[0] = src.roomRolloff
	case ParamDopplerFactor:
		out[0] = src.dopplerFactor
	case ParamAirAbsorptionFactor:
		out[0] = src.airAbsorption
	case ParamRadius:
		out[0] = src.radius
	case ParamSecOffset:
		fmtBuf := src.queueFormat()
		if fmtBuf == nil {
			out[0] = 0
			break
		}
		frames, frac := e.sampleOffsetLocked(src)
		pos := float64(frames) + float64(frac)/convert.FracOne
		out[0] = float32(pos / float64(fmtBuf.data.SampleRate))
	case ParamSampleOffset:
		frames, frac := e.sampleOffsetLocked(src)
		out[0] = float32(float64(frames) + float64(frac)/convert.FracOne)
	case ParamByteOffset:
		fmtBuf := src.queueFormat()
		if fmtBuf == nil {
			out[0] = 0
			break
		}
		frames, _ := e.sampleOffsetLocked(src)
		blocks := frames / int64(fmtBuf.data.SamplesPerBlock)
		out[0] = float32(blocks * int64(fmtBuf.data.BytesPerBlock))
	case ParamStereoPan:
		copy(out, src.stereoPan[:])
	case ParamPosition:
		copy(out, src.position[:])
	case ParamVelocity:
		copy(out, src.velocity[:])
	case ParamDirection:
		copy(out, src.direction[:])
	case ParamOrientation:
		copy(out[:3], src.orientAt[:])
		copy(out[3:6], src.orientUp[:])
	default:
		return 0, fmt.Errorf("%w: param %d is not float-valued", ErrInvalidValue, p)
	}
	return n, nil
}

// SetSourceI sets an integer-valued source parameter. Sample and byte
// offsets are accepted here too, as whole-unit seeks.
func (e *Engine) SetSourceI(id SourceID, p Param, val int) error {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	src := e.lookupSource(id)
	if src == nil {
		return fmt.Errorf("%w: source %d", ErrInvalidHandle, id)
	}

	bad := func() error {
		return fmt.Errorf("%w: param %d value %d out of range", ErrInvalidValue, p, val)
	}
	switch p {
	case ParamLooping:
		if val != 0 && val != 1 {
			return bad()
		}
		src.looping = val == 1
		e.syncLoopState(src)
		return nil
	case ParamSourceRelative:
		if val != 0 && val != 1 {
			return bad()
		}
		src.sourceRelative = val == 1
	case ParamBuffer:
		if val < 0 {
			return bad()
		}
		return e.setStaticBufferLocked(src, BufferID(val))
	case ParamDistanceModel:
		if val < int(DistanceNone) || val > int(DistanceExponentClamped) {
			return bad()
		}
		src.distanceModel = DistanceModel(val)
	case ParamSpatializeMode:
		if val < int(SpatializeOff) || val > int(SpatializeAuto) {
			return bad()
		}
		src.spatialize = SpatializeMode(val)
	case ParamSampleOffset:
		return e.setPlayOffset(src, offsetSamples, float64(val))
	case ParamByteOffset:
		return e.setPlayOffset(src, offsetBytes, float64(val))
	default:
		return fmt.Errorf("%w: param %d is not integer-valued", ErrInvalidValue, p)
	}

	e.updateSourceProps(src)
	return nil
}

// GetSourceI reads an integer-valued source parameter.
func (e *Engine) GetSourceI(id SourceID, p Param) (int, error) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	src := e.lookupSource(id)
	if src == nil {
		return 0, fmt.Errorf("%w: source %d", ErrInvalidHandle, id)
	}

	b2i := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}
	switch p {
	case ParamLooping:
		return b2i(src.looping), nil
	case ParamSourceRelative:
		return b2i(src.sourceRelative), nil
	case ParamBuffer:
		if src.srcType == Static && src.queue.head != nil {
			return int(src.queue.head.id), nil
		}
		return 0, nil
	case ParamDistanceModel:
		return int(src.distanceModel), nil
	case ParamSpatializeMode:
		return int(src.spatialize), nil
	case ParamSampleOffset:
		frames, _ := e.sampleOffsetLocked(src)
		return int(frames), nil
	case ParamByteOffset:
		fmtBuf := src.queueFormat()
		if fmtBuf == nil {
			return 0, nil
		}
		frames, _ := e.sampleOffsetLocked(src)
		blocks := frames / int64(fmtBuf.data.SamplesPerBlock)
		return int(blocks * int64(fmtBuf.data.BytesPerBlock)), nil
	default:
		return 0, fmt.Errorf("%w: param %d is not integer-valued", ErrInvalidValue, p)
	}
}

// syncLoopState mirrors the looping flag onto a bound voice so the
// change takes effect without a restart. Caller holds sourcesMu.
func (e *Engine) syncLoopState(src *source) {
	e.backendMu.Lock()
	defer e.backendMu.Unlock()

	if v := e.sourceVoice(src); v != nil {
		if src.looping {
			v.loopBuffer.Store(src.queue.head)
		} else {
			v.loopBuffer.Store(nil)
		}
	}
}
