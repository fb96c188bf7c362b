// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"testing"
)

func TestParams_FloatRoundTrip(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	src, _ := e.CreateSource()

	cases := []struct {
		name  string
		param Param
		vals  []float32
	}{
		{"gain", ParamGain, []float32{0.5}},
		{"pitch", ParamPitch, []float32{1.5}},
		{"min gain", ParamMinGain, []float32{0.1}},
		{"max gain", ParamMaxGain, []float32{0.9}},
		{"outer gain", ParamOuterGain, []float32{0.25}},
		{"inner angle", ParamInnerAngle, []float32{45}},
		{"outer angle", ParamOuterAngle, []float32{180}},
		{"ref distance", ParamRefDistance, []float32{2}},
		{"max distance", ParamMaxDistance, []float32{100}},
		{"rolloff", ParamRolloffFactor, []float32{2.5}},
		{"room rolloff", ParamRoomRolloffFactor, []float32{1.5}},
		{"doppler", ParamDopplerFactor, []float32{0.5}},
		{"air absorption", ParamAirAbsorptionFactor, []float32{4}},
		{"radius", ParamRadius, []float32{1.25}},
		{"stereo pan", ParamStereoPan, []float32{-0.5, 0.5}},
		{"position", ParamPosition, []float32{1, 2, 3}},
		{"velocity", ParamVelocity, []float32{-1, 0, 1}},
		{"direction", ParamDirection, []float32{0, 0, 1}},
		{"orientation", ParamOrientation, []float32{0, 0, 1, 0, 1, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := e.SetSourceF(src, tc.param, tc.vals...); err != nil {
				t.Fatalf("SetSourceF(%v) error = %v", tc.param, err)
			}
			out := make([]float32, maxParamArity)
			n, err := e.GetSourceF(src, tc.param, out)
			if err != nil {
				t.Fatalf("GetSourceF(%v) error = %v", tc.param, err)
			}
			if n != len(tc.vals) {
				t.Fatalf("GetSourceF(%v) wrote %d values, want %d", tc.param, n, len(tc.vals))
			}
			for i, want := range tc.vals {
				if out[i] != want {
					t.Errorf("GetSourceF(%v)[%d] = %v, want %v", tc.param, i, out[i], want)
				}
			}
		})
	}
}

func TestParams_ArityRejected(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	src, _ := e.CreateSource()

	if err := e.SetSourceF(src, ParamPosition, 1, 2); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("SetSourceF(Position) with 2 values error = %v, want ErrInvalidValue", err)
	}
	if err := e.SetSourceF(src, ParamGain, 1, 2, 3); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("SetSourceF(Gain) with 3 values error = %v, want ErrInvalidValue", err)
	}
	// The widest vector is always accepted; extra values are ignored.
	if err := e.SetSourceF(src, ParamGain, 0.5, 0, 0, 0, 0, 0); err != nil {
		t.Errorf("SetSourceF(Gain) with max-arity vector error = %v", err)
	}
	out := make([]float32, 1)
	if _, err := e.GetSourceF(src, ParamOrientation, out); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("GetSourceF(Orientation) into short slice error = %v, want ErrInvalidValue", err)
	}
}

func TestParams_RangeRejectedWithoutEffect(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	src, _ := e.CreateSource()

	nan := float32(0)
	nan /= nan

	cases := []struct {
		name  string
		param Param
		vals  []float32
	}{
		{"negative gain", ParamGain, []float32{-1}},
		{"zero pitch", ParamPitch, []float32{0}},
		{"min gain above one", ParamMinGain, []float32{1.5}},
		{"angle above 360", ParamInnerAngle, []float32{361}},
		{"doppler above one", ParamDopplerFactor, []float32{2}},
		{"pan out of range", ParamStereoPan, []float32{-2, 0}},
		{"nan position", ParamPosition, []float32{nan, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := e.SetSourceF(src, tc.param, tc.vals...); !errors.Is(err, ErrInvalidValue) {
				t.Fatalf("SetSourceF(%v) error = %v, want ErrInvalidValue", tc.param, err)
			}
		})
	}

	// Defaults survive every rejected call.
	out := make([]float32, 1)
	if _, err := e.GetSourceF(src, ParamGain, out); err != nil || out[0] != 1 {
		t.Errorf("GetSourceF(Gain) = %v, %v, want 1, nil", out[0], err)
	}
	if _, err := e.GetSourceF(src, ParamPitch, out); err != nil || out[0] != 1 {
		t.Errorf("GetSourceF(Pitch) = %v, %v, want 1, nil", out[0], err)
	}
}

func TestParams_IntRoundTrip(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	src, _ := e.CreateSource()

	if err := e.SetSourceI(src, ParamLooping, 1); err != nil {
		t.Fatalf("SetSourceI(Looping) error = %v", err)
	}
	if got, _ := e.GetSourceI(src, ParamLooping); got != 1 {
		t.Errorf("GetSourceI(Looping) = %d, want 1", got)
	}

	if err := e.SetSourceI(src, ParamDistanceModel, int(DistanceLinear)); err != nil {
		t.Fatalf("SetSourceI(DistanceModel) error = %v", err)
	}
	if got, _ := e.GetSourceI(src, ParamDistanceModel); got != int(DistanceLinear) {
		t.Errorf("GetSourceI(DistanceModel) = %d, want %d", got, DistanceLinear)
	}

	if err := e.SetSourceI(src, ParamSpatializeMode, int(SpatializeOn)); err != nil {
		t.Fatalf("SetSourceI(SpatializeMode) error = %v", err)
	}
	if got, _ := e.GetSourceI(src, ParamSpatializeMode); got != int(SpatializeOn) {
		t.Errorf("GetSourceI(SpatializeMode) = %d, want %d", got, SpatializeOn)
	}

	if err := e.SetSourceI(src, ParamLooping, 2); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("SetSourceI(Looping, 2) error = %v, want ErrInvalidValue", err)
	}
	if err := e.SetSourceI(src, ParamDistanceModel, 99); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("SetSourceI(DistanceModel, 99) error = %v, want ErrInvalidValue", err)
	}
}

func TestParams_WrongKindRejected(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	src, _ := e.CreateSource()

	if err := e.SetSourceF(src, ParamLooping, 1); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("SetSourceF(Looping) error = %v, want ErrInvalidValue", err)
	}
	if err := e.SetSourceI(src, ParamGain, 1); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("SetSourceI(Gain) error = %v, want ErrInvalidValue", err)
	}
}

func TestParams_BufferAttachViaParam(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	src, _ := e.CreateSource()
	buf := newConstBuffer(t, e, 100, 0.5)

	if err := e.SetSourceI(src, ParamBuffer, int(buf)); err != nil {
		t.Fatalf("SetSourceI(Buffer) error = %v", err)
	}
	if got, _ := e.GetSourceI(src, ParamBuffer); got != int(buf) {
		t.Errorf("GetSourceI(Buffer) = %d, want %d", got, buf)
	}
}
