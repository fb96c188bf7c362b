// SPDX-License-Identifier: EPL-2.0

package engine

import "github.com/voicemix/voicemix/pool"

// SourceID, BufferID, FilterID and EffectSlotID are registry handles.
// The zero value of each is "none" and never refers to a live object.
type (
	SourceID     pool.Handle
	BufferID     pool.Handle
	FilterID     pool.Handle
	EffectSlotID pool.Handle
)

// SourceState is the control-side playback state of a source.
type SourceState uint8

const (
	// Initial means the source has never played, or was rewound.
	Initial SourceState = iota
	Playing
	Paused
	Stopped
)

func (s SourceState) String() string {
	switch s {
	case Initial:
		return "initial"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return "invalid"
}

// SourceType describes what kind of buffer attachment a source has.
type SourceType uint8

const (
	// Undetermined sources hold no buffers and accept either form of
	// attachment.
	Undetermined SourceType = iota
	// Static sources hold exactly one buffer and reject queueing.
	Static
	// Streaming sources hold an ordered queue of zero or more buffers.
	Streaming
)

// playState is the mixer-side tri-state handshake value on a voice.
type playState = uint32

const (
	vStopped playState = iota
	vPlaying
	// vStopping is a request from a control thread; the mixer observes
	// it on its next pass, finalizes teardown and stores vStopped.
	vStopping
)

// DistanceModel selects how source distance maps to attenuation.
type DistanceModel uint8

const (
	DistanceNone DistanceModel = iota
	DistanceInverse
	DistanceInverseClamped
	DistanceLinear
	DistanceLinearClamped
	DistanceExponent
	DistanceExponentClamped
)

// SpatializeMode controls whether a source is spatialized.
type SpatializeMode uint8

const (
	SpatializeOff SpatializeMode = iota
	SpatializeOn
	SpatializeAuto
)

// MaxSends is the number of auxiliary effect sends per source.
const MaxSends = 6
