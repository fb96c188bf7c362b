// SPDX-License-Identifier: EPL-2.0

package engine

import "sync/atomic"

// VoiceProps is an immutable-once-published snapshot of every source
// parameter the mixer needs for one pass. Snapshots are drawn from and
// returned to a lock-free freelist so the hot path never allocates.
type VoiceProps struct {
	Pitch     float32
	Gain      float32
	OuterGain float32
	MinGain   float32
	MaxGain   float32

	InnerAngle float32
	OuterAngle float32

	RefDistance   float32
	MaxDistance   float32
	RolloffFactor float32

	Position  [3]float32
	Velocity  [3]float32
	Direction [3]float32
	OrientAt  [3]float32
	OrientUp  [3]float32

	SourceRelative bool
	DistanceModel  DistanceModel
	Spatialize     SpatializeMode

	AirAbsorptionFactor float32
	RoomRolloffFactor   float32
	DopplerFactor       float32

	StereoPan [2]float32
	Radius    float32

	Direct SendGains
	Send   [MaxSends]SendTarget
}

// SendGains is the filter gain set applied to one routing target.
type SendGains struct {
	Gain   float32
	GainHF float32
	GainLF float32
}

// SendTarget routes one auxiliary send to an effect slot.
type SendTarget struct {
	Slot EffectSlotID
	SendGains
}

type propsItem struct {
	VoiceProps
	next atomic.Pointer[propsItem]
}

// stageProps copies every mixer-relevant source field into a snapshot
// drawn from the freelist, allocating only when the freelist is empty.
func (e *Engine) stageProps(src *source) *propsItem {
	props := e.freeProps.Load()
	for props != nil {
		next := props.next.Load()
		if e.freeProps.CompareAndSwap(props, next) {
			break
		}
		props = e.freeProps.Load()
	}
	if props == nil {
		props = &propsItem{}
	}

	props.Pitch = src.pitch
	props.Gain = src.gain
	props.OuterGain = src.outerGain
	props.MinGain = src.minGain
	props.MaxGain = src.maxGain
	props.InnerAngle = src.innerAngle
	props.OuterAngle = src.outerAngle
	props.RefDistance = src.refDistance
	props.MaxDistance = src.maxDistance
	props.RolloffFactor = src.rolloffFactor
	props.Position = src.position
	props.Velocity = src.velocity
	props.Direction = src.direction
	props.OrientAt = src.orientAt
	props.OrientUp = src.orientUp
	props.SourceRelative = src.sourceRelative
	props.DistanceModel = src.distanceModel
	props.Spatialize = src.spatialize
	props.AirAbsorptionFactor = src.airAbsorption
	props.RoomRolloffFactor = src.roomRolloff
	props.DopplerFactor = src.dopplerFactor
	props.StereoPan = src.stereoPan
	props.Radius = src.radius
	props.Direct = src.direct
	props.Send = src.send

	return props
}

// publishProps hands a staged snapshot to the voice with a single
// atomic exchange. A previously pending snapshot the mixer never got to
// consume is reclaimed onto the freelist, never leaked or dropped.
func (e *Engine) publishProps(v *voice, props *propsItem) {
	if old := v.update.Swap(props); old != nil {
		e.freePropsPush(old)
	}
}

func (e *Engine) freePropsPush(item *propsItem) {
	for {
		head := e.freeProps.Load()
		item.next.Store(head)
		if e.freeProps.CompareAndSwap(head, item) {
			return
		}
	}
}

// updateSourceProps stages and publishes iff the source is audible
// (Playing or Paused with a bound voice) and updates are not deferred;
// otherwise it marks the source dirty so the next transition into
// Playing pushes a fresh snapshot unconditionally.
func (e *Engine) updateSourceProps(src *source) {
	if e.deferring.Load() {
		src.propsDirty.Store(true)
		return
	}
	if v := e.sourceVoice(src); v != nil {
		src.propsDirty.Store(false)
		e.publishProps(v, e.stageProps(src))
		return
	}
	src.propsDirty.Store(true)
}
