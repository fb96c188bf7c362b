// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"encoding/binary"
)

// EventType identifies an asynchronous engine event.
type EventType uint8

const (
	// EventSourceState reports a mixer-side state transition, such as a
	// voice stopping when its queue runs out.
	EventSourceState EventType = iota + 1
	// EventEventsDropped reports that the event queue overflowed and
	// Count events were lost since the last successful post.
	EventEventsDropped
)

// Event is one record delivered from the mixer to control code.
type Event struct {
	Type   EventType
	Source SourceID
	State  SourceState
	Count  uint32
}

// Events travel through the ring buffer as fixed-size records: the
// mixer is the single producer, DrainEvents the single consumer.
const eventSize = 12

func (ev Event) encode(dst []byte) {
	dst[0] = byte(ev.Type)
	dst[1] = byte(ev.State)
	binary.LittleEndian.PutUint32(dst[4:], uint32(ev.Source))
	binary.LittleEndian.PutUint32(dst[8:], ev.Count)
}

func decodeEvent(src []byte) Event {
	return Event{
		Type:   EventType(src[0]),
		State:  SourceState(src[1]),
		Source: SourceID(binary.LittleEndian.Uint32(src[4:])),
		Count:  binary.LittleEndian.Uint32(src[8:]),
	}
}

// postEvent enqueues an event from the mix pass. Delivery is
// best-effort: when the ring is full the event is dropped and counted,
// because the mixer must never block or allocate here.
func (e *Engine) postEvent(ev Event) {
	if e.dropped > 0 {
		drop := Event{Type: EventEventsDropped, Count: e.dropped}
		var rec [eventSize]byte
		drop.encode(rec[:])
		if e.events.Write(rec[:], 1) == 0 {
			e.dropped++
			return
		}
		e.dropped = 0
	}
	var rec [eventSize]byte
	ev.encode(rec[:])
	if e.events.Write(rec[:], 1) == 0 {
		e.dropped++
	}
}

// DrainEvents delivers every queued event to fn in posting order.
// Safe to call from any control goroutine; calls are serialized so the
// ring sees a single consumer.
func (e *Engine) DrainEvents(fn func(Event)) {
	e.eventsMu.Lock()
	defer e.eventsMu.Unlock()

	var rec [eventSize]byte
	for e.events.Read(rec[:], 1) == 1 {
		fn(decodeEvent(rec[:]))
	}
}
