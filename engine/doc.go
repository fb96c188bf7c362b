// SPDX-License-Identifier: EPL-2.0

// Package engine implements the playback core: persistent sources,
// transient mixer voices, and the lock-free channel between them.
//
// # Sources and Voices
//
// A source is the durable control-side entity: it owns a buffer queue,
// a full set of playback parameters and a playback state. A voice is
// the transient mixer-side binding created when a source starts
// playing; it holds the working copy of the parameters and the read
// cursor into the queue. Stopping dissolves the binding and returns the
// voice to the pool for reuse.
//
//	e, _ := engine.New(engine.NewConfig())
//	src, _ := e.CreateSource()
//	buf, _ := e.CreateBuffer(data)
//	e.QueueBuffers(src, buf)
//	e.Play(src)
//
// # Threading Model
//
// Control methods may be called from any number of goroutines; they
// serialize on coarse internal locks. Exactly one goroutine, normally
// the backend's render callback, drives MixPass. The mix path takes no
// locks and performs no allocation: parameters travel to it as
// immutable snapshots exchanged through a single atomic pointer per
// voice, and position reads travel back through a parity counter that
// detects a concurrent pass and retries.
//
// # Parameters
//
// Source parameters form a closed set (Param) with fixed arities and
// validated ranges. SetSourceF and SetSourceI reject out-of-range
// values with no partial effect. SuspendUpdates and ProcessUpdates
// bracket a batch of changes so they become audible in a single pass.
//
// # Events
//
// Mixer-side transitions, such as a voice stopping when its queue runs
// out, are reported asynchronously through a bounded event queue read
// with DrainEvents. Delivery is best-effort: overflow drops events and
// reports the loss with an EventEventsDropped record.
package engine
