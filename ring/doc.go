// SPDX-License-Identifier: EPL-2.0

// Package ring implements a lock-free single-producer/single-consumer
// ring buffer of fixed-size elements.
//
// The engine uses it to deliver state-change events from the real-time
// mixer back to control code without blocking the mixer. Sizes and
// counts are in elements, not bytes.
package ring
