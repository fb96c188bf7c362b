// SPDX-License-Identifier: EPL-2.0

// Package backend connects a rendering engine to an output clock.
//
// A backend owns the real-time side of playback: it decides the block
// size and calls MixPass once per block. Two drivers are provided:
//
//   - Headless renders on the caller's clock, optionally capturing the
//     output through an io.Writer. It is the driver for offline
//     rendering and tests.
//   - backend/otodrv plays through the operating system's audio device
//     using the oto library.
//
// Both drive the same Renderer interface, so application code does not
// change between live playback and offline rendering.
package backend
