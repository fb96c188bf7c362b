// SPDX-License-Identifier: EPL-2.0

// Package otodrv plays a rendering engine through the system audio
// device via the oto library.
package otodrv
