// SPDX-License-Identifier: EPL-2.0

// Package voicemix is a software audio mixer for Go applications.
//
// It combines a real-time mixing engine (sources, voices, buffers,
// per-source parameters) with streaming format decoders, sample rate
// conversion, and playback backends. The top-level package provides
// the glue: loading audio files straight into engine buffers.
//
// # Quick Start
//
//	e, _ := engine.New(engine.NewConfig())
//
//	// Load a file into an engine buffer
//	buf, _ := voicemix.LoadFile(e, "beep.wav")
//
//	// Create a source, attach the buffer, play
//	src, _ := e.CreateSource()
//	e.QueueBuffers(src, buf)
//	e.Play(src)
//
//	// Drive the mixer from a backend
//	drv, _ := otodrv.New(e)
//	drv.Start()
//
// # Supported Formats
//
// The package supports decoding the following audio formats:
//   - WAV (PCM 8/16/24/32-bit) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF (PCM 8/16/24/32-bit) via formats/aiff
//
// Decoders are looked up in DefaultRegistry by file extension; custom
// decoders can be added with DefaultRegistry.Register.
//
// # Packages
//
//   - engine: source and voice management, mixing, parameters, events
//   - convert: sample rate and channel conversion primitives
//   - audio: streaming decode pipeline (Source, Resampler, MonoMixer)
//   - formats/...: per-format decoders returning audio.Source
//   - backend: block-based render loop; backend/otodrv for playback
//
// # Audio Processing Pipeline
//
// For streaming work outside the engine, build pipelines from the
// audio subpackage:
//
//	resampler, _ := audio.NewResampler(source, 16000)
//	mono, _ := audio.NewMonoMixer(resampler)
//
//	buf := make([]float32, 4096)
//	n, err := mono.ReadSamples(buf)
package voicemix
