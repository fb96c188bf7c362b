// SPDX-License-Identifier: EPL-2.0

// Package audio provides the streaming decode layer above the engine.
//
// # Source Interface
//
// The Source interface is the unit of composition:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    Close() error
//	}
//
// Every format decoder returns a Source, and the processing wrappers
// both consume and implement it, so stages chain freely:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	resampled, _ := audio.NewResampler(src, 48000)
//	mono, _ := audio.NewMonoMixer(resampled)
//
// # Sample Format
//
// Samples are interleaved float32 in [-1.0, 1.0]. ReadSamples counts
// individual values, not frames; io.EOF with a zero count ends the
// stream.
//
// # Format Registry
//
// The Registry maps format keys to decoders so callers can resolve a
// decoder from a file extension at run time. The root package keeps a
// registry preloaded with every built-in format.
package audio
