// SPDX-License-Identifier: EPL-2.0

// Package convert normalizes heterogeneous input sample formats to the
// engine's internal float32 mix format.
//
// Converter handles sample-encoding and rate conversion with carried
// padding history so output is continuous across arbitrarily split
// calls; ChannelConverter handles channel-count remapping only. Both
// operate on interleaved streams.
package convert
