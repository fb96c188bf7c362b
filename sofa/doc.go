// SPDX-License-Identifier: EPL-2.0

// Package sofa validates SOFA (Spatially Oriented Format for
// Acoustics, AES69) convention schemas.
//
// A SOFA file is a netCDF container holding acoustic measurement data:
// global attributes naming the convention, dimensions describing the
// measurement grid, and variables holding positions and impulse
// responses. This package checks that a container carries everything a
// given convention requires, without touching the numeric payload.
//
// # Validating a File
//
// The validator works against the Container interface, so any netCDF
// reader (or an in-memory store) can be plugged in:
//
//	spec := sofa.SimpleFreeFieldHRIR()
//	if err := spec.Validate(container); err != nil {
//	    // err joins every violation found
//	}
//
// Validation reports all problems at once via errors.Join; individual
// violations can be matched with errors.Is against the package's
// sentinel errors:
//
//	if errors.Is(err, sofa.ErrMissingVariable) {
//	    // at least one required variable is absent
//	}
//
// # Conventions
//
// SimpleFreeFieldHRIR is built in: free-field head-related impulse
// responses with one emitter (E=1) and two receivers (R=2). Custom
// conventions can be described by constructing a Spec directly.
package sofa
