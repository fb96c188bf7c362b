// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	// ErrInvalidHandle reports an unknown or stale source, buffer,
	// filter, or effect-slot handle.
	ErrInvalidHandle = errors.New("invalid handle")
	// ErrInvalidValue reports an out-of-range or wrong-arity parameter.
	ErrInvalidValue = errors.New("invalid value")
	// ErrInvalidOperation reports a structurally disallowed operation,
	// such as queueing onto a static source.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrNoMemory reports pool exhaustion or growth failure.
	ErrNoMemory = errors.New("out of memory")
)
