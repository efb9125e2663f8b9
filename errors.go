// Copyright 2025 The Pile Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pile

import "fmt"

// OffsetError reports that a pointer's target offset is malformed or falls
// outside of the pile's bounds.
type OffsetError struct {
	Reason string
	Value  uint64
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("pile: invalid offset %#x: %s", e.Value, e.Reason)
}

// MetadataError reports that a pointer's metadata does not yield a legal
// layout for its pointee type (e.g. an overflowing slice length).
type MetadataError struct {
	Type   string
	Reason string
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("pile: invalid metadata for %s: %s", e.Type, e.Reason)
}

// ValueError reports that a blob's bytes decoded but violated the pointee
// type's own invariants (e.g. a bool byte outside {0, 1}).
type ValueError struct {
	Type   string
	Reason string
	// Index, if non-negative, is the index of the offending element within
	// an aggregate (array index, field index).
	Index int
}

func (e *ValueError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("pile: invalid value at index %d of %s: %s", e.Index, e.Type, e.Reason)
	}
	return fmt.Sprintf("pile: invalid value of %s: %s", e.Type, e.Reason)
}

// NewValueError constructs a [ValueError] for a non-aggregate value.
func NewValueError(typ, reason string) *ValueError {
	return &ValueError{Type: typ, Reason: reason, Index: -1}
}

// PaddingError reports that a padding byte violated the cursor's active
// padding policy.
//
// Types satisfying [Pointee] always have a layout with no padding, so this
// error can never occur while validating a persistent pointee; it can only
// arise from a hand-written [Validatable] blob with genuine padding
// bytes and the [ZeroPadding] policy.
type PaddingError struct {
	Offset int
}

func (e *PaddingError) Error() string {
	return fmt.Sprintf("pile: non-zero padding byte at blob offset %d", e.Offset)
}

// SourceError annotates an underlying validation error with the zone,
// pointer, and field path that were being processed when it occurred.
//
// This is the error type actually surfaced by the decode pipeline: readers
// see a single structured error describing the first offending pointer and
// the leaf-level reason, never a partial materialization.
type SourceError struct {
	Zone string
	At   Offset
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("pile: %s@%s: %v", e.Zone, e.At, e.Err)
	}
	return fmt.Sprintf("pile: %s@%s: %s: %v", e.Zone, e.At, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// WithField wraps an error with an additional field-path segment, building
// up a dotted path as validation unwinds back up the call stack.
func WithField(err error, field string) error {
	if err == nil {
		return nil
	}
	var se *SourceError
	if ok := asSourceError(err, &se); ok {
		if se.Path == "" {
			se.Path = field
		} else {
			se.Path = field + "." + se.Path
		}
		return se
	}
	return &SourceError{Path: field, Err: err}
}

// WithIndex wraps an error with an aggregate index, as the array and slice
// validators do when walking elements left-to-right.
func WithIndex(err error, index int) error {
	return WithField(err, fmt.Sprintf("[%d]", index))
}

func asSourceError(err error, out **SourceError) bool {
	se, ok := err.(*SourceError)
	if ok {
		*out = se
	}
	return ok
}
