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

import "go.pile.systems/pile/internal/dbg"

// Unit is the metadata type for pointees whose layout does not depend on
// any runtime information (every type in this package except [SliceOf]
// and its relatives).
type Unit = struct{}

// FatPtr is an unvalidated (raw, metadata) pair: a raw pointer value of type
// P (an [Offset] in a read-only zone, an [OffsetMut] in a mutable one)
// together with whatever metadata its pointee type needs to compute a
// layout — a length for a slice, a height for a tree, [Unit] for anything
// whose size doesn't depend on runtime data.
//
// A FatPtr carries no guarantee: the bytes it names could be anything, or
// the raw value could be out of range. It is the bottom of the pointer
// trust ladder; see [ValidPtr] and [OwnedPtr].
type FatPtr[P any, M any] struct {
	Raw      P
	Metadata M
}

// MakeFatPtr combines a raw pointer and metadata into a [FatPtr].
func MakeFatPtr[P any, M any](raw P, metadata M) FatPtr[P, M] {
	return FatPtr[P, M]{Raw: raw, Metadata: metadata}
}

// ValidPtr is a [FatPtr] that has been blob-validated: its raw offset is in
// range, and the bytes it names parse as a legal instance of its declared
// pointee type.
//
// The only ways to obtain one are [AssumeValidPtr] (an explicit, unchecked
// promise) and the decode pipeline in decode.go and pile.go (an actual
// check). Its field is unexported so that no other route exists.
type ValidPtr[P any, M any] struct {
	fat FatPtr[P, M]
}

// AssumeValidPtr promotes a [FatPtr] to a [ValidPtr] without validation.
//
// Callers must have independently established that fat.Raw is in range and
// that the bytes it names validate as the intended pointee type; violating
// this breaks the core guarantee (every reachable ValidPtr fully validates) for
// every reader downstream.
func AssumeValidPtr[P any, M any](fat FatPtr[P, M]) ValidPtr[P, M] {
	return ValidPtr[P, M]{fat: fat}
}

// Raw returns the underlying raw pointer value.
func (v ValidPtr[P, M]) Raw() P { return v.fat.Raw }

// Metadata returns the pointee metadata carried alongside the raw pointer.
func (v ValidPtr[P, M]) Metadata() M { return v.fat.Metadata }

// Fat demotes this pointer back to an unvalidated [FatPtr]. Demotion is
// always free; it is promotion that requires a check or a promise.
func (v ValidPtr[P, M]) Fat() FatPtr[P, M] { return v.fat }

// OwnedPtr is a [ValidPtr] carrying a linear ownership obligation: the node
// it addresses (if dirty) must be released by exactly one call to
// [OwnedPtr.Drop] before it is discarded. Forgetting to drop one leaks its
// node; dropping it twice is a bug that [dbg.Assert] catches with a panic.
type OwnedPtr[P any, M any] struct {
	ptr     ValidPtr[P, M]
	dropped bool
}

// AssumeOwnedPtr promotes a [ValidPtr] to an [OwnedPtr], asserting that the
// caller now holds the unique obligation to drop it — because an allocator
// just produced it, or because the caller is the recognized owner of the
// bytes it was decoded from.
func AssumeOwnedPtr[P any, M any](v ValidPtr[P, M]) OwnedPtr[P, M] {
	return OwnedPtr[P, M]{ptr: v}
}

// Valid returns the underlying validated pointer, without discharging the
// ownership obligation.
func (o *OwnedPtr[P, M]) Valid() ValidPtr[P, M] { return o.ptr }

// Drop discharges this pointer's ownership obligation by invoking dealloc
// with its validated form. It is a bug to call Drop twice on the same
// OwnedPtr; Drop panics when it catches this.
func (o *OwnedPtr[P, M]) Drop(dealloc func(ValidPtr[P, M])) {
	dbg.Assert(!o.dropped, "OwnedPtr dropped twice")
	o.dropped = true
	if dealloc != nil {
		dealloc(o.ptr)
	}
}
