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

// Layout describes the byte footprint a pointee occupies in its persistent
// form, as a function of its metadata.
type Layout struct {
	Size int
}

// Pointee is satisfied by *T when T can sit behind a pointer: its metadata
// (runtime-dependent sizing info, [Unit] if none) determines a [Layout],
// and a slice of validated persistent bytes can be turned into a reference
// or an owned value of T without re-validating them.
//
// T's persistent representation and its logical (in-memory) representation
// may differ in general; in this package they never do: T plays the persist
// role itself (alignment 1, no padding, same type used for both), since
// this package's pointees are all plain data. A type wrapping runtime-only
// state atop a persistent core would instead implement Pointee for its
// Persist companion and project to/from the richer logical type outside
// this protocol.
type Pointee[T any, M any] interface {
	*T

	// TryLayout computes the byte layout implied by metadata, failing if
	// metadata describes an invalid or overflowing shape (e.g. a slice
	// length whose byte size overflows a machine word).
	TryLayout(metadata M) (Layout, error)

	// AssumeValidRef returns a *T for already-validated persistent bytes.
	// Callers must have validated persist themselves; this method performs
	// no checking. [SliceOf]'s implementation decodes the elements into a
	// newly allocated slice rather than aliasing persist.
	AssumeValidRef(persist []byte) *T

	// AssumeValid copies already-validated persistent bytes out as an
	// owned T.
	AssumeValid(persist []byte) T
}

// layoutOf computes T's layout for the given metadata via the Pointee
// protocol, wrapping a failure as a [MetadataError].
func layoutOf[T any, M any, P Pointee[T, M]](metadata M) (Layout, error) {
	var z T
	l, err := P(&z).TryLayout(metadata)
	if err != nil {
		return Layout{}, &MetadataError{Type: typeName(z), Reason: err.Error()}
	}
	return l, nil
}

// ChildValidator is implemented by pointee types that themselves hold one
// or more pointers to other pointees. It is Stage B of the decode pipeline
// (see decode.go): once a node's own blob has decoded (Stage A, via
// [Validatable.Validate]), ValidateChildren walks those pointer fields,
// resolving each one against pile and failing on the first bad child.
//
// Types with no pointer fields — every primitive in primitives.go — have
// nothing to implement here; [TryGetTip] is used for those, while
// [TryGetTipChildren] additionally invokes this method for aggregates like
// [Arr3OfPtr].
type ChildValidator[T any] interface {
	*T
	ValidateChildren(pile *TryPile) error
}

func (l Layout) String() string {
	return fmt.Sprintf("Layout{Size: %d}", l.Size)
}
