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

// Zone is the environment a pointer lives in. [TryPile] is the read-only
// zone (Ptr = [Offset], nothing is ever dirty); [TryPileMut] is the
// copy-on-write zone (Ptr = [OffsetMut], backed by a heap arena of dirty
// nodes); [Never] is the uninhabited zone used to forbid allocation in code
// written generically over zones.
//
// Zone itself carries no methods beyond the sealing marker: the pointer-
// tier operations it conceptually exposes (try_get_dirty, clone_ptr, alloc,
// and friends) are type-parametrized over the pointee type T, and Go does
// not allow a method to introduce type parameters beyond its receiver's —
// so they are free functions taking the concrete zone as their first
// argument (see pile.go and pilemut.go) rather than methods on this
// interface. Zone exists so call sites can still name "a zone" in type
// signatures and doc comments.
type Zone interface {
	zone()
}

// Never is the uninhabited zone. Nothing in this package constructs a
// value of it; it exists purely so that generic code parametrized over a
// Zone can be instantiated with Never to statically forbid allocation —
// any attempt to call [Never.Alloc] panics, since reaching that call would
// have required producing a value of a type with no legitimate inhabitants.
type Never struct{}

func (Never) zone() {}

// Alloc always panics. See the [Never] docs.
func (Never) Alloc(any) {
	panic("pile: Never zone cannot allocate")
}
