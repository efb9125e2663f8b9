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

import (
	"go.pile.systems/pile/internal/arena"
	"go.pile.systems/pile/internal/dbg"
)

// TryPileMut is a copy-on-write zone layered over a persistent [TryPile]
// base. Pointers into it are [OffsetMut]: either a persistent offset
// resolved against the base, or a dirty pointer into this TryPileMut's own
// heap arena. Nothing is ever written back to base; [Save] appends the
// dirty graph to a [Dumper] that extends it.
//
// The dirty-node arena is a bump allocator (internal/arena): no per-object
// free, just bulk release via [TryPileMut.Free] once every dirty node is
// either persisted or abandoned together.
type TryPileMut struct {
	base  *TryPile
	arena arena.Arena
}

// NewTryPileMut constructs a mutable view over an existing pile's bytes.
// Pass nil to start a pile from scratch.
func NewTryPileMut(base []byte) *TryPileMut {
	return &TryPileMut{base: NewTryPile(base)}
}

func (p *TryPileMut) zone() {}

// Base returns the persistent pile this view is layered over.
func (p *TryPileMut) Base() *TryPile { return p.base }

// Free releases every dirty node allocated in this view's arena. Any
// OwnedPtr still pointing into it becomes dangling; callers must have
// already dropped or saved everything they care about.
func (p *TryPileMut) Free() { p.arena.Free() }

// Alloc moves value onto this view's heap arena and returns an owning,
// already-dirty pointer to it.
func Alloc[T any](p *TryPileMut, value T) OwnedPtr[OffsetMut, Unit] {
	heapPtr := arena.New(&p.arena, value)
	fat := MakeFatPtr[OffsetMut, Unit](FromHeap(heapPtr), Unit{})
	return AssumeOwnedPtr(AssumeValidPtr(fat))
}

// DeallocOwn discharges a dirty [OwnedPtr]'s obligation. Persistent
// pointers require no action; dirty nodes are reclaimed in bulk by
// [TryPileMut.Free] rather than individually, since the backing bump
// arena has no per-object free.
func (p *TryPileMut) DeallocOwn(ValidPtr[OffsetMut, Unit]) {}

// ClonePtr duplicates a persistent (non-dirty) pointer, producing a second
// owning handle to the same bytes. It is undefined to call this on a dirty
// pointer, since a dirty node has exactly one owning path by construction;
// the assertion here catches the misuse with a panic.
func ClonePtr(p *TryPileMut, vp ValidPtr[OffsetMut, Unit]) OwnedPtr[OffsetMut, Unit] {
	dbg.Assert(!vp.Raw().IsDirty(), "ClonePtr: cannot duplicate a dirty pointer")
	return AssumeOwnedPtr(vp)
}

// TryGetDirty resolves a mutable pointer without copying or promoting
// anything. A dirty pointer yields its live heap node; a persistent one
// yields the fat pointer to load through the blob path instead, with
// metadata carried over unchanged.
func TryGetDirty[T any](p *TryPileMut, vp ValidPtr[OffsetMut, Unit]) (heap *T, persist FatPtr[Offset, Unit], dirty bool) {
	disc := vp.Raw().Classify()
	if disc.Dirty {
		return (*T)(disc.Heap), FatPtr[Offset, Unit]{}, true
	}
	return nil, MakeFatPtr[Offset, Unit](disc.Persistent, vp.Metadata()), false
}

// TryTakeDirty is [TryGetDirty] for an owning pointer: it consumes ptr,
// discharging its obligation. A dirty node comes back as a live *T the
// caller now solely holds; a persistent pointer comes back as the fat
// pointer against the base pile.
func TryTakeDirty[T any](p *TryPileMut, ptr *OwnedPtr[OffsetMut, Unit]) (heap *T, persist FatPtr[Offset, Unit], dirty bool) {
	vp := ptr.Valid()
	ptr.Drop(p.DeallocOwn)
	return TryGetDirty[T](p, vp)
}

// TryGetMut resolves a mutable pointer to a *T, promoting it to a heap-
// dirty node the first time it is mutated.
//
// If vp already discriminates as dirty, its existing heap node is returned
// directly. Otherwise the persistent form is loaded and validated against
// the base pile, copied onto this view's arena, and vp is overwritten in
// place to point at the new heap node — its old persistent offset is gone
// for this handle once this call returns, which is the copy-on-write step.
// Metadata is carried over unchanged.
func TryGetMut[T any, Pt Validatable[T]](p *TryPileMut, vp *ValidPtr[OffsetMut, Unit]) (*T, error) {
	disc := vp.Raw().Classify()
	if disc.Dirty {
		return (*T)(disc.Heap), nil
	}

	persistent := AssumeValidPtr(MakeFatPtr[Offset, Unit](disc.Persistent, Unit{}))
	v, err := TryGetValue[T, Pt](p.base, persistent)
	if err != nil {
		return nil, err
	}

	heapPtr := arena.New(&p.arena, v)
	*vp = AssumeValidPtr(MakeFatPtr[OffsetMut, Unit](FromHeap(heapPtr), vp.Metadata()))
	dbg.Assert(vp.Raw().IsDirty(), "TryGetMut: pointer is not dirty immediately after promotion")
	return heapPtr, nil
}
