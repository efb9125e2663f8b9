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

// Encodable is satisfied by *T when T knows how to serialize itself onto a
// [Dumper] in the two-phase encode_poll / encode_blob shape:
//
//   - Poll recursively drives every dirty child reachable from v to a
//     persistent offset, recording whatever it discovers so Blob can use
//     it. Leaf types with no pointer fields implement this as a no-op.
//   - Blob then returns v's own bytes, referencing the offsets Poll
//     recorded for any child pointers.
//
// Calling Blob before Poll has completed successfully is a bug: any dirty
// child pointer will still be mid-flight.
type Encodable[T any] interface {
	*T
	Poll(d *Dumper) error
	Blob() []byte
	BlobSize() int
}

// Save runs both encode phases for v — Poll, then Blob — and appends the
// result to d, returning the offset of the newly written node.
func Save[T any, E Encodable[T]](d *Dumper, v *T) (Offset, error) {
	if err := E(v).Poll(d); err != nil {
		return 0, err
	}
	blob := E(v).Blob()
	return d.SaveBlob(len(blob), func(buf []byte) { copy(buf, blob) })
}

// SaveOwned serializes the node an owning pointer addresses, then the
// pointer itself, making the pointer blob the new tip of the dumper.
//
// A dirty pointer's heap node is saved first (children before parent, as
// always), and ptr is rewritten in place to carry the node's new
// persistent offset — after this returns, the handle no longer references
// the heap and [TryPileMut.Free] may reclaim the arena. A pointer that is
// already persistent is written as-is; this is what keeps repeated wraps
// of the same subtree from duplicating it.
//
// The returned offset addresses the 8-byte pointer blob, not the node.
func SaveOwned[T any, E Encodable[T]](d *Dumper, ptr *OwnedPtr[OffsetMut, Unit]) (Offset, error) {
	disc := ptr.Valid().Raw().Classify()
	off := disc.Persistent
	if disc.Dirty {
		var err error
		off, err = Save[T, E](d, (*T)(disc.Heap))
		if err != nil {
			return 0, err
		}
		*ptr = AssumeOwnedPtr(AssumeValidPtr(MakeFatPtr[OffsetMut, Unit](FromOffset(off), Unit{})))
	}
	blob := off.Bytes()
	return d.SaveBlob(len(blob), func(buf []byte) { copy(buf, blob[:]) })
}

// MutPtr is the in-memory, write-side analogue of [OffsetPtr]: a pointer
// field inside a node under construction in a [TryPileMut]. It is either
// already persistent (an [Offset] into the base pile) or dirty (a pointer
// to a heap-resident child value); [MutPtr.Poll] is what turns the latter
// into the former by recursively saving the child.
type MutPtr[T any, Pe Encodable[T]] struct {
	raw OffsetMut
}

// NewDirtyMutPtr wraps a heap-resident child as a dirty pointer field.
//
// heap's address must be even, since bit zero of the pointer word is the
// dirty tag; nodes from [Alloc]'s arena always are, but a single-byte value
// at an arbitrary slice index may not be.
func NewDirtyMutPtr[T any, Pe Encodable[T]](heap *T) MutPtr[T, Pe] {
	return MutPtr[T, Pe]{raw: FromHeap(heap)}
}

// NewPersistentMutPtr wraps an already-persistent offset as a pointer
// field, for re-encoding a node some of whose children are untouched.
func NewPersistentMutPtr[T any, Pe Encodable[T]](off Offset) MutPtr[T, Pe] {
	return MutPtr[T, Pe]{raw: FromOffset(off)}
}

// IsDirty reports whether this field still needs Poll to run.
func (m *MutPtr[T, Pe]) IsDirty() bool { return m.raw.IsDirty() }

// Poll implements the child-recursion half of [Encodable]. A pointer that
// is already persistent is left untouched — this is what keeps re-encoding
// a graph with some already-saved subtrees from duplicating them.
func (m *MutPtr[T, Pe]) Poll(d *Dumper) error {
	disc := m.raw.Classify()
	if !disc.Dirty {
		return nil
	}
	heap := (*T)(disc.Heap)
	off, err := Save[T, Pe](d, heap)
	if err != nil {
		return err
	}
	m.raw = FromOffset(off)
	return nil
}

// BlobSize implements [Encodable]: every pointer field is one 8-byte
// offset.
func (m *MutPtr[T, Pe]) BlobSize() int { return 8 }

// Blob implements [Encodable]. It must only be called after [MutPtr.Poll]
// has succeeded, by which point raw is guaranteed persistent.
func (m *MutPtr[T, Pe]) Blob() []byte {
	b := m.raw.Offset().Bytes()
	return b[:]
}

// MutArray is the in-memory, write-side analogue of the decode-side fixed
// arrays ([Arr2], [Arr3], [Arr4]): a slice of child values encoded as their
// concatenation in order. Its length is fixed by the caller at
// construction rather than carried in the type, since the encode side of
// this package does not need the same compile-time array-length precision
// the decode side enforces.
type MutArray[T any, Pe Encodable[T]] struct {
	Elems []T
}

// Poll implements [Encodable], folding over elements in index order.
func (a *MutArray[T, Pe]) Poll(d *Dumper) error {
	for i := range a.Elems {
		if err := Pe(&a.Elems[i]).Poll(d); err != nil {
			return WithIndex(err, i)
		}
	}
	return nil
}

// BlobSize implements [Encodable].
func (a *MutArray[T, Pe]) BlobSize() int {
	size := 0
	for i := range a.Elems {
		size += Pe(&a.Elems[i]).BlobSize()
	}
	return size
}

// Blob implements [Encodable].
func (a *MutArray[T, Pe]) Blob() []byte {
	buf := make([]byte, 0, a.BlobSize())
	for i := range a.Elems {
		buf = append(buf, Pe(&a.Elems[i]).Blob()...)
	}
	return buf
}
