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
	"fmt"
	"unsafe"

	"go.pile.systems/pile/internal/dbg"
)

// Offset is a little-endian 64-bit index into a pile.
//
// The top two bits are reserved and must be zero, which caps the effective
// range at [0, 2^62). Bit zero doubles as the [OffsetMut] discriminator when
// an Offset is embedded in a mutable pointer word, so on the wire an Offset
// is always stored shifted left by one (see [Offset.Bytes] and [OffsetMut]);
// the Offset value itself holds the unshifted position.
//
// The zero Offset is valid: it addresses the start of the pile, which is a
// legal location for a zero-sized value.
type Offset uint64

// offsetReservedMask covers the top two bits of a 64-bit word.
const offsetReservedMask = uint64(0b11) << 62

// MaxOffset is the largest representable Offset.
const MaxOffset = Offset(1<<62 - 1)

// NewOffset constructs an Offset, failing if either reserved high bit is set.
func NewOffset(n uint64) (Offset, error) {
	if n&offsetReservedMask != 0 {
		return 0, &OffsetError{Reason: "reserved bits set", Value: n}
	}
	return Offset(n), nil
}

// Bytes encodes this offset as it appears on the wire: the value shifted
// left by one, so that bit zero (clear) marks it as a persistent offset when
// read back as an [OffsetMut].
func (o Offset) Bytes() [8]byte {
	var buf [8]byte
	raw := uint64(o) << 1
	for i := range buf {
		buf[i] = byte(raw >> (8 * i))
	}
	return buf
}

// DecodeOffset decodes an Offset from its 8-byte little-endian wire
// representation, as produced by [Offset.Bytes].
func DecodeOffset(buf [8]byte) (Offset, error) {
	var raw uint64
	for i := range buf {
		raw |= uint64(buf[i]) << (8 * i)
	}
	if raw&1 != 0 {
		return 0, &OffsetError{Reason: "dirty discriminator bit set in persisted offset", Value: raw}
	}
	return NewOffset(raw >> 1)
}

// String implements fmt.Stringer.
func (o Offset) String() string {
	return fmt.Sprintf("0x%x", uint64(o))
}

// OffsetMut is either a persistent [Offset] or a non-null pointer to a
// dirty, not-yet-serialized heap node.
//
// The representation is a single machine word. Bit zero is the
// discriminator: clear means the remaining bits (shifted right by one) are a
// real Offset; set means the remaining bits, with that bit cleared, are a
// heap pointer. An OffsetMut with bit zero set never points into the pile's
// byte slice, and one with bit zero clear never points into heap memory.
type OffsetMut uintptr

const offsetMutDirtyBit = uintptr(1)

// FromOffset constructs an OffsetMut wrapping a persistent offset.
func FromOffset(o Offset) OffsetMut {
	return OffsetMut(uintptr(o) << 1)
}

// FromHeap constructs a dirty OffsetMut wrapping a non-nil heap pointer.
//
// p must be at least 2-byte aligned, since bit zero is reserved for the
// discriminator. Nodes from a mutable pile's arena always are, the arena
// places every node at even addresses regardless of its type's natural
// alignment; a single-byte value at an arbitrary address may not be, which
// the assertion here catches with a panic.
func FromHeap[T any](p *T) OffsetMut {
	addr := uintptr(unsafe.Pointer(p))
	dbg.Assert(addr&offsetMutDirtyBit == 0, "heap pointer %p is not aligned for OffsetMut", p)
	return OffsetMut(addr | offsetMutDirtyBit)
}

// IsDirty reports whether this OffsetMut currently points at a heap node.
func (o OffsetMut) IsDirty() bool {
	return uintptr(o)&offsetMutDirtyBit != 0
}

// Offset returns the persistent offset this value wraps.
//
// It panics if the value is dirty; callers should check [OffsetMut.IsDirty]
// first, or use [OffsetMut.Classify].
func (o OffsetMut) Offset() Offset {
	dbg.Assert(!o.IsDirty(), "OffsetMut.Offset called on a dirty pointer")
	return Offset(uintptr(o) >> 1)
}

// Heap returns the heap pointer this value wraps, reinterpreted as *T.
//
// It panics if the value is not dirty.
func (o OffsetMut) Heap() unsafe.Pointer {
	dbg.Assert(o.IsDirty(), "OffsetMut.Heap called on a persistent offset")
	return unsafe.Pointer(uintptr(o) &^ offsetMutDirtyBit)
}

// Discriminant is the tagged-union view of an [OffsetMut]: exactly one of
// Persistent or Heap is meaningful, selected by [OffsetMut.IsDirty].
type Discriminant struct {
	Dirty      bool
	Persistent Offset
	Heap       unsafe.Pointer
}

// Classify decomposes this value into its tagged-union form.
func (o OffsetMut) Classify() Discriminant {
	if o.IsDirty() {
		return Discriminant{Dirty: true, Heap: o.Heap()}
	}
	return Discriminant{Persistent: o.Offset()}
}
