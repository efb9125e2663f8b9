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

// Package arena provides the bump allocator that backs a mutable pile's
// dirty nodes.
//
// Dirty nodes hold persistent value types, whose layouts contain no Go
// pointers: references between nodes travel as tagged offset words instead.
// The arena can therefore carve nodes out of plain word chunks without
// hiding anything from the collector. A node stays valid for exactly as
// long as its arena — the mutable pile owns the arena, the arena owns every
// chunk — until Free releases them all at once. There is no per-node free;
// dirty nodes die together, either serialized onto a dumper or abandoned.
//
// New never returns an odd address. Offset words reserve bit zero as the
// dirty-pointer discriminator, so nodes are placed at even offsets even
// when their type's natural alignment is 1.
package arena

import (
	"reflect"
	"unsafe"

	"go.pile.systems/pile/internal/dbg"
)

// Chunk sizes double from minChunkWords until maxChunkWords, so n
// allocations touch O(log n) chunks before settling into steady state.
const (
	minChunkWords = 1 << 7  // 1 KiB
	maxChunkWords = 1 << 17 // 1 MiB
)

// Arena is a bump allocator. The zero value is empty and ready to use.
type Arena struct {
	cur    []uint64 // chunk currently being carved
	off    int      // bytes of cur already handed out
	chunks [][]uint64
}

// zeroSized is the shared target of every zero-sized allocation.
var zeroSized uint64

// New moves value into a and returns its node's address. The address is
// even (bit zero is free for tagging) and stays valid until [Arena.Free].
func New[T any](a *Arena, value T) *T {
	if dbg.Enabled {
		dbg.Assert(pointerFree(reflect.TypeOf(&value).Elem()),
			"arena: %T contains Go pointers, which the collector cannot see inside a chunk", value)
	}

	size := int(unsafe.Sizeof(value))
	if size == 0 {
		return (*T)(unsafe.Pointer(&zeroSized))
	}

	align := int(unsafe.Alignof(value))
	if align < 2 {
		// Every node address must leave bit zero clear for the tag.
		align = 2
	}

	p := (*T)(a.alloc(size, align))
	*p = value
	return p
}

// alloc carves size bytes at the given alignment out of the current chunk,
// starting a fresh chunk when they do not fit.
func (a *Arena) alloc(size, align int) unsafe.Pointer {
	off := (a.off + align - 1) &^ (align - 1)
	if off+size > 8*len(a.cur) {
		a.grow(size)
		off = 0
	}
	a.off = off + size
	dbg.Log(nil, "alloc", "%d:%d -> chunk %d + %d", size, align, len(a.chunks)-1, off)
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(a.cur)), off)
}

// grow appends a chunk with room for at least size bytes.
func (a *Arena) grow(size int) {
	words := min(minChunkWords<<min(len(a.chunks), 10), maxChunkWords)
	words = max(words, (size+7)/8)
	a.cur = make([]uint64, words)
	a.off = 0
	a.chunks = append(a.chunks, a.cur)
}

// Free releases every chunk. Every node the arena ever returned dangles
// once Free returns; the arena itself is reusable.
func (a *Arena) Free() {
	dbg.Log(nil, "free", "%d chunks", len(a.chunks))
	*a = Arena{}
}

// pointerFree reports whether t's layout contains no Go pointers.
// Persistent value types satisfy this by construction; it backs the debug
// assertion in [New].
func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || pointerFree(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
