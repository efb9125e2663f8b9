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

// Package pile implements zero-copy persistence of typed data graphs into
// append-only byte regions called piles.
//
// A pile is a contiguous byte sequence addressed by little-endian 64-bit
// [Offset]s from its start. A value graph rooted at a "tip" near the end of
// the pile is reachable through validated offset pointers; readers validate
// each value's bytes where they lie in the pile, against the type's blob
// schema, and decode it from there without first copying the pile into a
// separate buffer. A read returns the decoded value as a Go value (a copy
// of its fields), not a reference into the pile's bytes.
//
// # Reading
//
// Construct a [TryPile] over a byte slice (or a [Mapping] that yields one)
// and call [TryGetTip] with the type at the tip. This runs the tip's blob
// validation ([Validatable]) and returns a [ValidPtr] to the tip, or the
// first validation error encountered; it does not chase pointers stored in
// the tip. For a tip with pointer fields, [TryGetTipChildren] also validates
// every child those pointers reach ([ChildValidator]).
//
// # Writing
//
// Construct a [TryPileMut] to get a copy-on-write view of an existing pile
// (or pass nil bytes to start a pile from scratch). [Alloc] allocates new,
// heap-resident values; [TryGetMut] promotes a
// persistent node to a heap-resident copy the first time it is mutated.
// [Save] serializes the resulting graph, in dependency order, onto a
// [Dumper], returning the offset of the new tip.
//
// # Scope
//
// This package is the persistence engine: blob validation, the pointer
// tiers, the zone abstraction, and the encode/decode pipelines. It does not
// implement a concrete file-backed [Mapping] (see the sibling mmap package),
// nor higher-level collection types that merely use the engine.
package pile
