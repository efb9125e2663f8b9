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

// Mapping is a source of pile bytes: an in-memory buffer, a memory-mapped
// file (see the mmap package), or anything else that can present itself as
// a byte slice. The core never performs I/O of its own; everything it reads
// comes through this interface.
//
// The returned slice must remain valid and unmodified for as long as any
// pile constructed over it is in use.
type Mapping interface {
	Bytes() []byte
}

// bytesMapping adapts a plain byte slice to [Mapping].
type bytesMapping []byte

func (b bytesMapping) Bytes() []byte { return b }

// BytesMapping wraps an in-memory byte slice as a [Mapping].
func BytesMapping(b []byte) Mapping { return bytesMapping(b) }

// WithPile materializes m as a read-only pile for the duration of f. The
// pile, and every offset and pointer obtained through it, must not be
// retained past f's return; this is the scoped-borrow discipline that lets
// a file-backed mapping be unmapped safely afterwards.
func WithPile(m Mapping, f func(*TryPile) error) error {
	return f(NewTryPile(m.Bytes()))
}

// WithPileMut materializes m as a copy-on-write pile for the duration of f.
// Every dirty node allocated during f is released when it returns, whether
// or not it was saved; callers that want the result durable must run the
// encode pipeline (see [Save]) inside f.
func WithPileMut(m Mapping, f func(*TryPileMut) error) error {
	p := NewTryPileMut(m.Bytes())
	defer p.Free()
	return f(p)
}
