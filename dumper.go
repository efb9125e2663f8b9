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

// Dumper is the append-only sink the encode pipeline writes to: a pile
// extension in progress. Offsets it hands out grow monotonically, since
// every save appends past everything written so far — children are always
// placed at a strictly smaller offset than any parent that references
// them.
type Dumper struct {
	base *TryPile
	buf  []byte
}

// NewDumper constructs a Dumper that extends base. Saves never touch
// base's existing bytes; they only ever append to buf.
func NewDumper(base *TryPile) *Dumper {
	return &Dumper{base: base}
}

// Len returns the total length the finished pile will have: base's length
// plus everything saved to this dumper so far.
func (d *Dumper) Len() int {
	n := len(d.buf)
	if d.base != nil {
		n += d.base.Len()
	}
	return n
}

// Bytes returns the bytes appended to the base pile so far.
func (d *Dumper) Bytes() []byte { return d.buf }

// Base returns the pile this dumper extends, or nil if it is building a
// pile from scratch.
func (d *Dumper) Base() *TryPile { return d.base }

// SaveBlob reserves size bytes at the dumper's current end, lets write fill
// them, and returns the offset at which they were placed.
func (d *Dumper) SaveBlob(size int, write func(buf []byte)) (Offset, error) {
	off, err := NewOffset(uint64(d.Len()))
	if err != nil {
		return 0, err
	}
	start := len(d.buf)
	d.buf = append(d.buf, make([]byte, size)...)
	write(d.buf[start : start+size])
	return off, nil
}
