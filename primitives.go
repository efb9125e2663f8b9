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
)

// Integer is the set of native integer kinds this package knows how to lay
// out as 8-, 16-, 32-, or 64-bit little-endian blobs. 128-bit integers
// (see [Uint128], [Int128]) fall outside Go's native integer kinds and so
// get their own pair of concrete types below.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

func decodeLE[T Integer](b []byte) T {
	var raw uint64
	for i, by := range b {
		raw |= uint64(by) << (8 * i)
	}
	return T(raw)
}

func encodeLE[T Integer](v T, size int) []byte {
	buf := make([]byte, size)
	raw := uint64(v)
	for i := range buf {
		buf[i] = byte(raw >> (8 * i))
	}
	return buf
}

// Int is the persistent form of any native signed or unsigned integer kind:
// native little-endian bytes, any bit pattern valid.
type Int[T Integer] struct {
	Value T
}

// BlobSize implements [Validatable].
func (i *Int[T]) BlobSize() int {
	var z T
	return int(unsafe.Sizeof(z))
}

// Validate implements [Validatable]. Every bit pattern is legal.
func (i *Int[T]) Validate(c *Cursor) error {
	return c.ValidateBytes(i.BlobSize(), func(b []byte) error {
		i.Value = decodeLE[T](b)
		return nil
	})
}

// Bytes encodes this integer as it appears on the wire.
func (i Int[T]) Bytes() []byte {
	return encodeLE(i.Value, i.BlobSize())
}

// Poll implements [Encodable]. Integers have no children.
func (i *Int[T]) Poll(*Dumper) error { return nil }

// Blob implements [Encodable].
func (i *Int[T]) Blob() []byte { return i.Bytes() }

// Aliases for the native widths, matching the wire format table.
type (
	I8  = Int[int8]
	I16 = Int[int16]
	I32 = Int[int32]
	I64 = Int[int64]
	U8  = Int[uint8]
	U16 = Int[uint16]
	U32 = Int[uint32]
	U64 = Int[uint64]
)

// NonZero is the persistent form of a non-zero integer: native little-endian
// bytes, any pattern valid except all-zero.
type NonZero[T Integer] struct {
	Value T
}

// BlobSize implements [Validatable].
func (n *NonZero[T]) BlobSize() int {
	var z T
	return int(unsafe.Sizeof(z))
}

// Validate implements [Validatable].
func (n *NonZero[T]) Validate(c *Cursor) error {
	return c.ValidateBytes(n.BlobSize(), func(b []byte) error {
		v := decodeLE[T](b)
		if v == 0 {
			var z T
			return NewValueError(typeName(z), "non-zero integer is zero")
		}
		n.Value = v
		return nil
	})
}

// Bytes encodes this integer as it appears on the wire.
func (n NonZero[T]) Bytes() []byte {
	return encodeLE(n.Value, n.BlobSize())
}

// Poll implements [Encodable].
func (n *NonZero[T]) Poll(*Dumper) error { return nil }

// Blob implements [Encodable].
func (n *NonZero[T]) Blob() []byte { return n.Bytes() }

// Uint128 is the persistent form of an unsigned 128-bit integer: 16 native
// little-endian bytes, any pattern valid. Lo holds the low 8 bytes, Hi the
// high 8.
type Uint128 struct {
	Lo, Hi uint64
}

// BlobSize implements [Validatable].
func (*Uint128) BlobSize() int { return 16 }

// Validate implements [Validatable].
func (u *Uint128) Validate(c *Cursor) error {
	return c.ValidateBytes(16, func(b []byte) error {
		u.Lo = decodeLE[uint64](b[:8])
		u.Hi = decodeLE[uint64](b[8:])
		return nil
	})
}

// Poll implements [Encodable].
func (u *Uint128) Poll(*Dumper) error { return nil }

// Blob implements [Encodable].
func (u *Uint128) Blob() []byte { return u.Bytes() }

// Bytes encodes this integer as it appears on the wire.
func (u Uint128) Bytes() []byte {
	buf := make([]byte, 16)
	copy(buf[:8], encodeLE(u.Lo, 8))
	copy(buf[8:], encodeLE(u.Hi, 8))
	return buf
}

// Int128 is the persistent form of a signed 128-bit integer: 16 native
// little-endian bytes, any pattern valid. Hi carries the sign.
type Int128 struct {
	Lo uint64
	Hi int64
}

// BlobSize implements [Validatable].
func (*Int128) BlobSize() int { return 16 }

// Validate implements [Validatable].
func (i *Int128) Validate(c *Cursor) error {
	return c.ValidateBytes(16, func(b []byte) error {
		i.Lo = decodeLE[uint64](b[:8])
		i.Hi = decodeLE[int64](b[8:])
		return nil
	})
}

// Poll implements [Encodable].
func (i *Int128) Poll(*Dumper) error { return nil }

// Blob implements [Encodable].
func (i *Int128) Blob() []byte { return i.Bytes() }

// Bytes encodes this integer as it appears on the wire.
func (i Int128) Bytes() []byte {
	buf := make([]byte, 16)
	copy(buf[:8], encodeLE(i.Lo, 8))
	copy(buf[8:], encodeLE(i.Hi, 8))
	return buf
}

// Bool is the persistent form of a boolean: one byte, 0x00 or 0x01.
type Bool bool

// BlobSize implements [Validatable].
func (*Bool) BlobSize() int { return 1 }

// Validate implements [Validatable].
func (bo *Bool) Validate(c *Cursor) error {
	return c.ValidateBytes(1, func(b []byte) error {
		switch b[0] {
		case 0x00:
			*bo = false
		case 0x01:
			*bo = true
		default:
			return NewValueError("pile.Bool", fmt.Sprintf("byte %#x is neither 0x00 nor 0x01", b[0]))
		}
		return nil
	})
}

// Bytes encodes this boolean as it appears on the wire.
func (bo Bool) Bytes() [1]byte {
	if bo {
		return [1]byte{0x01}
	}
	return [1]byte{0x00}
}

// Poll implements [Encodable].
func (bo *Bool) Poll(*Dumper) error { return nil }

// Blob implements [Encodable].
func (bo *Bool) Blob() []byte {
	b := bo.Bytes()
	return b[:]
}

// MaxHeight is the largest legal [Height] value.
const MaxHeight = 63

// Height is the persistent form of a tree height: one byte, 0 through 63.
type Height uint8

// NewHeight constructs a Height, rejecting values above [MaxHeight].
func NewHeight(n uint8) (Height, error) {
	if n > MaxHeight {
		return 0, NewValueError("pile.Height", fmt.Sprintf("height %d exceeds %d", n, MaxHeight))
	}
	return Height(n), nil
}

// BlobSize implements [Validatable].
func (*Height) BlobSize() int { return 1 }

// Validate implements [Validatable].
func (h *Height) Validate(c *Cursor) error {
	return c.ValidateBytes(1, func(b []byte) error {
		v, err := NewHeight(b[0])
		if err != nil {
			return err
		}
		*h = v
		return nil
	})
}

// Bytes encodes this height as it appears on the wire.
func (h Height) Bytes() [1]byte { return [1]byte{uint8(h)} }

// Poll implements [Encodable].
func (h *Height) Poll(*Dumper) error { return nil }

// Blob implements [Encodable].
func (h *Height) Blob() []byte { return []byte{uint8(*h)} }

// NonZeroHeight is the persistent form of a non-zero tree height: one byte,
// 1 through 63.
type NonZeroHeight uint8

// NewNonZeroHeight constructs a NonZeroHeight, rejecting 0 and values above
// [MaxHeight].
func NewNonZeroHeight(n uint8) (NonZeroHeight, error) {
	if n == 0 {
		return 0, NewValueError("pile.NonZeroHeight", "height is zero")
	}
	if n > MaxHeight {
		return 0, NewValueError("pile.NonZeroHeight", fmt.Sprintf("height %d exceeds %d", n, MaxHeight))
	}
	return NonZeroHeight(n), nil
}

// BlobSize implements [Validatable].
func (*NonZeroHeight) BlobSize() int { return 1 }

// Validate implements [Validatable].
func (h *NonZeroHeight) Validate(c *Cursor) error {
	return c.ValidateBytes(1, func(b []byte) error {
		v, err := NewNonZeroHeight(b[0])
		if err != nil {
			return err
		}
		*h = v
		return nil
	})
}

// Bytes encodes this height as it appears on the wire.
func (h NonZeroHeight) Bytes() [1]byte { return [1]byte{uint8(h)} }

// Poll implements [Encodable].
func (h *NonZeroHeight) Poll(*Dumper) error { return nil }

// Blob implements [Encodable].
func (h *NonZeroHeight) Blob() []byte { return []byte{uint8(*h)} }
