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

// PaddingPolicy selects how a [Cursor] treats non-semantic bytes.
type PaddingPolicy int

const (
	// IgnorePadding accepts any bit pattern in padding bytes.
	IgnorePadding PaddingPolicy = iota
	// ZeroPadding requires padding bytes to be all zero.
	ZeroPadding
)

// Blob is a fixed-size byte region tagged with the logical type it is
// claimed to represent. It carries no guarantee of validity; that is the
// purpose of [ValidBlob].
type Blob[T any] struct {
	bytes []byte
}

// NewBlob wraps bytes as a [Blob] of type T, without validating them.
func NewBlob[T any](bytes []byte) Blob[T] {
	return Blob[T]{bytes: bytes}
}

// Bytes returns the raw bytes of this blob.
func (b Blob[T]) Bytes() []byte { return b.bytes }

// ValidBlob is the witness that a [Cursor] over a [Blob] consumed every byte
// of it with each field successfully validated.
//
// [ValidateBlob] is the only function that constructs one, which is why its
// Value field can be trusted by callers that receive a ValidBlob by value.
type ValidBlob[T any] struct {
	Value T
}

// Validatable is satisfied by *T when T declares a blob layout and knows how
// to validate its own bytes (not including any pointed-to children; that is
// [Pointee]'s job).
//
// This is the generic-methods-on-pointer-receiver pattern: BlobSize and
// Validate are declared with a *T receiver, and Validatable[T] constrains a
// type parameter P to be exactly *T with those methods, letting generic code
// call them without an intermediate interface allocation.
type Validatable[T any] interface {
	*T

	// BlobSize returns the fixed number of bytes this type occupies in its
	// persistent form. It must not depend on the receiver's contents.
	BlobSize() int

	// Validate consumes exactly BlobSize() bytes from c, checking this
	// value's own invariants field by field. On failure it may return at
	// the first bad field without consuming the rest; [Field] and
	// [ValidateBlob] give each call a cursor of its own, so an early return
	// never misplaces an enclosing cursor.
	Validate(c *Cursor) error
}

// blobSizeOf returns T's declared blob size without requiring a live value.
func blobSizeOf[T any, P Validatable[T]]() int {
	var z T
	return P(&z).BlobSize()
}

// Cursor is a positional walker over a [Blob]'s bytes, used by [Validatable]
// implementations to drain their fields one at a time.
type Cursor struct {
	blob    []byte
	pos     int
	padding PaddingPolicy
}

// NewCursor constructs a cursor over blob with the given padding policy.
func NewCursor(blob []byte, padding PaddingPolicy) *Cursor {
	return &Cursor{blob: blob, padding: padding}
}

// Len returns the total length of the underlying blob.
func (c *Cursor) Len() int { return len(c.blob) }

// Pos returns the cursor's current byte offset within the blob.
func (c *Cursor) Pos() int { return c.pos }

// Remaining returns the number of bytes left to consume.
func (c *Cursor) Remaining() int { return len(c.blob) - c.pos }

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, NewValueError("blob", fmt.Sprintf("expected %d bytes, only %d remain", n, c.Remaining()))
	}
	b := c.blob[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ValidateBytes exposes the next n bytes of the cursor to a custom check,
// for types whose validation isn't naturally expressed as nested [Field]
// calls (e.g. a bool's single-byte range check).
func (c *Cursor) ValidateBytes(n int, check func([]byte) error) error {
	b, err := c.take(n)
	if err != nil {
		return err
	}
	return check(b)
}

// Pad consumes n padding bytes, honoring the cursor's active padding
// policy.
//
// Types satisfying [Pointee] have alignment 1 and so never call this; it
// exists for hand-written [Validatable] blobs built outside the pointee
// protocol (see the padding policy tests).
func (c *Cursor) Pad(n int) error {
	b, err := c.take(n)
	if err != nil {
		return err
	}
	if c.padding == ZeroPadding {
		for i, by := range b {
			if by != 0 {
				return &PaddingError{Offset: c.pos - n + i}
			}
		}
	}
	return nil
}

// Field advances the cursor by T's blob size, recursively validating it and
// mapping any resulting error through mapErr (which may be nil).
func Field[T any, P Validatable[T]](c *Cursor, mapErr func(error) error) (T, error) {
	var zero T
	size := blobSizeOf[T, P]()
	sub, err := c.take(size)
	if err != nil {
		return zero, err
	}

	vb, err := ValidateBlob[T, P](sub, c.padding)
	if err != nil {
		if mapErr != nil {
			err = mapErr(err)
		}
		return vb.Value, err
	}
	return vb.Value, nil
}

// ValidateBlob validates blob as a complete, standalone byte region for T,
// requiring every byte to be consumed by T's own [Validatable.Validate].
//
// Zero-sized types trivially validate without consuming any bytes.
func ValidateBlob[T any, P Validatable[T]](blob []byte, padding PaddingPolicy) (ValidBlob[T], error) {
	want := blobSizeOf[T, P]()
	if len(blob) != want {
		var z T
		return ValidBlob[T]{}, NewValueError(typeName(z), fmt.Sprintf("blob has %d bytes, want %d", len(blob), want))
	}

	c := NewCursor(blob, padding)
	var v T
	if err := P(&v).Validate(c); err != nil {
		return ValidBlob[T]{}, err
	}
	if rem := c.Remaining(); rem > 0 {
		return ValidBlob[T]{}, NewValueError(typeName(v), fmt.Sprintf("%d trailing unvalidated bytes", rem))
	}
	return ValidBlob[T]{Value: v}, nil
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
