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

// Go has no const generics, so a fixed-length array type whose length N is
// itself a compile-time parameter (as `[T; N]` is in the source system)
// can't be expressed as one generic type over both T and N. Instead each
// needed length gets its own named array type — Arr2, Arr3, Arr4 below —
// whose underlying type is a genuine Go array, concatenating N validated
// T's with no padding, exactly as the wire format requires. They nest
// freely (an Arr3 of Arr2 is itself Validatable), which is how the nested
// array tests build a three-by-two byte matrix.
//
// P witnesses that *T implements [Validatable], the same witness-type-
// parameter pattern used by [Field] and [ValidateBlob].

// Arr2 is the persistent form of a 2-element fixed array of T.
type Arr2[T any, P Validatable[T]] [2]T

// BlobSize implements [Validatable].
func (a *Arr2[T, P]) BlobSize() int { return 2 * blobSizeOf[T, P]() }

// Validate implements [Validatable], walking elements left to right and
// tagging any failure with its index.
func (a *Arr2[T, P]) Validate(c *Cursor) error {
	for i := range a {
		v, err := Field[T, P](c, func(e error) error { return WithIndex(e, i) })
		if err != nil {
			return err
		}
		a[i] = v
	}
	return nil
}

// Arr3 is the persistent form of a 3-element fixed array of T.
type Arr3[T any, P Validatable[T]] [3]T

// BlobSize implements [Validatable].
func (a *Arr3[T, P]) BlobSize() int { return 3 * blobSizeOf[T, P]() }

// Validate implements [Validatable].
func (a *Arr3[T, P]) Validate(c *Cursor) error {
	for i := range a {
		v, err := Field[T, P](c, func(e error) error { return WithIndex(e, i) })
		if err != nil {
			return err
		}
		a[i] = v
	}
	return nil
}

// Arr4 is the persistent form of a 4-element fixed array of T.
type Arr4[T any, P Validatable[T]] [4]T

// BlobSize implements [Validatable].
func (a *Arr4[T, P]) BlobSize() int { return 4 * blobSizeOf[T, P]() }

// Validate implements [Validatable].
func (a *Arr4[T, P]) Validate(c *Cursor) error {
	for i := range a {
		v, err := Field[T, P](c, func(e error) error { return WithIndex(e, i) })
		if err != nil {
			return err
		}
		a[i] = v
	}
	return nil
}

// OffsetPtr is the blob-level, not-yet-chased form of a pointer to T: an
// 8-byte [Offset] field. Its own (Stage A) validation only checks that
// those 8 bytes decode to a legal Offset — reserved bits clear, dirty-bit
// clear. It says nothing about whether the bytes at that offset are
// actually a legal T; that is Stage B, performed separately by
// [ValidatePtrChildren] once the whole containing blob has decoded.
//
// This is the building block scenario 6 in the test suite exercises: an
// array of OffsetPtr[U8] is the persistent shape of "an array of pointers
// to bytes."
type OffsetPtr[T any] struct {
	Raw Offset
}

// BlobSize implements [Validatable].
func (*OffsetPtr[T]) BlobSize() int { return 8 }

// Validate implements [Validatable].
func (p *OffsetPtr[T]) Validate(c *Cursor) error {
	return c.ValidateBytes(8, func(b []byte) error {
		var buf [8]byte
		copy(buf[:], b)
		off, err := DecodeOffset(buf)
		if err != nil {
			return err
		}
		p.Raw = off
		return nil
	})
}

// AssumeValid promotes this pointer to a [ValidPtr] without checking that
// its target validates. Callers must have already done so, typically via
// [ValidatePtrChildren].
func (p OffsetPtr[T]) AssumeValid() ValidPtr[Offset, Unit] {
	return AssumeValidPtr(MakeFatPtr[Offset, Unit](p.Raw, Unit{}))
}

// ValidatePtrChildren is Stage B for an aggregate whose elements are
// [OffsetPtr]s: it chases every pointer in ptrs against pile, validating
// the bytes found there as T, and fails at the first bad element with an
// index-tagged error. It does not mutate ptrs; once it returns nil, each
// element's [OffsetPtr.AssumeValid] is sound to call.
func ValidatePtrChildren[T any, Pt Validatable[T]](ptrs []OffsetPtr[T], pile *TryPile) error {
	size := blobSizeOf[T, Pt]()
	for i, p := range ptrs {
		bytes, err := pile.getBlobBytes(p.Raw, size)
		if err != nil {
			return WithIndex(&SourceError{Zone: "pile", At: p.Raw, Err: err}, i)
		}
		if _, err := ValidateBlob[T, Pt](bytes, IgnorePadding); err != nil {
			return WithIndex(&SourceError{Zone: "pile", At: p.Raw, Err: err}, i)
		}
	}
	return nil
}

// ValidatePtrChildrenDeep is [ValidatePtrChildren] for a pointee that is
// itself pointer-bearing: after each element's blob validates, its own
// ValidateChildren runs too. This is what lets a pointer-to-a-matrix (one
// level further down than a plain pointer-to-bytes) validate in a single
// pass.
func ValidatePtrChildrenDeep[T any, Pt interface {
	Validatable[T]
	ChildValidator[T]
}](ptrs []OffsetPtr[T], pile *TryPile) error {
	size := blobSizeOf[T, Pt]()
	for i, p := range ptrs {
		bytes, err := pile.getBlobBytes(p.Raw, size)
		if err != nil {
			return WithIndex(&SourceError{Zone: "pile", At: p.Raw, Err: err}, i)
		}
		vb, err := ValidateBlob[T, Pt](bytes, IgnorePadding)
		if err != nil {
			return WithIndex(&SourceError{Zone: "pile", At: p.Raw, Err: err}, i)
		}
		if err := Pt(&vb.Value).ValidateChildren(pile); err != nil {
			return WithIndex(&SourceError{Zone: "pile", At: p.Raw, Err: err}, i)
		}
	}
	return nil
}

// Arr2OfPtr is the persistent form of a 2-element fixed array of pointers
// to T: two 8-byte offsets (Stage A via [OffsetPtr.Validate]), each chased
// against the owning pile once the containing blob has decoded (Stage B,
// via ValidateChildren).
type Arr2OfPtr[T any, Pt Validatable[T]] [2]OffsetPtr[T]

// BlobSize implements [Validatable].
func (a *Arr2OfPtr[T, Pt]) BlobSize() int { return 2 * 8 }

// Validate implements [Validatable].
func (a *Arr2OfPtr[T, Pt]) Validate(c *Cursor) error {
	for i := range a {
		v, err := Field[OffsetPtr[T], *OffsetPtr[T]](c, func(e error) error { return WithIndex(e, i) })
		if err != nil {
			return err
		}
		a[i] = v
	}
	return nil
}

// ValidateChildren implements [ChildValidator].
func (a *Arr2OfPtr[T, Pt]) ValidateChildren(pile *TryPile) error {
	return ValidatePtrChildren[T, Pt](a[:], pile)
}

// Arr3OfPtr is the persistent form of a 3-element fixed array of pointers
// to T. See [Arr2OfPtr].
type Arr3OfPtr[T any, Pt Validatable[T]] [3]OffsetPtr[T]

// BlobSize implements [Validatable].
func (a *Arr3OfPtr[T, Pt]) BlobSize() int { return 3 * 8 }

// Validate implements [Validatable].
func (a *Arr3OfPtr[T, Pt]) Validate(c *Cursor) error {
	for i := range a {
		v, err := Field[OffsetPtr[T], *OffsetPtr[T]](c, func(e error) error { return WithIndex(e, i) })
		if err != nil {
			return err
		}
		a[i] = v
	}
	return nil
}

// ValidateChildren implements [ChildValidator].
func (a *Arr3OfPtr[T, Pt]) ValidateChildren(pile *TryPile) error {
	return ValidatePtrChildren[T, Pt](a[:], pile)
}
