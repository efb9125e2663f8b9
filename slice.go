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

// SliceLen is the metadata a pointer to a variable-length slice carries
// alongside its offset: the element count. Unlike [Arr2]/[Arr3]/[Arr4],
// whose length is fixed at compile time and so needs no metadata ([Unit]
// suffices), a slice's layout depends on a runtime value, which is exactly
// the case [Pointee.TryLayout] exists to cover.
type SliceLen uint64

// SliceOf is the persistent form of a variable-length sequence of E, each
// element serialized back to back with no padding. It is the one pointee in
// this package whose layout depends on metadata, and so is the one type
// that actually implements [Pointee] rather than just [Validatable]; every
// fixed-shape type's metadata is [Unit], which makes its layout a
// compile-time constant and the Pointee machinery unnecessary.
type SliceOf[E any, P Validatable[E]] []E

// TryLayout implements [Pointee]. It fails if the element count overflows
// the byte size arithmetic at E's element size.
func (s *SliceOf[E, P]) TryLayout(n SliceLen) (Layout, error) {
	elemSize := uint64(blobSizeOf[E, P]())
	size := elemSize * uint64(n)
	if elemSize != 0 && size/elemSize != uint64(n) {
		return Layout{}, fmt.Errorf("slice of %d elements at %d bytes each overflows", n, elemSize)
	}
	if size > uint64(MaxOffset) {
		return Layout{}, fmt.Errorf("slice byte size %d exceeds the addressable range", size)
	}
	return Layout{Size: int(size)}, nil
}

// AssumeValidRef reinterprets already-validated persistent bytes as a
// *SliceOf[E, P], decoding each element by value. This is "zero-copy" in
// the sense this package uses throughout: it walks the blob once, field by
// field, exactly as [ValidateBlob] does for a fixed-size type, rather than
// chasing further pointers or allocating per element; it performs no
// re-validation of persist's contents.
func (s *SliceOf[E, P]) AssumeValidRef(persist []byte) *SliceOf[E, P] {
	out := decodeSliceElems[E, P](persist)
	return &out
}

// AssumeValid is [SliceOf.AssumeValidRef], returning by value.
func (s *SliceOf[E, P]) AssumeValid(persist []byte) SliceOf[E, P] {
	return decodeSliceElems[E, P](persist)
}

func decodeSliceElems[E any, P Validatable[E]](persist []byte) SliceOf[E, P] {
	elemSize := blobSizeOf[E, P]()
	n := 0
	if elemSize > 0 {
		n = len(persist) / elemSize
	}
	out := make(SliceOf[E, P], n)
	c := NewCursor(persist, IgnorePadding)
	for i := range out {
		// persist is already validated, so the only possible
		// error here would indicate a caller bug upstream; Field cannot
		// fail against bytes it has already accepted.
		v, _ := Field[E, P](c, nil)
		out[i] = v
	}
	return out
}

// SlicePtr is the blob-level, not-yet-chased form of a pointer to a
// [SliceOf]: a [FatPtr] flattened into its wire shape, an 8-byte offset
// followed by an 8-byte element count (see the wire format table's FatPtr
// entry: "offset bytes followed by metadata bytes"). Stage A
// ([SlicePtr.Validate]) only checks that those 16 bytes decode; Stage B
// ([ValidateSlicePtrChildren]) chases the offset and validates the n
// elements found there.
type SlicePtr[E any, P Validatable[E]] struct {
	Raw Offset
	Len SliceLen
}

// BlobSize implements [Validatable].
func (*SlicePtr[E, P]) BlobSize() int { return 16 }

// Validate implements [Validatable].
func (p *SlicePtr[E, P]) Validate(c *Cursor) error {
	return c.ValidateBytes(16, func(b []byte) error {
		var offBuf [8]byte
		copy(offBuf[:], b[:8])
		off, err := DecodeOffset(offBuf)
		if err != nil {
			return err
		}
		p.Raw = off
		p.Len = SliceLen(decodeLE[uint64](b[8:]))
		return nil
	})
}

// AssumeValid promotes this pointer to a [ValidPtr] without checking that
// its target validates. Callers must have already done so, typically via
// [ValidateSlicePtrChildren].
func (p SlicePtr[E, P]) AssumeValid() ValidPtr[Offset, SliceLen] {
	return AssumeValidPtr(MakeFatPtr[Offset, SliceLen](p.Raw, p.Len))
}

// ValidateSlicePtrChildren is Stage B for an aggregate holding one or more
// [SlicePtr] fields: for each one, it computes the slice's layout from its
// metadata, range-checks and walks that many elements against pile, and
// fails at the first bad slice with an index-tagged error.
func ValidateSlicePtrChildren[E any, P Validatable[E]](ptrs []SlicePtr[E, P], pile *TryPile) error {
	for i, p := range ptrs {
		if err := validateSliceAt[E, P](pile, p.Raw, p.Len); err != nil {
			return WithIndex(err, i)
		}
	}
	return nil
}

func validateSliceAt[E any, P Validatable[E]](pile *TryPile, off Offset, n SliceLen) error {
	var z SliceOf[E, P]
	layout, err := (&z).TryLayout(n)
	if err != nil {
		var e E
		return &MetadataError{Type: fmt.Sprintf("[]%T", e), Reason: err.Error()}
	}

	bytes, err := pile.getBlobBytes(off, layout.Size)
	if err != nil {
		return &SourceError{Zone: "pile", At: off, Err: err}
	}

	c := NewCursor(bytes, IgnorePadding)
	for j := 0; j < int(n); j++ {
		if _, err := Field[E, P](c, func(e error) error { return WithIndex(e, j) }); err != nil {
			return &SourceError{Zone: "pile", At: off, Err: err}
		}
	}
	return nil
}

// TryGetTipSlice validates the pile's tip as a slice of n elements of E and
// returns a [ValidPtr] to it, carrying n as metadata.
func TryGetTipSlice[E any, P Validatable[E]](pi *TryPile, n SliceLen) (ValidPtr[Offset, SliceLen], error) {
	var z SliceOf[E, P]
	layout, err := (&z).TryLayout(n)
	if err != nil {
		var e E
		return ValidPtr[Offset, SliceLen]{}, &MetadataError{Type: fmt.Sprintf("[]%T", e), Reason: err.Error()}
	}
	off := tipOffset(pi.Len(), layout.Size)
	if err := validateSliceAt[E, P](pi, off, n); err != nil {
		return ValidPtr[Offset, SliceLen]{}, err
	}
	return AssumeValidPtr(MakeFatPtr[Offset, SliceLen](off, n)), nil
}

// TryGetSlice decodes the slice a [ValidPtr] addresses, assuming it has already
// been validated, as every ValidPtr handed out by this package has.
func TryGetSlice[E any, P Validatable[E]](pi *TryPile, ptr ValidPtr[Offset, SliceLen]) (SliceOf[E, P], error) {
	var z SliceOf[E, P]
	layout, err := (&z).TryLayout(ptr.Metadata())
	if err != nil {
		var e E
		return nil, &MetadataError{Type: fmt.Sprintf("[]%T", e), Reason: err.Error()}
	}
	bytes, err := pi.getBlobBytes(ptr.Raw(), layout.Size)
	if err != nil {
		return nil, &SourceError{Zone: "pile", At: ptr.Raw(), Err: err}
	}
	return (&z).AssumeValid(bytes), nil
}
