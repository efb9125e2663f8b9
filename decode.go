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

// This file is the two-stage decode pipeline for pointee types that
// contain pointer fields of their own. Stage A is ordinary blob validation
// ([Validatable.Validate], via [TryGetTip]/[TryGet] in pile.go): it decodes
// a node's own bytes, including any embedded offsets, but does not chase
// those offsets. Stage B ([ChildValidator.ValidateChildren]) does the
// chasing, walking the node's pointer fields left to right and failing at
// the first child whose bytes don't validate.
//
// A [ValidPtr] returned from this file's functions has always cleared both
// stages — callers never observe a partially-validated graph. [TryGetTip]
// and [TryGet] run Stage A only.

// TryGetTipChildren validates the pile's tip as a T that has pointer
// fields, running Stage A then Stage B, and returns a [ValidPtr] to it.
func TryGetTipChildren[T any, Pt interface {
	Validatable[T]
	ChildValidator[T]
}](p *TryPile) (ValidPtr[Offset, Unit], error) {
	size := blobSizeOf[T, Pt]()
	off := tipOffset(len(p.bytes), size)
	return tryGetChildrenAt[T, Pt](p, off, size)
}

// TryGetChildren re-validates the bytes a [ValidPtr] addresses (Stage A),
// then validates its pointer fields (Stage B), and returns the decoded
// value.
func TryGetChildren[T any, Pt interface {
	Validatable[T]
	ChildValidator[T]
}](p *TryPile, ptr ValidPtr[Offset, Unit]) (T, error) {
	var zero T
	size := blobSizeOf[T, Pt]()
	bytes, err := p.getBlobBytes(ptr.Raw(), size)
	if err != nil {
		return zero, &SourceError{Zone: "pile", At: ptr.Raw(), Err: err}
	}
	vb, err := ValidateBlob[T, Pt](bytes, IgnorePadding)
	if err != nil {
		return vb.Value, &SourceError{Zone: "pile", At: ptr.Raw(), Err: err}
	}
	if err := Pt(&vb.Value).ValidateChildren(p); err != nil {
		return vb.Value, &SourceError{Zone: "pile", At: ptr.Raw(), Err: err}
	}
	return vb.Value, nil
}

func tryGetChildrenAt[T any, Pt interface {
	Validatable[T]
	ChildValidator[T]
}](p *TryPile, off Offset, size int) (ValidPtr[Offset, Unit], error) {
	bytes, err := p.getBlobBytes(off, size)
	if err != nil {
		return ValidPtr[Offset, Unit]{}, &SourceError{Zone: "pile", At: off, Err: err}
	}
	vb, err := ValidateBlob[T, Pt](bytes, IgnorePadding)
	if err != nil {
		return ValidPtr[Offset, Unit]{}, &SourceError{Zone: "pile", At: off, Err: err}
	}
	if err := Pt(&vb.Value).ValidateChildren(p); err != nil {
		return ValidPtr[Offset, Unit]{}, &SourceError{Zone: "pile", At: off, Err: err}
	}
	return AssumeValidPtr(MakeFatPtr[Offset, Unit](off, Unit{})), nil
}
