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

// TryPile is a read-only zone over a byte slice. Every operation is
// untrusted: bytes are range-checked and validated fresh on each call,
// which is what the "Try" prefix signals (mirroring [TryPileMut]).
//
// A TryPile never allocates and nothing reachable through it is ever dirty;
// its Ptr type is [Offset].
type TryPile struct {
	bytes []byte
}

// NewTryPile wraps bytes as a read-only pile. It does not copy them; the
// caller must not mutate bytes for as long as the TryPile (or anything
// materialized through it) is in use.
func NewTryPile(bytes []byte) *TryPile {
	return &TryPile{bytes: bytes}
}

func (p *TryPile) zone() {}

// Len returns the number of bytes in the pile.
func (p *TryPile) Len() int { return len(p.bytes) }

// Bytes returns the pile's underlying byte slice.
func (p *TryPile) Bytes() []byte { return p.bytes }

// getBlobBytes range-checks [offset, offset+size) against the pile and
// returns that sub-slice, or an [OffsetError] if it runs past the end.
func (p *TryPile) getBlobBytes(offset Offset, size int) ([]byte, error) {
	start := uint64(offset)
	end := start + uint64(size)
	if end < start || end > uint64(len(p.bytes)) {
		return nil, &OffsetError{Reason: "blob extends past the end of the pile", Value: start}
	}
	return p.bytes[start:end], nil
}

// tipOffset computes the tip's starting offset: the last size bytes of the
// pile, saturating to 0 (not negative) when the pile is shorter than size —
// in which case the subsequent range check in getBlobBytes is what actually
// reports the error.
func tipOffset(pileLen, size int) Offset {
	if size > pileLen {
		return 0
	}
	return Offset(pileLen - size)
}

// TryGetTip validates the pile's tip as a T with no pointer fields (see
// [TryGetTipChildren] for aggregates that do have them) and returns a
// [ValidPtr] to it.
func TryGetTip[T any, Pt Validatable[T]](p *TryPile) (ValidPtr[Offset, Unit], error) {
	size := blobSizeOf[T, Pt]()
	off := tipOffset(len(p.bytes), size)
	return tryGetAt[T, Pt](p, off, size)
}

// TryGet re-validates the bytes a [ValidPtr] addresses and returns the
// decoded value. A ValidPtr reachable from a pile's tip
// already validates fully; TryGet still re-walks the bytes rather than
// trusting a cached result, consistent with every TryPile operation being
// untrusted at the point of use.
func TryGet[T any, Pt Validatable[T]](p *TryPile, ptr ValidPtr[Offset, Unit]) (T, error) {
	size := blobSizeOf[T, Pt]()
	v, err := tryGetAt[T, Pt](p, ptr.Raw(), size)
	if err != nil {
		var z T
		return z, err
	}
	return TryGetValue[T, Pt](p, v)
}

func tryGetAt[T any, Pt Validatable[T]](p *TryPile, off Offset, size int) (ValidPtr[Offset, Unit], error) {
	bytes, err := p.getBlobBytes(off, size)
	if err != nil {
		return ValidPtr[Offset, Unit]{}, &SourceError{Zone: "pile", At: off, Err: err}
	}
	if _, err := ValidateBlob[T, Pt](bytes, IgnorePadding); err != nil {
		return ValidPtr[Offset, Unit]{}, &SourceError{Zone: "pile", At: off, Err: err}
	}
	return AssumeValidPtr(MakeFatPtr[Offset, Unit](off, Unit{})), nil
}

// TryGetValue decodes the value a [ValidPtr] addresses. It validates the
// blob again while decoding, so a ValidPtr promised via [AssumeValidPtr]
// that names bad bytes yields an error rather than a bogus value.
func TryGetValue[T any, Pt Validatable[T]](p *TryPile, ptr ValidPtr[Offset, Unit]) (T, error) {
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
	return vb.Value, nil
}
