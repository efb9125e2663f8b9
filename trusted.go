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

// Pile is the trusted counterpart of [TryPile]: a view over bytes the
// caller has already established are well-formed, whose read operations
// return values directly instead of errors. An error surfacing through a
// Pile is a bug (a pointer that skipped validation, or bytes mutated
// behind the mapping's back), not a data condition, so [GetValue] panics
// where [TryGetValue] would return an error.
//
// The only ways to obtain one are [TryPile.AssumeValid] — an explicit
// promise, typically made right after validating the tip — [GetTip],
// which validates the tip and then makes that promise, and [PileMut.Pile].
type Pile struct {
	try *TryPile
}

// AssumeValid promotes this view to a trusted [Pile] without checking
// anything. Callers must have validated every pointer they intend to
// resolve through it.
func (p *TryPile) AssumeValid() *Pile {
	return &Pile{try: p}
}

// Try demotes this pile back to its untrusted form. Demotion is always
// free.
func (p *Pile) Try() *TryPile { return p.try }

// Len returns the number of bytes in the pile.
func (p *Pile) Len() int { return p.try.Len() }

// GetValue decodes the value a [ValidPtr] addresses. It panics if the
// bytes fail to validate, which for a correctly-obtained ValidPtr can only
// mean a bug.
func GetValue[T any, Pt Validatable[T]](p *Pile, ptr ValidPtr[Offset, Unit]) T {
	v, err := TryGetValue[T, Pt](p.try, ptr)
	if err != nil {
		panic("pile: ValidPtr failed to validate against a trusted pile: " + err.Error())
	}
	return v
}

// GetTip validates the tip once and returns it with a trusted view: the
// caller's entry point for switching from the fallible to the infallible
// API.
func GetTip[T any, Pt Validatable[T]](p *TryPile) (*Pile, ValidPtr[Offset, Unit], error) {
	ptr, err := TryGetTip[T, Pt](p)
	if err != nil {
		return nil, ValidPtr[Offset, Unit]{}, err
	}
	return p.AssumeValid(), ptr, nil
}

// PileMut is the trusted counterpart of [TryPileMut], with the same
// relationship [Pile] has to [TryPile].
type PileMut struct {
	try *TryPileMut
}

// AssumeValid promotes this view to a trusted [PileMut].
func (p *TryPileMut) AssumeValid() *PileMut {
	return &PileMut{try: p}
}

// Try demotes this pile back to its untrusted form.
func (p *PileMut) Try() *TryPileMut { return p.try }

// Pile returns a trusted view of the persistent base.
func (p *PileMut) Pile() *Pile { return p.try.base.AssumeValid() }

// GetMut resolves a mutable pointer to a *T, promoting the node to a
// heap-dirty copy on first touch, panicking where [TryGetMut] would
// return an error.
func GetMut[T any, Pt Validatable[T]](p *PileMut, vp *ValidPtr[OffsetMut, Unit]) *T {
	v, err := TryGetMut[T, Pt](p.try, vp)
	if err != nil {
		panic("pile: ValidPtr failed to validate against a trusted pile: " + err.Error())
	}
	return v
}
