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

package pile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.pile.systems/pile"
)

func TestTrustedPile(t *testing.T) {
	t.Parallel()

	tp := pile.NewTryPile([]byte{0x12, 0x34, 0x56, 0x78})
	p, ptr, err := pile.GetTip[pile.U32, *pile.U32](tp)
	require.NoError(t, err)

	// Reads through the trusted view return values directly.
	v := pile.GetValue[pile.U32, *pile.U32](p, ptr)
	assert.Equal(t, uint32(0x78563412), v.Value)
	assert.Equal(t, 4, p.Len())
	assert.Same(t, tp, p.Try())
}

func TestTrustedPileCatchesBugs(t *testing.T) {
	t.Parallel()

	// A pointer that skipped validation and points at garbage is a bug,
	// and the trusted view treats it as one.
	p := pile.NewTryPile([]byte{0x07}).AssumeValid()
	bogus := pile.AssumeValidPtr(pile.MakeFatPtr[pile.Offset, pile.Unit](0, pile.Unit{}))
	assert.Panics(t, func() {
		pile.GetValue[pile.Bool, *pile.Bool](p, bogus)
	})
}

func TestTrustedPileMut(t *testing.T) {
	t.Parallel()

	pm := pile.NewTryPileMut([]byte{0x2a}).AssumeValid()
	defer pm.Try().Free()

	vp := pile.AssumeValidPtr(pile.MakeFatPtr[pile.OffsetMut, pile.Unit](pile.FromOffset(0), pile.Unit{}))
	v := pile.GetMut[pile.U8, *pile.U8](pm, &vp)
	assert.Equal(t, uint8(42), v.Value)
	require.True(t, vp.Raw().IsDirty())
}
