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

func TestAllocIsDirty(t *testing.T) {
	t.Parallel()

	pm := pile.NewTryPileMut(nil)
	defer pm.Free()

	ptr := pile.Alloc(pm, pile.U32{Value: 7})
	require.True(t, ptr.Valid().Raw().IsDirty())

	// The heap node holds the allocated value.
	vp := ptr.Valid()
	v, err := pile.TryGetMut[pile.U32, *pile.U32](pm, &vp)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), v.Value)

	ptr.Drop(pm.DeallocOwn)
}

func TestTryGetMutPromotes(t *testing.T) {
	t.Parallel()

	// A pile whose tip is the u16 0x0201 at offset 2.
	pm := pile.NewTryPileMut([]byte{0xff, 0xff, 0x01, 0x02})

	vp := pile.AssumeValidPtr(pile.MakeFatPtr[pile.OffsetMut, pile.Unit](pile.FromOffset(2), pile.Unit{}))
	require.False(t, vp.Raw().IsDirty())

	// First access copies the persistent node onto the heap and rewrites
	// the handle in place.
	v, err := pile.TryGetMut[pile.U16, *pile.U16](pm, &vp)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), v.Value)
	require.True(t, vp.Raw().IsDirty())

	// Mutations land in the heap node; a second access returns the same
	// node rather than re-loading the pile.
	v.Value = 99
	v2, err := pile.TryGetMut[pile.U16, *pile.U16](pm, &vp)
	require.NoError(t, err)
	assert.Equal(t, uint16(99), v2.Value)
	assert.Same(t, v, v2)

	// The pile's own bytes are untouched.
	assert.Equal(t, []byte{0xff, 0xff, 0x01, 0x02}, pm.Base().Bytes())

	pm.Free()
}

func TestTryGetMutBadPersistent(t *testing.T) {
	t.Parallel()

	pm := pile.NewTryPileMut([]byte{0x02})
	vp := pile.AssumeValidPtr(pile.MakeFatPtr[pile.OffsetMut, pile.Unit](pile.FromOffset(0), pile.Unit{}))

	// The byte at the target is not a legal bool; promotion reports it
	// rather than allocating a corrupt node.
	_, err := pile.TryGetMut[pile.Bool, *pile.Bool](pm, &vp)
	var ve *pile.ValueError
	require.ErrorAs(t, err, &ve)
	assert.False(t, vp.Raw().IsDirty())
}

func TestClonePtr(t *testing.T) {
	t.Parallel()

	pm := pile.NewTryPileMut([]byte{0x2a})
	vp := pile.AssumeValidPtr(pile.MakeFatPtr[pile.OffsetMut, pile.Unit](pile.FromOffset(0), pile.Unit{}))

	dup := pile.ClonePtr(pm, vp)
	assert.Equal(t, vp.Raw(), dup.Valid().Raw())
	dup.Drop(pm.DeallocOwn)
}

func TestTryGetDirty(t *testing.T) {
	t.Parallel()

	pm := pile.NewTryPileMut([]byte{0x2a})

	// A persistent pointer is reported as such, with its offset intact.
	persistent := pile.AssumeValidPtr(pile.MakeFatPtr[pile.OffsetMut, pile.Unit](pile.FromOffset(0), pile.Unit{}))
	heap, fat, dirty := pile.TryGetDirty[pile.U8](pm, persistent)
	require.False(t, dirty)
	require.Nil(t, heap)
	assert.Equal(t, pile.Offset(0), fat.Raw)

	// A dirty pointer yields its live node.
	owned := pile.Alloc(pm, pile.U8{Value: 9})
	heap, _, dirty = pile.TryGetDirty[pile.U8](pm, owned.Valid())
	require.True(t, dirty)
	require.NotNil(t, heap)
	assert.Equal(t, uint8(9), heap.Value)

	// Taking consumes the owning handle.
	heap, _, dirty = pile.TryTakeDirty[pile.U8](pm, &owned)
	require.True(t, dirty)
	assert.Equal(t, uint8(9), heap.Value)

	pm.Free()
}

func TestWithPileMut(t *testing.T) {
	t.Parallel()

	m := pile.BytesMapping(nil)
	err := pile.WithPileMut(m, func(pm *pile.TryPileMut) error {
		ptr := pile.Alloc(pm, pile.Bool(true))
		require.True(t, ptr.Valid().Raw().IsDirty())
		return nil
	})
	require.NoError(t, err)
}
