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

func TestNewOffset(t *testing.T) {
	t.Parallel()

	for _, n := range []uint64{0, 1, 42, uint64(pile.MaxOffset)} {
		o, err := pile.NewOffset(n)
		require.NoError(t, err)
		assert.Equal(t, pile.Offset(n), o)
	}

	for _, n := range []uint64{
		uint64(pile.MaxOffset) + 1,
		1 << 62,
		1 << 63,
		^uint64(0),
	} {
		_, err := pile.NewOffset(n)
		var oe *pile.OffsetError
		require.ErrorAs(t, err, &oe)
	}
}

func TestOffsetWire(t *testing.T) {
	t.Parallel()

	// Stored value is the offset shifted left by one, little-endian.
	assert.Equal(t, [8]byte{0x02}, pile.Offset(1).Bytes())
	assert.Equal(t, [8]byte{0x54}, pile.Offset(42).Bytes())
	assert.Equal(t, [8]byte{}, pile.Offset(0).Bytes())

	for _, o := range []pile.Offset{0, 1, 42, 1 << 40, pile.MaxOffset} {
		got, err := pile.DecodeOffset(o.Bytes())
		require.NoError(t, err)
		assert.Equal(t, o, got)
	}

	// A persisted offset with the dirty bit set is corrupt.
	_, err := pile.DecodeOffset([8]byte{0x01})
	var oe *pile.OffsetError
	require.ErrorAs(t, err, &oe)
}

func TestOffsetMutRoundTrip(t *testing.T) {
	t.Parallel()

	persistent := pile.FromOffset(7)
	require.False(t, persistent.IsDirty())
	assert.Equal(t, pile.Offset(7), persistent.Offset())

	disc := persistent.Classify()
	assert.False(t, disc.Dirty)
	assert.Equal(t, pile.Offset(7), disc.Persistent)

	node := new(uint64)
	dirty := pile.FromHeap(node)
	require.True(t, dirty.IsDirty())
	assert.Equal(t, node, (*uint64)(dirty.Heap()))

	disc = dirty.Classify()
	assert.True(t, disc.Dirty)
	assert.Equal(t, node, (*uint64)(disc.Heap))
}
