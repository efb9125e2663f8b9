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

// threeBytes builds the pile from the three-pointer encode scenario: data
// bytes 1, 2, 3 at offsets 0..2, then an Arr3OfPtr tip referencing them.
func threeBytes() []byte {
	buf := []byte{1, 2, 3}
	buf = append(buf, off(0)...)
	buf = append(buf, off(1)...)
	buf = append(buf, off(2)...)
	return buf
}

func TestTipWithChildren(t *testing.T) {
	t.Parallel()

	type tip = pile.Arr3OfPtr[pile.U8, *pile.U8]

	p := pile.NewTryPile(threeBytes())
	ptr, err := pile.TryGetTipChildren[tip, *tip](p)
	require.NoError(t, err)
	assert.Equal(t, pile.Offset(3), ptr.Raw())

	v, err := pile.TryGetChildren[tip, *tip](p, ptr)
	require.NoError(t, err)
	for i, child := range v {
		got, err := pile.TryGetValue[pile.U8, *pile.U8](p, child.AssumeValid())
		require.NoError(t, err)
		assert.Equal(t, uint8(i+1), got.Value)
	}
}

func TestChildValidationFailsAtFirstBadChild(t *testing.T) {
	t.Parallel()

	type tip = pile.Arr3OfPtr[pile.Bool, *pile.Bool]

	// Children at offsets 0..2 are bytes {1, 7, 9}: index 0 is a legal
	// bool, 1 and 2 are not. Stage A (the three offsets decode) passes;
	// Stage B fails at index 1 and never reports index 2.
	buf := []byte{1, 7, 9}
	buf = append(buf, off(0)...)
	buf = append(buf, off(1)...)
	buf = append(buf, off(2)...)

	_, err := pile.TryGetTipChildren[tip, *tip](pile.NewTryPile(buf))
	require.Error(t, err)
	var se *pile.SourceError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "[1]")
	assert.NotContains(t, err.Error(), "[2]")
}

func TestChildOffsetOutOfRange(t *testing.T) {
	t.Parallel()

	type tip = pile.Arr2OfPtr[pile.U8, *pile.U8]

	// The second child's offset points past the end of the pile.
	buf := []byte{42}
	buf = append(buf, off(0)...)
	buf = append(buf, off(1000)...)

	_, err := pile.TryGetTipChildren[tip, *tip](pile.NewTryPile(buf))
	var oe *pile.OffsetError
	require.ErrorAs(t, err, &oe)
}

func TestDeepChildValidation(t *testing.T) {
	t.Parallel()

	// A pointer to the three-pointer node: the matrix-wrapping shape from
	// the encode tests, read back. The node validates its own children
	// when chased through ValidatePtrChildrenDeep.
	type node = pile.Arr3OfPtr[pile.U8, *pile.U8]

	p := pile.NewTryPile(threeBytes())
	ptrs := []pile.OffsetPtr[node]{{Raw: 3}}
	require.NoError(t, pile.ValidatePtrChildrenDeep[node, *node](ptrs, p))

	// Corrupting a grandchild surfaces through both levels.
	corrupt := threeBytes()
	bad := append([]byte{}, corrupt...)
	copy(bad[3:], off(1000))
	err := pile.ValidatePtrChildrenDeep[node, *node](ptrs, pile.NewTryPile(bad))
	var oe *pile.OffsetError
	require.ErrorAs(t, err, &oe)
}
