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

package arena_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.pile.systems/pile/internal/arena"
)

func TestNew(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)
	defer a.Free()

	p := arena.New(a, uint64(42))
	require.NotNil(t, p)
	assert.Equal(t, uint64(42), *p)

	// Nodes are independent: writing one does not disturb another.
	q := arena.New(a, uint64(7))
	*p = 1
	assert.Equal(t, uint64(7), *q)
	assert.Equal(t, uint64(1), *p)
}

func TestAddressesAreEven(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)
	defer a.Free()

	// Single-byte nodes have natural alignment 1; the arena must still
	// never hand out an odd address, since bit zero of a node address is
	// the dirty-pointer tag.
	for i := range 100 {
		p := arena.New(a, byte(i))
		require.Zero(t, uintptr(unsafe.Pointer(p))&1, "allocation %d", i)
		assert.Equal(t, byte(i), *p)
	}
}

func TestZeroSized(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)
	defer a.Free()

	p := arena.New(a, struct{}{})
	require.NotNil(t, p)
	assert.Zero(t, uintptr(unsafe.Pointer(p))&1)
}

func TestManyAllocations(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)
	defer a.Free()

	// Enough values to force several chunk growths; every node must
	// survive them untouched.
	ptrs := make([]*int64, 10_000)
	for i := range ptrs {
		ptrs[i] = arena.New(a, int64(i))
	}
	for i, p := range ptrs {
		require.Equal(t, int64(i), *p)
	}
}

func TestLargeAllocation(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)
	defer a.Free()

	// A node bigger than the first chunk gets a chunk of its own.
	big := arena.New(a, [4096]byte{1: 0xaa, 4095: 0xbb})
	assert.Equal(t, byte(0xaa), big[1])
	assert.Equal(t, byte(0xbb), big[4095])

	// And the arena keeps working afterwards.
	p := arena.New(a, uint32(5))
	assert.Equal(t, uint32(5), *p)
}

func TestFreeResets(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)
	arena.New(a, uint64(1))
	a.Free()

	// A freed arena is reusable from scratch.
	p := arena.New(a, uint64(2))
	assert.Equal(t, uint64(2), *p)
	a.Free()
}
