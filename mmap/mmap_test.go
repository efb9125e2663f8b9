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

package mmap_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.pile.systems/pile"
	"go.pile.systems/pile/mmap"
)

func TestOpenAndReadTip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tip.pile")
	require.NoError(t, os.WriteFile(path, []byte{0x12, 0x34, 0x56, 0x78}, 0o644))

	f, err := mmap.Open(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, 4, f.Len())

	err = pile.WithPile(f, func(p *pile.TryPile) error {
		ptr, err := pile.TryGetTip[pile.U32, *pile.U32](p)
		if err != nil {
			return err
		}
		v, err := pile.TryGetValue[pile.U32, *pile.U32](p, ptr)
		assert.Equal(t, uint32(0x78563412), v.Value)
		return err
	})
	require.NoError(t, err)

	require.NoError(t, f.Close())
}

func TestOpenEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.pile")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	f, err := mmap.Open(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, 0, f.Len())
}

func TestOpenMissingFile(t *testing.T) {
	t.Parallel()

	_, err := mmap.Open(filepath.Join(t.TempDir(), "nope.pile"))
	require.Error(t, err)
}

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.pile")

	require.NoError(t, mmap.WriteAtomic(path, []byte{1, 2}, []byte{3}))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	// No temporary files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// Overwriting is also atomic: the old content is replaced wholesale.
	require.NoError(t, mmap.WriteAtomic(path, []byte{9}))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, got)
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	base := pile.NewTryPile([]byte{0xaa})
	d := pile.NewDumper(base)
	_, err := d.SaveBlob(2, func(buf []byte) { buf[0], buf[1] = 1, 2 })
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snap.pile")
	require.NoError(t, mmap.Snapshot(path, d))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa, 1, 2}, got)
}

func TestOpenShared(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "shared.pile")
	require.NoError(t, os.WriteFile(path, []byte{42}, 0o644))

	a, err := mmap.OpenShared(path)
	require.NoError(t, err)
	b, err := mmap.OpenShared(path)
	require.NoError(t, err)
	assert.Same(t, a, b)

	// Close on a shared handle is a no-op; the mapping stays live.
	require.NoError(t, a.Close())
	assert.Equal(t, []byte{42}, b.Bytes())

	require.NoError(t, mmap.CloseShared())
}
