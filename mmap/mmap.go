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

// Package mmap provides file-backed [pile.Mapping] implementations.
//
// A pile file is mapped read-only and shared: the kernel's page cache backs
// the bytes, so opening a multi-gigabyte pile costs no more than opening a
// small one, and readers decode values straight out of the mapping without
// reading the file into a buffer first. Writes never go through the mapping; [WriteAtomic] and
// [Snapshot] produce a whole new file and rename it into place, matching
// the append-only, children-before-parents discipline of the encode
// pipeline.
package mmap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"go.pile.systems/pile"
	"go.pile.systems/pile/internal/xsync"
)

// File is a read-only memory mapping of a pile file. It implements
// [pile.Mapping].
type File struct {
	path string
	data []byte

	// set only for shared handles; Close is a no-op for those.
	shared bool
}

// Open maps the file at path read-only. An empty file maps to an empty
// (but valid) pile: a zero-length mapping is not an error, it just yields
// no bytes, which [pile.TryGetTip] of a zero-sized type is happy with.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}

	m := &File{path: path}
	if st.Size() > 0 {
		data, err := unix.Mmap(int(f.Fd()), 0, int(st.Size()), unix.PROT_READ, unix.MAP_SHARED)
		if err != nil {
			return nil, fmt.Errorf("mmap %s: %w", path, err)
		}
		m.data = data
	}
	return m, nil
}

// Bytes implements [pile.Mapping].
func (f *File) Bytes() []byte { return f.data }

// Len returns the mapped length in bytes.
func (f *File) Len() int { return len(f.data) }

// Path returns the path this mapping was opened from.
func (f *File) Path() string { return f.path }

// Close unmaps the file. Every pile constructed over this mapping must
// already be out of scope; touching its bytes after Close faults. Closing
// a handle obtained from [OpenShared] is a no-op — shared mappings are
// released in bulk by [CloseShared].
func (f *File) Close() error {
	if f.shared || f.data == nil {
		return nil
	}
	data := f.data
	f.data = nil
	return unix.Munmap(data)
}

// shared caches one mapping per path. A read-only pile may be freely
// shared, so there is no reason for two readers of the same file to map it
// twice.
var shared xsync.Map[string, *File]

// OpenShared returns a process-wide shared mapping of path, mapping it on
// first use. The returned handle's Close is a no-op; call [CloseShared]
// once no reader of any shared mapping remains.
func OpenShared(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if f, ok := shared.Load(abs); ok {
		return f, nil
	}
	f, err := Open(abs)
	if err != nil {
		return nil, err
	}
	f.shared = true
	got, loaded := shared.LoadOrStore(abs, func() *File { return f })
	if loaded {
		// Lost the race; unmap our copy and hand back the winner's.
		f.shared = false
		_ = f.Close()
	}
	return got, nil
}

// CloseShared unmaps every mapping handed out by [OpenShared]. The first
// unmap failure is reported; the rest are still attempted.
func CloseShared() error {
	var first error
	for path, f := range shared.All() {
		shared.Delete(path)
		f.shared = false
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// WriteAtomic writes the concatenation of chunks to path through a
// uniquely-named temporary file in the same directory, fsyncs it, and
// renames it into place, so that a crash mid-write never leaves a
// truncated pile behind.
func WriteAtomic(path string, chunks ...[]byte) (err error) {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	for _, chunk := range chunks {
		if _, err = f.Write(chunk); err != nil {
			return err
		}
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp, path); err != nil {
		return err
	}

	// Persist the rename itself.
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

// Snapshot atomically writes a dumper's finished pile — its base bytes
// followed by everything saved onto it — to path.
func Snapshot(path string, d *pile.Dumper) error {
	var base []byte
	if d.Base() != nil {
		base = d.Base().Bytes()
	}
	return WriteAtomic(path, base, d.Bytes())
}
