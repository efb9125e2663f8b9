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

// Package sync2 holds the typed concurrency helpers this module needs on
// top of the standard library's untyped ones.
package sync2

import "sync"

// Pool is a typed free list of *T values, for scratch state that is worth
// reusing across concurrent workers (per-file report buffers, and the
// like). The zero value is usable: Get falls back to new(T).
type Pool[T any] struct {
	// New, if set, constructs values when the pool is empty.
	New func() *T
	// Reset, if set, restores a value to its clean state on Put, so that
	// Get always returns something ready for use.
	Reset func(*T)

	pool sync.Pool
}

// Get returns a clean *T, reusing a previously [Pool.Put] value when one
// is available.
func (p *Pool[T]) Get() *T {
	if v, ok := p.pool.Get().(*T); ok {
		return v
	}
	if p.New != nil {
		return p.New()
	}
	return new(T)
}

// Put hands v back for reuse. The caller must not touch v afterwards.
func (p *Pool[T]) Put(v *T) {
	if p.Reset != nil {
		p.Reset(v)
	}
	p.pool.Put(v)
}
