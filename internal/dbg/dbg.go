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

// Package dbg includes debugging helpers shared by the persistence engine:
// assertions for invariants that unsafe code relies on, and a logging hook
// used to trace allocator activity.
package dbg

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// Enabled is true when the PILE_DEBUG environment variable is set to a
// non-empty value.
//
// When Enabled is false, Log returns immediately; Assert checks its
// condition either way. Callers can test Enabled to skip debug-only work
// (such as an extra consistency walk) in hot paths.
var Enabled = os.Getenv("PILE_DEBUG") != ""

var logPattern = flag.String("pile.logfilter", "", "regexp to filter pile debug logs by")

// Log prints debugging information to stderr.
//
// context is an optional (format, args...) pair, interpreted the same way
// as the trailing arguments, printed before operation so that a run of
// related log lines can be visually grouped.
func Log(context []any, operation string, format string, args ...any) {
	if !Enabled {
		return
	}

	skip := 2
	pc, file, line, _ := runtime.Caller(skip)
	fn := runtime.FuncForPC(pc)

	pkg := "pile"
	if fn != nil {
		name := fn.Name()
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		if i := strings.Index(name, "."); i >= 0 {
			pkg = name[:i]
		}
	}
	file = filepath.Base(file)

	buf := new(strings.Builder)
	fmt.Fprintf(buf, "%s/%s:%d", pkg, file, line)
	if len(context) >= 1 {
		fmt.Fprintf(buf, " ["+context[0].(string)+"]", context[1:]...)
	}
	fmt.Fprintf(buf, " %s: ", operation)
	fmt.Fprintf(buf, format, args...)

	if *logPattern != "" {
		re, err := regexp.Compile(*logPattern)
		if err == nil && !re.MatchString(buf.String()) {
			return
		}
	}

	buf.WriteByte('\n')
	_, _ = os.Stderr.WriteString(buf.String())
}

// Assert panics if cond is false.
//
// Assert is reserved for invariants that the unsafe pointer and blob code
// relies on internally (e.g. "alloc returned a heap pointer"); it must never
// be used to validate untrusted pile bytes, which always flow through the
// ordinary error-returning validators instead.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("pile: internal assertion failed: "+format, args...))
	}
}

// Value is a value of type T that is only intended to be inspected under a
// debugger or in tests; production code must not branch on it.
type Value[T any] struct {
	x T
}

// Get returns a pointer to the wrapped value.
func (v *Value[T]) Get() *T { return &v.x }
