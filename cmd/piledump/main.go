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

// piledump inspects pile files: it maps each file, hex-dumps the bytes
// around the tip, and optionally validates the tip as a chosen primitive
// type.
//
// Usage:
//
//	piledump [-type u32] [-tail 64] file.pile...
//
// Files are verified concurrently; output is buffered per file and printed
// in argument order.
package main

import (
	"bytes"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"go.pile.systems/pile"
	"go.pile.systems/pile/internal/sync2"
	"go.pile.systems/pile/mmap"
)

var (
	tipType = flag.String("type", "", "validate the tip as this type (bool, u8, u16, u32, u64, i8, i16, i32, i64, height, nonzeroheight, offset)")
	tail    = flag.Int("tail", 64, "hex-dump this many bytes from the end of each pile")
	noColor = flag.Bool("no-color", false, "disable colored output even on a terminal")
)

var reports = sync2.Pool[bytes.Buffer]{
	Reset: func(b *bytes.Buffer) { b.Reset() },
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: piledump [-type T] [-tail N] file.pile...")
		os.Exit(2)
	}

	color := !*noColor && term.IsTerminal(int(os.Stdout.Fd()))

	outputs := make([]*bytes.Buffer, flag.NArg())
	var g errgroup.Group
	for i, path := range flag.Args() {
		g.Go(func() error {
			outputs[i] = reports.Get()
			return dump(outputs[i], path, color)
		})
	}
	err := g.Wait()

	for _, buf := range outputs {
		if buf != nil {
			os.Stdout.Write(buf.Bytes())
			reports.Put(buf)
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func dump(w *bytes.Buffer, path string, color bool) error {
	f, err := mmap.Open(path)
	if err != nil {
		fmt.Fprintf(w, "%s: %s\n", path, paint(color, red, err.Error()))
		return err
	}
	defer f.Close()

	fmt.Fprintf(w, "%s: %d bytes\n", path, f.Len())

	data := f.Bytes()
	start := len(data) - *tail
	if start < 0 {
		start = 0
	}
	dumper := hex.Dumper(w)
	dumper.Write(data[start:])
	dumper.Close()

	if *tipType == "" {
		return nil
	}
	return pile.WithPile(f, func(p *pile.TryPile) error {
		desc, err := validateTip(p, *tipType)
		if err != nil {
			fmt.Fprintf(w, "tip as %s: %s\n", *tipType, paint(color, red, err.Error()))
			return err
		}
		fmt.Fprintf(w, "tip as %s: %s\n", *tipType, paint(color, green, desc))
		return nil
	})
}

// validateTip runs the read pipeline for the named primitive and renders
// the decoded tip value.
func validateTip(p *pile.TryPile, name string) (string, error) {
	switch name {
	case "bool":
		return tip[pile.Bool](p)
	case "u8":
		return tip[pile.U8](p)
	case "u16":
		return tip[pile.U16](p)
	case "u32":
		return tip[pile.U32](p)
	case "u64":
		return tip[pile.U64](p)
	case "i8":
		return tip[pile.I8](p)
	case "i16":
		return tip[pile.I16](p)
	case "i32":
		return tip[pile.I32](p)
	case "i64":
		return tip[pile.I64](p)
	case "height":
		return tip[pile.Height](p)
	case "nonzeroheight":
		return tip[pile.NonZeroHeight](p)
	case "offset":
		return tip[pile.OffsetPtr[pile.U8]](p)
	default:
		return "", fmt.Errorf("unknown type %q", name)
	}
}

func tip[T any, P pile.Validatable[T]](p *pile.TryPile) (string, error) {
	ptr, err := pile.TryGetTip[T, P](p)
	if err != nil {
		return "", err
	}
	v, err := pile.TryGetValue[T, P](p, ptr)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ok at %s: %+v", ptr.Raw(), v), nil
}

const (
	red   = "31"
	green = "32"
)

func paint(color bool, code, s string) string {
	if !color {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}
