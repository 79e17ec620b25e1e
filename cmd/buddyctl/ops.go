/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cloudwego/buddyarena/unsafex/malloc"
)

type opKind int

const (
	opAlloc opKind = iota
	opFree
	opDump
	opCheck
)

// op is one step of an exec script.
type op struct {
	kind opKind
	size int
	addr malloc.Addr
	ref  int // index of a previous successful alloc, -1 if addr is used
}

// parseOp parses one of: alloc=<size>, free=<addr>, free=#<n>, dump, check.
// Sizes and addresses accept any base strconv.ParseInt understands, e.g. 0x2000.
func parseOp(s string) (op, error) {
	name, arg, hasArg := strings.Cut(s, "=")
	switch name {
	case "dump", "check":
		if hasArg {
			return op{}, fmt.Errorf("%q: %s takes no argument", s, name)
		}
		if name == "dump" {
			return op{kind: opDump}, nil
		}
		return op{kind: opCheck}, nil
	case "alloc":
		n, err := strconv.ParseInt(arg, 0, 64)
		if err != nil {
			return op{}, fmt.Errorf("%q: bad size: %v", s, err)
		}
		return op{kind: opAlloc, size: int(n)}, nil
	case "free":
		if strings.HasPrefix(arg, "#") {
			n, err := strconv.Atoi(arg[1:])
			if err != nil || n < 0 {
				return op{}, fmt.Errorf("%q: bad allocation index", s)
			}
			return op{kind: opFree, ref: n}, nil
		}
		n, err := strconv.ParseInt(arg, 0, 64)
		if err != nil {
			return op{}, fmt.Errorf("%q: bad address: %v", s, err)
		}
		return op{kind: opFree, addr: malloc.Addr(n), ref: -1}, nil
	}
	return op{}, fmt.Errorf("%q: unknown operation", s)
}

func parseOps(args []string) ([]op, error) {
	ops := make([]op, 0, len(args))
	for _, s := range args {
		o, err := parseOp(s)
		if err != nil {
			return nil, err
		}
		ops = append(ops, o)
	}
	return ops, nil
}

// runOps applies ops to a in order and prints the outcome of each.
// A failed alloc or free is reported and the script goes on;
// a failed check or a reference to a missing allocation stops it.
func runOps(a *malloc.Arena, ops []op, w io.Writer) error {
	var allocs []malloc.Addr
	for _, o := range ops {
		switch o.kind {
		case opAlloc:
			addr, err := a.Alloc(o.size)
			if err != nil {
				fmt.Fprintf(w, "alloc %d: %v\n", o.size, err)
				continue
			}
			allocs = append(allocs, addr)
			fmt.Fprintf(w, "alloc %d -> %#x (%d bytes)\n", o.size, int(addr), a.BlockSize(addr))
		case opFree:
			addr := o.addr
			if o.ref >= 0 {
				if o.ref >= len(allocs) {
					return fmt.Errorf("free=#%d: only %d allocations so far", o.ref, len(allocs))
				}
				addr = allocs[o.ref]
			}
			if err := a.Free(addr); err != nil {
				fmt.Fprintf(w, "free %#x: %v\n", int(addr), err)
				continue
			}
			fmt.Fprintf(w, "free %#x\n", int(addr))
		case opDump:
			fmt.Fprintln(w, a.Dump())
		case opCheck:
			if err := a.Check(); err != nil {
				return err
			}
			fmt.Fprintln(w, "check ok")
		}
	}
	return nil
}

var errNotCoalesced = errors.New("arena did not merge back into a single block")

// runScenario allocates 5000 bytes from a fresh arena, frees them,
// and verifies the free lists end up exactly as they started.
func runScenario(a *malloc.Arena, w io.Writer) error {
	a.Init()
	initial := a.Dump()
	fmt.Fprintln(w, initial)

	addr, err := a.Alloc(5000)
	if err != nil {
		return fmt.Errorf("alloc 5000: %w", err)
	}
	fmt.Fprintf(w, "alloc 5000 -> %#x (order %d)\n", int(addr), a.BytesToOrder(5000))
	fmt.Fprintln(w, a.Dump())

	if err := a.Free(addr); err != nil {
		return fmt.Errorf("free %#x: %w", int(addr), err)
	}
	final := a.Dump()
	fmt.Fprintln(w, final)

	if final != initial || a.Stats().FreeAt(a.MaxOrder()) != 1 {
		return fmt.Errorf("%w: %s", errNotCoalesced, final)
	}
	return nil
}
