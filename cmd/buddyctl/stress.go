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
	"fmt"
	"math/rand"

	mapset "github.com/deckarep/golang-set"
	"github.com/sirupsen/logrus"

	"github.com/cloudwego/buddyarena/unsafex/malloc"
)

type stressConfig struct {
	Ops        int
	Seed       int64
	MaxSize    int
	CheckEvery int
}

type stressResult struct {
	Allocs         int
	Frees          int
	Failures       int
	MaxOutstanding int
}

// runStress runs cfg.Ops random allocs and frees against a, then frees
// everything left and expects the whole arena back as one free block.
func runStress(a *malloc.Arena, cfg stressConfig) (stressResult, error) {
	var res stressResult
	if cfg.MaxSize < 1 || cfg.MaxSize > a.Size() {
		return res, fmt.Errorf("max-size must be in [1, %d], got %d", a.Size(), cfg.MaxSize)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	outstanding := mapset.NewThreadUnsafeSet()
	var addrs []malloc.Addr

	for i := 0; i < cfg.Ops; i++ {
		if len(addrs) == 0 || rng.Intn(3) != 0 {
			addr, err := a.Alloc(1 + rng.Intn(cfg.MaxSize))
			if err != nil {
				res.Failures++
			} else {
				if !outstanding.Add(addr) {
					return res, fmt.Errorf("op %d: %#x handed out twice", i, int(addr))
				}
				addrs = append(addrs, addr)
				res.Allocs++
			}
		} else {
			idx := rng.Intn(len(addrs))
			addr := addrs[idx]
			if err := a.Free(addr); err != nil {
				return res, fmt.Errorf("op %d: free %#x: %w", i, int(addr), err)
			}
			outstanding.Remove(addr)
			addrs[idx] = addrs[len(addrs)-1]
			addrs = addrs[:len(addrs)-1]
			res.Frees++
		}

		if n := outstanding.Cardinality(); n > res.MaxOutstanding {
			res.MaxOutstanding = n
		}
		if cfg.CheckEvery > 0 && i%cfg.CheckEvery == 0 {
			if err := a.Check(); err != nil {
				return res, fmt.Errorf("op %d: %w", i, err)
			}
			logrus.Debugf("op %d: %d outstanding, %s", i, len(addrs), a.Dump())
		}
	}

	for _, addr := range addrs {
		if err := a.Free(addr); err != nil {
			return res, fmt.Errorf("drain: free %#x: %w", int(addr), err)
		}
		res.Frees++
	}
	if a.Available() != a.Size() || a.Stats().FreeAt(a.MaxOrder()) != 1 {
		return res, fmt.Errorf("%w: %s", errNotCoalesced, a.Dump())
	}
	return res, a.Check()
}
