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
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var scenarioCommand = cli.Command{
	Name:  "scenario",
	Usage: "alloc 5000 bytes, free them, and verify the arena merges back into one block",
	Action: func(ctx *cli.Context) error {
		a, err := newArena(ctx)
		if err != nil {
			return err
		}
		return runScenario(a, os.Stdout)
	},
}

var execCommand = cli.Command{
	Name:      "exec",
	Usage:     "run a script of operations against a fresh arena",
	ArgsUsage: "OP... (alloc=<size>, free=<addr>, free=#<n>, dump, check)",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() == 0 {
			return fmt.Errorf("exec: no operations given")
		}
		ops, err := parseOps(ctx.Args())
		if err != nil {
			return err
		}
		a, err := newArena(ctx)
		if err != nil {
			return err
		}
		return runOps(a, ops, os.Stdout)
	},
}

var stressCommand = cli.Command{
	Name:  "stress",
	Usage: "run random allocs and frees, verifying the arena as it goes",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "ops",
			Value: 100000,
			Usage: "number of operations",
		},
		cli.Int64Flag{
			Name:  "seed",
			Value: 42,
			Usage: "random seed",
		},
		cli.IntFlag{
			Name:  "max-size",
			Value: 64 << 10,
			Usage: "largest allocation size in bytes",
		},
		cli.IntFlag{
			Name:  "check-every",
			Value: 100,
			Usage: "verify the arena metadata every N operations; 0 disables",
		},
	},
	Action: func(ctx *cli.Context) error {
		prof, err := runProfiler(ctx)
		if err != nil {
			return err
		}
		if prof != nil {
			defer prof.Stop()
		}

		a, err := newArena(ctx)
		if err != nil {
			return err
		}
		cfg := stressConfig{
			Ops:        ctx.Int("ops"),
			Seed:       ctx.Int64("seed"),
			MaxSize:    ctx.Int("max-size"),
			CheckEvery: ctx.Int("check-every"),
		}
		res, err := runStress(a, cfg)
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"allocs":          res.Allocs,
			"frees":           res.Frees,
			"no_space":        res.Failures,
			"max_outstanding": res.MaxOutstanding,
		}).Info("Stress run passed.")
		fmt.Println(a.Dump())
		return nil
	},
}
