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

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/cloudwego/buddyarena/unsafex/malloc"
)

const usage = `buddy arena driver

Runs allocation scripts, the reference scenario or a randomized stress run
against a single buddy arena and prints its free lists.`

// populated at build time
var version string

func main() {
	app := cli.NewApp()
	app.Name = "buddyctl"
	app.Usage = usage
	app.Version = version

	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "min-order",
			Value: malloc.DefaultMinOrder,
			Usage: "log2 of the page size, the smallest block handed out",
		},
		cli.IntFlag{
			Name:  "max-order",
			Value: malloc.DefaultMaxOrder,
			Usage: "log2 of the arena size",
		},
		cli.StringFlag{
			Name:  "log, l",
			Value: "",
			Usage: "log file path or empty string for stderr output (default: \"\")",
		},
		cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "log categories to include (debug, info, warning, error, fatal); debug traces every split and merge",
		},
		cli.StringFlag{
			Name:  "log-format",
			Value: "text",
			Usage: "log format; must be json or text (default = text)",
		},
		cli.BoolFlag{
			Name:   "cpu-profiling",
			Usage:  "enable cpu-profiling data collection",
			Hidden: true,
		},
		cli.BoolFlag{
			Name:   "memory-profiling",
			Usage:  "enable memory-profiling data collection",
			Hidden: true,
		},
	}

	app.Commands = []cli.Command{
		scenarioCommand,
		execCommand,
		stressCommand,
	}

	app.Before = func(ctx *cli.Context) error {
		if path := ctx.GlobalString("log"); path != "" {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND|os.O_SYNC, 0666)
			if err != nil {
				return err
			}
			logrus.SetOutput(f)
		} else {
			logrus.SetOutput(os.Stderr)
		}

		if logFormat := ctx.GlobalString("log-format"); logFormat == "json" {
			logrus.SetFormatter(&logrus.JSONFormatter{
				TimestampFormat: "2006-01-02 15:04:05",
			})
		} else {
			logrus.SetFormatter(&logrus.TextFormatter{
				TimestampFormat: "2006-01-02 15:04:05",
				FullTimestamp:   true,
			})
		}

		switch logLevel := ctx.GlobalString("log-level"); logLevel {
		case "debug":
			logrus.SetLevel(logrus.DebugLevel)
		case "", "info":
			logrus.SetLevel(logrus.InfoLevel)
		case "warning":
			logrus.SetLevel(logrus.WarnLevel)
		case "error":
			logrus.SetLevel(logrus.ErrorLevel)
		case "fatal":
			logrus.SetLevel(logrus.FatalLevel)
		default:
			return fmt.Errorf("'%v' log-level option not recognized", logLevel)
		}

		return nil
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

// newArena builds the arena described by the global flags.
func newArena(ctx *cli.Context) (*malloc.Arena, error) {
	a, err := malloc.NewArena(&malloc.Option{
		MinOrder: ctx.GlobalInt("min-order"),
		MaxOrder: ctx.GlobalInt("max-order"),
		Logger:   logrus.StandardLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create arena: %v", err)
	}
	logrus.Debugf("arena: %d bytes, %d byte pages", a.Size(), a.PageSize())
	return a, nil
}

// Run cpu / memory profiling collection.
func runProfiler(ctx *cli.Context) (interface{ Stop() }, error) {
	cpuProfOn := ctx.GlobalBool("cpu-profiling")
	memProfOn := ctx.GlobalBool("memory-profiling")

	// Cpu and Memory profiling options seem to be mutually exclusive in pprof.
	if cpuProfOn && memProfOn {
		return nil, fmt.Errorf("unsupported parameter combination: cpu and memory profiling")
	}

	if cpuProfOn {
		logrus.Info("Initiated cpu-profiling data collection.")
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook), nil
	}
	if memProfOn {
		logrus.Info("Initiated memory-profiling data collection.")
		return profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook), nil
	}
	return nil, nil
}
