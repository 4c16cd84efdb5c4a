// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command sfoptim runs the nonlinear optimization engine against an
// external solver façade driven by shell commands.
package main

import (
	"flag"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"

	"github.com/mpbl/seisflows/optimize"
)

func main() {

	defer func() {
		if err := recover(); err != nil {
			if mpi.Rank() == 0 {
				io.PfRed("ERROR: %v\n", err)
			}
		}
		mpi.Stop(false)
	}()
	mpi.Start(false)

	if mpi.Rank() == 0 {
		io.PfWhite("\nsfoptim -- seismic full-waveform inversion optimizer\n\n")
	}

	flag.Parse()
	if len(flag.Args()) < 2 {
		chk.Panic("usage: sfoptim <config.json> <optim_dir> [eval_func] [eval_grad]")
	}
	cfgPath := flag.Arg(0)
	optimDir := flag.Arg(1)
	funcCmd, gradCmd := "eval_func.sh", "eval_grad.sh"
	if len(flag.Args()) > 2 {
		funcCmd = flag.Arg(2)
	}
	if len(flag.Args()) > 3 {
		gradCmd = flag.Arg(3)
	}

	cfg, err := optimize.ReadConfig(cfgPath)
	if err != nil {
		chk.Panic("%v", err)
	}

	store, err := optimize.NewDirStore(optimDir)
	if err != nil {
		chk.Panic("%v", err)
	}

	trace, err := optimize.NewTraceWriter(filepath.Join(optimDir, "output.optim"))
	if err != nil {
		chk.Panic("%v", err)
	}
	defer trace.Close()

	eval := &optimize.CommandEvaluator{
		Store:       store,
		FuncCommand: funcCmd,
		GradCommand: gradCmd,
	}

	driver := optimize.NewDriver(cfg, store, eval, trace, optimDir)
	lastIter, err := driver.Run()
	if err != nil {
		chk.Panic("optimizer stopped at iteration %d: %v", lastIter, err)
	}

	if mpi.Rank() == 0 {
		io.Pf("> finished at iteration %d\n", lastIter)
	}
}
