// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"errors"
	"os/exec"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

// CommandEvaluator is an Evaluator that shells out to external commands
// for eval_func/eval_grad/apply_hess, the way the source's solver façade
// ultimately invokes a batch-submitted SPECFEM run via subprocess. The
// batch-system submission layer itself (SLURM/PBS wrappers, MPI launch)
// is an external collaborator per §1; CommandEvaluator only knows how to
// invoke whatever wrapper script the deployment provides and block until
// it exits, exactly the "disk-as-IPC" contract of §4.G.
type CommandEvaluator struct {
	Store       Store
	FuncCommand string // e.g. "./eval_func.sh"
	GradCommand string // e.g. "./eval_grad.sh"
	HessCommand string // e.g. "./apply_hess.sh"; optional
}

func (o *CommandEvaluator) EvalFunc(path string) error {
	return o.run(o.FuncCommand, path)
}

func (o *CommandEvaluator) EvalGrad(path string) error {
	return o.run(o.GradCommand, path)
}

func (o *CommandEvaluator) ApplyHess(path string, v la.Vector) (la.Vector, error) {
	if o.HessCommand == "" {
		return nil, &NumericalError{Msg: "apply_hess: no HessCommand configured"}
	}
	if err := o.Store.SaveVector("hess_in", v); err != nil {
		return nil, err
	}
	if err := o.run(o.HessCommand, path); err != nil {
		return nil, err
	}
	return o.Store.LoadVector("hess_out")
}

func (o *CommandEvaluator) run(command, path string) error {
	if command == "" {
		return &IOError{Op: "run", Name: "(unconfigured)", Cause: errors.New("no command configured")}
	}
	cmd := exec.Command(command, path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		io.PfRed("%s\n", string(out))
		return &IOError{Op: "run", Name: command, Cause: err}
	}
	return nil
}
