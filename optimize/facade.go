// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import "github.com/cpmech/gosl/la"

// Evaluator is the narrow interface to the external solver/preprocessing
// façade (component G, §4.G). It is the only way the optimizer reaches
// outside its own working directory: meshing, wave propagation, adjoint
// kernels, and data preprocessing are all hidden behind these three
// calls. Implementations may block on a batch scheduler, run the solver
// locally, or (as in the toy package) simply evaluate a closed-form
// function — the driver cannot tell the difference.
type Evaluator interface {
	// EvalFunc reads m_new or m_try from path and writes f_new (resp.
	// f_try).
	EvalFunc(path string) error

	// EvalGrad reads m_new from path and writes f_new and g_new.
	EvalGrad(path string) error

	// ApplyHess writes the action of the Hessian on v, for truncated-
	// Newton schemes. Not used by GradientDescent, ConjugateGradient, or
	// QuasiNewton; optional for implementations that don't support it.
	ApplyHess(path string, v la.Vector) (la.Vector, error)
}

// FuncEvaluator adapts two plain Go functions (matching gosl/fun's Sv and
// Vv function-type conventions for scalar-of-vector and vector-of-vector
// functions, the same shapes github.com/cpmech/gosl/opt.ConjGrad takes
// for its ffcn/jfcn) into an Evaluator backed by a Store. It is meant for
// tests and for toy example programs where the "solver" is a closed-form
// misfit, not an external process.
type FuncEvaluator struct {
	Store Store
	F     func(m la.Vector) float64
	G     func(m la.Vector) la.Vector
}

func (o *FuncEvaluator) EvalFunc(path string) error {
	m, err := o.modelToEvaluate()
	if err != nil {
		return err
	}
	f := o.F(m)
	target := "f_new"
	if o.Store.Exists("m_try") {
		target = "f_try"
	}
	return o.Store.SaveScalar(target, f)
}

func (o *FuncEvaluator) EvalGrad(path string) error {
	m, err := o.Store.LoadVector("m_new")
	if err != nil {
		return err
	}
	if err := o.Store.SaveScalar("f_new", o.F(m)); err != nil {
		return err
	}
	return o.Store.SaveVector("g_new", o.G(m))
}

func (o *FuncEvaluator) ApplyHess(path string, v la.Vector) (la.Vector, error) {
	return nil, &NumericalError{Msg: "ApplyHess: not supported by FuncEvaluator"}
}

// modelToEvaluate picks m_try when present (a line-search probe),
// otherwise m_new, matching the §4.G contract that eval_func is called
// against whichever of the two is currently staged.
func (o *FuncEvaluator) modelToEvaluate() (la.Vector, error) {
	if o.Store.Exists("m_try") {
		return o.Store.LoadVector("m_try")
	}
	return o.Store.LoadVector("m_new")
}
