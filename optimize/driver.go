// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

// Driver sequences direction -> initialize -> (probe -> status)* ->
// finalize -> next iteration (component F, §4.F), checkpointing every
// significant vector through Store so a run survives scheduler-induced
// interruption.
type Driver struct {
	Cfg   Config
	Store Store
	Eval  Evaluator
	Trace *TraceWriter
	Path  string // solver façade path argument; the store's working directory

	dir    *direction
	search *lineSearch
	iter   int
}

// NewDriver builds a Driver, reconstructing iter and any persisted
// direction-engine state from Store if this is a resumed run (§7
// recovery policy). A resumed run is detected by the presence of the
// "iter" checkpoint this Driver itself writes after every completed
// iteration; a fresh run has no such file and starts at cfg.Begin.
func NewDriver(cfg Config, store Store, eval Evaluator, trace *TraceWriter, path string) *Driver {
	d := &Driver{
		Cfg:   cfg,
		Store: store,
		Eval:  eval,
		Trace: trace,
		Path:  path,
		iter:  cfg.Begin,
	}
	if store.Exists("iter") {
		if last, err := store.LoadScalar("iter"); err == nil {
			d.iter = int(last) + 1
		}
	}
	d.dir = newDirection(cfg, store)
	d.search = newLineSearch(cfg, store, trace)
	return d
}

// Iter reports the current (next to run) iteration index.
func (d *Driver) Iter() int { return d.iter }

// Run executes iterations Begin..End (inclusive), stopping early if the
// configured stopping criterion fires (§4.F step 7). It returns the
// iteration at which it stopped and the error, if any, that ended the
// run early.
func (d *Driver) Run() (lastIter int, err error) {
	for ; d.iter <= d.Cfg.End; d.iter++ {
		stop, err := d.RunIteration()
		if err != nil {
			return d.iter, err
		}
		if stop {
			return d.iter, nil
		}
	}
	return d.iter - 1, nil
}

// RunIteration executes a single iteration k: evaluate gradient, compute
// direction, run the line search to completion, finalize, and check the
// stopping criterion.
func (d *Driver) RunIteration() (stop bool, err error) {
	iter := d.iter

	if err := d.Eval.EvalGrad(d.Path); err != nil {
		return false, err
	}

	gNew, err := d.Store.LoadVector("g_new")
	if err != nil {
		return false, err
	}
	mNew, err := d.Store.LoadVector("m_new")
	if err != nil {
		return false, err
	}

	var mOld, gOld la.Vector
	if iter > 1 {
		if mOld, err = d.Store.LoadVector("m_old"); err != nil {
			return false, err
		}
		if gOld, err = d.Store.LoadVector("g_old"); err != nil {
			return false, err
		}
	}

	pNew, err := d.dir.compute(iter, gNew, mNew, mOld, gOld)
	if err != nil {
		return false, err
	}
	if err := d.Store.SaveVector("p_new", pNew); err != nil {
		return false, err
	}
	sNew := la.VecDot(gNew, pNew)
	if err := d.Store.SaveScalar("s_new", sNew); err != nil {
		return false, err
	}

	fNew, err := d.Store.LoadScalar("f_new")
	if err != nil {
		return false, err
	}
	if err := d.search.initialize(iter, mNew, pNew, gNew, fNew); err != nil {
		return false, err
	}

	for probe := 0; probe < d.Cfg.SrchMax; probe++ {
		if err := d.Eval.EvalFunc(d.Path); err != nil {
			return false, err
		}
		done, err := d.search.status()
		if err != nil {
			return false, err
		}
		if done {
			break
		}
		if probe == d.Cfg.SrchMax-1 {
			return false, &SearchFailed{Iter: iter, Probes: d.Cfg.SrchMax}
		}
		if err := d.search.step(mNew, pNew); err != nil {
			return false, err
		}
	}

	if err := d.search.finalize(iter, mNew, pNew); err != nil {
		return false, err
	}

	io.Pf("> iteration %d complete\n", iter)

	if err := d.Store.SaveScalar("iter", float64(iter)); err != nil {
		return false, err
	}

	if d.Cfg.StopRatio > 0 && iter > 1 {
		stop, err = d.checkStop()
		if err != nil {
			return false, err
		}
	}
	return stop, nil
}

// checkStop implements the ||m_new - m_old|| / ||m_new|| < eps criterion
// (§4.F step 7), reading the post-finalize m_new/m_old pair.
func (d *Driver) checkStop() (bool, error) {
	mNew, err := d.Store.LoadVector("m_new")
	if err != nil {
		return false, err
	}
	mOld, err := d.Store.LoadVector("m_old")
	if err != nil {
		return false, err
	}
	diff := la.NewVector(len(mNew))
	la.VecAdd(diff, 1, mNew, -1, mOld)
	denom := mNew.Norm()
	if denom == 0 {
		return false, nil
	}
	ratio := diff.Norm() / denom
	return ratio < d.Cfg.StopRatio, nil
}
