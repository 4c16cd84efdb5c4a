// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import "github.com/cpmech/gosl/la"

// direction is the tagged variant {GradientDescent, ConjugateGradient,
// QuasiNewton} selected once at setup (Design Notes, item 2), replacing
// the source's dynamic dispatch on a scheme string.
type direction struct {
	scheme Scheme
	nlcg   *nlcgState
	lbfgs  *lbfgsState
}

func newDirection(cfg Config, store Store) *direction {
	d := &direction{scheme: cfg.Scheme}
	switch cfg.Scheme {
	case ConjugateGradient:
		d.nlcg = newNLCGState(store, cfg.NLCGMax, cfg.NLCGThresh)
	case QuasiNewton:
		d.lbfgs = newLBFGSState(store, cfg.LBFGSMax, cfg.Begin)
	}
	return d
}

// steepestDescent returns p = -g, the universal fallback whenever a
// direction engine cannot produce a descent direction (§3 invariant).
func steepestDescent(g la.Vector) la.Vector {
	p := la.NewVector(len(g))
	la.VecAdd(p, -1, g, 0, g)
	return p
}

// compute runs the configured search-direction scheme and guarantees the
// returned direction satisfies g.p < 0, restarting to -g if it does not
// (§3 invariant, §7 NumericalError recovery policy). iter is the current
// iteration number (1-based); mOld/gOld are only valid when iter > 1.
func (d *direction) compute(iter int, g, mNew, mOld, gOld la.Vector) (p la.Vector, err error) {
	switch d.scheme {
	case GradientDescent:
		p = steepestDescent(g)

	case ConjugateGradient:
		p, err = d.nlcg.compute(g)
		if err != nil {
			p = steepestDescent(g)
		}

	case QuasiNewton:
		if iter == 1 {
			p = steepestDescent(g)
			break
		}
		if err := d.lbfgs.load(); err != nil {
			return nil, err
		}
		d.lbfgs.update(mNew, mOld, g, gOld)
		q, ok, solveErr := d.lbfgs.solve(g)
		if solveErr != nil || !ok {
			d.lbfgs.clear()
			p = steepestDescent(g)
		} else {
			p = la.NewVector(len(q))
			la.VecAdd(p, -1, q, 0, q)
			if la.VecDot(p, g) >= 0 {
				d.lbfgs.clear()
				p = steepestDescent(g)
			}
		}
		if err := d.lbfgs.persist(); err != nil {
			return nil, err
		}
	}

	if la.VecDot(g, p) >= 0 {
		p = steepestDescent(g)
		if la.VecDot(g, p) >= 0 {
			return nil, &NumericalError{Msg: "compute_direction: -g is not a descent direction"}
		}
	}
	return p, nil
}
