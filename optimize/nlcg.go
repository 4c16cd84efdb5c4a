// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"github.com/cpmech/gosl/la"
)

// nlcgState holds the previous gradient/direction and the restart clock
// for the nonlinear conjugate gradient engine (component C, §4.C). It is
// persisted to NLCG/g_last, NLCG/p_last so a resumed run continues the
// same restart cadence instead of restarting from -g.
type nlcgState struct {
	store  Store
	max    int     // K_max: restart interval
	thresh float64 // theta_thresh: descent-angle tolerance
	k      int     // step count since last restart
}

func newNLCGState(store Store, max int, thresh float64) *nlcgState {
	return &nlcgState{store: store, max: max, thresh: thresh}
}

// load restores k, g_prev, p_prev from the store. A missing NLCG/g_last
// means this is the first call since setup; k starts at 0.
func (o *nlcgState) load() (gPrev, pPrev la.Vector, ok bool, err error) {
	if !o.store.Exists("NLCG/g_last") {
		return nil, nil, false, nil
	}
	gPrev, err = o.store.LoadVector("NLCG/g_last")
	if err != nil {
		return nil, nil, false, err
	}
	pPrev, err = o.store.LoadVector("NLCG/p_last")
	if err != nil {
		return nil, nil, false, err
	}
	kf, err := o.store.LoadScalar("NLCG/k")
	if err != nil {
		return nil, nil, false, err
	}
	o.k = int(kf)
	return gPrev, pPrev, true, nil
}

// compute implements §4.C's algorithm: Polak-Ribiere+ beta with restart
// on non-descent, after K_max steps, or on numerical degeneracy.
func (o *nlcgState) compute(g la.Vector) (p la.Vector, err error) {
	gPrev, pPrev, ok, err := o.load()
	if err != nil {
		return nil, err
	}

	restart := func() (la.Vector, error) {
		p := la.NewVector(len(g))
		la.VecAdd(p, -1, g, 0, g)
		o.k = 0
		return o.finish(g, p)
	}

	if !ok || o.k == 0 || o.k == o.max {
		return restart()
	}

	denom := la.VecDot(gPrev, gPrev)
	if denom == 0 {
		return restart()
	}

	diff := la.NewVector(len(g))
	la.VecAdd(diff, 1, g, -1, gPrev) // diff = g - g_prev
	beta := la.VecDot(g, diff) / denom
	betaClamped := beta <= 0
	if betaClamped {
		beta = 0
	}

	p = la.NewVector(len(g))
	la.VecAdd(p, -1, g, beta, pPrev) // p = -g + beta*p_prev

	pNorm := p.Norm()
	gNorm := g.Norm()
	insufficientDescent := pNorm == 0 || gNorm == 0 ||
		la.VecDot(p, g)/(pNorm*gNorm) > -o.thresh

	if insufficientDescent || betaClamped {
		return restart()
	}

	return o.finish(g, p)
}

// finish persists (g,p) as (g_prev,p_prev), advances the step count, and
// returns p: the common tail of every branch in §4.C's algorithm.
func (o *nlcgState) finish(g, p la.Vector) (la.Vector, error) {
	o.k++
	if err := o.save(g, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (o *nlcgState) save(g, p la.Vector) error {
	if err := o.store.SaveVector("NLCG/g_last", g); err != nil {
		return err
	}
	if err := o.store.SaveVector("NLCG/p_last", p); err != nil {
		return err
	}
	return o.store.SaveScalar("NLCG/k", float64(o.k))
}
