// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import "github.com/cpmech/gosl/la"

// lbfgsState holds the ring buffer of (s,y) history pairs and the
// forced-restart bookkeeping for the limited-memory BFGS engine
// (component D, §4.D). The buffer is persisted as two column-major
// matrices, LBFGS/S and LBFGS/Y, so a resumed run keeps its curvature
// history instead of restarting cold.
type lbfgsState struct {
	store Store
	m     int // M: maximum history length
	begin int // B: begin-of-window iteration index
	k     int // current iteration index
	s     []la.Vector
	y     []la.Vector
}

func newLBFGSState(store Store, m, begin int) *lbfgsState {
	return &lbfgsState{store: store, m: m, begin: begin, k: begin}
}

// load restores the ring buffer from disk; an absent LBFGS/S means the
// buffer is empty (fresh setup or just-cleared by a restart).
func (o *lbfgsState) load() error {
	if !o.store.Exists("LBFGS/S") {
		o.s, o.y = nil, nil
		return nil
	}
	var err error
	o.s, err = o.store.LoadMatrix("LBFGS/S")
	if err != nil {
		return err
	}
	o.y, err = o.store.LoadMatrix("LBFGS/Y")
	if err != nil {
		return err
	}
	bf, err := o.store.LoadScalar("LBFGS/B")
	if err != nil {
		return err
	}
	o.begin = int(bf)
	kf, err := o.store.LoadScalar("LBFGS/k")
	if err != nil {
		return err
	}
	o.k = int(kf)
	return nil
}

func (o *lbfgsState) persist() error {
	if err := o.store.SaveMatrix("LBFGS/S", o.s); err != nil {
		return err
	}
	if err := o.store.SaveMatrix("LBFGS/Y", o.y); err != nil {
		return err
	}
	if err := o.store.SaveScalar("LBFGS/B", float64(o.begin)); err != nil {
		return err
	}
	return o.store.SaveScalar("LBFGS/k", float64(o.k))
}

// clear discards the history buffer and resets the restart clock to the
// current iteration, so the k - B window count starts again from zero.
func (o *lbfgsState) clear() {
	o.s, o.y = nil, nil
	o.begin = o.k
}

// update appends the new (s,y) = (m_new-m_old, g_new-g_old) pair, evicts
// the oldest entry past M, and advances the forced-restart window.
func (o *lbfgsState) update(mNew, mOld, gNew, gOld la.Vector) {
	o.k++
	s := la.NewVector(len(mNew))
	la.VecAdd(s, 1, mNew, -1, mOld)
	y := la.NewVector(len(gNew))
	la.VecAdd(y, 1, gNew, -1, gOld)

	o.s = append(o.s, s)
	o.y = append(o.y, y)
	if len(o.s) > o.m {
		o.s = o.s[1:]
		o.y = o.y[1:]
	}
	if o.k-o.begin >= o.m {
		o.clear()
	}
}

// solve runs the two-loop recursion (§4.D) and returns q such that the
// search direction is p = -q. ok is false when the buffer is empty
// (caller should fall back to p = -g directly rather than call solve).
func (o *lbfgsState) solve(g la.Vector) (q la.Vector, ok bool, err error) {
	n := len(o.s)
	if n == 0 {
		return nil, false, nil
	}

	rho := make([]float64, n)
	alpha := make([]float64, n)

	q = la.NewVector(len(g))
	copy(q, g)

	for i := n - 1; i >= 0; i-- {
		ys := la.VecDot(o.y[i], o.s[i])
		if ys <= 0 {
			return nil, false, &NumericalError{Msg: "lbfgs: loss of positive-definiteness (y.s <= 0)"}
		}
		rho[i] = 1 / ys
		alpha[i] = rho[i] * la.VecDot(o.s[i], q)
		la.VecAdd(q, 1, q, -alpha[i], o.y[i]) // q -= alpha_i * y_i
	}

	last := n - 1
	yy := la.VecDot(o.y[last], o.y[last])
	if yy == 0 {
		return nil, false, &NumericalError{Msg: "lbfgs: zero-norm y in Hessian scaling"}
	}
	gamma := la.VecDot(o.s[last], o.y[last]) / yy
	for i := range q {
		q[i] *= gamma
	}

	for i := 0; i < n; i++ {
		beta := rho[i] * la.VecDot(o.y[i], q)
		la.VecAdd(q, 1, q, alpha[i]-beta, o.s[i]) // q += (alpha_i - beta) * s_i
	}

	return q, true, nil
}
