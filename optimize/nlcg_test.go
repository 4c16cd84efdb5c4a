// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Test_nlcg01 checks that the very first call (no NLCG/g_last yet) always
// restarts to steepest descent, and that k is left at 1 -- not 0 -- so the
// next call does not immediately restart again.
func Test_nlcg01(tst *testing.T) {

	chk.PrintTitle("nlcg01. first call restarts to -g")

	store := NewMemStore()
	st := newNLCGState(store, 10, 0.9)

	g := la.Vector{1, 2, 3}
	p, err := st.compute(g)
	if err != nil {
		tst.Errorf("compute failed: %v", err)
		return
	}
	want := la.Vector{-1, -2, -3}
	chk.Array(tst, "p", 1e-15, p, want)
	chk.Scalar(tst, "k", 1e-15, float64(st.k), 1)
}

// Test_nlcg02 drives two calls with identical gradients, which makes
// Polak-Ribiere's numerator g.(g-g_prev) vanish: beta clamps to 0 (the
// "+" in Polak-Ribiere+), which forces a restart to -g rather than a
// stalled zero-correction step. The restart clock still lands on 1, not
// 0, after the call returns.
func Test_nlcg02(tst *testing.T) {

	chk.PrintTitle("nlcg02. beta<=0 forces a restart to -g")

	store := NewMemStore()
	st := newNLCGState(store, 10, 0.9)

	g := la.Vector{1, 1}
	if _, err := st.compute(g); err != nil {
		tst.Errorf("first compute failed: %v", err)
		return
	}

	p, err := st.compute(g)
	if err != nil {
		tst.Errorf("second compute failed: %v", err)
		return
	}
	chk.Array(tst, "p", 1e-15, p, la.Vector{-1, -1})
	chk.Scalar(tst, "k", 1e-15, float64(st.k), 1)
}

// Test_nlcg03 forces a restart at k==max and checks the restart clock
// resets to 1 (not 0) afterwards, matching the fix that closed the
// infinite-restart loop.
func Test_nlcg03(tst *testing.T) {

	chk.PrintTitle("nlcg03. restart at K_max resets k to 1")

	store := NewMemStore()
	st := newNLCGState(store, 2, 0.9)

	g1 := la.Vector{1, 0}
	g2 := la.Vector{1, 0.01} // close enough to g1 that PR+ still descends
	if _, err := st.compute(g1); err != nil { // k: 0 -> 1
		tst.Errorf("compute 1 failed: %v", err)
		return
	}
	if _, err := st.compute(g2); err != nil { // k=1 != max; ordinary PR+ step -> k=2
		tst.Errorf("compute 2 failed: %v", err)
		return
	}
	chk.Scalar(tst, "k after step 2", 1e-15, float64(st.k), 2)

	p, err := st.compute(g1) // k == max -> restart
	if err != nil {
		tst.Errorf("compute 3 failed: %v", err)
		return
	}
	chk.Array(tst, "p restarted to -g", 1e-15, p, la.Vector{-1, 0})
	chk.Scalar(tst, "k after restart", 1e-15, float64(st.k), 1)
}

// Test_nlcg04 checks that a non-descent direction (angle test fails)
// triggers a restart to -g rather than returning the bad direction.
func Test_nlcg04(tst *testing.T) {

	chk.PrintTitle("nlcg04. insufficient descent forces a restart")

	store := NewMemStore()
	st := newNLCGState(store, 100, 0.9999999)

	if _, err := st.compute(la.Vector{1, 0}); err != nil {
		tst.Errorf("compute 1 failed: %v", err)
		return
	}
	// a sharply different gradient makes cos(angle(p,g)) fail the
	// near-1 threshold above, forcing a restart.
	p, err := st.compute(la.Vector{0, 1})
	if err != nil {
		tst.Errorf("compute 2 failed: %v", err)
		return
	}
	chk.Array(tst, "p restarted", 1e-15, p, la.Vector{0, -1})
	chk.Scalar(tst, "k after forced restart", 1e-15, float64(st.k), 1)
}
