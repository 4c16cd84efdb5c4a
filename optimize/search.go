// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/utl"
)

// probe is one (alpha, f) entry of the current line search's history.
type probe struct {
	Alpha float64
	F     float64
}

// searchHistory is the in-memory list of probes for the current line
// search; cleared at initialize_search, appended-only within a search
// (§5 Ordering guarantees). It mirrors the source's step_lens/func_vals
// sort=True/False dual views (SPEC_FULL.md, Supplemented Features #2).
type searchHistory struct {
	entries []probe
}

func (h *searchHistory) reset(f0 float64) {
	h.entries = []probe{{Alpha: 0, F: f0}}
}

func (h *searchHistory) append(alpha, f float64) {
	h.entries = append(h.entries, probe{Alpha: alpha, F: f})
}

// sortedIdx returns indices into entries ordered by increasing |alpha|,
// matching the source's `f[abs(x).argsort()]` view.
func (h *searchHistory) sortedIdx() []int {
	idx := make([]int, len(h.entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return math.Abs(h.entries[idx[i]].Alpha) < math.Abs(h.entries[idx[j]].Alpha)
	})
	return idx
}

// steps returns the alphas sorted by |alpha|.
func (h *searchHistory) steps() []float64 {
	idx := h.sortedIdx()
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = h.entries[j].Alpha
	}
	return out
}

// misfits returns the f values sorted the same way as steps().
func (h *searchHistory) misfits() []float64 {
	idx := h.sortedIdx()
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = h.entries[j].F
	}
	return out
}

// unsortedMisfits returns f values in probe (observation) order.
func (h *searchHistory) unsortedMisfits() []float64 {
	out := make([]float64, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.F
	}
	return out
}

func (h *searchHistory) last() probe {
	return h.entries[len(h.entries)-1]
}

// risingAgain is the bracket test shared by Bracket and Fixed search
// types (§4.E): some later probe dropped below f[0] and the most recent
// two sorted probes show an increase again.
func risingAgain(f []float64) bool {
	if len(f) < 2 {
		return false
	}
	droppedBelowFirst := false
	for _, v := range f[1:] {
		if v < f[0] {
			droppedBelowFirst = true
			break
		}
	}
	return droppedBelowFirst && f[len(f)-2] < f[len(f)-1]
}

// lineSearch is the line-search driver state machine (component E,
// §4.E): INIT -> PROBE <-> DECIDE -> DONE | FAILED.
type lineSearch struct {
	cfg   Config
	store Store
	trace *TraceWriter

	history  searchHistory
	isDone   bool
	isBest   bool
	isBrak   bool
	stepRat  float64 // rho: step-length scale
	numStep  int     // number of compute_step calls issued (Fixed branch's "step")
}

func newLineSearch(cfg Config, store Store, trace *TraceWriter) *lineSearch {
	return &lineSearch{cfg: cfg, store: store, trace: trace}
}

// initialize determines the initial trial step length and writes m_try
// (§4.E initialize_search).
func (o *lineSearch) initialize(iter int, m, p, gNew la.Vector, fNew float64) error {
	o.history.reset(fNew)
	o.isDone, o.isBest, o.isBrak = false, false, false
	o.numStep = 0

	lenM := maxAbs(m)
	lenP := maxAbs(p)
	if lenP == 0 {
		return &NumericalError{Msg: "initialize_search: zero search direction"}
	}
	o.stepRat = lenM / lenP

	var alpha float64
	switch {
	case iter == 1:
		if o.cfg.StepLen <= 0 {
			return &ConfigError{Msg: "STEPLEN must be > 0 on the first iteration"}
		}
		alpha = o.cfg.StepLen * o.stepRat

	case o.cfg.SrchType == Bracket, o.cfg.Scheme == GradientDescent, o.cfg.Scheme == ConjugateGradient:
		sOld, err := o.store.LoadScalar("s_old")
		if err != nil {
			return err
		}
		sNew, err := o.store.LoadScalar("s_new")
		if err != nil {
			return err
		}
		alphaPrev, err := o.store.LoadScalar("alpha")
		if err != nil {
			return err
		}
		if sNew == 0 {
			return &NumericalError{Msg: "initialize_search: s_new is zero, cannot rescale step"}
		}
		alpha = alphaPrev * 2 * sOld / sNew

	default: // L-BFGS, not first iteration
		alpha = 1.0
	}

	if o.cfg.AdHocScaling != 0 {
		alpha *= o.cfg.AdHocScaling
	}
	if o.cfg.StepMax > 0 && alpha/o.stepRat > o.cfg.StepMax {
		alpha = o.cfg.StepMax * o.stepRat
	}

	if err := o.writeTrial(m, p, alpha); err != nil {
		return err
	}
	return o.trace.WriteInit(iter, fNew)
}

func (o *lineSearch) writeTrial(m, p la.Vector, alpha float64) error {
	mTry := la.NewVector(len(m))
	la.VecAdd(mTry, 1, m, alpha, p)
	if err := o.store.SaveVector("m_try", mTry); err != nil {
		return err
	}
	return o.store.SaveScalar("alpha", alpha)
}

// status determines whether the line search is done after the solver
// façade has written f_try (§4.E search_status). done reports isDone.
func (o *lineSearch) status() (done bool, err error) {
	alpha, err := o.store.LoadScalar("alpha")
	if err != nil {
		return false, err
	}
	fTry, err := o.store.LoadScalar("f_try")
	if err != nil {
		return false, err
	}
	if math.IsNaN(fTry) || math.IsInf(fTry, 0) {
		return false, &NumericalError{Msg: "search_status: f_try is NaN/Inf"}
	}

	o.history.append(alpha, fTry)
	if err := o.trace.WriteProbe(alpha, fTry); err != nil {
		return false, err
	}

	unsorted := o.history.unsortedMisfits()
	last := unsorted[len(unsorted)-1]
	o.isBest = true
	for _, v := range unsorted[:len(unsorted)-1] {
		if last >= v {
			o.isBest = false
			break
		}
	}

	f := o.history.misfits()
	switch o.cfg.SrchType {
	case Backtrack:
		for _, v := range f[1:] {
			if v < f[0] {
				o.isDone = true
				break
			}
		}

	case Bracket:
		if o.isBrak {
			o.isBest = true
			o.isDone = true
		} else if risingAgain(f) {
			o.isBrak = true
		}

	case Fixed:
		if risingAgain(f) {
			o.isDone = true
		}
	}

	return o.isDone, nil
}

// step computes the next trial step length (§4.E compute_step).
func (o *lineSearch) step(m, p la.Vector) error {
	o.numStep++
	x := o.history.steps()
	f := o.history.misfits()
	f0 := o.history.entries[0].F

	var alpha float64
	var err error
	switch o.cfg.SrchType {
	case Backtrack:
		s0, lerr := o.store.LoadScalar("s_new")
		if lerr != nil {
			return lerr
		}
		alpha, err = backtrack2(f0, s0, x[1], f[1], 0.1, 0.5)
		if err != nil {
			return err
		}

	case Bracket:
		const factor = 2.0
		if risingAgain(f) {
			alpha, err = polyfit2(lastThree(x), lastThree(f))
			if err != nil {
				// caller's fallback per §4.B: bracket expansion
				alpha = o.history.last().Alpha * factor
			}
		} else if anyBelowFirst(f) {
			alpha = o.history.last().Alpha * factor
		} else {
			alpha = o.history.last().Alpha / factor
		}

	case Fixed:
		alpha = o.stepRat * float64(o.numStep+1) * o.cfg.StepLen
	}

	return o.writeTrial(m, p, alpha)
}

// finalize picks the best step, rotates *_new to *_old, and writes the
// updated model/misfit (§4.E finalize_search).
func (o *lineSearch) finalize(iter int, mBase, pNew la.Vector) error {
	x := o.history.steps()
	f := o.history.misfits()

	best, _ := utl.DblArgMinMax(f)
	alphaBest := x[best]
	fBest := f[best]

	for _, name := range []string{"alpha", "m_try", "f_try"} {
		if err := o.store.Remove(name); err != nil {
			return err
		}
	}
	if iter > 1 {
		for _, name := range []string{"m_old", "f_old", "g_old", "p_old", "s_old"} {
			if err := o.store.Remove(name); err != nil {
				return err
			}
		}
	}

	for _, r := range [][2]string{{"m_new", "m_old"}, {"f_new", "f_old"}, {"g_new", "g_old"}, {"p_new", "p_old"}, {"s_new", "s_old"}} {
		if err := o.store.Rename(r[0], r[1]); err != nil {
			return err
		}
	}

	mFinal := la.NewVector(len(mBase))
	la.VecAdd(mFinal, 1, mBase, alphaBest, pNew)
	if err := o.store.SaveScalar("alpha", alphaBest); err != nil {
		return err
	}
	if err := o.store.SaveVector("m_new", mFinal); err != nil {
		return err
	}
	if err := o.store.SaveScalar("f_new", fBest); err != nil {
		return err
	}
	return o.trace.WriteSeparator()
}

func maxAbs(v la.Vector) float64 {
	m := 0.0
	for _, x := range v {
		m = utl.Max(m, math.Abs(x))
	}
	return m
}

func anyBelowFirst(f []float64) bool {
	for _, v := range f[1:] {
		if v < f[0] {
			return true
		}
	}
	return false
}

func lastThree(v []float64) []float64 {
	if len(v) < 3 {
		return v
	}
	return v[len(v)-3:]
}
