// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

// backtrack2 computes the minimizer of the quadratic through (0,f0) with
// slope g0<0 and (alpha1,f1), clamped to [lo*alpha1, hi*alpha1] (component
// B, §4.B). It fails when g0 >= 0 since the bracketing quadratic is then
// not a valid descent model.
func backtrack2(f0, g0, alpha1, f1, lo, hi float64) (alpha float64, err error) {
	if g0 >= 0 {
		return 0, &NumericalError{Msg: "backtrack2: slope g0 must be negative"}
	}
	// f(a) ~ f0 + g0*a + c*a^2, fit c from the single probe (alpha1,f1):
	// f1 = f0 + g0*alpha1 + c*alpha1^2  =>  c = (f1 - f0 - g0*alpha1) / alpha1^2
	// vertex of that parabola: a* = -g0 / (2c)
	c := (f1 - f0 - g0*alpha1) / (alpha1 * alpha1)
	if c <= 0 {
		// parabola is concave (or flat): no interior minimizer, clamp to hi
		return hi * alpha1, nil
	}
	ahat := -g0 / (2 * c)
	switch {
	case ahat < lo*alpha1:
		return lo * alpha1, nil
	case ahat > hi*alpha1:
		return hi * alpha1, nil
	default:
		return ahat, nil
	}
}

// polyfit2 fits a parabola through the three (x,f) points and returns its
// vertex (component B, §4.B). It fails if the parabola is concave (no
// interior minimum) or the denominator vanishes (collinear points); the
// caller falls back to bracket expansion in that case.
func polyfit2(xs, fs []float64) (vertex float64, err error) {
	if len(xs) != 3 || len(fs) != 3 {
		return 0, &NumericalError{Msg: "polyfit2: requires exactly 3 points"}
	}
	x0, x1, x2 := xs[0], xs[1], xs[2]
	f0, f1, f2 := fs[0], fs[1], fs[2]

	// Lagrange-form leading coefficient of the interpolating parabola
	// (half its second derivative).
	d01 := x0 - x1
	d02 := x0 - x2
	d12 := x1 - x2
	denom := d01 * d02 * d12
	if denom == 0 {
		return 0, &NumericalError{Msg: "polyfit2: degenerate/collinear abscissas"}
	}

	// a*x^2 + b*x + c through the three points, via divided differences.
	a := (f0*d12 - f1*d02 + f2*d01) / denom
	if a <= 0 {
		return 0, &NumericalError{Msg: "polyfit2: fitted parabola is concave"}
	}
	b := (f1-f0)/(x1-x0) - a*(x1+x0)
	vertex = -b / (2 * a)
	return vertex, nil
}
