// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package toy

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/num"
)

// Test_rosenbrock01 checks the analytic Rosenbrock gradient against
// central finite differences, the way fem/testing.go checks analytic
// element matrices against num.DerivCentral.
func Test_rosenbrock01(tst *testing.T) {

	chk.PrintTitle("rosenbrock01. analytic gradient matches finite differences")

	r := Rosenbrock{}
	m := la.Vector{0.7, 0.4}
	gAna := r.G(m)

	step := 1e-6
	for i := range m {
		dnum, _ := num.DerivCentral(func(x float64, args ...interface{}) (res float64) {
			mm := la.Vector{m[0], m[1]}
			mm[i] = x
			return r.F(mm)
		}, m[i], step)
		chk.AnaNum(tst, io.Sf("dF/dm%d", i), 1e-6, gAna[i], dnum, false)
	}
}

// Test_quadratic01 is the same gradient check for the diagonal quadratic.
func Test_quadratic01(tst *testing.T) {

	chk.PrintTitle("quadratic01. analytic gradient matches finite differences")

	q := Quadratic{A: la.Vector{2, 5, 0.5}}
	m := la.Vector{1.2, -0.3, 4.0}
	gAna := q.G(m)

	step := 1e-6
	for i := range m {
		dnum, _ := num.DerivCentral(func(x float64, args ...interface{}) (res float64) {
			mm := la.Vector{m[0], m[1], m[2]}
			mm[i] = x
			return q.F(mm)
		}, m[i], step)
		chk.AnaNum(tst, io.Sf("dF/dm%d", i), 1e-6, gAna[i], dnum, false)
	}
}
