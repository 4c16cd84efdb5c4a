// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package toy provides closed-form misfit functions and their analytic
// gradients, playing the role gofem's ana package plays for its own
// element tests: a reference against which the numerical optimizer can
// be checked without needing an external wave-equation solver.
package toy

import (
	"github.com/cpmech/gosl/la"
)

// Rosenbrock is the classic banana-valley test function
// f(x,y) = (1-x)^2 + 100(y-x^2)^2, minimized at (1,1).
type Rosenbrock struct{}

// F is a gosl/fun.Sv-shaped scalar-of-vector misfit.
func (Rosenbrock) F(m la.Vector) float64 {
	x, y := m[0], m[1]
	a := 1 - x
	b := y - x*x
	return a*a + 100*b*b
}

// G is the analytic gradient of F.
func (Rosenbrock) G(m la.Vector) la.Vector {
	x, y := m[0], m[1]
	g := la.NewVector(2)
	g[0] = -2*(1-x) - 400*x*(y-x*x)
	g[1] = 200 * (y - x*x)
	return g
}

// Quadratic is f(m) = 0.5 * m^T A m for a diagonal A, minimized at m=0.
type Quadratic struct {
	A la.Vector // diagonal of A
}

func (q Quadratic) F(m la.Vector) float64 {
	sum := 0.0
	for i, a := range q.A {
		sum += 0.5 * a * m[i] * m[i]
	}
	return sum
}

func (q Quadratic) G(m la.Vector) la.Vector {
	g := la.NewVector(len(m))
	for i, a := range q.A {
		g[i] = a * m[i]
	}
	return g
}
