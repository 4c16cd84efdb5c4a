// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import "fmt"

// ConfigError reports a missing mandatory parameter or a contradictory
// configuration combination. It fails at setup; nothing else runs.
type ConfigError struct {
	Msg   string
	Cause error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s: %v", e.Msg, e.Cause)
	}
	return fmt.Sprintf("config error: %s", e.Msg)
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// IOError reports a vector-store read/write failure. The optimizer aborts
// the current iteration, leaving the last quiescent state on disk.
type IOError struct {
	Op    string // e.g. "load_vector", "save_scalar"
	Name  string // vector/scalar name
	Cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error: %s(%q): %v", e.Op, e.Name, e.Cause)
}

func (e *IOError) Unwrap() error { return e.Cause }

// NumericalError reports a NaN/Inf trial misfit (f_try), a zero search
// direction or s_new at initialize_search, a non-descent direction after
// restart, or an L-BFGS curvature failure. g_new and f_new are not
// checked for NaN/Inf.
type NumericalError struct {
	Msg string
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("numerical error: %s", e.Msg)
}

// SearchFailed reports that SRCHMAX was reached with no acceptable probe.
// The iteration is abandoned; no row is written to the trace log for the
// failure.
type SearchFailed struct {
	Iter   int
	Probes int
}

func (e *SearchFailed) Error() string {
	return fmt.Sprintf("line search failed at iteration %d after %d probes", e.Iter, e.Probes)
}
