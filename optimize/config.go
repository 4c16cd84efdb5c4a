// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package optimize implements the nonlinear optimization engine that drives
// a full-waveform inversion: search-direction schemes, line search, and the
// per-iteration driver that checkpoints every significant vector to disk.
package optimize

import (
	"encoding/json"

	"github.com/cpmech/gosl/io"
)

// Scheme selects the search-direction algorithm.
type Scheme string

// Search-direction schemes.
const (
	GradientDescent  Scheme = "GradientDescent"
	ConjugateGradient Scheme = "ConjugateGradient"
	QuasiNewton      Scheme = "QuasiNewton"
)

// SrchType selects the line-search algorithm.
type SrchType string

// Line-search types.
const (
	Backtrack SrchType = "Backtrack"
	Bracket   SrchType = "Bracket"
	Fixed     SrchType = "Fixed"
)

// Config holds all optimizer parameters. It is read once at setup and
// never mutated afterwards; every subcomponent receives it by value or as
// a read-only pointer, replacing the source's mutable global parameter
// singletons.
type Config struct {
	Scheme   Scheme   `json:"scheme"`   // search-direction scheme
	SrchType SrchType `json:"srchtype"` // line-search type

	NLCGMax    int     `json:"nlcgmax"`    // NLCG restart interval
	NLCGThresh float64 `json:"nlcgthresh"` // NLCG descent-angle tolerance

	LBFGSMax int `json:"lbfgsmax"` // L-BFGS history length M

	SrchMax int `json:"srchmax"` // max probes per line search

	StepLen      float64 `json:"steplen"`      // initial unitless step
	StepMax      float64 `json:"stepmax"`      // cap on unitless step; 0 = uncapped
	AdHocScaling float64 `json:"adhocscaling"` // extra multiplier on initial alpha; 0 = off

	Begin int `json:"begin"` // first iteration index
	End   int `json:"end"`   // last iteration index (inclusive)

	StopRatio float64 `json:"stopratio"` // ||m_new-m_old||/||m_new|| stopping threshold; 0 = disabled
}

// DefaultConfig returns a Config with every default spec.md §6 lists.
func DefaultConfig() Config {
	return Config{
		Scheme:       QuasiNewton,
		SrchType:     Backtrack,
		NLCGMax:      10,
		NLCGThresh:   0.5,
		LBFGSMax:     6,
		SrchMax:      10,
		StepLen:      0.05,
		StepMax:      0,
		AdHocScaling: 0,
	}
}

// ReadConfig reads a JSON configuration file, filling in defaults for any
// field the file omits, then validates the result.
func ReadConfig(fn string) (cfg Config, err error) {
	cfg = DefaultConfig()
	buf, err := io.ReadFile(fn)
	if err != nil {
		return cfg, &ConfigError{Msg: io.Sf("cannot read configuration file %q", fn), Cause: err}
	}
	// overlay onto the defaults: fields absent from the JSON keep their
	// DefaultConfig value since json.Unmarshal only touches keys present
	if err = json.Unmarshal(buf, &cfg); err != nil {
		return cfg, &ConfigError{Msg: io.Sf("cannot parse configuration file %q", fn), Cause: err}
	}
	if err = cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks for missing mandatory parameters and contradictory
// combinations, failing at setup before anything else runs.
func (cfg Config) Validate() error {
	switch cfg.Scheme {
	case GradientDescent, ConjugateGradient, QuasiNewton:
	default:
		return &ConfigError{Msg: io.Sf("unknown SCHEME %q", cfg.Scheme)}
	}
	switch cfg.SrchType {
	case Backtrack, Bracket, Fixed:
	default:
		return &ConfigError{Msg: io.Sf("unknown SRCHTYPE %q", cfg.SrchType)}
	}
	if cfg.StepLen <= 0 {
		return &ConfigError{Msg: "STEPLEN must be > 0 (required on the first iteration)"}
	}
	if cfg.SrchMax < 1 {
		return &ConfigError{Msg: "SRCHMAX must be >= 1"}
	}
	if cfg.LBFGSMax < 1 {
		return &ConfigError{Msg: "LBFGSMAX must be >= 1"}
	}
	if cfg.NLCGMax < 1 {
		return &ConfigError{Msg: "NLCGMAX must be >= 1"}
	}
	if cfg.End < cfg.Begin {
		return &ConfigError{Msg: io.Sf("END (%d) must be >= BEGIN (%d)", cfg.End, cfg.Begin)}
	}
	return nil
}
