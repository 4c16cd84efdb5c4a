// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"os"

	"github.com/cpmech/gosl/la"
)

// MemStore is an in-memory Store, substituting for DirStore in tests that
// exercise the optimizer's sequencing without touching disk (Design
// Notes: "abstract it behind a store interface so tests can substitute
// an in-memory store").
type MemStore struct {
	vectors map[string]la.Vector
	scalars map[string]float64
	matrces map[string][]la.Vector
}

// NewMemStore returns an empty in-memory Store.
func NewMemStore() *MemStore {
	return &MemStore{
		vectors: make(map[string]la.Vector),
		scalars: make(map[string]float64),
		matrces: make(map[string][]la.Vector),
	}
}

func (o *MemStore) LoadVector(name string) (la.Vector, error) {
	v, ok := o.vectors[name]
	if !ok {
		return nil, &IOError{Op: "load_vector", Name: name, Cause: os.ErrNotExist}
	}
	cp := la.NewVector(len(v))
	copy(cp, v)
	return cp, nil
}

func (o *MemStore) SaveVector(name string, v la.Vector) error {
	cp := la.NewVector(len(v))
	copy(cp, v)
	o.vectors[name] = cp
	return nil
}

func (o *MemStore) LoadScalar(name string) (float64, error) {
	x, ok := o.scalars[name]
	if !ok {
		return 0, &IOError{Op: "load_scalar", Name: name, Cause: os.ErrNotExist}
	}
	return x, nil
}

func (o *MemStore) SaveScalar(name string, x float64) error {
	o.scalars[name] = x
	return nil
}

func (o *MemStore) SaveMatrix(name string, cols []la.Vector) error {
	cp := make([]la.Vector, len(cols))
	for i, c := range cols {
		v := la.NewVector(len(c))
		copy(v, c)
		cp[i] = v
	}
	o.matrces[name] = cp
	return nil
}

func (o *MemStore) LoadMatrix(name string) ([]la.Vector, error) {
	cols, ok := o.matrces[name]
	if !ok {
		return nil, &IOError{Op: "load_matrix", Name: name, Cause: os.ErrNotExist}
	}
	return cols, nil
}

func (o *MemStore) Rename(src, dst string) error {
	if v, ok := o.vectors[src]; ok {
		o.vectors[dst] = v
		delete(o.vectors, src)
		return nil
	}
	if x, ok := o.scalars[src]; ok {
		o.scalars[dst] = x
		delete(o.scalars, src)
		return nil
	}
	if m, ok := o.matrces[src]; ok {
		o.matrces[dst] = m
		delete(o.matrces, src)
		return nil
	}
	return &IOError{Op: "rename", Name: src, Cause: os.ErrNotExist}
}

func (o *MemStore) Remove(name string) error {
	delete(o.vectors, name)
	delete(o.scalars, name)
	delete(o.matrces, name)
	return nil
}

func (o *MemStore) Exists(name string) bool {
	if _, ok := o.vectors[name]; ok {
		return true
	}
	if _, ok := o.scalars[name]; ok {
		return true
	}
	if _, ok := o.matrces[name]; ok {
		return true
	}
	return false
}
