// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

// Store is a named persistent vector/scalar store rooted at a single
// working directory. No external component writes into it except the
// solver façade, which is allowed to write f_new/f_try/g_new by agreement
// (§3 Ownership); every other name is the optimizer's alone.
//
// Vectors are stored with an explicit 8-byte little-endian length header
// followed by N little-endian float64 values (§6). Scalars are stored as
// one full-precision text literal so a run can be inspected mid-resume.
// Writes go to a sibling temp file and are renamed into place so a save
// is all-or-nothing even if the process is killed by a job scheduler
// mid-write.
type Store interface {
	LoadVector(name string) (la.Vector, error)
	SaveVector(name string, v la.Vector) error
	LoadScalar(name string) (float64, error)
	SaveScalar(name string, x float64) error
	SaveMatrix(name string, cols []la.Vector) error
	LoadMatrix(name string) ([]la.Vector, error)
	Rename(src, dst string) error
	Remove(name string) error
	Exists(name string) bool
}

// DirStore is the on-disk Store implementation (component A).
type DirStore struct {
	Path string
}

// NewDirStore returns a Store rooted at dir, creating it if necessary.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &IOError{Op: "mkdir", Name: dir, Cause: err}
	}
	return &DirStore{Path: dir}, nil
}

func (o *DirStore) full(name string) string {
	return filepath.Join(o.Path, name)
}

// writeAtomic writes data to a temp file beside the destination and
// renames it into place, so save_vector/save_scalar are durable before
// the call returns: a reader never observes a partially written file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// LoadVector reads a length-prefixed float64 blob.
func (o *DirStore) LoadVector(name string) (la.Vector, error) {
	path := o.full(name)
	buf, err := io.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "load_vector", Name: name, Cause: err}
	}
	v, err := decodeVector(buf)
	if err != nil {
		return nil, &IOError{Op: "load_vector", Name: name, Cause: err}
	}
	return v, nil
}

// SaveVector writes v as a length-prefixed float64 blob.
func (o *DirStore) SaveVector(name string, v la.Vector) error {
	if err := writeAtomic(o.full(name), encodeVector(v)); err != nil {
		return &IOError{Op: "save_vector", Name: name, Cause: err}
	}
	return nil
}

// LoadScalar reads a single full-precision floating-point literal.
func (o *DirStore) LoadScalar(name string) (float64, error) {
	path := o.full(name)
	buf, err := io.ReadFile(path)
	if err != nil {
		return 0, &IOError{Op: "load_scalar", Name: name, Cause: err}
	}
	x, err := strconv.ParseFloat(string(buf), 64)
	if err != nil {
		return 0, &IOError{Op: "load_scalar", Name: name, Cause: err}
	}
	return x, nil
}

// SaveScalar writes x as text, full precision, human-inspectable.
func (o *DirStore) SaveScalar(name string, x float64) error {
	text := strconv.FormatFloat(x, 'g', -1, 64)
	if err := writeAtomic(o.full(name), []byte(text)); err != nil {
		return &IOError{Op: "save_scalar", Name: name, Cause: err}
	}
	return nil
}

// SaveMatrix writes LBFGS/S or LBFGS/Y as a column-major matrix: an
// 8-byte row count, an 8-byte column count, then columns concatenated.
func (o *DirStore) SaveMatrix(name string, cols []la.Vector) error {
	if err := writeAtomic(o.full(name), encodeMatrix(cols)); err != nil {
		return &IOError{Op: "save_matrix", Name: name, Cause: err}
	}
	return nil
}

// LoadMatrix reads a matrix written by SaveMatrix back into its columns.
func (o *DirStore) LoadMatrix(name string) ([]la.Vector, error) {
	buf, err := io.ReadFile(o.full(name))
	if err != nil {
		return nil, &IOError{Op: "load_matrix", Name: name, Cause: err}
	}
	cols, err := decodeMatrix(buf)
	if err != nil {
		return nil, &IOError{Op: "load_matrix", Name: name, Cause: err}
	}
	return cols, nil
}

// Rename moves src to dst, used to rotate *_new to *_old at finalize.
func (o *DirStore) Rename(src, dst string) error {
	if err := os.Rename(o.full(src), o.full(dst)); err != nil {
		return &IOError{Op: "rename", Name: src, Cause: err}
	}
	return nil
}

// Remove deletes a name if present; removing an absent name is not an error
// since finalize_search unconditionally cleans transients that may not
// exist yet on a freshly resumed run.
func (o *DirStore) Remove(name string) error {
	if err := os.Remove(o.full(name)); err != nil && !os.IsNotExist(err) {
		return &IOError{Op: "remove", Name: name, Cause: err}
	}
	return nil
}

// Exists reports whether name is present in the store.
func (o *DirStore) Exists(name string) bool {
	_, err := os.Stat(o.full(name))
	return err == nil
}

func encodeVector(v la.Vector) []byte {
	buf := make([]byte, 8+8*len(v))
	binary.LittleEndian.PutUint64(buf[:8], uint64(len(v)))
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[8+8*i:16+8*i], math.Float64bits(x))
	}
	return buf
}

func decodeVector(buf []byte) (la.Vector, error) {
	if len(buf) < 8 {
		return nil, fmt.Errorf("truncated vector header: %d bytes", len(buf))
	}
	n := int(binary.LittleEndian.Uint64(buf[:8]))
	if len(buf) != 8+8*n {
		return nil, fmt.Errorf("vector length mismatch: header says %d, got %d bytes of payload", n, len(buf)-8)
	}
	v := la.NewVector(n)
	for i := 0; i < n; i++ {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8+8*i : 16+8*i]))
	}
	return v, nil
}

func encodeMatrix(cols []la.Vector) []byte {
	ncol := len(cols)
	nrow := 0
	if ncol > 0 {
		nrow = len(cols[0])
	}
	buf := make([]byte, 16+8*nrow*ncol)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(nrow))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(ncol))
	off := 16
	for _, col := range cols {
		for _, x := range col {
			binary.LittleEndian.PutUint64(buf[off:off+8], math.Float64bits(x))
			off += 8
		}
	}
	return buf
}

func decodeMatrix(buf []byte) ([]la.Vector, error) {
	if len(buf) < 16 {
		return nil, fmt.Errorf("truncated matrix header: %d bytes", len(buf))
	}
	nrow := int(binary.LittleEndian.Uint64(buf[0:8]))
	ncol := int(binary.LittleEndian.Uint64(buf[8:16]))
	if len(buf) != 16+8*nrow*ncol {
		return nil, fmt.Errorf("matrix payload size mismatch: header says %d x %d, got %d bytes", nrow, ncol, len(buf)-16)
	}
	cols := make([]la.Vector, ncol)
	off := 16
	for c := 0; c < ncol; c++ {
		col := la.NewVector(nrow)
		for r := 0; r < nrow; r++ {
			col[r] = math.Float64frombits(binary.LittleEndian.Uint64(buf[off : off+8]))
			off += 8
		}
		cols[c] = col
	}
	return cols, nil
}
