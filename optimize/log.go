// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"fmt"
	"os"

	"github.com/cpmech/gosl/io"
)

// TraceWriter appends rows to the optimizer's trace log (output.optim):
// an append-only TSV with columns iter, step, misfit. Each initialize
// writes (iter, 0, f_new); each probe writes (_, alpha, f_try); finalize
// writes a blank separator row.
type TraceWriter struct {
	f *os.File
}

// NewTraceWriter opens (creating if needed) the trace log at path,
// appending to any existing content so a resumed run's history survives.
func NewTraceWriter(path string) (*TraceWriter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, &IOError{Op: "open_log", Name: path, Cause: err}
	}
	return &TraceWriter{f: f}, nil
}

// WriteInit appends the (iter, 0, f_new) row emitted by initialize_search.
func (o *TraceWriter) WriteInit(iter int, fNew float64) error {
	return o.writeRow(fmt.Sprintf("%d", iter), "0", io.Sf("%.15e", fNew))
}

// WriteProbe appends the (_, alpha, f_try) row emitted after each probe.
func (o *TraceWriter) WriteProbe(alpha, fTry float64) error {
	return o.writeRow("", io.Sf("%.15e", alpha), io.Sf("%.15e", fTry))
}

// WriteSeparator appends the blank row emitted by finalize_search.
func (o *TraceWriter) WriteSeparator() error {
	return o.writeRow("", "", "")
}

func (o *TraceWriter) writeRow(iter, step, misfit string) error {
	line := iter + "\t" + step + "\t" + misfit + "\n"
	if _, err := o.f.WriteString(line); err != nil {
		return &IOError{Op: "write_log", Name: o.f.Name(), Cause: err}
	}
	return o.f.Sync()
}

// Close flushes and closes the underlying file.
func (o *TraceWriter) Close() error {
	return o.f.Close()
}
