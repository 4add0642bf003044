// Copyright 2023 The ModKit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package files provides helpers for writing files atomically.
package files

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// Writer stages bytes for a destination file and applies them all at once
// when Close is called. The staged bytes are written to a temporary file in
// the destination's directory and renamed into place, so a failure at any
// point leaves the old file contents untouched.
type Writer struct {
	dst    string       // name of the destination file
	buf    bytes.Buffer // staged contents
	closed bool
}

// NewWriter returns a writer that stages writes for the named file. Callers
// must arrange for Cleanup to run so that an early return doesn't leak the
// staged bytes:
//
//	w := files.NewWriter(name)
//	defer w.Cleanup()
//	fmt.Fprintln(w, "...")
//	return w.Close()
func NewWriter(file string) *Writer {
	return &Writer{dst: file}
}

// Write stages p for the destination file. It always succeeds on an open
// writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("%s: writer is closed", w.dst)
	}
	return w.buf.Write(p)
}

// Close writes the staged bytes to the destination file and closes the
// writer. If Close returns an error, the destination file is unchanged.
func (w *Writer) Close() error {
	if w.closed {
		return fmt.Errorf("%s: writer is closed", w.dst)
	}
	w.closed = true

	dir, base := filepath.Dir(w.dst), filepath.Base(w.dst)
	tmp, err := os.CreateTemp(dir, base+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(w.buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), w.dst)
}

// Cleanup discards any staged bytes without writing them to the destination.
// It is safe to call Cleanup even if Close or Cleanup have already been
// called.
func (w *Writer) Cleanup() {
	w.closed = true
	w.buf.Reset()
}
