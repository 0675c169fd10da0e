// This file is part of rerecord.
//
// rerecord is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// rerecord is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with rerecord.  If not, see <https://www.gnu.org/licenses/>.

// Package test collects small helpers shared by every package's own test
// suite: success/failure assertions that accept either a bool or an error,
// deep-equality assertions, and a couple of io.Writer test doubles.
package test

import (
	"fmt"
	"math"
	"reflect"
	"testing"
)

// outcome reduces a bool or an error down to a pass/fail reading. Any other
// type is treated as a test-author mistake and fails loudly.
func outcome(t *testing.T, v interface{}) bool {
	t.Helper()

	switch v := v.(type) {
	case bool:
		return v
	case error:
		return v == nil
	case nil:
		return true
	default:
		t.Fatalf("test: unsupported value passed to assertion: %T", v)
		return false
	}
}

// ExpectSuccess fails the test if v (a bool or an error) indicates failure.
func ExpectSuccess(t *testing.T, v interface{}) {
	t.Helper()
	if !outcome(t, v) {
		t.Errorf("expected success, got failure: %v", v)
	}
}

// ExpectFailure fails the test if v (a bool or an error) indicates success.
func ExpectFailure(t *testing.T, v interface{}) {
	t.Helper()
	if outcome(t, v) {
		t.Errorf("expected failure, got success: %v", v)
	}
}

// Equate fails the test if got != want, for comparable or deeply-equatable
// values. It also returns the comparison so it can itself be passed to
// ExpectSuccess/ExpectFailure.
func Equate(t *testing.T, got, want interface{}) bool {
	t.Helper()
	eq := reflect.DeepEqual(got, want)
	if !eq {
		t.Errorf("expected %#v, got %#v", want, got)
	}
	return eq
}

// ExpectEquality fails the test if a and b are not deeply equal.
func ExpectEquality(t *testing.T, a, b interface{}) {
	t.Helper()
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected %#v and %#v to be equal", a, b)
	}
}

// ExpectInequality fails the test if a and b are deeply equal.
func ExpectInequality(t *testing.T, a, b interface{}) {
	t.Helper()
	if reflect.DeepEqual(a, b) {
		t.Errorf("expected %#v and %#v to be unequal", a, b)
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// ExpectApproximate fails the test if a and b differ by more than tolerance,
// taken as a fraction of b.
func ExpectApproximate(t *testing.T, a, b interface{}, tolerance ...float64) {
	t.Helper()

	tol := 0.5
	if len(tolerance) > 0 {
		tol = tolerance[0]
	}

	af, ok := asFloat(a)
	if !ok {
		t.Fatalf("test: unsupported value passed to ExpectApproximate: %T", a)
		return
	}
	bf, ok := asFloat(b)
	if !ok {
		t.Fatalf("test: unsupported value passed to ExpectApproximate: %T", b)
		return
	}

	if math.Abs(af-bf) > math.Abs(bf)*tol {
		t.Errorf("expected %v to be approximately equal to %v (tolerance %v)", a, b, tol)
	}
}

// Writer is an io.Writer test double that accumulates everything written to
// it so it can be compared against an expected string.
type Writer struct {
	buf []byte
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// String returns everything written so far.
func (w *Writer) String() string {
	return string(w.buf)
}

// Compare reports whether everything written so far equals s.
func (w *Writer) Compare(s string) bool {
	return w.String() == s
}

// Clear empties the writer.
func (w *Writer) Clear() {
	w.buf = w.buf[:0]
}

// CappedWriter accumulates up to limit bytes; anything beyond that is
// silently discarded.
type CappedWriter struct {
	limit int
	buf   []byte
}

// NewCappedWriter creates a CappedWriter with the given limit.
func NewCappedWriter(limit int) (*CappedWriter, error) {
	if limit < 0 {
		return nil, fmt.Errorf("test: negative limit")
	}
	return &CappedWriter{limit: limit}, nil
}

// Write implements io.Writer.
func (w *CappedWriter) Write(p []byte) (int, error) {
	room := w.limit - len(w.buf)
	if room <= 0 {
		return len(p), nil
	}
	if room > len(p) {
		room = len(p)
	}
	w.buf = append(w.buf, p[:room]...)
	return len(p), nil
}

// String returns the content written so far, capped at limit bytes.
func (w *CappedWriter) String() string {
	return string(w.buf)
}

// Reset empties the writer.
func (w *CappedWriter) Reset() {
	w.buf = w.buf[:0]
}

// RingWriter retains only the most recent limit bytes written to it.
type RingWriter struct {
	limit int
	buf   []byte
}

// NewRingWriter creates a RingWriter with the given limit.
func NewRingWriter(limit int) (*RingWriter, error) {
	if limit < 0 {
		return nil, fmt.Errorf("test: negative limit")
	}
	return &RingWriter{limit: limit}, nil
}

// Write implements io.Writer.
func (w *RingWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	if len(w.buf) > w.limit {
		w.buf = w.buf[len(w.buf)-w.limit:]
	}
	return len(p), nil
}

// String returns the most recent limit bytes written.
func (w *RingWriter) String() string {
	return string(w.buf)
}

// Reset empties the writer.
func (w *RingWriter) Reset() {
	w.buf = w.buf[:0]
}
