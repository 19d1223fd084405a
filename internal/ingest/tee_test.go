package ingest

import (
	"bytes"
	"errors"
	"testing"
)

type failingWriter struct {
	wrote int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.wrote++
	return 0, errors.New("sink full")
}

func TestDualWriterDeliversToBothSinks(t *testing.T) {
	var a, b bytes.Buffer
	w := newDualWriter(&a, &b)

	n, err := w.Write([]byte("line one\n"))
	if err != nil || n != 9 {
		t.Fatalf("Write = (%d, %v), want (9, nil)", n, err)
	}
	if a.String() != "line one\n" || b.String() != "line one\n" {
		t.Fatalf("sinks = %q / %q", a.String(), b.String())
	}
}

func TestDualWriterIsolatesFailingSink(t *testing.T) {
	bad := &failingWriter{}
	var good bytes.Buffer
	w := newDualWriter(bad, &good)

	for _, line := range []string{"one\n", "two\n", "three\n"} {
		n, err := w.Write([]byte(line))
		if err != nil || n != len(line) {
			t.Fatalf("Write(%q) = (%d, %v), want full length and nil", line, n, err)
		}
	}

	if good.String() != "one\ntwo\nthree\n" {
		t.Fatalf("healthy sink = %q", good.String())
	}
	// The failing sink is dropped after its first error.
	if bad.wrote != 1 {
		t.Fatalf("failing sink saw %d writes, want 1", bad.wrote)
	}
	errs := w.SinkErrors()
	if errs[0] == nil || errs[1] != nil {
		t.Fatalf("SinkErrors = %v", errs)
	}
}

func TestDualWriterSkipsNilSinks(t *testing.T) {
	var buf bytes.Buffer
	w := newDualWriter(nil, &buf)
	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "x" {
		t.Fatalf("sink = %q", buf.String())
	}
}
