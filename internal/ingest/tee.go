package ingest

import "io"

// dualWriter fans one stream out to multiple sinks with independent failure
// handling. A sink that errors is dropped; surviving sinks keep receiving
// the stream, and Write never reports an error upstream so the subprocess
// copy loop is not torn down mid-invocation.
type dualWriter struct {
	sinks []io.Writer
	errs  []error
}

func newDualWriter(sinks ...io.Writer) *dualWriter {
	live := make([]io.Writer, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			live = append(live, sink)
		}
	}
	return &dualWriter{sinks: live, errs: make([]error, len(live))}
}

func (w *dualWriter) Write(p []byte) (int, error) {
	for i, sink := range w.sinks {
		if w.errs[i] != nil {
			continue
		}
		if _, err := sink.Write(p); err != nil {
			w.errs[i] = err
		}
	}
	return len(p), nil
}

// SinkErrors returns the first error observed per sink; nil entries mark
// healthy sinks.
func (w *dualWriter) SinkErrors() []error {
	out := make([]error, len(w.errs))
	copy(out, w.errs)
	return out
}
