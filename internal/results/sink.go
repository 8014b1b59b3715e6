// internal/results/sink.go
//
// TrackingWriter decorates the persistent results sink: every write is
// forwarded verbatim first (the stream must survive a crash mid-run), then
// fed to a line classifier that counts completed matches and reports
// progress. Persistence and progress counting stay separate types joined
// here, so each is testable on its own.

package results

import (
	"fmt"
	"io"
	"strings"
)

// reportInterval is how many completed games pass between progress
// reports; a report is also emitted when the final game completes.
const reportInterval = 10

// lineClassifier accumulates bytes into lines and invokes onRecord for
// every line that classifies as a match record. Chunk boundaries are
// irrelevant: a line split across writes is still seen exactly once.
type lineClassifier struct {
	buf      strings.Builder
	onRecord func(Record) error
}

func (c *lineClassifier) feed(p []byte) error {
	for _, b := range p {
		c.buf.WriteByte(b)
		if b != '\n' {
			continue
		}
		line := strings.TrimSpace(c.buf.String())
		c.buf.Reset()
		if record, ok := Classify(line); ok {
			if err := c.onRecord(record); err != nil {
				return err
			}
		}
	}
	return nil
}

// Observer receives every classified record, in receipt order.
type Observer func(Record) error

// TrackingWriter forwards writes to an underlying sink while counting
// match records and reporting progress against a precomputed total. The
// caller guarantees total > 0.
type TrackingWriter struct {
	dst        io.Writer
	reporter   Reporter
	classifier lineClassifier
	observers  []Observer
	completed  int
	total      int
}

// NewTrackingWriter wraps dst. Progress reports go to reporter; observers
// are notified of every record after the counter is updated.
func NewTrackingWriter(dst io.Writer, reporter Reporter, total int, observers ...Observer) *TrackingWriter {
	w := &TrackingWriter{dst: dst, reporter: reporter, total: total, observers: observers}
	w.classifier.onRecord = w.record
	return w
}

// Write forwards p immediately, then updates the completion counter from
// any lines completed by this chunk. Forwarding failures propagate.
func (w *TrackingWriter) Write(p []byte) (int, error) {
	n, err := w.dst.Write(p)
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	if err := w.classifier.feed(p); err != nil {
		return n, err
	}
	return n, nil
}

func (w *TrackingWriter) record(r Record) error {
	w.completed++
	for _, observe := range w.observers {
		if err := observe(r); err != nil {
			return fmt.Errorf("results: observe record: %w", err)
		}
	}
	if w.completed%reportInterval == 0 || w.completed == w.total {
		w.reporter.Report(w.completed, w.total)
	}
	return nil
}

// Completed returns how many match records have been classified so far.
// The counter is monotonic.
func (w *TrackingWriter) Completed() int { return w.completed }

// Total returns the expected number of match records.
func (w *TrackingWriter) Total() int { return w.total }
