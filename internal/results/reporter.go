package results

import (
	"fmt"
	"io"
)

// Reporter receives operator-facing progress updates.
type Reporter interface {
	Report(completed, total int)
}

// ConsoleReporter prints "<completed>/<total> (<percentage>%)" lines and
// flushes the destination immediately when it supports flushing.
type ConsoleReporter struct {
	W io.Writer
}

func (r ConsoleReporter) Report(completed, total int) {
	percentage := float64(completed) * 100.0 / float64(total)
	fmt.Fprintf(r.W, "%d/%d (%.2f%%)\n", completed, total, percentage)
	switch f := r.W.(type) {
	case interface{ Flush() error }:
		_ = f.Flush()
	case interface{ Sync() error }:
		_ = f.Sync()
	}
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(completed, total int)

func (f ReporterFunc) Report(completed, total int) { f(completed, total) }
