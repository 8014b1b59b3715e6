package results

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func recordLine(i int) string {
	return fmt.Sprintf("%d\tmap.xml\tA\tB\t120\t0\t-1\tfalse\n", i)
}

type reportLog struct {
	lines []string
}

func (r *reportLog) Report(completed, total int) {
	percentage := float64(completed) * 100.0 / float64(total)
	r.lines = append(r.lines, fmt.Sprintf("%d/%d (%.2f%%)", completed, total, percentage))
}

func TestTrackingWriterCountsRecords(t *testing.T) {
	dst := &bytes.Buffer{}
	reports := &reportLog{}
	w := NewTrackingWriter(dst, reports, 6)
	for i := 0; i < 6; i++ {
		if _, err := w.Write([]byte(recordLine(i))); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if w.Completed() != 6 {
		t.Fatalf("expected 6 completed, got %d", w.Completed())
	}
	if len(reports.lines) != 1 || reports.lines[0] != "6/6 (100.00%)" {
		t.Fatalf("expected single final report 6/6 (100.00%%), got %v", reports.lines)
	}
}

func TestTrackingWriterChunkBoundaries(t *testing.T) {
	// One record split across several writes must count exactly once,
	// and joined records in a single write must all count.
	dst := &bytes.Buffer{}
	w := NewTrackingWriter(dst, &reportLog{}, 100)
	line := recordLine(0)
	for _, chunk := range []string{line[:3], line[3 : len(line)-1], line[len(line)-1:]} {
		if _, err := w.Write([]byte(chunk)); err != nil {
			t.Fatal(err)
		}
	}
	if w.Completed() != 1 {
		t.Fatalf("split line counted %d times", w.Completed())
	}
	if _, err := w.Write([]byte(recordLine(1) + recordLine(2))); err != nil {
		t.Fatal(err)
	}
	if w.Completed() != 3 {
		t.Fatalf("expected 3 completed after joined chunk, got %d", w.Completed())
	}
	if dst.String() != line+recordLine(1)+recordLine(2) {
		t.Fatalf("forwarding must be verbatim, got %q", dst.String())
	}
}

func TestTrackingWriterIgnoresNonRecords(t *testing.T) {
	dst := &bytes.Buffer{}
	w := NewTrackingWriter(dst, &reportLog{}, 10)
	noise := []string{
		"starting tournament\n",
		"iteration 0 complete\n", // does not start with a digit
		"12 units remaining\n",   // starts with a digit but has no tab
		"1\tmap\tA\tB\t5\n",      // fewer than 8 fields
		"\n",
		"   \n",
	}
	for _, line := range noise {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatal(err)
		}
	}
	if w.Completed() != 0 {
		t.Fatalf("noise lines counted as progress: %d", w.Completed())
	}
	if !strings.Contains(dst.String(), "starting tournament") {
		t.Fatalf("noise must still be forwarded")
	}
}

func TestTrackingWriterReportCadence(t *testing.T) {
	reports := &reportLog{}
	w := NewTrackingWriter(&bytes.Buffer{}, reports, 25)
	for i := 0; i < 25; i++ {
		if _, err := w.Write([]byte(recordLine(i))); err != nil {
			t.Fatal(err)
		}
	}
	want := []string{"10/25 (40.00%)", "20/25 (80.00%)", "25/25 (100.00%)"}
	if len(reports.lines) != len(want) {
		t.Fatalf("expected %d reports, got %v", len(want), reports.lines)
	}
	for i, line := range want {
		if reports.lines[i] != line {
			t.Fatalf("report %d: expected %q, got %q", i, line, reports.lines[i])
		}
	}
}

type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestTrackingWriterPropagatesForwardFailure(t *testing.T) {
	boom := errors.New("disk full")
	w := NewTrackingWriter(failingWriter{err: boom}, &reportLog{}, 5)
	if _, err := w.Write([]byte(recordLine(0))); !errors.Is(err, boom) {
		t.Fatalf("expected forwarding failure to propagate, got %v", err)
	}
	if w.Completed() != 0 {
		t.Fatalf("failed write must not advance the counter")
	}
}

func TestTrackingWriterObserverFailure(t *testing.T) {
	boom := errors.New("db closed")
	w := NewTrackingWriter(&bytes.Buffer{}, &reportLog{}, 5, func(Record) error { return boom })
	if _, err := w.Write([]byte(recordLine(0))); !errors.Is(err, boom) {
		t.Fatalf("expected observer failure to propagate, got %v", err)
	}
}

func TestConsoleReporterFormat(t *testing.T) {
	out := &bytes.Buffer{}
	ConsoleReporter{W: out}.Report(7, 9)
	if out.String() != "7/9 (77.78%)\n" {
		t.Fatalf("unexpected report line: %q", out.String())
	}
}

func TestClassify(t *testing.T) {
	r, ok := Classify("3\tmap.xml\tA\tB\t99\t1\t-1\ttrue")
	if !ok {
		t.Fatalf("well-formed line must classify")
	}
	if r.Iteration != "3" || r.AgentB != "B" || r.TimedOut != "true" {
		t.Fatalf("fields misparsed: %+v", r)
	}
	if _, ok := Classify("map\t1\t2\t3\t4\t5\t6\t7"); ok {
		t.Fatalf("line not starting with a digit must not classify")
	}
	r, ok = Classify("1\ta\tb\tc\td\te\tf\tg\textra1\textra2")
	if !ok || len(r.Extra) != 2 {
		t.Fatalf("extra fields must be preserved: %+v", r)
	}
}
