// internal/results/record.go
//
// Match records are one tab-separated line per completed game:
//
//	iteration  scenario  agentA  agentB  elapsedTime  winner  crashed  timedOut
//
// A line is a record iff its first character is a decimal digit, it
// contains at least one tab, and it splits into at least 8 fields. Fields
// are kept as raw text; the stream is the source of truth and this core
// never reinterprets values it merely forwards.

package results

import "strings"

// Record is one classified match result line.
type Record struct {
	Iteration string
	Scenario  string
	AgentA    string
	AgentB    string
	Elapsed   string
	Winner    string
	Crashed   string
	TimedOut  string
	// Extra holds any fields beyond the eighth, verbatim.
	Extra []string
}

// Classify reports whether a trimmed line is a match record and parses it
// when it is. It never fails — a line either matches or it does not.
func Classify(line string) (Record, bool) {
	if line == "" || line[0] < '0' || line[0] > '9' {
		return Record{}, false
	}
	if !strings.ContainsRune(line, '\t') {
		return Record{}, false
	}
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return Record{}, false
	}
	r := Record{
		Iteration: fields[0],
		Scenario:  fields[1],
		AgentA:    fields[2],
		AgentB:    fields[3],
		Elapsed:   fields[4],
		Winner:    fields[5],
		Crashed:   fields[6],
		TimedOut:  fields[7],
	}
	if len(fields) > 8 {
		r.Extra = fields[8:]
	}
	return r, true
}
