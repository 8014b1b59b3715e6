// internal/diag/diag.go
//
// The diagnostic channel is the single place the "current output/error
// sink" is swapped. Phases that produce noisy output (bundle loading,
// agent construction, match execution) redirect the channel to a log file
// and release the scope when done; release restores the exact previous
// sinks and closes file-backed destinations. Use is sequential — one
// redirection at a time, no nesting required.

package diag

import (
	"io"
)

// Channel holds the process-wide pair of diagnostic sinks.
type Channel struct {
	out io.Writer
	err io.Writer
}

// NewChannel returns a channel whose current sinks are out and err.
func NewChannel(out, err io.Writer) *Channel {
	return &Channel{out: out, err: err}
}

// Out returns the current output sink.
func (c *Channel) Out() io.Writer { return c.out }

// Err returns the current error sink.
func (c *Channel) Err() io.Writer { return c.err }

// Scope is an active redirection. Release restores the sinks captured at
// acquisition time.
type Scope struct {
	channel  *Channel
	prevOut  io.Writer
	prevErr  io.Writer
	dests    []io.Writer
	released bool
}

// Redirect installs dest as both the output and error sink and returns the
// scope guarding the previous pair.
func (c *Channel) Redirect(dest io.Writer) *Scope {
	return c.RedirectPair(dest, dest)
}

// RedirectPair installs separate output and error destinations.
func (c *Channel) RedirectPair(out, err io.Writer) *Scope {
	s := &Scope{channel: c, prevOut: c.out, prevErr: c.err}
	s.dests = append(s.dests, out)
	if err != out {
		s.dests = append(s.dests, err)
	}
	c.out = out
	c.err = err
	return s
}

// Release restores the previously captured sinks and closes any
// file-backed destination. Safe to call more than once; later calls are
// no-ops. The first close error is reported after restoration.
func (s *Scope) Release() error {
	if s == nil || s.released {
		return nil
	}
	s.released = true
	s.channel.out = s.prevOut
	s.channel.err = s.prevErr
	var firstErr error
	for _, dest := range s.dests {
		if closer, ok := dest.(io.Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
