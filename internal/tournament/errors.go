package tournament

import "fmt"

// RunnerError wraps any failure surfaced by the tournament runner.
type RunnerError struct {
	Err error
}

func (e *RunnerError) Error() string {
	return fmt.Sprintf("tournament: runner: %v", e.Err)
}

func (e *RunnerError) Unwrap() error { return e.Err }

// IOError reports a failure creating a folder or opening one of the run's
// sinks.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("tournament: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
