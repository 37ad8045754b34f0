package supervisor

import (
	"fmt"
	"strings"
	"time"
)

// IOPolicy controls how a child's standard streams are wired.
type IOPolicy int

const (
	// Inherit connects the child's stdin, stdout and stderr to the parent's.
	// Nothing is captured; only the exit code is observable.
	Inherit IOPolicy = iota
	// Capture accumulates stdout (and, separately, stderr) in memory and
	// returns the full buffers once the child has exited.
	Capture
)

func (p IOPolicy) String() string {
	switch p {
	case Inherit:
		return "inherit"
	case Capture:
		return "capture"
	default:
		return fmt.Sprintf("IOPolicy(%d)", int(p))
	}
}

// Spec describes one invocation of an external program. Arguments are passed
// to the program verbatim; no shell is involved.
type Spec struct {
	Program string
	Args    []string
	IO      IOPolicy
}

// NewSpec builds a Spec, copying args so later changes by the caller do not
// leak into the invocation.
func NewSpec(policy IOPolicy, program string, args ...string) Spec {
	return Spec{
		Program: program,
		Args:    append([]string(nil), args...),
		IO:      policy,
	}
}

// String renders the command line for logs and messages.
func (s Spec) String() string {
	if len(s.Args) == 0 {
		return s.Program
	}
	return s.Program + " " + strings.Join(s.Args, " ")
}

// Outcome is the result of a supervised run. Exactly one of two shapes is
// produced: the program launched and exited (Launched() is true and
// ExitCode holds its status), or it never launched (LaunchErr is set).
type Outcome struct {
	Spec      Spec
	ExitCode  int
	LaunchErr *LaunchError
	Output    []byte // captured stdout (Capture only)
	ErrOutput []byte // captured stderr (Capture only)
	Duration  time.Duration
}

// Launched reports whether the program started at all.
func (o Outcome) Launched() bool {
	return o.LaunchErr == nil
}

// Success reports a launched program that exited with status 0.
func (o Outcome) Success() bool {
	return o.Launched() && o.ExitCode == 0
}

// Err converts the outcome into an error: a *LaunchError when the program
// could not be started, an *ExitError when it exited non-zero, nil otherwise.
func (o Outcome) Err() error {
	if o.LaunchErr != nil {
		return o.LaunchErr
	}
	if o.ExitCode != 0 {
		return &ExitError{Program: o.Spec.Program, Code: o.ExitCode}
	}
	return nil
}

// LaunchError means the program could not be started: it was not found, is
// not executable, or the spec itself was invalid.
type LaunchError struct {
	Program string
	Reason  string
	Err     error
}

func (e *LaunchError) Error() string {
	if e.Program == "" {
		return "launch failed: " + e.Reason
	}
	return fmt.Sprintf("launch %s: %s", e.Program, e.Reason)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// ExitError means the program ran and exited with a non-zero status.
type ExitError struct {
	Program string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Program, e.Code)
}
