package supervisor

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Runner launches external programs. The command layer depends on this
// interface so tests can substitute a fake.
type Runner interface {
	Run(spec Spec) Outcome
}

// DefaultRunner runs programs with os/exec. Zero values inherit the parent's
// environment, working directory and standard streams.
type DefaultRunner struct {
	Environment

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// Run starts the program described by spec and blocks until it exits.
// A program that cannot be started yields an Outcome with LaunchErr set; a
// program that runs and fails yields its exit code. Nothing is retried, and
// there is no timeout: a child that never exits blocks the caller.
func (r DefaultRunner) Run(spec Spec) Outcome {
	start := time.Now()
	outcome := Outcome{Spec: spec}
	logger := r.logger()

	if strings.TrimSpace(spec.Program) == "" {
		outcome.LaunchErr = &LaunchError{Reason: "program name is empty"}
		return outcome
	}

	cmd := exec.Command(r.resolve(spec.Program), spec.Args...)
	r.apply(cmd)

	var stdout, stderr bytes.Buffer
	switch spec.IO {
	case Inherit:
		cmd.Stdin = r.stdin()
		cmd.Stdout = r.stdout()
		cmd.Stderr = r.stderr()
	case Capture:
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	default:
		outcome.LaunchErr = &LaunchError{Program: spec.Program, Reason: "unknown I/O policy " + spec.IO.String()}
		return outcome
	}

	if err := cmd.Start(); err != nil {
		outcome.LaunchErr = newLaunchError(spec.Program, err)
		outcome.Duration = time.Since(start)
		logger.Debug("process launch failed", "program", spec.Program, "error", err)
		return outcome
	}
	logger.Debug("process started",
		"program", spec.Program,
		"args", spec.Args,
		"io", spec.IO.String(),
		"pid", cmd.Process.Pid,
	)

	err := cmd.Wait()
	outcome.Duration = time.Since(start)
	if spec.IO == Capture {
		outcome.Output = stdout.Bytes()
		outcome.ErrOutput = stderr.Bytes()
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			outcome.ExitCode = exitErr.ExitCode()
		case cmd.ProcessState != nil:
			// The child exited but copying its output failed.
			outcome.ExitCode = cmd.ProcessState.ExitCode()
			logger.Warn("process output incomplete", "program", spec.Program, "error", err)
		default:
			outcome.ExitCode = -1
		}
	}

	logger.Debug("process exited",
		"program", spec.Program,
		"exit_code", outcome.ExitCode,
		"duration", outcome.Duration,
	)
	return outcome
}

func newLaunchError(program string, err error) *LaunchError {
	reason := err.Error()
	switch {
	case errors.Is(err, exec.ErrNotFound):
		reason = "executable not found in $PATH"
	case errors.Is(err, exec.ErrDot):
		reason = "refusing to run executable from the current directory"
	case errors.Is(err, fs.ErrNotExist):
		reason = "no such file"
	case errors.Is(err, fs.ErrPermission):
		reason = "permission denied (is it executable?)"
	}
	return &LaunchError{Program: program, Reason: reason, Err: err}
}

func (r DefaultRunner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (r DefaultRunner) stdin() io.Reader {
	if r.Stdin != nil {
		return r.Stdin
	}
	return os.Stdin
}

func (r DefaultRunner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r DefaultRunner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}
