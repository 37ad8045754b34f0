package cli

import "fmt"

// ExitError signals a non-zero exit code without printing an extra error
// message. The command is expected to have already written its own output,
// e.g. the explanation for "no boards found" or a child's exit status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}
