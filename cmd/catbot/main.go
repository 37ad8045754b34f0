package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	globals := pflag.NewFlagSet("catbot", pflag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(io.Discard)
	verbose := globals.BoolP("verbose", "v", false, "log every process launch and exit")
	dir := globals.StringP("dir", "C", "", "run as if catbot was started in this directory")

	if err := globals.Parse(args); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 2
		}
		args = []string{"--help"}
	} else {
		args = globals.Args()
	}

	a, err := newApp(*dir, *verbose, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	return exitCode(rootCommand(a).Execute(args), stderr)
}

// exitCode maps a command's error to the process exit status.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	// Commands that print their own output return an ExitError with the
	// desired code. Don't print a redundant "error:" line for those.
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return 1
}
