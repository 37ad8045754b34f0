package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/buckleypaul/catbot/internal/cli"
	"github.com/buckleypaul/catbot/internal/config"
	"github.com/buckleypaul/catbot/internal/device"
	"github.com/buckleypaul/catbot/internal/store"
	"github.com/buckleypaul/catbot/internal/supervisor"
	"github.com/buckleypaul/catbot/internal/ui"
)

// app carries what every command needs: the project root, merged config,
// the process runner and the history store.
type app struct {
	root   string
	cfg    config.Config
	runner supervisor.Runner
	store  *store.Store
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func newApp(dir string, verbose bool, stdout, stderr io.Writer) (*app, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = cwd
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	logger := cli.NewLogger(stderr, verbose)
	cfg, err := config.Load(root)
	if err != nil {
		logger.Warn("ignoring unreadable config", "error", err)
	}
	runner := supervisor.DefaultRunner{
		Environment: supervisor.DetectEnvironment(root, cfg.VenvPath),
		Stdout:      stdout,
		Stderr:      stderr,
		Logger:      logger,
	}

	return &app{
		root:   root,
		cfg:    cfg,
		runner: runner,
		store:  store.New(filepath.Join(root, config.DirName)),
		logger: logger,
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
	}, nil
}

func rootCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:    "catbot",
		Summary: "Run catbot and manage its Arduino board.",
		Out:     a.stderr,
		Subcommands: []*cli.Command{
			discoverCommand(a),
			startCommand(a),
			arduinoCommand(a),
			uploadCommand(a),
			portsCommand(a),
			monitorCommand(a),
			historyCommand(a),
			configCommand(a),
		},
	}
}

// exec runs spec and records the outcome in history.
func (a *app) exec(command string, spec supervisor.Spec) supervisor.Outcome {
	outcome := a.runner.Run(spec)

	record := store.RunRecord{
		Command:   command,
		Program:   spec.Program,
		Args:      spec.Args,
		Timestamp: a.now(),
		ExitCode:  outcome.ExitCode,
		Duration:  outcome.Duration.Round(time.Millisecond).String(),
	}
	if outcome.LaunchErr != nil {
		record.LaunchError = outcome.LaunchErr.Reason
	}
	if err := a.store.AddRun(record); err != nil {
		a.logger.Warn("failed to record run", "command", command, "error", err)
	}
	return outcome
}

// recorder adapts app.exec to supervisor.Runner for components that take a
// runner, such as the device discoverer.
type recorder struct {
	app     *app
	command string
}

func (r recorder) Run(spec supervisor.Spec) supervisor.Outcome {
	return r.app.exec(r.command, spec)
}

// fail reports err with a one-line explanation and the next step, and
// returns the exit status for the shell.
func (a *app) fail(err error) error {
	message, hint := a.describe(err)
	fmt.Fprintln(a.stderr, ui.Problem(message, hint))
	return &cli.ExitError{Code: 1}
}

func (a *app) describe(err error) (message, hint string) {
	var (
		launchErr *supervisor.LaunchError
		exitErr   *supervisor.ExitError
		headerErr *device.HeaderError
	)
	switch {
	case errors.As(err, &launchErr):
		return launchErr.Error(), a.launchHint(launchErr.Program)
	case errors.As(err, &exitErr):
		return exitErr.Error(), "see the output above; re-run with --verbose for details"
	case errors.As(err, &headerErr):
		return fmt.Sprintf("unexpected output from `%s board list`: %v", a.cfg.ArduinoCLI, err),
			"update arduino-cli, or run `catbot discover --debug` to see the raw listing"
	case errors.Is(err, device.ErrNoneFound):
		return fmt.Sprintf("no %s boards found", a.cfg.Vendor),
			"connect the board over USB and run `catbot discover` again"
	case errors.Is(err, device.ErrMultipleFound):
		return err.Error(), "disconnect all but one board, then run `catbot discover` again"
	case errors.Is(err, config.ErrNoBoard):
		return err.Error(), "connect the board and run `catbot discover`"
	}
	return err.Error(), ""
}

func (a *app) launchHint(program string) string {
	switch program {
	case a.cfg.ArduinoCLI:
		return `install arduino-cli (https://arduino.github.io/arduino-cli/) or set "arduino_cli" in .catbot/config.json`
	case a.cfg.Python:
		return `install Python 3, create a .venv in the project, or set "python" in .catbot/config.json`
	}
	return "check that " + program + " is installed and on $PATH"
}

// exitStatus turns a child's outcome into the command's result: launch
// failures are reported, non-zero exits are passed through to the shell.
func (a *app) exitStatus(outcome supervisor.Outcome) error {
	if outcome.LaunchErr != nil {
		return a.fail(outcome.LaunchErr)
	}
	if outcome.ExitCode == 0 {
		return nil
	}
	code := outcome.ExitCode
	if code < 0 {
		code = 1
	}
	return &cli.ExitError{Code: code}
}

func (a *app) boardFile() config.BoardFile {
	return config.BoardFile{Path: a.cfg.BoardConfigPath(a.root)}
}
