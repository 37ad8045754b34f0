package main

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/buckleypaul/catbot/internal/cli"
	"github.com/buckleypaul/catbot/internal/config"
	"github.com/buckleypaul/catbot/internal/supervisor"
	"github.com/buckleypaul/catbot/internal/ui"
)

func startCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:    "start",
		Aliases: []string{"s"},
		Summary: "Start catbot on the Raspberry Pi",
		Usage:   "catbot start [script]",
		Run: func(args []string) error {
			script := a.cfg.Script
			switch len(args) {
			case 0:
			case 1:
				script = args[0]
			default:
				return fmt.Errorf("start takes at most one script path, got %d arguments", len(args))
			}

			fmt.Fprintln(a.stderr, ui.DimStyle.Render("starting catbot..."))
			outcome := a.exec("start", supervisor.NewSpec(supervisor.Inherit, a.cfg.Python, script))
			a.printExit("", outcome)
			return a.exitStatus(outcome)
		},
	}
}

func arduinoCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:    "arduino",
		Aliases: []string{"a"},
		Summary: "Run arduino-cli with the given arguments",
		Usage:   "catbot arduino [arduino-cli arguments...]",
		RawArgs: true,
		Run: func(args []string) error {
			outcome := a.exec("arduino", supervisor.NewSpec(supervisor.Inherit, a.cfg.ArduinoCLI, args...))
			a.printExit("", outcome)
			return a.exitStatus(outcome)
		},
	}
}

func uploadCommand(a *app) *cli.Command {
	var sketch, port, fqbn string
	return &cli.Command{
		Name:    "upload",
		Aliases: []string{"u"},
		Summary: "Compile the sketch and upload it to the saved board",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("upload", pflag.ContinueOnError)
			fs.StringVar(&sketch, "sketch", a.cfg.SketchDir, "sketch directory to compile")
			fs.StringVarP(&port, "port", "p", "", "override the saved port")
			fs.StringVarP(&fqbn, "fqbn", "b", "", "override the saved board FQBN")
			return fs
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("upload takes no arguments; use --sketch to pick a sketch")
			}

			// With both overrides a missing board file is fine; a broken one
			// is still reported.
			board, err := a.boardFile().ReadBoard()
			overridden := port != "" && fqbn != ""
			if err != nil && !(overridden && errors.Is(err, config.ErrNoBoard)) {
				return a.fail(err)
			}
			if port != "" {
				board.Port = port
			}
			if fqbn != "" {
				board.FQBN = fqbn
			}

			uploadArgs := []string{"upload", "-p", board.Port, "--fqbn", board.FQBN}
			if board.Protocol != "" {
				uploadArgs = append(uploadArgs, "-l", board.Protocol)
			}
			steps := []struct {
				name string
				args []string
			}{
				{"compile", []string{"compile", "--fqbn", board.FQBN, sketch}},
				{"upload", append(uploadArgs, sketch)},
			}

			fmt.Fprintln(a.stderr, ui.DimStyle.Render("uploading catbot code to "+board.Port+"..."))
			for _, step := range steps {
				outcome := a.exec("upload", supervisor.NewSpec(supervisor.Inherit, a.cfg.ArduinoCLI, step.args...))
				a.printExit(step.name, outcome)
				if err := outcome.Err(); err != nil {
					if outcome.Launched() {
						fmt.Fprintln(a.stderr, ui.Problem(step.name+" failed", "fix the errors above and run `catbot upload` again"))
						return a.exitStatus(outcome)
					}
					return a.fail(err)
				}
			}
			fmt.Fprintln(a.stdout, ui.SuccessBadge("DONE")+" upload complete")
			return nil
		},
	}
}

// printExit reports a child's exit code the way the user sees it after an
// inherited run.
func (a *app) printExit(step string, outcome supervisor.Outcome) {
	if !outcome.Launched() {
		return
	}
	label := "exited"
	if step != "" {
		label = step + " exited"
	}
	line := fmt.Sprintf("%s with code %d", label, outcome.ExitCode)
	if outcome.ExitCode == 0 {
		fmt.Fprintln(a.stderr, ui.DimStyle.Render(line))
		return
	}
	fmt.Fprintln(a.stderr, ui.WarningBadge("EXIT")+" "+line)
}
