package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/buckleypaul/catbot/internal/cli"
	"github.com/buckleypaul/catbot/internal/config"
	"github.com/buckleypaul/catbot/internal/ui"
)

func configCommand(a *app) *cli.Command {
	var global bool
	return &cli.Command{
		Name:    "config",
		Summary: "Show the effective configuration",
		Subcommands: []*cli.Command{
			{
				Name:    "set",
				Summary: "Set a configuration value",
				Usage:   "catbot config set <key> <value> [--global]",
				Flags: func() *pflag.FlagSet {
					fs := pflag.NewFlagSet("set", pflag.ContinueOnError)
					fs.BoolVar(&global, "global", false, "write ~/.config/catbot/config.json instead of the project file")
					return fs
				},
				Run: func(args []string) error {
					if len(args) != 2 {
						return fmt.Errorf("usage: catbot config set <key> <value> (keys: %v)", config.Keys())
					}
					path, err := config.Path(a.root, global)
					if err != nil {
						return err
					}
					cfg, err := config.LoadFile(path)
					if err != nil {
						return err
					}
					if err := config.Set(&cfg, args[0], args[1]); err != nil {
						return err
					}
					if err := config.Save(cfg, a.root, global); err != nil {
						return fmt.Errorf("save %s: %w", path, err)
					}
					fmt.Fprintf(a.stdout, "%s = %s (%s)\n", args[0], args[1], path)
					return nil
				},
			},
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unknown config subcommand %q", args[0])
			}
			c := a.cfg
			fmt.Fprintln(a.stdout, ui.KeyValues([][2]string{
				{"arduino_cli", c.ArduinoCLI},
				{"python", c.Python},
				{"script", c.Script},
				{"sketch_dir", c.SketchDir},
				{"vendor", c.Vendor},
				{"board_config", c.BoardConfigPath(a.root)},
				{"serial_baud_rate", strconv.Itoa(c.SerialBaudRate)},
				{"venv_path", c.VenvPath},
			}))

			board, err := a.boardFile().ReadBoard()
			if err != nil {
				fmt.Fprintln(a.stdout, ui.DimStyle.Render("\nboard: "+err.Error()))
				return nil
			}
			fmt.Fprintln(a.stdout)
			fmt.Fprintln(a.stdout, ui.KeyValues([][2]string{
				{config.KeyFQBN, board.FQBN},
				{config.KeyPort, board.Port},
				{config.KeyProtocol, board.Protocol},
			}))
			return nil
		},
	}
}
