package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/buckleypaul/catbot/internal/cli"
	"github.com/buckleypaul/catbot/internal/config"
	"github.com/buckleypaul/catbot/internal/device"
	"github.com/buckleypaul/catbot/internal/serial"
	"github.com/buckleypaul/catbot/internal/store"
	"github.com/buckleypaul/catbot/internal/ui"
)

func discoverCommand(a *app) *cli.Command {
	var (
		debug  bool
		vendor string
		output string
	)
	return &cli.Command{
		Name:    "discover",
		Aliases: []string{"install", "i"},
		Summary: "Find the attached board and save it as the default",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("discover", pflag.ContinueOnError)
			fs.BoolVar(&debug, "debug", false, "print the raw listing and keep rows from every vendor; a single board found this way is not saved")
			fs.StringVar(&vendor, "vendor", a.cfg.Vendor, "keyword a row must mention to count as a board")
			fs.StringVarP(&output, "output", "o", a.cfg.BoardConfig, "board config file to write")
			return fs
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("discover takes no arguments, got %q", strings.Join(args, " "))
			}
			a.cfg.Vendor = vendor
			a.cfg.BoardConfig = output
			return a.discover(debug)
		},
	}
}

func (a *app) discover(debug bool) error {
	d := device.Discoverer{
		Runner:  recorder{app: a, command: "discover"},
		Program: a.cfg.ArduinoCLI,
		Classifier: device.Classifier{
			Vendor: a.cfg.Vendor,
			Debug:  debug,
			Boards: a.boardFile(),
			Logger: a.logger,
		},
	}

	msg, err := ui.RunWithSpinner(a.stderr, "Looking for boards…", d.Cmd())
	if err != nil {
		return a.fail(err)
	}
	discovered := msg.(device.DiscoveredMsg)
	result := discovered.Discovery

	if debug && len(result.Outcome.Output) > 0 {
		fmt.Fprintln(a.stdout, ui.Title("Raw listing"))
		a.stdout.Write(result.Outcome.Output)
	}

	a.recordDiscovery(result.Classification, discovered.Err)

	if discovered.Err != nil {
		if len(result.Outcome.ErrOutput) > 0 {
			a.stderr.Write(result.Outcome.ErrOutput)
		}
		return a.fail(discovered.Err)
	}

	classification := result.Classification
	if debug && len(classification.Rows) > 0 {
		fmt.Fprintln(a.stdout, boardTable(classification.Rows))
	}
	switch classification.Kind {
	case device.NoneFound:
		return a.fail(classification.Err())
	case device.MultipleFound:
		if !debug {
			fmt.Fprintln(a.stderr, boardTable(classification.Rows))
		}
		return a.fail(classification.Err())
	}

	row, _ := classification.Board()
	a.printBoard(row, classification.Saved)
	if debug {
		fmt.Fprintln(a.stdout, ui.DimStyle.Render("debug mode: board config not written"))
	}
	return nil
}

func (a *app) printBoard(row device.Row, saved *config.BoardConfig) {
	pairs := [][2]string{
		{"board", row.Board},
		{"fqbn", row.FQBN},
		{"port", row.Port},
		{"protocol", row.Protocol},
	}
	// USB details are informational; enumeration failures are not errors.
	if info, ok, err := serial.FindPort(row.Port); err != nil {
		a.logger.Debug("serial enumeration failed", "error", err)
	} else if ok && info.USBID() != "" {
		pairs = append(pairs, [2]string{"usb", info.USBID()})
		if info.SerialNumber != "" {
			pairs = append(pairs, [2]string{"serial", info.SerialNumber})
		}
	}
	if saved != nil {
		pairs = append(pairs, [2]string{"saved to", a.boardFile().Path})
	}

	fmt.Fprintln(a.stdout, ui.Panel(ui.SuccessBadge("BOARD FOUND"), ui.KeyValues(pairs), 64))
}

func (a *app) recordDiscovery(c device.Classification, err error) {
	record := store.DiscoveryRecord{
		Timestamp: a.now(),
		Result:    c.Kind.String(),
		Boards:    len(c.Rows),
	}
	if err != nil {
		record.Result = "error"
		record.Error = err.Error()
	}
	if c.Saved != nil {
		record.FQBN = c.Saved.FQBN
		record.Port = c.Saved.Port
		record.Protocol = c.Saved.Protocol
	}
	if err := a.store.AddDiscovery(record); err != nil {
		a.logger.Warn("failed to record discovery", "error", err)
	}
}

func boardTable(rows []device.Row) string {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, r.Values())
	}
	return ui.Table(device.Fields[:], cells)
}
