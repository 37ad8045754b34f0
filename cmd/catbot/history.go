package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/buckleypaul/catbot/internal/cli"
	"github.com/buckleypaul/catbot/internal/ui"
)

func historyCommand(a *app) *cli.Command {
	var limit int
	return &cli.Command{
		Name:    "history",
		Summary: "Show recent runs, discoveries and serial sessions",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("history", pflag.ContinueOnError)
			fs.IntVarP(&limit, "limit", "n", 20, "number of entries per table (0 for all)")
			return fs
		},
		Run: func(args []string) error {
			runs, err := a.store.Runs()
			if err != nil {
				return fmt.Errorf("read run history: %w", err)
			}
			discoveries, err := a.store.Discoveries()
			if err != nil {
				return fmt.Errorf("read discovery history: %w", err)
			}

			sessions, err := a.store.SerialLogs()
			if err != nil {
				return fmt.Errorf("read serial history: %w", err)
			}

			runRows := make([][]string, 0, len(runs))
			for _, r := range tail(runs, limit) {
				result := strconv.Itoa(r.ExitCode)
				if r.LaunchError != "" {
					result = "launch failed: " + r.LaunchError
				}
				cmdline := strings.TrimSpace(r.Program + " " + strings.Join(r.Args, " "))
				runRows = append(runRows, []string{r.Timestamp.Format(time.DateTime), r.Command, cmdline, result, r.Duration})
			}

			discoveryRows := make([][]string, 0, len(discoveries))
			for _, d := range tail(discoveries, limit) {
				detail := d.Error
				if d.FQBN != "" {
					detail = d.FQBN + " on " + d.Port
				}
				discoveryRows = append(discoveryRows, []string{d.Timestamp.Format(time.DateTime), d.Result, strconv.Itoa(d.Boards), detail})
			}

			sessionRows := make([][]string, 0, len(sessions))
			for _, s := range tail(sessions, limit) {
				sessionRows = append(sessionRows, []string{s.Timestamp.Format(time.DateTime), s.Port, strconv.Itoa(s.BaudRate), strconv.FormatInt(s.Bytes, 10), s.Duration})
			}

			fmt.Fprintln(a.stdout, ui.Title("Runs"))
			if len(runRows) == 0 {
				fmt.Fprintln(a.stdout, ui.DimStyle.Render("no runs recorded"))
			} else {
				fmt.Fprintln(a.stdout, ui.Table([]string{"Time", "Command", "Command line", "Exit", "Duration"}, runRows))
			}

			fmt.Fprintln(a.stdout, ui.Title("Discoveries"))
			if len(discoveryRows) == 0 {
				fmt.Fprintln(a.stdout, ui.DimStyle.Render("no discoveries recorded"))
			} else {
				fmt.Fprintln(a.stdout, ui.Table([]string{"Time", "Result", "Boards", "Detail"}, discoveryRows))
			}

			if len(sessionRows) > 0 {
				fmt.Fprintln(a.stdout, ui.Title("Serial sessions"))
				fmt.Fprintln(a.stdout, ui.Table([]string{"Time", "Port", "Baud", "Bytes", "Duration"}, sessionRows))
			}
			return nil
		},
	}
}

func tail[T any](items []T, n int) []T {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
