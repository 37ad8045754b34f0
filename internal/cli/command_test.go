package cli

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree(out *bytes.Buffer, got *[]string, debug *bool) *Command {
	return &Command{
		Name: "catbot",
		Out:  out,
		Subcommands: []*Command{
			{
				Name:    "install",
				Aliases: []string{"i"},
				Summary: "find the attached board",
				Flags: func() *pflag.FlagSet {
					fs := pflag.NewFlagSet("install", pflag.ContinueOnError)
					fs.BoolVar(debug, "debug", false, "show every row")
					return fs
				},
				Run: func(args []string) error { *got = args; return nil },
			},
			{
				Name:    "arduino",
				RawArgs: true,
				Run:     func(args []string) error { *got = args; return nil },
			},
		},
	}
}

func TestExecuteDispatchesByAlias(t *testing.T) {
	var out bytes.Buffer
	var got []string
	var debug bool

	require.NoError(t, newTree(&out, &got, &debug).Execute([]string{"i", "--debug", "extra"}))
	assert.True(t, debug)
	assert.Equal(t, []string{"extra"}, got)
}

func TestExecuteRawArgsKeepsFlags(t *testing.T) {
	var out bytes.Buffer
	var got []string
	var debug bool

	require.NoError(t, newTree(&out, &got, &debug).Execute([]string{"arduino", "--help", "board", "list"}))
	assert.Equal(t, []string{"--help", "board", "list"}, got)
	assert.Empty(t, out.String())
}

func TestExecuteUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	var got []string
	var debug bool

	err := newTree(&out, &got, &debug).Execute([]string{"fly"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "fly"`)
}

func TestExecuteUnknownFlag(t *testing.T) {
	var out bytes.Buffer
	var got []string
	var debug bool

	err := newTree(&out, &got, &debug).Execute([]string{"install", "--bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catbot install --help")
}

func TestExecuteHelpListsCommands(t *testing.T) {
	var out bytes.Buffer
	var got []string
	var debug bool

	require.NoError(t, newTree(&out, &got, &debug).Execute([]string{"--help"}))
	assert.Contains(t, out.String(), "install (i)")
	assert.Contains(t, out.String(), "find the attached board")
}

func TestExitError(t *testing.T) {
	err := &ExitError{Code: 3}
	assert.Equal(t, 3, err.ExitCode())
	assert.Equal(t, "exit code 3", err.Error())
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer

	quiet := NewLogger(&buf, false)
	assert.False(t, quiet.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, quiet.Enabled(context.Background(), slog.LevelWarn))

	verbose := NewLogger(&buf, true)
	verbose.Debug("process started", "program", "arduino-cli")
	assert.Contains(t, buf.String(), `"msg":"process started"`)
}
