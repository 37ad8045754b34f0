//go:build integration

package integration

import (
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/buckleypaul/catbot/internal/config"
	"github.com/buckleypaul/catbot/internal/device"
	"github.com/buckleypaul/catbot/internal/supervisor"
)

// arduinoCLI returns the path of arduino-cli, or skips the test if it is not
// installed.
func arduinoCLI(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("arduino-cli")
	if err != nil {
		t.Skip("arduino-cli not on $PATH; skipping integration tests")
	}
	return path
}

// TestIntegrationVersion runs `arduino-cli version` through the real runner
// and asserts a clean exit with output.
func TestIntegrationVersion(t *testing.T) {
	program := arduinoCLI(t)

	runner := supervisor.DefaultRunner{}
	outcome := runner.Run(supervisor.NewSpec(supervisor.Capture, program, "version"))

	t.Logf("arduino-cli version output:\n%s", outcome.Output)

	if err := outcome.Err(); err != nil {
		t.Fatalf("arduino-cli version failed: %v\n%s", err, outcome.ErrOutput)
	}
	if len(outcome.Output) == 0 {
		t.Fatal("expected non-empty version output")
	}
}

// TestIntegrationDiscover parses whatever boards are attached. The result
// depends on the bench, so only malformed listings and launch failures fail.
func TestIntegrationDiscover(t *testing.T) {
	program := arduinoCLI(t)
	boards := config.BoardFile{Path: filepath.Join(t.TempDir(), config.DefaultBoardConfigFile)}

	d := device.Discoverer{
		Runner:     supervisor.DefaultRunner{},
		Program:    program,
		Classifier: device.Classifier{Vendor: config.DefaultVendor, Boards: boards},
	}
	result, err := d.Discover()

	t.Logf("board list output:\n%s", result.Outcome.Output)

	if errors.Is(err, device.ErrMalformedHeader) {
		t.Fatalf("arduino-cli listing did not parse: %v", err)
	}
	var launchErr *supervisor.LaunchError
	if errors.As(err, &launchErr) {
		t.Fatalf("could not launch arduino-cli: %v", err)
	}

	t.Logf("classification: %s (%d rows)", result.Classification.Kind, len(result.Classification.Rows))
	if result.Classification.Kind == device.ExactlyOne {
		if _, err := boards.ReadBoard(); err != nil {
			t.Fatalf("single board was not saved: %v", err)
		}
	}
}

// TestIntegrationMissingProgram checks the launch-failure path against the
// real operating system.
func TestIntegrationMissingProgram(t *testing.T) {
	runner := supervisor.DefaultRunner{}
	outcome := runner.Run(supervisor.NewSpec(supervisor.Inherit, "catbot-no-such-program"))

	if outcome.Launched() {
		t.Fatalf("expected a launch failure, got exit code %d", outcome.ExitCode)
	}
}
