package device

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/buckleypaul/catbot/internal/supervisor"
)

// ListArgs is the listing sub-command passed to the toolchain CLI.
var ListArgs = []string{"board", "list"}

// Discovery is the result of one discovery run.
type Discovery struct {
	Outcome        supervisor.Outcome
	Classification Classification
}

// DiscoveredMsg is sent when a discovery started through Cmd finishes.
type DiscoveredMsg struct {
	Discovery Discovery
	Err       error
}

// Discoverer runs the listing command and classifies its output.
type Discoverer struct {
	Runner     supervisor.Runner
	Program    string
	Classifier Classifier
}

// Discover runs `<Program> board list`, capturing its output. Launch
// failures and non-zero exits are returned as *supervisor.LaunchError and
// *supervisor.ExitError; the output is only classified after a clean exit.
func (d Discoverer) Discover() (Discovery, error) {
	outcome := d.Runner.Run(supervisor.NewSpec(supervisor.Capture, d.Program, ListArgs...))
	result := Discovery{Outcome: outcome}
	if err := outcome.Err(); err != nil {
		return result, err
	}

	classification, err := d.Classifier.Classify(string(outcome.Output))
	result.Classification = classification
	return result, err
}

// Cmd wraps Discover for a bubbletea program.
func (d Discoverer) Cmd() tea.Cmd {
	return func() tea.Msg {
		discovery, err := d.Discover()
		return DiscoveredMsg{Discovery: discovery, Err: err}
	}
}
