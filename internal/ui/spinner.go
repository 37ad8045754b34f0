package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

type taskDoneMsg struct {
	msg tea.Msg
}

type spinnerModel struct {
	spinner spinner.Model
	label   string
	task    tea.Cmd
	result  tea.Msg
	done    bool
}

func newSpinnerModel(label string, task tea.Cmd) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return spinnerModel{spinner: s, label: label, task: task}
}

func (m spinnerModel) Init() tea.Cmd {
	task := m.task
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return taskDoneMsg{msg: task()}
	})
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.result = msg.msg
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + DimStyle.Render(m.label) + "\n"
}

// RunWithSpinner runs task and returns the message it produced. When out is
// a terminal a spinner labelled label is drawn on it while the task runs;
// otherwise the task simply runs inline. Keyboard input is left alone so
// Ctrl-C still reaches the process group as a signal.
func RunWithSpinner(out io.Writer, label string, task tea.Cmd) (tea.Msg, error) {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return task(), nil
	}

	p := tea.NewProgram(newSpinnerModel(label, task), tea.WithOutput(out), tea.WithInput(nil))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(spinnerModel).result, nil
}
