// internal/tui/progress.go
//
// Optional live progress view, following The Elm Architecture:
// progress reports become messages, Update folds them into the model,
// View renders a progress bar. The pipeline runs in its own goroutine and
// feeds the update channel; counter semantics are untouched — this is
// just another Reporter implementation.

package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ProgressMsg is one progress report from the result sink.
type ProgressMsg struct {
	Completed int
	Total     int
}

// DoneMsg signals that the pipeline finished, successfully or not.
type DoneMsg struct {
	Err error
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Model is the live progress view state.
type Model struct {
	bar       progress.Model
	updates   <-chan tea.Msg
	completed int
	total     int
	done      bool
	err       error
}

// New returns a model fed by updates. Send ProgressMsg for reports and a
// final DoneMsg when the run ends.
func New(updates <-chan tea.Msg) Model {
	return Model{
		bar:     progress.New(progress.WithDefaultGradient()),
		updates: updates,
	}
}

// Err returns the pipeline error carried by the final DoneMsg, if any.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd {
	return m.wait()
}

func (m Model) wait() tea.Cmd {
	return func() tea.Msg { return <-m.updates }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		m.completed = msg.Completed
		m.total = msg.Total
		return m, m.wait()
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	case tea.WindowSizeMsg:
		width := msg.Width - 4
		if width > 60 {
			width = 60
		}
		if width > 0 {
			m.bar.Width = width
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return errStyle.Render(fmt.Sprintf("tournament failed: %v", m.err)) + "\n"
	}
	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.completed) / float64(m.total)
	}
	counts := countStyle.Render(fmt.Sprintf("%d/%d games (%.2f%%)", m.completed, m.total, ratio*100))
	view := titleStyle.Render("arena tournament") + "\n\n" + m.bar.ViewAs(ratio) + "\n" + counts + "\n"
	if m.done {
		view += "\nDone.\n"
	}
	return view
}

// ChannelReporter bridges the result sink's progress reports into the
// update channel. It satisfies results.Reporter.
type ChannelReporter struct {
	Updates chan<- tea.Msg
}

func (r ChannelReporter) Report(completed, total int) {
	r.Updates <- ProgressMsg{Completed: completed, Total: total}
}
