// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"errors"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// isTerminal is swapped out by tests.
var isTerminal = func(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec
}

var spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00c8f0"))

// Interactive reports whether stderr is attached to a terminal and spinners
// have not been turned off with GITFORGE_NO_SPINNER.
func Interactive() bool {
	if _, ok := os.LookupEnv("GITFORGE_NO_SPINNER"); ok {
		return false
	}
	return isTerminal(os.Stderr)
}

type doneMsg struct{ err error }

type spinModel struct {
	spinner spinner.Model
	message string
	work    func() error
	err     error
	done    bool
}

func (m spinModel) Init() tea.Cmd {
	work := m.work
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return doneMsg{err: work()}
	})
}

func (m spinModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.message + "\n"
}

// Run calls work while a spinner labelled message is drawn on stderr. When
// stderr is not a terminal work is simply called.
func Run(message string, work func() error) error {
	if !Interactive() {
		return work()
	}

	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))
	p := tea.NewProgram(
		spinModel{spinner: s, message: message, work: work},
		tea.WithOutput(os.Stderr),
		tea.WithInput(nil),
	)

	final, err := p.Run()
	if err != nil {
		return err
	}
	m, ok := final.(spinModel)
	if !ok {
		return errors.New("unexpected spinner state")
	}
	return m.err
}
