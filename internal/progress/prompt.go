// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"errors"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrNotInteractive is returned by Prompt when stdin is not a terminal.
var ErrNotInteractive = errors.New("cannot prompt: stdin is not a terminal")

// ErrCanceled is returned by Prompt when the user presses ctrl+c or esc.
var ErrCanceled = errors.New("prompt canceled")

var labelStyle = lipgloss.NewStyle().Bold(true)

type promptModel struct {
	label    string
	input    textinput.Model
	canceled bool
	done     bool
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.canceled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || m.canceled {
		return ""
	}
	return labelStyle.Render(m.label) + " " + m.input.View() + "\n"
}

// Prompt asks for a single line of input. An empty answer falls back to
// placeholder.
func Prompt(label, placeholder string) (string, error) {
	if !isTerminal(os.Stdin) {
		return "", ErrNotInteractive
	}

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	p := tea.NewProgram(promptModel{label: label, input: ti}, tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return "", err
	}

	m, ok := final.(promptModel)
	if !ok {
		return "", errors.New("unexpected prompt state")
	}
	if m.canceled {
		return "", ErrCanceled
	}
	if v := m.input.Value(); v != "" {
		return v, nil
	}
	return placeholder, nil
}
