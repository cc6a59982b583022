package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// spinnerModel renders a spinner while a blocking call runs.
type spinnerModel struct {
	spinner  spinner.Model
	message  string
	quitting bool
	err      error
}

func newSpinnerModel(message string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return spinnerModel{spinner: s, message: message}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	case doneMsg:
		m.err = msg.err
		m.quitting = true
		return m, tea.Quit
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.message)
}

type doneMsg struct {
	err error
}

// WithSpinner runs fn while showing a spinner on a TTY; without a TTY it
// just runs fn. The spinner is cosmetic, fn's result is authoritative.
func WithSpinner[T any](message string, fn func() (T, error)) (T, error) {
	if !IsATTY() {
		return fn()
	}

	var result T
	var fnErr error
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		result, fnErr = fn()
	}()

	p := tea.NewProgram(newSpinnerModel(message))
	go func() {
		wg.Wait()
		p.Send(doneMsg{err: fnErr})
	}()

	if _, err := p.Run(); err != nil {
		// Spinner failure is not the call's failure.
		wg.Wait()
	}

	return result, fnErr
}

// IsATTY checks if stdout is a terminal.
func IsATTY() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
