package ui

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// NoSpinnerEnv disables the spinner when set to any value.
const NoSpinnerEnv = "GPUSH_NO_SPINNER"

// Spinner wraps briandowns/spinner and only animates on a terminal.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a spinner on stderr.
func NewSpinner(message string) *Spinner {
	return NewSpinnerOn(os.Stderr, message)
}

func NewSpinnerOn(out *os.File, message string) *Spinner {
	if !Enabled(out) {
		return &Spinner{}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.Suffix = " " + message
	return &Spinner{s: s}
}

// Enabled reports whether a spinner would be drawn on out.
func Enabled(out *os.File) bool {
	if out == nil || os.Getenv(NoSpinnerEnv) != "" {
		return false
	}
	return isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
}

func (sp *Spinner) Start() {
	if sp.s != nil {
		sp.s.Start()
	}
}

func (sp *Spinner) Stop() {
	if sp.s != nil {
		sp.s.Stop()
	}
}

// While shows the spinner for the duration of fn.
func (sp *Spinner) While(fn func() error) error {
	sp.Start()
	defer sp.Stop()
	return fn()
}
