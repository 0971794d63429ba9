// Package detector provides terminal detection and the password prompt.
package detector

import (
	"fmt"
	"io"
	"os"

	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// Terminal describes the standard streams of the running process.
type Terminal struct {
	In  *os.File
	Out io.Writer

	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// IsTerminal defaults to term.IsTerminal.
	IsTerminal func(fd int) bool
	// ReadPassword defaults to term.ReadPassword.
	ReadPassword func(fd int) ([]byte, error)
}

// New returns a Terminal bound to stdin and stderr.
func New() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr}
}

// IsCI reports whether a CI environment variable is set.
func (t *Terminal) IsCI() bool {
	ci := t.getenv("CI")
	return ci == "true" || ci == "1"
}

// Interactive reports whether the user can answer prompts.
// Stdin must be a terminal and the process must not run under CI.
func (t *Terminal) Interactive() bool {
	if t.In == nil || t.IsCI() {
		return false
	}
	isTerminal := t.IsTerminal
	if isTerminal == nil {
		isTerminal = term.IsTerminal
	}
	return isTerminal(int(t.In.Fd())) //nolint:gosec // file descriptors fit in int
}

// PromptPassword prints prompt and reads a line without echo.
func (t *Terminal) PromptPassword(prompt string) (string, error) {
	if !t.Interactive() {
		return "", zerr.New("cannot prompt for a password without an interactive terminal")
	}

	if t.Out != nil {
		_, _ = fmt.Fprint(t.Out, prompt)
	}

	read := t.ReadPassword
	if read == nil {
		read = term.ReadPassword
	}
	pw, err := read(int(t.In.Fd())) //nolint:gosec // file descriptors fit in int

	if t.Out != nil {
		_, _ = fmt.Fprintln(t.Out)
	}
	if err != nil {
		return "", zerr.Wrap(err, "failed to read password")
	}
	return string(pw), nil
}

func (t *Terminal) getenv(key string) string {
	if t.Getenv != nil {
		return t.Getenv(key)
	}
	return os.Getenv(key)
}
