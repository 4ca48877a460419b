package util

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// ttyPath is the controlling terminal.  Secrets are read from it, not
// stdin, because stdin carries the Data payload.
var ttyPath = "/dev/tty"

// ReadSecret prints prompt to the terminal and reads a line without
// echo.
func ReadSecret(prompt string) ([]byte, error) {
	tty, err := os.OpenFile(ttyPath, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("no terminal for prompt: %w", err)
	}
	defer tty.Close()

	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%s is not a terminal", ttyPath)
	}
	fmt.Fprint(tty, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(tty)
	if err != nil {
		return nil, fmt.Errorf("reading secret: %w", err)
	}
	return secret, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
