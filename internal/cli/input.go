// Package cli reads the scenario sizing argument and maps run errors to
// process exit codes.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
)

// InputError reports an unusable sizing argument or prompt answer.
type InputError struct {
	Label string
	Input string
	Err   error
}

func (e *InputError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("invalid %s: %v", e.Label, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Label, e.Input, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

var errNotPositive = errors.New("must be a positive integer")

// Prompt describes how to obtain a size.
type Prompt struct {
	Label   string
	Default int

	// Interactive reports whether the prompt text should be shown. Input
	// is read either way.
	Interactive bool
}

// ParseSize parses a positive integer.
func ParseSize(label, s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, &InputError{Label: label, Input: s, Err: errNotPositive}
	}
	return n, nil
}

// ReadSize returns the size given as the first argument. Without an
// argument it reads one line from in, printing the prompt to prompt when
// p.Interactive is set. An empty line or end of input selects p.Default.
func ReadSize(args []string, in io.Reader, prompt io.Writer, p Prompt) (int, error) {
	if len(args) > 0 {
		return ParseSize(p.Label, args[0])
	}

	if p.Interactive {
		fmt.Fprintf(prompt, "Enter the %s [%d]: ", p.Label, p.Default)
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, &InputError{Label: p.Label, Err: err}
	}
	if strings.TrimSpace(line) == "" {
		return p.Default, nil
	}
	return ParseSize(p.Label, line)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
