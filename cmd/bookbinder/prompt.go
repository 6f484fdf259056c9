package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Environment toggle that forces non-interactive default filling even on
// a terminal.
const nonInteractiveEnv = "BOOKBINDER_NONINTERACTIVE"

// stdinPrompter collects missing metadata fields from the terminal.
type stdinPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newStdinPrompter() *stdinPrompter {
	return &stdinPrompter{in: bufio.NewReader(os.Stdin), out: os.Stderr}
}

// Prompt asks for one field. An empty answer declines to supply it.
func (p *stdinPrompter) Prompt(field, suggestion string) (string, error) {
	if suggestion != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", field, suggestion)
	} else {
		fmt.Fprintf(p.out, "%s: ", field)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		answer = suggestion
	}
	return answer, nil
}

// interactiveEligible reports whether prompting is possible: stdin is a
// terminal and the non-interactive toggle is not set.
func interactiveEligible() bool {
	if os.Getenv(nonInteractiveEnv) != "" {
		return false
	}
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
