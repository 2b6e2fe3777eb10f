package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// LineConfirmer reads yes/no answers line by line from an input stream.
// Only "yes" or "y" (case-insensitive) counts as affirmative; every
// other answer, including empty, declines.
type LineConfirmer struct {
	in      *bufio.Reader
	printer *Printer
}

// NewLineConfirmer builds a confirmer reading from in and prompting
// through printer.
func NewLineConfirmer(in io.Reader, printer *Printer) *LineConfirmer {
	return &LineConfirmer{in: bufio.NewReader(in), printer: printer}
}

// Confirm shows the diff and blocks until the user answers.
func (c *LineConfirmer) Confirm(path, diff string) (bool, error) {
	c.printer.Info("Proposed changes to %s:", path)
	c.printer.Diff(diff)
	c.printer.Muted("Apply these changes? (yes/no)")

	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("read confirmation: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "yes" || answer == "y", nil
}
