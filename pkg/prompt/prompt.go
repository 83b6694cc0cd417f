// Package prompt asks the user which chart to draw.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Menu is printed before reading the selection.
const Menu = "Enter plot type:\n\n1. Pie chart\n2. Bar chart\n"

// Chooser reads a chart selection from an input stream.
type Chooser struct {
	in  *bufio.Reader
	out io.Writer
	// Interactive reports whether in is a terminal.
	Interactive bool
}

// New creates a Chooser reading from in and printing the menu to out.
func New(in io.Reader, out io.Writer) *Chooser {
	c := &Chooser{
		in:  bufio.NewReader(in),
		out: out,
	}
	if f, ok := in.(*os.File); ok {
		c.Interactive = term.IsTerminal(int(f.Fd()))
	}
	return c
}

// Choose prints the menu and returns the first line of input without its line
// ending. End of input with nothing typed yields an empty selection. Choose
// returns ctx.Err() as soon as ctx is done, even while the read is blocked.
func (c *Chooser) Choose(ctx context.Context) (string, error) {
	if _, err := io.WriteString(c.out, Menu); err != nil {
		return "", fmt.Errorf("writing menu: %w", err)
	}

	type result struct {
		line string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		done <- result{line: line, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res = <-done:
	}

	if res.err != nil && !errors.Is(res.err, io.EOF) {
		return "", fmt.Errorf("reading selection: %w", res.err)
	}
	line := strings.TrimRight(res.line, "\r\n")
	if !c.Interactive && res.line != "" {
		// Echo piped input so the transcript reads like an interactive session.
		fmt.Fprintln(c.out, line)
	}

	return line, nil
}
