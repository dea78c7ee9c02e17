// Package prompt implements interactive yes/no confirmation.
//
// The confirmation reads whole lines from an io.Reader so it can be driven
// by os.Stdin in production and by a strings.Reader in tests. A read blocks
// until the user answers or the context is cancelled (Ctrl-C).
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// RetryMessage is printed when the answer is not recognized.
const RetryMessage = "Please respond with 'yes' or 'no' (or 'y' or 'n')."

// answers maps every accepted response to its meaning.
var answers = map[string]bool{
	"yes": true,
	"ye":  true,
	"y":   true,
	"no":  false,
	"n":   false,
}

// Confirmer asks yes/no questions on a line-oriented terminal.
type Confirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConfirmer creates a Confirmer reading answers from in and writing
// questions to out.
func NewConfirmer(in io.Reader, out io.Writer) *Confirmer {
	return &Confirmer{in: bufio.NewReader(in), out: out}
}

// Confirm prints question followed by a [Y/n] or [y/N] hint and waits for
// an answer.
//
// An empty answer selects defaultYes. Unrecognized answers re-ask the
// question. If the input ends before a recognized answer is read, the
// default is used as if the user had pressed Enter. Cancelling ctx returns
// ctx.Err().
func (c *Confirmer) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	hint := " [y/N] "
	if defaultYes {
		hint = " [Y/n] "
	}

	for {
		if _, err := fmt.Fprint(c.out, question+hint); err != nil {
			return false, err
		}

		line, err := c.readLine(ctx)
		if err != nil && err != io.EOF {
			return false, err
		}

		answer := strings.ToLower(strings.TrimSpace(line))
		if answer == "" {
			if err == io.EOF {
				// Keep the terminal tidy when stdin was closed without a newline.
				_, _ = fmt.Fprintln(c.out)
			}
			return defaultYes, nil
		}
		if value, ok := answers[answer]; ok {
			return value, nil
		}
		if err == io.EOF {
			return defaultYes, nil
		}

		if _, err := fmt.Fprintln(c.out, RetryMessage); err != nil {
			return false, err
		}
	}
}

type lineResult struct {
	line string
	err  error
}

// readLine reads one line in a goroutine so that a cancelled context can
// unblock the caller. The goroutine itself stays blocked on the reader
// until input arrives; that is acceptable because cancellation ends the
// process.
func (c *Confirmer) readLine(ctx context.Context) (string, error) {
	done := make(chan lineResult, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		done <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.line, r.err
	}
}

// AssumeYes is a confirmer that answers every question with yes without
// reading input. It backs the --yes flag.
type AssumeYes struct {
	// Out, when set, receives the question and the implied answer.
	Out io.Writer
}

// Confirm always returns true.
func (a AssumeYes) Confirm(ctx context.Context, question string, _ bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if a.Out != nil {
		_, _ = fmt.Fprintf(a.Out, "%s [Y/n] yes\n", question)
	}
	return true, nil
}
