package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/shinji-kodama/zsh-theme-installer/internal/model"
)

// DefaultBinary is the name of the git executable looked up on PATH.
const DefaultBinary = "git"

// Client runs git commands.
//
// The binary name is configurable so tests can simulate a machine without
// git installed. Output of long-running commands (clone) is streamed to
// Stdout/Stderr so the user sees git's own progress lines.
type Client struct {
	binary string

	// Stdout receives git's standard output. Defaults to os.Stdout.
	Stdout io.Writer

	// Stderr receives git's standard error (progress output for clone).
	// Defaults to os.Stderr.
	Stderr io.Writer
}

// NewClient creates a Client that uses the git binary found on PATH.
func NewClient() *Client {
	return NewClientWithBinary(DefaultBinary)
}

// NewClientWithBinary creates a Client for a specific git executable name
// or path.
func NewClientWithBinary(binary string) *Client {
	return &Client{
		binary: binary,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Binary returns the executable name this client invokes.
func (c *Client) Binary() string {
	return c.binary
}

// Available reports whether the git executable can be found.
//
// The returned error wraps exec.ErrNotFound when the binary is missing, so
// callers can use errors.Is to distinguish "not installed" from other
// lookup failures.
func (c *Client) Available() error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("'%s' is not installed", c.binary), err)
	}
	return nil
}

// Clone clones url into dir.
//
// When depth is positive the clone is shallow (`--depth=<depth>`); zero
// fetches full history. A non-zero exit status from git is returned as a
// CLIError; the process is killed if ctx is cancelled.
func (c *Client) Clone(ctx context.Context, url, dir string, depth int) error {
	args := []string{"clone"}
	if depth > 0 {
		args = append(args, "--depth="+strconv.Itoa(depth))
	}
	args = append(args, url, dir)

	_, err := c.run(ctx, "", true, args...)
	return err
}

// run executes git with the given arguments.
//
// When dir is non-empty it is passed with -C so git operates in that
// directory without changing the process working directory. When stream is
// true, stdout and stderr are forwarded to the client's writers while
// stderr is also captured for the error message; otherwise stdout is
// captured and returned.
func (c *Client) run(ctx context.Context, dir string, stream bool, args ...string) (string, error) {
	fullArgs := args
	if dir != "" {
		fullArgs = append([]string{"-C", dir}, args...)
	}

	// #nosec G204 -- arguments are built by this package; url and dir come
	// from the installer's own settings.
	cmd := exec.CommandContext(ctx, c.binary, fullArgs...)

	var stdout, stderr strings.Builder
	if stream {
		// exec copies stdout and stderr on separate goroutines. Both
		// streams share one lock because Stdout and Stderr are often the
		// same buffer (--json sends both to stderr).
		var mu sync.Mutex
		cmd.Stdout = &lockedWriter{mu: &mu, w: writerOrDiscard(c.Stdout)}
		cmd.Stderr = io.MultiWriter(&lockedWriter{mu: &mu, w: writerOrDiscard(c.Stderr)}, &stderr)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		// Prefer the context error so an interrupted clone is reported as
		// an abort rather than "signal: killed".
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		// Ctrl-C on a terminal reaches git directly and may kill it
		// before our own signal handler cancels ctx.
		if interrupted(err) {
			return "", fmt.Errorf("%s %s interrupted: %w", c.binary, args[0], context.Canceled)
		}

		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("%s %s failed", c.binary, strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, lastLine(stderrStr))
		}
		return "", model.WrapCLIError(model.ExitGeneralError, message, err)
	}

	return stdout.String(), nil
}

// Head returns the commit SHA checked out in the repository at dir.
func (c *Client) Head(ctx context.Context, dir string) (string, error) {
	output, err := c.run(ctx, dir, false, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// lastLine returns the final line of multi-line git output, which is where
// git puts the "fatal: ..." reason.
func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

// interrupted reports whether err is the exit of a process killed by
// SIGINT.
func interrupted(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	return ok && status.Signaled() && status.Signal() == syscall.SIGINT
}

// lockedWriter serializes writes to w through mu. It must not implement
// io.ReaderFrom: io.Copy has to go through Write to take the lock.
type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
