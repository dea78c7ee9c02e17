// Package git provides the Git operations needed by the installer.
//
// This package wraps the git CLI (via os/exec) rather than a Go Git library:
// the only operation required is a shallow clone, and delegating to the
// user's git keeps proxy, credential and protocol configuration intact.
//
// All errors from Git commands are wrapped in model.CLIError so the CLI can
// map them to a process exit code.
package git
