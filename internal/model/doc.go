// Package model defines the domain types and value objects for the
// install-zsh-theme CLI.
//
// This package contains pure data structures with no external dependencies.
// The only state the installer keeps in memory is a single Config value;
// everything else (the cloned framework, backups, preset files) lives on disk
// and is addressed by path.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
