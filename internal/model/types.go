// Package model defines the domain types for the install-zsh-theme CLI.
//
// These types are used throughout the application for passing data between
// the cli, installer and dotfile packages.
package model

import (
	"fmt"
	"strings"
)

// Theme is the user-facing name of a zsh prompt style. The set of themes is
// closed: every value accepted on the command line is listed below.
type Theme string

const (
	// ThemeDefault keeps the stock oh-my-zsh theme.
	ThemeDefault Theme = "default"

	// ThemeP10kLean installs powerlevel10k with the "lean" preset.
	ThemeP10kLean Theme = "p10klean"

	// ThemeP10kClassic installs powerlevel10k with the "classic" preset.
	ThemeP10kClassic Theme = "p10kclassic"

	// ThemeP10kRainbow installs powerlevel10k with the "rainbow" preset.
	ThemeP10kRainbow Theme = "p10krainbow"

	// ThemeLazyMechanic selects the lazymechanic theme shipped in the
	// custom themes directory.
	ThemeLazyMechanic Theme = "lazymechanic"
)

// AllThemes returns every supported theme in a stable order. The order is
// used for help output and shell completion.
func AllThemes() []Theme {
	return []Theme{ThemeDefault, ThemeP10kLean, ThemeP10kClassic, ThemeP10kRainbow, ThemeLazyMechanic}
}

// ThemeNames returns the string form of AllThemes.
func ThemeNames() []string {
	themes := AllThemes()
	names := make([]string, 0, len(themes))
	for _, t := range themes {
		names = append(names, t.String())
	}
	return names
}

// String returns the string representation of Theme.
func (t Theme) String() string {
	return string(t)
}

// IsValid checks whether the Theme value is one of the supported themes.
func (t Theme) IsValid() bool {
	switch t {
	case ThemeDefault, ThemeP10kLean, ThemeP10kClassic, ThemeP10kRainbow, ThemeLazyMechanic:
		return true
	default:
		return false
	}
}

// IsPowerlevel10k reports whether the theme is one of the powerlevel10k
// variants, which all share the same final identifier and differ only in
// the preset file copied into place.
func (t Theme) IsPowerlevel10k() bool {
	return t == ThemeP10kLean || t == ThemeP10kClassic || t == ThemeP10kRainbow
}

// ParseTheme converts a string to a Theme.
// The match is exact: no case folding and no trimming, so " P10KLEAN " is
// rejected like any other unknown name.
// Returns an error if the string does not match any supported theme.
func ParseTheme(s string) (Theme, error) {
	theme := Theme(s)
	if !theme.IsValid() {
		return "", fmt.Errorf("invalid theme: %q (valid: %s)", s, strings.Join(ThemeNames(), ", "))
	}
	return theme, nil
}

// Final identifiers written into the ZSH_THEME assignment.
const (
	// FinalThemePowerlevel10k is shared by all powerlevel10k variants.
	FinalThemePowerlevel10k = "powerlevel10k/powerlevel10k"

	// FinalThemeLazyMechanic is the namespaced lazymechanic identifier.
	FinalThemeLazyMechanic = "lazymechanic/lazymechanic"
)

// Config is the per-run configuration of the installer.
//
// It is created once from the command line, mutated exactly once when the
// final theme identifier is resolved, and discarded when the process exits.
type Config struct {
	// Theme is the theme selected on the command line.
	Theme Theme `json:"theme"`

	// FinalTheme is the exact string written into ZSH_THEME="...".
	// Empty until the theme has been resolved.
	FinalTheme string `json:"finalTheme"`

	// ZshCustom is the oh-my-zsh custom directory with the home
	// directory already expanded.
	ZshCustom string `json:"zshCustom"`
}

// String renders the config for verbose logging.
func (c *Config) String() string {
	return fmt.Sprintf("<Config: theme=%s, final_theme=%s, zsh_custom=%s>", c.Theme, c.FinalTheme, c.ZshCustom)
}

// FrameworkAction records what the installer did with the powerlevel10k
// framework directory.
type FrameworkAction string

const (
	// FrameworkCloned means the directory did not exist and was cloned.
	FrameworkCloned FrameworkAction = "cloned"

	// FrameworkRecloned means an existing directory was removed and cloned again.
	FrameworkRecloned FrameworkAction = "recloned"

	// FrameworkKept means the user declined to replace an existing directory.
	FrameworkKept FrameworkAction = "kept"
)

// String returns the string representation of FrameworkAction.
func (a FrameworkAction) String() string {
	return string(a)
}

// InstallResult summarizes a successful installer run. It is printed as
// JSON when the --json flag is set.
type InstallResult struct {
	// Theme is the theme the user selected.
	Theme Theme `json:"theme"`

	// FinalTheme is the identifier written into the run-control file.
	FinalTheme string `json:"finalTheme"`

	// FrameworkDir is the powerlevel10k checkout path.
	FrameworkDir string `json:"frameworkDir"`

	// FrameworkAction is what happened to FrameworkDir during the run.
	FrameworkAction FrameworkAction `json:"frameworkAction"`

	// PresetFile is the path of the copied .p10k.zsh preset.
	// Empty for themes that do not use a preset.
	PresetFile string `json:"presetFile,omitempty"`

	// Backups lists the .back files written during the run.
	Backups []string `json:"backups"`

	// RCFile is the path of the rewritten run-control file.
	RCFile string `json:"rcFile"`

	// Replacements is the number of ZSH_THEME assignments rewritten.
	Replacements int `json:"replacements"`
}

// ExitCode defines the process exit codes of the CLI.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError covers every handled failure: missing git, clone
	// failure, missing run-control file, unknown theme and user interrupt.
	ExitGeneralError ExitCode = 1

	// ExitUsage indicates the command line could not be parsed
	// (unknown theme name, missing argument, unknown flag).
	ExitUsage ExitCode = 2
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
