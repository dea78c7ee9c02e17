// Package cli implements the cobra-based command line of install-zsh-theme.
//
// The tool has a single command: the root command takes the theme name as
// its only positional argument and runs the installer. This file defines
// that command, its flags and the exit-code handling.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/zsh-theme-installer/internal/config"
	"github.com/shinji-kodama/zsh-theme-installer/internal/git"
	"github.com/shinji-kodama/zsh-theme-installer/internal/installer"
	"github.com/shinji-kodama/zsh-theme-installer/internal/model"
	"github.com/shinji-kodama/zsh-theme-installer/internal/prompt"
	"github.com/shinji-kodama/zsh-theme-installer/internal/ui"
)

// AbortedMessage is printed when the run is interrupted (Ctrl-C).
const AbortedMessage = "Process aborted by keyboard interrupt"

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// rootFlags holds the flag values of the root command.
type rootFlags struct {
	// zshCustom is the oh-my-zsh custom directory (-c/--zsh-custom).
	zshCustom string

	// configPath is an optional YAML/JSON settings file.
	configPath string

	// dest overrides the directory holding the dotfiles (default: $HOME).
	dest string

	// assets overrides the directory holding the .p10k.zsh.* presets.
	assets string

	// gitBinary is the git executable to run.
	gitBinary string

	// yes answers the re-clone confirmation with yes without asking.
	yes bool

	// jsonOutput prints the result as JSON on stdout.
	jsonOutput bool

	// verbose prints step-by-step traces on stderr.
	verbose bool

	// noColor disables coloured status tags even on a terminal.
	noColor bool
}

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// Unlike a command tree, the root command does the work itself: it takes
// the theme as its single positional argument and runs the installer.
func NewRootCommand() *cobra.Command {
	// Flag values are kept per command instance so tests can build fresh
	// commands without sharing state.
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		// Use is the one-line usage pattern shown in help output.
		Use:   "install-zsh-theme <theme>",
		Short: "Installer zsh theme",
		Long: fmt.Sprintf(`install-zsh-theme configures the oh-my-zsh theme in ~/.zshrc.

For powerlevel10k themes it clones powerlevel10k into
<zsh-custom>/themes/powerlevel10k and copies the matching preset to
~/.p10k.zsh. Existing dotfiles are backed up to <name>.back first.

Themes: %s

Examples:
  install-zsh-theme p10klean
  install-zsh-theme --zsh-custom ~/.zsh-custom default
  install-zsh-theme --yes --json p10krainbow`, strings.Join(model.ThemeNames(), ", ")),

		// Args validates the positional theme before RunE is called, so
		// an unknown theme never touches the filesystem.
		Args: themeArgs,

		// ValidArgs feeds shell completion with the theme names.
		ValidArgs: model.ThemeNames(),

		// SilenceUsage prevents cobra from printing usage on every error.
		// run prints usage itself, only for usage errors.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// run formats them as text or JSON based on --json.
		SilenceErrors: true,

		// Version is displayed when --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		// RunE receives the validated theme name as args[0].
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, args[0], flags)
		},
	}

	// -c/--zsh-custom is the only flag the installer always needed; the
	// rest point the run at other directories or change the output.
	rootCmd.Flags().StringVarP(&flags.zshCustom, "zsh-custom", "c", config.DefaultZshCustom, "Zsh custom path")
	rootCmd.Flags().StringVar(&flags.configPath, "config", "", "Settings file (.yaml, .yml, .json or .jsonc)")
	rootCmd.Flags().StringVar(&flags.dest, "dest", "", "Directory containing the dotfiles (default: home directory)")
	rootCmd.Flags().StringVar(&flags.assets, "assets", "", "Directory containing the .p10k.zsh.* presets (default: ./zsh)")
	rootCmd.Flags().StringVar(&flags.gitBinary, "git", git.DefaultBinary, "Git executable")
	rootCmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Replace an existing powerlevel10k directory without asking")
	rootCmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Output the result in JSON format")
	rootCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable coloured output")

	// Unknown flags and bad flag values are usage errors, like a bad theme.
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return model.WrapCLIError(model.ExitUsage, "invalid arguments", err)
	})

	return rootCmd
}

// themeArgs validates the positional arguments: exactly one supported theme.
func themeArgs(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return model.NewCLIError(model.ExitUsage,
			fmt.Sprintf("expected exactly one theme argument, got %d", len(args)))
	}
	if _, err := model.ParseTheme(args[0]); err != nil {
		return model.WrapCLIError(model.ExitUsage, "invalid arguments", err)
	}
	return nil
}

// runInstall loads the settings, wires the collaborators and runs the
// installer.
func runInstall(cmd *cobra.Command, themeArg string, flags *rootFlags) error {
	// Step 1: Parse the theme. themeArgs already validated it; this only
	// converts the string.
	theme, err := model.ParseTheme(themeArg)
	if err != nil {
		return model.WrapCLIError(model.ExitUsage, "invalid arguments", err)
	}

	// Step 2: Build the settings from defaults, config file and flags.
	settings, err := loadSettings(cmd, flags)
	if err != nil {
		return err
	}

	// In JSON mode stdout carries only the result document, so progress
	// output and the prompt move to stderr.
	out := cmd.OutOrStdout()
	if flags.jsonOutput {
		out = cmd.ErrOrStderr()
	}
	opts := []ui.Option{ui.WithVerbose(flags.verbose)}
	if flags.noColor {
		opts = append(opts, ui.WithColor(false))
	}
	printer := ui.NewPrinter(out, cmd.ErrOrStderr(), opts...)

	// Step 3: Wire the collaborators. git streams its clone progress to
	// the same place as our own status lines.
	gitClient := git.NewClientWithBinary(flags.gitBinary)
	gitClient.Stdout = out
	gitClient.Stderr = cmd.ErrOrStderr()

	printer.Verbose("Settings: destination=%s assets=%s repository=%s depth=%d git=%s",
		settings.DestinationDir, settings.AssetDir, settings.RepositoryURL, settings.CloneDepth, gitClient.Binary())

	// --yes answers the re-clone question without reading stdin.
	var confirmer installer.Confirmer = prompt.NewConfirmer(cmd.InOrStdin(), out)
	if flags.yes {
		confirmer = prompt.AssumeYes{Out: out}
	}

	// Step 4: Run the installation.
	result, err := installer.New(settings, gitClient, confirmer, printer).
		Run(cmd.Context(), theme, settings.ZshCustom)
	if err != nil {
		return err
	}

	// Step 5: Output the result. Text mode has already reported every
	// step through the printer.
	if flags.jsonOutput {
		return printResultJSON(cmd.OutOrStdout(), result)
	}
	return nil
}

// loadSettings builds the settings: defaults, then the config file, then
// explicit flags.
func loadSettings(cmd *cobra.Command, flags *rootFlags) (*config.Settings, error) {
	settings, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	// Empty string flags mean "not given"; --zsh-custom has a non-empty
	// default, so only an explicit value overrides the config file.
	if flags.dest != "" {
		settings.DestinationDir = flags.dest
	}
	if flags.assets != "" {
		settings.AssetDir = flags.assets
	}
	if cmd.Flags().Changed("zsh-custom") {
		settings.ZshCustom = flags.zshCustom
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Execute runs the root command and exits the process with the resulting
// exit code. This is the main entry point called from main.go.
//
// SIGINT and SIGTERM cancel the command's context; an interrupted run is
// reported as aborted and exits with code 1.
func Execute(rootCmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, rootCmd)
	stop()
	os.Exit(int(code))
}

// run executes rootCmd and translates the outcome into an exit code,
// printing any error in text or JSON form.
func run(ctx context.Context, rootCmd *cobra.Command) model.ExitCode {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return model.ExitSuccess
	}

	// The flag may be unset when parsing failed; that falls back to text.
	jsonOutput, _ := rootCmd.Flags().GetBool("json")
	errOut := rootCmd.ErrOrStderr()

	// An interrupt is not an error of the installation itself: report it
	// as an abort, even when it surfaced wrapped in a git failure.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if jsonOutput {
			printErrorJSON(errOut, AbortedMessage, nil)
		} else {
			ui.NewPrinter(errOut, errOut).Warning(AbortedMessage)
		}
		return model.ExitGeneralError
	}

	code := model.ExitGeneralError
	message := err.Error()
	var underlying error

	// CLIError types carry their own exit codes; other errors default to
	// exit code 1.
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		code = cliErr.Code
		message = cliErr.Message
		underlying = cliErr.Err
	}

	if jsonOutput {
		printErrorJSON(errOut, message, underlying)
	} else {
		text := message
		if underlying != nil {
			text = fmt.Sprintf("%s: %v", message, underlying)
		}
		ui.NewPrinter(errOut, errOut).Error("%s", text)
	}

	// Usage errors end with the usage text, as argument parsers usually do.
	if code == model.ExitUsage && !jsonOutput {
		_, _ = io.WriteString(errOut, "\n"+rootCmd.UsageString())
	}

	return code
}
