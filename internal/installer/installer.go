// Package installer runs the zsh theme installation.
//
// The run is strictly sequential:
//
//  1. check that git is available
//  2. provision the powerlevel10k checkout under <zsh-custom>/themes
//  3. resolve the theme to its final identifier (and preset, if any)
//  4. back up the well-known dotfiles
//  5. copy the preset file for powerlevel10k variants
//  6. check that the run-control file exists
//  7. rewrite ZSH_THEME="..." in the run-control file
//
// Any error aborts the remaining steps. Nothing is rolled back: a clone,
// backups or a copied preset written before the failure stay on disk.
package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shinji-kodama/zsh-theme-installer/internal/config"
	"github.com/shinji-kodama/zsh-theme-installer/internal/dotfile"
	"github.com/shinji-kodama/zsh-theme-installer/internal/model"
)

// FrameworkName is the directory name of the powerlevel10k checkout.
const FrameworkName = "powerlevel10k"

// ReclonePrompt is asked when the framework directory already exists.
const ReclonePrompt = "Powerlevel10k directory already exists, delete dir and clone repo?"

// Cloner is the version-control collaborator.
type Cloner interface {
	// Available returns an error when the tool is not installed.
	Available() error

	// Clone populates dir from url. depth > 0 requests a shallow clone.
	Clone(ctx context.Context, url, dir string, depth int) error
}

// headReader is implemented by cloners that can report the checked-out
// commit; used only for verbose output.
type headReader interface {
	Head(ctx context.Context, dir string) (string, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string, defaultYes bool) (bool, error)
}

// Reporter receives progress messages.
type Reporter interface {
	Info(format string, args ...any)
	OK(format string, args ...any)
	Verbose(format string, args ...any)

	// IsVerbose reports whether Verbose lines are shown. Work done only
	// for a Verbose line is skipped when it returns false.
	IsVerbose() bool
}

// Installer performs one installation run.
type Installer struct {
	settings *config.Settings
	git      Cloner
	confirm  Confirmer
	report   Reporter
}

// New creates an Installer. All collaborators are required.
func New(settings *config.Settings, git Cloner, confirm Confirmer, report Reporter) *Installer {
	return &Installer{
		settings: settings,
		git:      git,
		confirm:  confirm,
		report:   report,
	}
}

// FrameworkDir returns the powerlevel10k checkout path for customDir.
func FrameworkDir(customDir string) string {
	return filepath.Join(customDir, "themes", FrameworkName)
}

// Run installs theme, cloning powerlevel10k under customDir. customDir may
// start with "~".
//
// On success it returns a summary of what was written. Errors are
// *model.CLIError values, except for context cancellation which is returned
// as ctx.Err() so the caller can report an abort.
func (i *Installer) Run(ctx context.Context, theme model.Theme, customDir string) (*model.InstallResult, error) {
	cfg := &model.Config{
		Theme:     theme,
		ZshCustom: i.settings.Expand(customDir),
	}

	// Step 1: git must be installed before anything on disk changes, even
	// for themes that do not use powerlevel10k.
	if err := i.git.Available(); err != nil {
		return nil, err
	}

	i.report.Info("Installation theme is '%s'", cfg.Theme)
	i.report.Verbose("%s", cfg)

	result := &model.InstallResult{
		Theme:        theme,
		FrameworkDir: FrameworkDir(cfg.ZshCustom),
		Backups:      []string{},
		RCFile:       i.settings.RCPath(),
	}

	// Step 2: framework provisioning.
	action, err := i.provisionFramework(ctx, result.FrameworkDir)
	if err != nil {
		return nil, err
	}
	result.FrameworkAction = action

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 3: theme resolution.
	res, err := Resolve(cfg.Theme, i.settings.DefaultTheme)
	if err != nil {
		return nil, err
	}
	cfg.FinalTheme = res.FinalTheme
	result.FinalTheme = res.FinalTheme
	i.report.Verbose("Resolved theme %q to %q (preset: %q)", cfg.Theme, res.FinalTheme, res.Preset)

	// Step 4: back up existing dotfiles, before the preset overwrites
	// .p10k.zsh.
	i.report.Info("Backup existing files...")
	backups, err := dotfile.Backup(i.settings.Expand(i.settings.DestinationDir), i.settings.BackupFiles)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to back up existing files", err)
	}
	for _, b := range backups {
		i.report.Verbose("Backed up %s", b)
	}
	result.Backups = append(result.Backups, backups...)
	i.report.OK("Done")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 5: preset copy for powerlevel10k variants.
	if res.HasPreset() {
		src := i.settings.Asset(res.Preset)
		dst := i.settings.Destination(config.PresetFile)
		i.report.Verbose("Copying preset %s to %s", src, dst)
		if err := dotfile.CopyFile(src, dst); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, model.WrapCLIError(model.ExitGeneralError,
					fmt.Sprintf("preset file '%s' not found", src), err)
			}
			return nil, model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to copy preset '%s'", src), err)
		}
		result.PresetFile = dst
	}

	// Step 6: the run-control file must exist.
	rcPath := result.RCFile
	info, err := os.Stat(rcPath)
	if err != nil || !info.Mode().IsRegular() {
		if err == nil {
			err = fmt.Errorf("%s is not a regular file", rcPath)
		}
		return nil, model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("file '%s' not found", rcPath), err)
	}

	// Step 7: substitution.
	count, err := dotfile.SetTheme(rcPath, cfg.FinalTheme)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to set theme in '%s'", rcPath), err)
	}
	result.Replacements = count
	i.report.Verbose("Replaced %d ZSH_THEME assignment(s)", count)
	i.report.OK("Set %s in '%s' file", dotfile.ThemeLine(cfg.FinalTheme), rcPath)

	return result, nil
}

// provisionFramework makes sure dir holds a fresh powerlevel10k clone,
// unless it already exists and the user declines to replace it.
func (i *Installer) provisionFramework(ctx context.Context, dir string) (model.FrameworkAction, error) {
	action := model.FrameworkCloned

	// Any existing entry counts, even a stray file with that name; git
	// would refuse to clone over it anyway.
	_, err := os.Stat(dir)
	switch {
	case err == nil:
		// Default yes: pressing Enter replaces the checkout.
		replace, err := i.confirm.Confirm(ctx, ReclonePrompt, true)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", model.WrapCLIError(model.ExitGeneralError, "failed to read user input", err)
		}
		// Declining keeps the current checkout as is; the run continues
		// with the theme switch.
		if !replace {
			i.report.OK("Do nothing")
			return model.FrameworkKept, nil
		}

		i.report.Info("Remove Powerlevel10k directory...")
		if err := os.RemoveAll(dir); err != nil {
			return "", model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to remove '%s'", dir), err)
		}
		i.report.OK("Done")
		action = model.FrameworkRecloned
	case !os.IsNotExist(err):
		// Permission problems and the like; absence is the normal case.
		return "", model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("failed to inspect '%s'", dir), err)
	}

	// The clone streams git's own progress; depth comes from settings
	// (1 by default).
	i.report.Info("Clone Powerlevel10k repo...")
	url := i.settings.RepositoryURL
	if err := i.git.Clone(ctx, url, dir, i.settings.CloneDepth); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		// git killed by Ctrl-C before ctx saw the signal.
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("git clone of '%s' repo failed, try install manually", url), err)
	}

	// The commit is only reported in verbose mode; skip the extra
	// rev-parse otherwise.
	if hr, ok := i.git.(headReader); ok && i.report.IsVerbose() {
		if sha, err := hr.Head(ctx, dir); err == nil {
			i.report.Verbose("Cloned %s at %s", url, sha)
		}
	}
	i.report.OK("Done")

	return action, nil
}
