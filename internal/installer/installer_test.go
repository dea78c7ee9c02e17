package installer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/zsh-theme-installer/internal/config"
	"github.com/shinji-kodama/zsh-theme-installer/internal/model"
	"github.com/shinji-kodama/zsh-theme-installer/internal/ui"
)

// fakeCloner records clone requests and populates the target directory the
// way a real clone would.
type fakeCloner struct {
	availableErr error
	cloneErr     error
	clones       []cloneCall
	heads        int
}

type cloneCall struct {
	url   string
	dir   string
	depth int
}

func (f *fakeCloner) Available() error { return f.availableErr }

func (f *fakeCloner) Clone(_ context.Context, url, dir string, depth int) error {
	f.clones = append(f.clones, cloneCall{url: url, dir: dir, depth: depth})
	if f.cloneErr != nil {
		return f.cloneErr
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "powerlevel10k.zsh-theme"), []byte("fresh clone\n"), 0o644)
}

func (f *fakeCloner) Head(_ context.Context, _ string) (string, error) {
	f.heads++
	return "0123456789abcdef0123456789abcdef01234567", nil
}

// fakeConfirmer answers with a fixed value and counts questions.
type fakeConfirmer struct {
	answer bool
	err    error
	asked  []string
}

func (f *fakeConfirmer) Confirm(_ context.Context, question string, _ bool) (bool, error) {
	f.asked = append(f.asked, question)
	return f.answer, f.err
}

// env is a self-contained installation target: a destination directory
// standing in for $HOME, an asset directory with presets and a zsh custom
// directory.
type env struct {
	dest      string
	assets    string
	custom    string
	settings  *config.Settings
	cloner    *fakeCloner
	confirmer *fakeConfirmer
	out       *bytes.Buffer
	errOut    *bytes.Buffer
}

var presetContent = map[string]string{
	PresetLean:    "# lean preset\n",
	PresetClassic: "# classic preset\n",
	PresetRainbow: "# rainbow preset\n",
}

func newEnv(t *testing.T) *env {
	t.Helper()

	root := t.TempDir()
	e := &env{
		dest:      filepath.Join(root, "home"),
		assets:    filepath.Join(root, "zsh"),
		custom:    filepath.Join(root, "home", ".oh-my-zsh", "custom"),
		cloner:    &fakeCloner{},
		confirmer: &fakeConfirmer{answer: true},
		out:       &bytes.Buffer{},
		errOut:    &bytes.Buffer{},
	}
	require.NoError(t, os.MkdirAll(e.dest, 0o755))
	require.NoError(t, os.MkdirAll(e.assets, 0o755))
	for name, content := range presetContent {
		require.NoError(t, os.WriteFile(filepath.Join(e.assets, name), []byte(content), 0o644))
	}

	s, err := config.Default()
	require.NoError(t, err)
	s.DestinationDir = e.dest
	s.AssetDir = e.assets
	e.settings = s
	return e
}

func (e *env) writeDest(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.dest, name), []byte(content), 0o644))
}

func (e *env) readDest(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.dest, name))
	require.NoError(t, err)
	return string(data)
}

func (e *env) installer() *Installer {
	return New(e.settings, e.cloner, e.confirmer, ui.NewPrinter(e.out, e.errOut, ui.WithVerbose(true)))
}

func (e *env) run(t *testing.T, theme model.Theme) (*model.InstallResult, error) {
	t.Helper()
	return e.installer().Run(context.Background(), theme, e.custom)
}

// TestRun_FinalIdentifier verifies the theme → ZSH_THEME mapping for all
// five themes.
func TestRun_FinalIdentifier(t *testing.T) {
	tests := []struct {
		theme model.Theme
		want  string
	}{
		{model.ThemeDefault, "robbyrussell"},
		{model.ThemeLazyMechanic, "lazymechanic/lazymechanic"},
		{model.ThemeP10kLean, "powerlevel10k/powerlevel10k"},
		{model.ThemeP10kClassic, "powerlevel10k/powerlevel10k"},
		{model.ThemeP10kRainbow, "powerlevel10k/powerlevel10k"},
	}

	for _, tt := range tests {
		t.Run(tt.theme.String(), func(t *testing.T) {
			e := newEnv(t)
			e.writeDest(t, ".zshrc", "export ZSH=\"$HOME/.oh-my-zsh\"\nZSH_THEME=\"robbyrussell\"\n")

			result, err := e.run(t, tt.theme)
			require.NoError(t, err)

			assert.Equal(t, tt.want, result.FinalTheme)
			assert.Equal(t, "export ZSH=\"$HOME/.oh-my-zsh\"\nZSH_THEME=\""+tt.want+"\"\n", e.readDest(t, ".zshrc"))
			assert.Equal(t, 1, result.Replacements)
			assert.Contains(t, e.out.String(),
				"Set ZSH_THEME=\""+tt.want+"\" in '"+filepath.Join(e.dest, ".zshrc")+"' file")
		})
	}
}

// TestRun_PresetCopied verifies each p10k variant copies its preset
// byte-for-byte to .p10k.zsh, replacing an existing file.
func TestRun_PresetCopied(t *testing.T) {
	tests := []struct {
		theme  model.Theme
		preset string
	}{
		{model.ThemeP10kLean, PresetLean},
		{model.ThemeP10kClassic, PresetClassic},
		{model.ThemeP10kRainbow, PresetRainbow},
	}

	for _, tt := range tests {
		t.Run(tt.theme.String(), func(t *testing.T) {
			e := newEnv(t)
			e.writeDest(t, ".zshrc", "ZSH_THEME=\"robbyrussell\"\n")
			e.writeDest(t, ".p10k.zsh", "# user's old config\n")

			result, err := e.run(t, tt.theme)
			require.NoError(t, err)

			assert.Equal(t, presetContent[tt.preset], e.readDest(t, ".p10k.zsh"))
			assert.Equal(t, filepath.Join(e.dest, ".p10k.zsh"), result.PresetFile)

			// The previous .p10k.zsh is preserved in its backup.
			assert.Equal(t, "# user's old config\n", e.readDest(t, ".p10k.zsh.back"))
		})
	}
}

// TestRun_NoPresetForOtherThemes verifies default and lazymechanic leave
// .p10k.zsh alone.
func TestRun_NoPresetForOtherThemes(t *testing.T) {
	for _, theme := range []model.Theme{model.ThemeDefault, model.ThemeLazyMechanic} {
		t.Run(theme.String(), func(t *testing.T) {
			e := newEnv(t)
			e.writeDest(t, ".zshrc", "ZSH_THEME=\"robbyrussell\"\n")

			result, err := e.run(t, theme)
			require.NoError(t, err)
			assert.Empty(t, result.PresetFile)

			_, statErr := os.Stat(filepath.Join(e.dest, ".p10k.zsh"))
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

// TestRun_ClonesWhenAbsent verifies a missing framework directory is cloned
// without asking.
func TestRun_ClonesWhenAbsent(t *testing.T) {
	e := newEnv(t)
	e.writeDest(t, ".zshrc", "ZSH_THEME=\"robbyrussell\"\n")

	result, err := e.run(t, model.ThemeP10kLean)
	require.NoError(t, err)

	assert.Empty(t, e.confirmer.asked, "no confirmation when the directory is absent")
	require.Len(t, e.cloner.clones, 1)
	assert.Equal(t, cloneCall{
		url:   "https://github.com/romkatv/powerlevel10k.git",
		dir:   filepath.Join(e.custom, "themes", "powerlevel10k"),
		depth: 1,
	}, e.cloner.clones[0])
	assert.Equal(t, model.FrameworkCloned, result.FrameworkAction)
}

// TestRun_ExistingFrameworkDeclined verifies the directory is untouched and
// no clone is issued when the user declines.
func TestRun_ExistingFrameworkDeclined(t *testing.T) {
	e := newEnv(t)
	e.writeDest(t, ".zshrc", "ZSH_THEME=\"robbyrussell\"\n")
	fwDir := FrameworkDir(e.custom)
	require.NoError(t, os.MkdirAll(fwDir, 0o755))
	marker := filepath.Join(fwDir, "local-change")
	require.NoError(t, os.WriteFile(marker, []byte("keep me"), 0o644))
	e.confirmer.answer = false

	result, err := e.run(t, model.ThemeP10kClassic)
	require.NoError(t, err, "declining is a valid branch, not an error")

	assert.Equal(t, []string{ReclonePrompt}, e.confirmer.asked)
	assert.Empty(t, e.cloner.clones)
	assert.FileExists(t, marker)
	assert.Equal(t, model.FrameworkKept, result.FrameworkAction)
	assert.Contains(t, e.out.String(), "Do nothing")

	// The rest of the run continues.
	assert.Equal(t, "ZSH_THEME=\"powerlevel10k/powerlevel10k\"\n", e.readDest(t, ".zshrc"))
}

// TestRun_ExistingFrameworkConfirmed verifies the directory is removed and
// repopulated by a clone.
func TestRun_ExistingFrameworkConfirmed(t *testing.T) {
	e := newEnv(t)
	e.writeDest(t, ".zshrc", "ZSH_THEME=\"robbyrussell\"\n")
	fwDir := FrameworkDir(e.custom)
	require.NoError(t, os.MkdirAll(fwDir, 0o755))
	stale := filepath.Join(fwDir, "stale-file")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	result, err := e.run(t, model.ThemeP10kRainbow)
	require.NoError(t, err)

	assert.Len(t, e.confirmer.asked, 1)
	require.Len(t, e.cloner.clones, 1)
	assert.NoFileExists(t, stale, "old contents should be removed before cloning")
	assert.FileExists(t, filepath.Join(fwDir, "powerlevel10k.zsh-theme"))
	assert.Equal(t, model.FrameworkRecloned, result.FrameworkAction)
}

// TestRun_ConfirmError verifies a failed prompt read aborts the run.
func TestRun_ConfirmError(t *testing.T) {
	e := newEnv(t)
	e.writeDest(t, ".zshrc", "ZSH_THEME=\"robbyrussell\"\n")
	require.NoError(t, os.MkdirAll(FrameworkDir(e.custom), 0o755))
	e.confirmer.err = errors.New("tty gone")

	_, err := e.run(t, model.ThemeDefault)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read user input")
	assert.Empty(t, e.cloner.clones)
}

// TestRun_Backups verifies present files get byte-identical .back copies
// and absent files are skipped.
func TestRun_Backups(t *testing.T) {
	e := newEnv(t)
	e.writeDest(t, ".zshrc", "ZSH_THEME=\"robbyrussell\"\n")
	e.writeDest(t, ".zshalias", "alias ll='ls -l'\n")

	result, err := e.run(t, model.ThemeDefault)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(e.dest, ".zshrc.back"),
		filepath.Join(e.dest, ".zshalias.back"),
	}, result.Backups)
	assert.Equal(t, "ZSH_THEME=\"robbyrussell\"\n", e.readDest(t, ".zshrc.back"))
	assert.Equal(t, "alias ll='ls -l'\n", e.readDest(t, ".zshalias.back"))

	for _, absent := range []string{".p10k.zsh.back", ".bashrc.back", ".zshenv.back"} {
		assert.NoFileExists(t, filepath.Join(e.dest, absent))
	}
}

// TestRun_MissingRCFile verifies a missing .zshrc fails without creating it.
func TestRun_MissingRCFile(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, model.ThemeLazyMechanic)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitGeneralError, cliErr.Code)
	assert.Equal(t, "file '"+filepath.Join(e.dest, ".zshrc")+"' not found", cliErr.Message)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.NoFileExists(t, filepath.Join(e.dest, ".zshrc"))
}

// TestRun_RCFileIsDirectory verifies a directory named .zshrc is rejected.
func TestRun_RCFileIsDirectory(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.Mkdir(filepath.Join(e.dest, ".zshrc"), 0o755))

	_, err := e.run(t, model.ThemeDefault)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

// TestRun_GitMissing verifies a missing git aborts before any filesystem
// mutation.
func TestRun_GitMissing(t *testing.T) {
	e := newEnv(t)
	e.writeDest(t, ".zshrc", "ZSH_THEME=\"robbyrussell\"\n")
	e.cloner.availableErr = model.WrapCLIError(model.ExitGeneralError, "'git' is not installed", exec.ErrNotFound)

	_, err := e.run(t, model.ThemeP10kLean)
	require.Error(t, err)
	assert.True(t, errors.Is(err, exec.ErrNotFound))

	assert.Empty(t, e.cloner.clones)
	assert.NoDirExists(t, e.custom)
	assert.NoFileExists(t, filepath.Join(e.dest, ".zshrc.back"))
	assert.NoFileExists(t, filepath.Join(e.dest, ".p10k.zsh"))
	assert.Equal(t, "ZSH_THEME=\"robbyrussell\"\n", e.readDest(t, ".zshrc"))
	assert.Empty(t, e.out.String())
}

// TestRun_CloneFailure verifies the manual-install hint and that later
// steps do not run.
func TestRun_CloneFailure(t *testing.T) {
	e := newEnv(t)
	e.writeDest(t, ".zshrc", "ZSH_THEME=\"robbyrussell\"\n")
	e.cloner.cloneErr = errors.New("exit status 128")

	_, err := e.run(t, model.ThemeP10kLean)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t,
		"git clone of 'https://github.com/romkatv/powerlevel10k.git' repo failed, try install manually",
		cliErr.Message)
	assert.NoFileExists(t, filepath.Join(e.dest, ".zshrc.back"))
	assert.Equal(t, "ZSH_THEME=\"robbyrussell\"\n", e.readDest(t, ".zshrc"))
}

// TestRun_CloneInterrupted verifies that a clone killed by Ctrl-C is
// reported as an abort, not as a failed clone.
func TestRun_CloneInterrupted(t *testing.T) {
	e := newEnv(t)
	e.writeDest(t, ".zshrc", "ZSH_THEME=\"robbyrussell\"\n")
	e.cloner.cloneErr = fmt.Errorf("git clone interrupted: %w", context.Canceled)

	_, err := e.run(t, model.ThemeP10kLean)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NotContains(t, err.Error(), "try install manually")
	assert.NoFileExists(t, filepath.Join(e.dest, ".zshrc.back"))
}

// TestRun_HeadOnlyWhenVerbose verifies the cloned commit is looked up only
// when verbose output will show it.
func TestRun_HeadOnlyWhenVerbose(t *testing.T) {
	for _, verbose := range []bool{true, false} {
		t.Run(fmt.Sprintf("verbose=%v", verbose), func(t *testing.T) {
			e := newEnv(t)
			e.writeDest(t, ".zshrc", "ZSH_THEME=\"robbyrussell\"\n")

			printer := ui.NewPrinter(e.out, e.errOut, ui.WithVerbose(verbose))
			_, err := New(e.settings, e.cloner, e.confirmer, printer).
				Run(context.Background(), model.ThemeDefault, e.custom)
			require.NoError(t, err)

			if verbose {
				assert.Equal(t, 1, e.cloner.heads)
				assert.Contains(t, e.errOut.String(), "at 0123456789abcdef")
			} else {
				assert.Equal(t, 0, e.cloner.heads)
				assert.Empty(t, e.errOut.String())
			}
		})
	}
}

// TestRun_MissingPreset verifies a missing asset is reported after backups
// were written; nothing is rolled back.
func TestRun_MissingPreset(t *testing.T) {
	e := newEnv(t)
	e.writeDest(t, ".zshrc", "ZSH_THEME=\"robbyrussell\"\n")
	require.NoError(t, os.Remove(filepath.Join(e.assets, PresetClassic)))

	_, err := e.run(t, model.ThemeP10kClassic)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preset file")
	assert.True(t, errors.Is(err, os.ErrNotExist))

	assert.FileExists(t, filepath.Join(e.dest, ".zshrc.back"))
	assert.Equal(t, "ZSH_THEME=\"robbyrussell\"\n", e.readDest(t, ".zshrc"))
}

// TestRun_UnknownTheme verifies the defensive "theme not found" branch.
func TestRun_UnknownTheme(t *testing.T) {
	e := newEnv(t)
	e.writeDest(t, ".zshrc", "ZSH_THEME=\"robbyrussell\"\n")

	_, err := e.run(t, model.Theme("agnoster"))
	require.Error(t, err)
	assert.Equal(t, "theme 'agnoster' not found", err.Error())
	assert.Equal(t, "ZSH_THEME=\"robbyrussell\"\n", e.readDest(t, ".zshrc"))
}

// TestRun_Cancelled verifies a cancelled context stops the run and is
// reported as context.Canceled.
func TestRun_Cancelled(t *testing.T) {
	e := newEnv(t)
	e.writeDest(t, ".zshrc", "ZSH_THEME=\"robbyrussell\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.installer().Run(ctx, model.ThemeDefault, e.custom)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, "ZSH_THEME=\"robbyrussell\"\n", e.readDest(t, ".zshrc"))
}

// TestRun_CustomDirHomeExpansion verifies a leading "~" in the custom
// directory is expanded against the home directory.
func TestRun_CustomDirHomeExpansion(t *testing.T) {
	e := newEnv(t)
	e.writeDest(t, ".zshrc", "ZSH_THEME=\"robbyrussell\"\n")

	// Point $HOME at the sandbox so "~" never resolves to the real home.
	t.Setenv("HOME", e.dest)
	s, err := config.Default()
	require.NoError(t, err)
	s.AssetDir = e.assets
	e.settings = s

	result, err := e.installer().Run(context.Background(), model.ThemeDefault, "~/.oh-my-zsh/custom")
	require.NoError(t, err)
	require.Len(t, e.cloner.clones, 1)

	want := filepath.Join(e.dest, ".oh-my-zsh", "custom", "themes", "powerlevel10k")
	assert.Equal(t, want, e.cloner.clones[0].dir)
	assert.Equal(t, want, result.FrameworkDir)
	assert.Equal(t, filepath.Join(e.dest, ".zshrc"), result.RCFile)
}

// TestRun_ReportsSteps verifies the user-facing progress messages.
func TestRun_ReportsSteps(t *testing.T) {
	e := newEnv(t)
	e.writeDest(t, ".zshrc", "ZSH_THEME=\"robbyrussell\"\n")

	_, err := e.run(t, model.ThemeP10kLean)
	require.NoError(t, err)

	out := e.out.String()
	assert.Contains(t, out, "[INFO] Installation theme is 'p10klean'")
	assert.Contains(t, out, "[INFO] Clone Powerlevel10k repo...")
	assert.Contains(t, out, "[INFO] Backup existing files...")
	assert.Contains(t, e.errOut.String(), "[verbose] <Config: theme=p10klean")
}
