// Package config holds the installer settings: where the dotfiles live,
// where the preset assets are, which theme counts as "default" and where
// powerlevel10k is cloned from.
//
// Settings start from built-in defaults and can be overlaid by a config file.
// YAML files are decoded with gopkg.in/yaml.v3. JSON files may contain
// comments and trailing commas; they are cleaned with github.com/tidwall/jsonc
// before being handed to encoding/json.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/zsh-theme-installer/internal/model"
)

// Built-in defaults.
const (
	DefaultAssetDir      = "zsh"
	DefaultThemeName     = "robbyrussell"
	DefaultRepositoryURL = "https://github.com/romkatv/powerlevel10k.git"
	DefaultCloneDepth    = 1
	DefaultZshCustom     = "~/.oh-my-zsh/custom"
	DefaultRCFile        = ".zshrc"
	PresetFile           = ".p10k.zsh"
)

// DefaultBackupFiles lists the dotfiles copied to "<name>.back" before the
// run-control file is touched.
var DefaultBackupFiles = []string{".p10k.zsh", ".bashrc", ".zshrc", ".zshenv", ".zshalias"}

// Settings is the fixed configuration of an installer run.
type Settings struct {
	// DestinationDir is where the dotfiles live. The user's home directory
	// in production; tests point it at a temporary directory.
	DestinationDir string `yaml:"destination_dir" json:"destination_dir"`

	// AssetDir holds the .p10k.zsh.<variant> preset files.
	AssetDir string `yaml:"asset_dir" json:"asset_dir"`

	// DefaultTheme is the final identifier used for the "default" theme.
	DefaultTheme string `yaml:"default_theme" json:"default_theme"`

	// RepositoryURL is the powerlevel10k clone source.
	RepositoryURL string `yaml:"repository_url" json:"repository_url"`

	// CloneDepth is passed as --depth to git clone. Zero clones full history.
	CloneDepth int `yaml:"clone_depth" json:"clone_depth"`

	// ZshCustom is the oh-my-zsh custom directory. May start with "~".
	ZshCustom string `yaml:"zsh_custom" json:"zsh_custom"`

	// BackupFiles are dotfile names relative to DestinationDir.
	BackupFiles []string `yaml:"backup_files" json:"backup_files"`

	// RCFile is the run-control file containing ZSH_THEME, relative to
	// DestinationDir.
	RCFile string `yaml:"rc_file" json:"rc_file"`

	// home is the resolved home directory, used for "~" expansion.
	home string
}

// Default returns settings with every field set to its built-in default.
func Default() (*Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to determine home directory", err)
	}
	return defaultsFor(home), nil
}

func defaultsFor(home string) *Settings {
	return &Settings{
		DestinationDir: home,
		AssetDir:       DefaultAssetDir,
		DefaultTheme:   DefaultThemeName,
		RepositoryURL:  DefaultRepositoryURL,
		CloneDepth:     DefaultCloneDepth,
		ZshCustom:      DefaultZshCustom,
		BackupFiles:    append([]string(nil), DefaultBackupFiles...),
		RCFile:         DefaultRCFile,
		home:           home,
	}
}

// Load returns the default settings overlaid with the config file at path.
// An empty path returns the defaults unchanged.
func Load(path string) (*Settings, error) {
	s, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return s, nil
	}
	if err := s.overlayFile(path); err != nil {
		return nil, err
	}
	return s, nil
}

// overlayFile decodes the config file on top of the current values. Keys
// missing from the file keep their current value.
func (s *Settings) overlayFile(path string) error {
	data, err := os.ReadFile(ExpandHome(path, s.home))
	if err != nil {
		if os.IsNotExist(err) {
			return model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("config file not found: %s", path), err)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, s); err != nil {
			return model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to parse config file %s", path), err)
		}
	case ".json", ".jsonc":
		// Strip comments and trailing commas before strict JSON decoding.
		if err := json.Unmarshal(jsonc.ToJSON(data), s); err != nil {
			return model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to parse config file %s", path), err)
		}
	default:
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("unsupported config file format %q (use .yaml, .yml, .json or .jsonc)", filepath.Ext(path)))
	}
	return nil
}

// Validate checks that every required setting has a usable value.
func (s *Settings) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"destination_dir", s.DestinationDir},
		{"asset_dir", s.AssetDir},
		{"default_theme", s.DefaultTheme},
		{"repository_url", s.RepositoryURL},
		{"rc_file", s.RCFile},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return model.NewCLIError(model.ExitGeneralError, fmt.Sprintf("config: %s must not be empty", r.name))
		}
	}
	if s.CloneDepth < 0 {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("config: clone_depth must not be negative (got %d)", s.CloneDepth))
	}
	for i, name := range s.BackupFiles {
		if strings.TrimSpace(name) == "" {
			return model.NewCLIError(model.ExitGeneralError, fmt.Sprintf("config: backup_files[%d] must not be empty", i))
		}
	}
	return nil
}

// Expand returns p with a leading "~" replaced by the home directory the
// settings were created with.
func (s *Settings) Expand(p string) string {
	return ExpandHome(p, s.home)
}

// Destination returns the absolute path of name inside DestinationDir.
func (s *Settings) Destination(name string) string {
	return filepath.Join(s.Expand(s.DestinationDir), name)
}

// Asset returns the path of name inside AssetDir.
func (s *Settings) Asset(name string) string {
	return filepath.Join(s.Expand(s.AssetDir), name)
}

// RCPath returns the path of the run-control file.
func (s *Settings) RCPath() string {
	return s.Destination(s.RCFile)
}

// ExpandHome replaces a leading "~" (alone or followed by a path separator)
// with home. Other occurrences of "~" are left untouched, and "~user" forms
// are not expanded.
func ExpandHome(p, home string) string {
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		return filepath.Join(home, p[2:])
	}
	return p
}
