package installer

import (
	"fmt"

	"github.com/shinji-kodama/zsh-theme-installer/internal/model"
)

// Preset file names inside the asset directory, one per powerlevel10k
// variant.
const (
	PresetLean    = ".p10k.zsh.lean"
	PresetClassic = ".p10k.zsh.classic"
	PresetRainbow = ".p10k.zsh.rainbow"
)

var presets = map[model.Theme]string{
	model.ThemeP10kLean:    PresetLean,
	model.ThemeP10kClassic: PresetClassic,
	model.ThemeP10kRainbow: PresetRainbow,
}

// Resolution is what a theme turns into: the identifier written into
// ZSH_THEME and, for powerlevel10k variants, the preset file to copy.
type Resolution struct {
	// FinalTheme is the exact ZSH_THEME value.
	FinalTheme string

	// Preset is the asset file name copied to .p10k.zsh. Empty when the
	// theme needs no preset.
	Preset string
}

// HasPreset reports whether the resolution requires a preset copy.
func (r Resolution) HasPreset() bool {
	return r.Preset != ""
}

// Resolve maps a theme to its Resolution. defaultTheme is the identifier
// used for model.ThemeDefault.
//
// Themes outside the supported set return a "theme not found" CLIError.
// The CLI rejects such values before the installer runs, so this only
// triggers for programmatic callers.
func Resolve(theme model.Theme, defaultTheme string) (Resolution, error) {
	switch {
	case theme == model.ThemeDefault:
		return Resolution{FinalTheme: defaultTheme}, nil
	case theme == model.ThemeLazyMechanic:
		return Resolution{FinalTheme: model.FinalThemeLazyMechanic}, nil
	case theme.IsPowerlevel10k():
		// All variants share one identifier and differ only in the preset.
		return Resolution{FinalTheme: model.FinalThemePowerlevel10k, Preset: presets[theme]}, nil
	default:
		return Resolution{}, model.NewCLIError(model.ExitGeneralError, fmt.Sprintf("theme '%s' not found", theme))
	}
}
