package dotfile

import (
	"fmt"
	"os"
	"regexp"
)

// themeAssignment matches a quoted oh-my-zsh theme assignment such as
// ZSH_THEME="robbyrussell" or ZSH_THEME="powerlevel10k/powerlevel10k".
// An empty value (ZSH_THEME="") matches too.
var themeAssignment = regexp.MustCompile(`ZSH_THEME="[a-zA-Z0-9/]*"`)

// ThemeLine returns the assignment written for the given final identifier.
func ThemeLine(finalTheme string) string {
	return `ZSH_THEME="` + finalTheme + `"`
}

// SetTheme rewrites every ZSH_THEME="..." assignment in the file at path to
// use finalTheme. The file is rewritten in place even when no assignment
// matched, keeping its permission bits.
//
// It returns the number of assignments replaced.
func SetTheme(path, finalTheme string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	count := len(themeAssignment.FindAllIndex(data, -1))
	updated := themeAssignment.ReplaceAllLiteral(data, []byte(ThemeLine(finalTheme)))

	if err := os.WriteFile(path, updated, info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return count, nil
}
