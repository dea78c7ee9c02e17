package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shinji-kodama/zsh-theme-installer/internal/model"
)

// printResultJSON writes the install result as indented JSON.
func printResultJSON(w io.Writer, result *model.InstallResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printErrorJSON writes an error object of the form
// {"error": {"message": "...", "detail": "..."}}.
func printErrorJSON(w io.Writer, message string, underlying error) {
	errObj := map[string]interface{}{
		"message": message,
	}
	if underlying != nil {
		errObj["detail"] = underlying.Error()
	}

	data, _ := json.MarshalIndent(map[string]interface{}{"error": errObj}, "", "  ")
	_, _ = fmt.Fprintln(w, string(data))
}
