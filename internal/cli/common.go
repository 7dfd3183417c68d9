package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
)

// errDrift is returned by `validate compare --strict` when files changed.
var errDrift = errors.New("folder does not match its snapshot")

// FormatError formats an error for display.
func FormatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON writes v as indented JSON.
func (a *app) outputJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// dirArg returns the absolute form of the directory argument, or of the
// working directory when none was given.
func dirArg(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	return abs, nil
}
