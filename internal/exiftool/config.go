package exiftool

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ConfigFileName is the file looked for next to the filmtag executable.
const ConfigFileName = "exiftool_config"

//go:embed exiftool_config
var embeddedConfig []byte

// WriteConfig writes the built-in configuration to path.
func WriteConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create exiftool config directory: %w", err)
	}
	if err := os.WriteFile(path, embeddedConfig, 0o644); err != nil {
		return fmt.Errorf("write exiftool config: %w", err)
	}
	return nil
}

// ResolveConfig picks the exiftool configuration for a run. An explicit path
// must exist. Otherwise exiftool_config next to the executable is used, and as
// a last resort the embedded copy is written to a temporary file. cleanup
// removes anything ResolveConfig created and is always safe to call.
func ResolveConfig(explicit string) (path string, cleanup func(), err error) {
	cleanup = func() {}

	if explicit = strings.TrimSpace(explicit); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", cleanup, fmt.Errorf("exiftool config %s: %w", explicit, err)
		}
		return explicit, cleanup, nil
	}

	if candidate, ok, err := BesideExecutable(); err != nil {
		return "", cleanup, err
	} else if ok {
		return candidate, cleanup, nil
	}

	dir, err := os.MkdirTemp("", "filmtag-")
	if err != nil {
		return "", cleanup, fmt.Errorf("create temp dir for exiftool config: %w", err)
	}
	path = filepath.Join(dir, ConfigFileName)
	if err := WriteConfig(path); err != nil {
		_ = os.RemoveAll(dir)
		return "", cleanup, err
	}
	return path, func() { _ = os.RemoveAll(dir) }, nil
}

// BesideExecutable reports the exiftool_config next to the running binary,
// if there is one.
func BesideExecutable() (string, bool, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", false, nil
	}
	candidate := filepath.Join(filepath.Dir(exe), ConfigFileName)
	info, err := os.Stat(candidate)
	switch {
	case err == nil:
		return candidate, !info.IsDir(), nil
	case errors.Is(err, fs.ErrNotExist):
		return "", false, nil
	default:
		return "", false, fmt.Errorf("stat exiftool config: %w", err)
	}
}
